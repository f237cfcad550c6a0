package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"aishare/config"
	"aishare/routes"
	"aishare/storage"
	"aishare/thumbnail"
	"aishare/utils"
)

func main() {
	cfg := config.Load()

	logger, err := utils.NewLogger(utils.LogConfig{
		Level:      cfg.LogLevel,
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}

	rc, err := config.InitRedis(cfg)
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}

	store, err := storage.New(storage.Options{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		UseSSL:    cfg.S3UseSSL,
		CDNDomain: cfg.CDNDomain,
	})
	if err != nil {
		logger.Fatal("init object storage", zap.Error(err))
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		logger.Fatal("ensure bucket", zap.Error(err))
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret)
	blacklist := utils.NewTokenBlacklist(rc)
	thumbs := thumbnail.NewWorker(rc, db, store, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if cfg.ThumbnailEnabled {
		go thumbs.Run(workerCtx)
	}

	router := routes.SetupRouter(routes.Deps{
		Cfg:    cfg,
		DB:     db,
		Logger: logger,
		Store:  store,
		Thumbs: thumbs,
		Tokens: tokens,
		BL:     blacklist,
	})

	logger.Info("server starting", zap.String("port", cfg.AppPort))
	if err := utils.GraceServer(":"+cfg.AppPort, router, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
