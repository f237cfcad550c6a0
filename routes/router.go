package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aishare/config"
	"aishare/controllers"
	"aishare/middleware"
	"aishare/storage"
	"aishare/thumbnail"
	"aishare/utils"
)

// Deps carries everything the router needs. Built once in main and handed
// over explicitly.
type Deps struct {
	Cfg    config.AppConfig
	DB     *gorm.DB
	Logger *zap.Logger
	Store  *storage.Store
	Thumbs *thumbnail.Worker
	Tokens *utils.TokenManager
	BL     *utils.TokenBlacklist
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(d Deps) *gin.Engine {
	switch strings.ToLower(d.Cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(utils.AccessLog(d.Logger))
	r.Use(utils.Recovery(d.Logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(d.Cfg.AllowedOrigins) == 1 && d.Cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = d.Cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(d.DB, d.Tokens, d.BL, d.Cfg.AdminUsernames)
	postController := controllers.NewPostController(d.DB, d.Store, d.Thumbs, d.Logger, d.Cfg.PerPage, d.Cfg.MaxUploadMB)
	commentController := controllers.NewCommentController(d.DB, d.Logger)
	favoriteController := controllers.NewFavoriteController(d.DB, d.Logger)
	notifyController := controllers.NewNotifyController(d.DB, d.Logger)
	reportController := controllers.NewReportController(d.DB, d.Logger)
	exportController := controllers.NewExportController(d.DB, d.Logger)

	authOptional := middleware.AuthOptional(d.Tokens, d.BL)
	authRequired := middleware.AuthRequired(d.Tokens, d.BL)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(d.Cfg.RateLimitPerMinute))
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", authRequired, authController.Logout)
	authGroup.GET("/me", authRequired, authController.Me)

	// Public reads. Optional auth lets staff and authors see what plain
	// visitors cannot.
	api.GET("/posts", authOptional, postController.List)
	api.GET("/posts/:id", authOptional, postController.Detail)
	api.GET("/tags", postController.ListTags)
	api.GET("/users/:username/posts", authOptional, postController.ListByAuthor)
	api.GET("/export/posts.csv", authOptional, exportController.CSV)
	api.GET("/export/posts.json", authOptional, exportController.JSON)
	api.GET("/posts/:id/pdf", authOptional, exportController.PDF)

	// Authenticated writes.
	api.POST("/posts", authRequired, postController.Create)
	api.PUT("/posts/:id", authRequired, postController.Update)
	api.DELETE("/posts/:id", authRequired, postController.Delete)
	api.POST("/posts/:id/comments", authRequired, commentController.Create)
	api.DELETE("/comments/:id", authRequired, commentController.Delete)
	api.POST("/posts/:id/favorite", authRequired, favoriteController.Toggle)
	api.GET("/favorites", authRequired, favoriteController.Mine)
	api.GET("/notifications", authRequired, notifyController.Counts)
	api.POST("/notifications/read", authRequired, notifyController.MarkRead)
	api.POST("/reports", authRequired, reportController.Create)

	// Staff surface.
	staff := api.Group("/mod")
	staff.Use(authRequired, middleware.StaffRequired())
	staff.GET("/dashboard", reportController.Dashboard)
	staff.GET("/reports", reportController.List)
	staff.POST("/reports/:id/close", reportController.Close)
	staff.POST("/posts/:id/moderate", reportController.ModeratePost)
	staff.POST("/comments/:id/moderate", reportController.ModerateComment)
	staff.GET("/actions", reportController.ActionsForTarget)

	return r
}
