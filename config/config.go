package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
)

// AppConfig holds all configuration. Sensitive values never have in-code
// defaults and must come from the config file or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	GinMode            string
	PerPage            int
	RateLimitPerMinute int
	AllowedOrigins     []string
	AdminUsernames     []string

	// Database (Postgres)
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Redis for caching, token blacklist, and the thumbnail queue
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	// Object storage (S3-compatible)
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
	CDNDomain   string

	// Uploads
	MaxUploadMB      int
	ThumbnailEnabled bool

	// Logging
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load reads config/config.json (if present), fills defaults, then applies
// environment overrides. Called once during boot; the result is passed
// explicitly to everything that needs it.
func Load() AppConfig {
	var cfg AppConfig

	_ = loadJSONConfig("config/config.json", &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in config or environment")
	}
	return cfg
}

type fileConfig struct {
	App struct {
		AppPort            string   `json:"AppPort"`
		JWTSecret          string   `json:"JWTSecret"`
		GinMode            string   `json:"GinMode"`
		PerPage            int      `json:"PerPage"`
		RateLimitPerMinute int      `json:"RateLimitPerMinute"`
		AllowedOrigins     []string `json:"AllowedOrigins"`
		AdminUsernames     []string `json:"AdminUsernames"`
	} `json:"app"`
	Database struct {
		DatabaseURI string `json:"DatabaseURI"`
		DBHost      string `json:"DBHost"`
		DBPort      string `json:"DBPort"`
		DBUser      string `json:"DBUser"`
		DBPassword  string `json:"DBPassword"`
		DBName      string `json:"DBName"`
		DBSSLMode   string `json:"DBSSLMode"`
	} `json:"database"`
	Redis struct {
		RedisHost     string `json:"RedisHost"`
		RedisPort     int    `json:"RedisPort"`
		RedisDB       int    `json:"RedisDB"`
		RedisPassword string `json:"RedisPassword"`
	} `json:"redis"`
	S3 struct {
		Endpoint  string `json:"Endpoint"`
		AccessKey string `json:"AccessKey"`
		SecretKey string `json:"SecretKey"`
		Bucket    string `json:"Bucket"`
		UseSSL    bool   `json:"UseSSL"`
		CDNDomain string `json:"CDNDomain"`
	} `json:"s3"`
	Upload struct {
		MaxUploadMB      int  `json:"MaxUploadMB"`
		ThumbnailEnabled bool `json:"ThumbnailEnabled"`
	} `json:"upload"`
	Log struct {
		Level      string `json:"Level"`
		Path       string `json:"Path"`
		MaxSizeMB  int    `json:"MaxSizeMB"`
		MaxBackups int    `json:"MaxBackups"`
		MaxAgeDays int    `json:"MaxAgeDays"`
		Compress   bool   `json:"Compress"`
	} `json:"log"`
}

// loadJSONConfig reads the JSON file into cfg if present. Returns an error
// only for invalid JSON; a missing file is ignored silently.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var fc fileConfig
	if err := json.NewDecoder(f).Decode(&fc); err != nil {
		return err
	}

	out.AppPort = fc.App.AppPort
	out.JWTSecret = fc.App.JWTSecret
	out.GinMode = fc.App.GinMode
	out.PerPage = fc.App.PerPage
	out.RateLimitPerMinute = fc.App.RateLimitPerMinute
	out.AllowedOrigins = fc.App.AllowedOrigins
	out.AdminUsernames = fc.App.AdminUsernames

	out.DatabaseURI = fc.Database.DatabaseURI
	out.DBHost = fc.Database.DBHost
	out.DBPort = fc.Database.DBPort
	out.DBUser = fc.Database.DBUser
	out.DBPassword = fc.Database.DBPassword
	out.DBName = fc.Database.DBName
	out.DBSSLMode = fc.Database.DBSSLMode

	out.RedisHost = fc.Redis.RedisHost
	out.RedisPort = fc.Redis.RedisPort
	out.RedisDB = fc.Redis.RedisDB
	out.RedisPassword = fc.Redis.RedisPassword

	out.S3Endpoint = fc.S3.Endpoint
	out.S3AccessKey = fc.S3.AccessKey
	out.S3SecretKey = fc.S3.SecretKey
	out.S3Bucket = fc.S3.Bucket
	out.S3UseSSL = fc.S3.UseSSL
	out.CDNDomain = fc.S3.CDNDomain

	out.MaxUploadMB = fc.Upload.MaxUploadMB
	out.ThumbnailEnabled = fc.Upload.ThumbnailEnabled

	out.LogLevel = fc.Log.Level
	out.LogPath = fc.Log.Path
	out.LogMaxSizeMB = fc.Log.MaxSizeMB
	out.LogMaxBackups = fc.Log.MaxBackups
	out.LogMaxAgeDays = fc.Log.MaxAgeDays
	out.LogCompress = fc.Log.Compress
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.PerPage == 0 {
		c.PerPage = 8
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "5432"
	}
	if c.DBUser == "" {
		c.DBUser = "postgres"
	}
	if c.DBName == "" {
		c.DBName = "aishare"
	}
	if c.DBSSLMode == "" {
		c.DBSSLMode = "prefer"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = 5
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

func applyEnvOverrides(c *AppConfig) {
	setStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				log.Fatalf("invalid integer for %s: %v", key, err)
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "true" || v == "1"
		}
	}
	setList := func(key string, dst *[]string) {
		if v := os.Getenv(key); v != "" {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if t := strings.TrimSpace(item); t != "" {
					items = append(items, t)
				}
			}
			*dst = items
		}
	}

	setStr("APP_PORT", &c.AppPort)
	setStr("JWT_SECRET", &c.JWTSecret)
	setStr("GIN_MODE", &c.GinMode)
	setInt("PER_PAGE", &c.PerPage)
	setInt("RATE_LIMIT_PER_MINUTE", &c.RateLimitPerMinute)
	setList("CORS_ALLOWED_ORIGINS", &c.AllowedOrigins)
	setList("ADMIN_USERNAMES", &c.AdminUsernames)

	setStr("DATABASE_URI", &c.DatabaseURI)
	setStr("DB_HOST", &c.DBHost)
	setStr("DB_PORT", &c.DBPort)
	setStr("DB_USER", &c.DBUser)
	setStr("DB_PASSWORD", &c.DBPassword)
	setStr("DB_NAME", &c.DBName)
	setStr("DB_SSLMODE", &c.DBSSLMode)

	setStr("REDIS_HOST", &c.RedisHost)
	setInt("REDIS_PORT", &c.RedisPort)
	setInt("REDIS_DB", &c.RedisDB)
	setStr("REDIS_PASSWORD", &c.RedisPassword)

	setStr("S3_ENDPOINT", &c.S3Endpoint)
	setStr("S3_ACCESS_KEY", &c.S3AccessKey)
	setStr("S3_SECRET_KEY", &c.S3SecretKey)
	setStr("S3_BUCKET_NAME", &c.S3Bucket)
	setBool("S3_USE_SSL", &c.S3UseSSL)
	setStr("CDN_DOMAIN", &c.CDNDomain)

	setInt("MAX_UPLOAD_MB", &c.MaxUploadMB)
	setBool("THUMBNAIL_ENABLED", &c.ThumbnailEnabled)

	setStr("LOG_LEVEL", &c.LogLevel)
	setStr("LOG_PATH", &c.LogPath)
	setInt("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	setInt("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	setInt("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	setBool("LOG_COMPRESS", &c.LogCompress)
}
