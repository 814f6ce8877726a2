package config

import (
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type TokenStoreBackend string

const (
	TokenStoreDatabase TokenStoreBackend = "database" // Refresh tokens kept in the auth database (default)
	TokenStoreRedis    TokenStoreBackend = "redis"    // Refresh tokens kept in Redis with native TTLs
)

type MediaStorageBackend string

const (
	MediaStorageLocal MediaStorageBackend = "local"
	MediaStorageS3    MediaStorageBackend = "s3"
)

type (
	Config struct {
		HTTP
		Global
		Databases
		Auth
		Redis
		Media
		Notifications
		Tasks
		Logging
		Seed
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
		Environment              string
	}

	// Databases holds one SQLite path per domain. Each domain is an
	// independent database file so a broken domain never takes down another.
	Databases struct {
		DataDir        string
		AuthPath       string
		QuotesPath     string
		CategoriesPath string
		MediaPath      string
		NotifyPath     string
		ThemesPath     string
		BusyTimeout    time.Duration
		LogQueries     bool
	}

	Auth struct {
		JWTSecret          string
		AccessTokenExpiry  time.Duration
		RefreshTokenExpiry time.Duration
		BcryptCost         int
		TokenStore         TokenStoreBackend

		// Rate limiting configuration for login
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Media struct {
		Storage       MediaStorageBackend
		LocalDir      string
		MaxUploadSize int64
		S3Bucket      string
		S3Endpoint    string
		S3Region      string
		S3AccessKey   string
		S3SecretKey   string
	}

	Notifications struct {
		Enabled           bool
		DispatchSchedule  string // Cron format: "* * * * *" = every minute
		ReminderSchedule  string
		ReconcileSchedule string
		ReconnectSchedule string
	}

	Tasks struct {
		Enabled           bool
		DBPath            string
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Logging struct {
		Level  string
		Format string // console or json
	}

	// Seed is the administrator account created by the seed command.
	Seed struct {
		AdminUsername string
		AdminEmail    string
		AdminPassword string
	}
)

// IsDevelopment reports whether the process runs with development defaults.
func (g Global) IsDevelopment() bool {
	return g.Environment == "" || g.Environment == "development"
}

// domainPath returns the configured path for a domain or the documented
// default inside the data directory.
func domainPath(v *viper.Viper, key, domain, dataDir string) string {
	if p := v.GetString(key); p != "" {
		return p
	}
	return filepath.Join(dataDir, DatabaseFilePrefix+domain+".db")
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 3000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("environment", "development")

	// Per-domain databases; empty paths fall back to <data dir>/my-motiv-<domain>.db
	v.SetDefault("db_data_dir", DefaultDataDir)
	v.SetDefault("db_auth_path", "")
	v.SetDefault("db_quotes_path", "")
	v.SetDefault("db_categories_path", "")
	v.SetDefault("db_media_path", "")
	v.SetDefault("db_notifications_path", "")
	v.SetDefault("db_themes_path", "")
	v.SetDefault("db_busy_timeout", "5s")
	v.SetDefault("db_log_queries", false)

	// Auth defaults
	v.SetDefault("jwt_secret", DefaultJWTSecret)
	v.SetDefault("jwt_expire", "168h")           // 7 days
	v.SetDefault("jwt_refresh_expire", "720h")   // 30 days
	v.SetDefault("auth_bcrypt_cost", 10)         // bcrypt cost factor
	v.SetDefault("auth_token_store", "database") // database or redis
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// Media storage defaults
	v.SetDefault("media_storage", "local")
	v.SetDefault("media_local_dir", "./uploads")
	v.SetDefault("media_max_upload_size", 50<<20)
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_region", "auto")
	v.SetDefault("s3_access_key_id", "")
	v.SetDefault("s3_secret_access_key", "")

	// Scheduler defaults
	v.SetDefault("notifications_enabled", true)
	v.SetDefault("notifications_dispatch_schedule", "* * * * *")
	v.SetDefault("notifications_reminder_schedule", "* * * * *")
	v.SetDefault("reconcile_schedule", "30 3 * * *") // Daily at 03:30
	v.SetDefault("reconnect_schedule", "* * * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_db_path", "")
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("seed_admin_username", "admin")
	v.SetDefault("seed_admin_email", "admin@mymotiv.com")
	v.SetDefault("seed_admin_password", DefaultAdminPassword)

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	dataDir := v.GetString("DB_DATA_DIR")
	tasksDB := v.GetString("TASK_DB_PATH")
	if tasksDB == "" {
		tasksDB = filepath.Join(dataDir, DatabaseFilePrefix+"tasks.db")
	}

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
			Environment:              v.GetString("ENVIRONMENT"),
		},
		Databases: Databases{
			DataDir:        dataDir,
			AuthPath:       domainPath(v, "DB_AUTH_PATH", "auth", dataDir),
			QuotesPath:     domainPath(v, "DB_QUOTES_PATH", "quotes", dataDir),
			CategoriesPath: domainPath(v, "DB_CATEGORIES_PATH", "categories", dataDir),
			MediaPath:      domainPath(v, "DB_MEDIA_PATH", "media", dataDir),
			NotifyPath:     domainPath(v, "DB_NOTIFICATIONS_PATH", "notifications", dataDir),
			ThemesPath:     domainPath(v, "DB_THEMES_PATH", "themes", dataDir),
			BusyTimeout:    v.GetDuration("DB_BUSY_TIMEOUT"),
			LogQueries:     v.GetBool("DB_LOG_QUERIES"),
		},
		Auth: Auth{
			JWTSecret:          v.GetString("JWT_SECRET"),
			AccessTokenExpiry:  v.GetDuration("JWT_EXPIRE"),
			RefreshTokenExpiry: v.GetDuration("JWT_REFRESH_EXPIRE"),
			BcryptCost:         v.GetInt("AUTH_BCRYPT_COST"),
			TokenStore:         TokenStoreBackend(v.GetString("AUTH_TOKEN_STORE")),
			MaxLoginAttempts:   v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:    v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:    v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Media: Media{
			Storage:       MediaStorageBackend(v.GetString("MEDIA_STORAGE")),
			LocalDir:      v.GetString("MEDIA_LOCAL_DIR"),
			MaxUploadSize: v.GetInt64("MEDIA_MAX_UPLOAD_SIZE"),
			S3Bucket:      v.GetString("S3_BUCKET"),
			S3Endpoint:    v.GetString("S3_ENDPOINT"),
			S3Region:      v.GetString("S3_REGION"),
			S3AccessKey:   v.GetString("S3_ACCESS_KEY_ID"),
			S3SecretKey:   v.GetString("S3_SECRET_ACCESS_KEY"),
		},
		Notifications: Notifications{
			Enabled:           v.GetBool("NOTIFICATIONS_ENABLED"),
			DispatchSchedule:  v.GetString("NOTIFICATIONS_DISPATCH_SCHEDULE"),
			ReminderSchedule:  v.GetString("NOTIFICATIONS_REMINDER_SCHEDULE"),
			ReconcileSchedule: v.GetString("RECONCILE_SCHEDULE"),
			ReconnectSchedule: v.GetString("RECONNECT_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DBPath:            tasksDB,
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Seed: Seed{
			AdminUsername: v.GetString("SEED_ADMIN_USERNAME"),
			AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
		},
	}
}
