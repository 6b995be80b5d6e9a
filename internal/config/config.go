package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Logging   LoggingConfig
	Server    ServerConfig
	Static    StaticConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Backup    BackupConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int `validate:"gte=1,lte=65535"`
}

// StorageConfig describes the backing document store. The whole dataset
// lives in one object: Container/Blob for azure mode, LocalBasePath/
// FileName for local mode.
type StorageConfig struct {
	// Mode selects the driver: "local" or "azure"
	Mode string `validate:"oneof=local azure"`
	// LocalBasePath is the directory holding the document in local mode
	LocalBasePath string
	// FileName is the document file name in local mode
	FileName string
	// ConnectionString authenticates against Azure Blob Storage
	ConnectionString string
	// AccountURL is the storage account endpoint used with Entra ID
	// (DefaultAzureCredential) when no connection string is supplied
	AccountURL string
	// Container is the blob container holding the document
	Container string
	// Blob is the object key of the document
	Blob string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout  int
	WriteTimeout int
}

// StaticConfig configures the single-page-app fallback for unmatched
// non-API routes.
type StaticConfig struct {
	Dir string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the per-IP rate limit
	RequestsPerMinute int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting
	WhitelistPaths []string
}

// BackupConfig controls scheduled dataset snapshots.
type BackupConfig struct {
	Enabled bool
	// CronExpr follows robfig/cron format, e.g. "@daily"
	CronExpr string
	// Prefix names snapshot objects: <prefix>-<YYYY-MM-DD>.json
	Prefix string
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

var validate = validator.New()

// Load loads configuration from file and environment variables.
// Environment variables override the optional JSON config file.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Credential is always supplied via environment in deployments
	if cfg.Storage.ConnectionString == "" {
		cfg.Storage.ConnectionString = v.GetString("AZURE_STORAGE_CONNECTION_STRING")
	}
	if cfg.Storage.AccountURL == "" {
		cfg.Storage.AccountURL = v.GetString("AZURE_STORAGE_ACCOUNT_URL")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural constraints and the storage credential.
// Azure mode without a connection string or account URL refuses to
// start rather than failing on the first request.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Storage.Mode == "azure" && c.Storage.ConnectionString == "" && c.Storage.AccountURL == "" {
		return fmt.Errorf("azure storage requires AZURE_STORAGE_CONNECTION_STRING or AZURE_STORAGE_ACCOUNT_URL")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Opportunity Tracker API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./data")
	v.SetDefault("storage.fileName", "crm-data.json")
	v.SetDefault("storage.container", "crm-data")
	v.SetDefault("storage.blob", "crm-data.json")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)

	// Static SPA fallback
	v.SetDefault("static.dir", "./public")

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Content-Disposition", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/api/health"})

	// Backup defaults
	v.SetDefault("backup.enabled", false)
	v.SetDefault("backup.cronExpr", "@daily")
	v.SetDefault("backup.prefix", "crm-backup")
}
