package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig
	DB        DatabaseConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Audit     AuditConfig
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	Environment        string
	HTTPPort           string
	ShutdownTimeoutSec int
	CORSOrigins        []string
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
}

// RedisConfig holds configuration for Redis. When disabled, the
// service falls back to the in-memory cache and skips rate limiting.
type RedisConfig struct {
	Enabled     bool
	Host        string
	Port        string
	Password    string
	DB          int
	MaxRetries  int
	PoolSize    int
	MinIdleConn int
	CacheTTLSec int
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
}

// RateLimitConfig holds configuration for the token bucket limiter
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	Burst             int
}

// AuthConfig holds configuration for bearer-token authentication.
// APIKeyHash is the bcrypt hash of the API key exchanged for tokens.
type AuthConfig struct {
	Enabled        bool
	APIKeyHash     string
	TokenSecret    string
	TokenTTLMinute int
}

// AuditConfig holds configuration for the audit trail
type AuditConfig struct {
	Enabled   bool
	Workers   int
	QueueSize int
	BusBuffer int
}

// Load reads configuration from an app.env file in path and from
// environment variables, with env taking precedence.
func Load(path string) (*Config, error) {
	setDefaults()

	viper.AddConfigPath(path)
	viper.SetConfigName("app") // Look for app.env
	viper.SetConfigType("env")

	viper.AutomaticEnv() // Read from environment variables

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	return fromViper(), nil
}

// Watch re-reads the config file on change and hands the fresh Config
// to onChange. Intended for runtime-adjustable settings such as the
// log level; connection settings require a restart.
func (c *Config) Watch(onChange func(*Config)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		onChange(fromViper())
	})
	viper.WatchConfig()
}

// fromViper populates a Config from the current viper state
func fromViper() *Config {
	var config Config

	config.App.Environment = viper.GetString("APP_ENV")
	config.App.HTTPPort = viper.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSec = viper.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.CORSOrigins = splitAndTrim(viper.GetString("CORS_ALLOWED_ORIGINS"))

	config.DB.Host = viper.GetString("DB_HOST")
	config.DB.Port = viper.GetString("DB_PORT")
	config.DB.User = viper.GetString("DB_USER")
	config.DB.Password = viper.GetString("DB_PASSWORD")
	config.DB.Name = viper.GetString("DB_NAME")
	config.DB.SSLMode = viper.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = viper.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = viper.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = viper.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTime = viper.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")

	config.Redis.Enabled = viper.GetBool("REDIS_ENABLED")
	config.Redis.Host = viper.GetString("REDIS_HOST")
	config.Redis.Port = viper.GetString("REDIS_PORT")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.MaxRetries = viper.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = viper.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = viper.GetInt("REDIS_MIN_IDLE_CONNS")
	config.Redis.CacheTTLSec = viper.GetInt("CACHE_TTL_SECONDS")

	config.Logger.Level = viper.GetString("LOG_LEVEL")
	config.Logger.Format = viper.GetString("LOG_FORMAT")
	config.Logger.OutputPath = viper.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = viper.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = viper.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = viper.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = viper.GetString("SERVICE_VERSION")

	config.RateLimit.Enabled = viper.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerMinute = viper.GetInt("RATE_LIMIT_REQUESTS_PER_MINUTE")
	config.RateLimit.Burst = viper.GetInt("RATE_LIMIT_BURST")

	config.Auth.Enabled = viper.GetBool("AUTH_ENABLED")
	config.Auth.APIKeyHash = viper.GetString("AUTH_API_KEY_HASH")
	config.Auth.TokenSecret = viper.GetString("AUTH_TOKEN_SECRET")
	config.Auth.TokenTTLMinute = viper.GetInt("AUTH_TOKEN_TTL_MINUTES")

	config.Audit.Enabled = viper.GetBool("AUDIT_ENABLED")
	config.Audit.Workers = viper.GetInt("AUDIT_WORKERS")
	config.Audit.QueueSize = viper.GetInt("AUDIT_QUEUE_SIZE")
	config.Audit.BusBuffer = viper.GetInt("AUDIT_BUS_BUFFER")

	return &config
}

func setDefaults() {
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "user_service")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)

	viper.SetDefault("REDIS_ENABLED", false)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	viper.SetDefault("CACHE_TTL_SECONDS", 300)

	// Logger defaults
	env := viper.GetString("APP_ENV")
	if env == "production" {
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "json")
		viper.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		viper.SetDefault("LOG_LEVEL", "debug")
		viper.SetDefault("LOG_FORMAT", "console")
		viper.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	viper.SetDefault("LOG_OUTPUT_PATH", "stdout")
	viper.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	viper.SetDefault("SERVICE_NAME", "http-user-service")
	viper.SetDefault("SERVICE_VERSION", "1.0.0")

	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS_PER_MINUTE", 120)
	viper.SetDefault("RATE_LIMIT_BURST", 20)

	viper.SetDefault("AUTH_ENABLED", false)
	viper.SetDefault("AUTH_TOKEN_TTL_MINUTES", 15)

	viper.SetDefault("AUDIT_ENABLED", true)
	viper.SetDefault("AUDIT_WORKERS", 2)
	viper.SetDefault("AUDIT_QUEUE_SIZE", 256)
	viper.SetDefault("AUDIT_BUS_BUFFER", 256)
}

// Validate checks configuration consistency before anything connects
func (c *Config) Validate() error {
	if c.App.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}
	if c.DB.Host == "" || c.DB.Name == "" {
		return fmt.Errorf("DB_HOST and DB_NAME are required")
	}
	if c.DB.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.DB.MaxOpenConns)
	}
	if c.RateLimit.Enabled && !c.Redis.Enabled {
		return fmt.Errorf("RATE_LIMIT_ENABLED requires REDIS_ENABLED")
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive, got %d", c.RateLimit.RequestsPerMinute)
	}
	if c.Auth.Enabled {
		if c.Auth.APIKeyHash == "" {
			return fmt.Errorf("AUTH_API_KEY_HASH is required when AUTH_ENABLED")
		}
		if c.Auth.TokenSecret == "" {
			return fmt.Errorf("AUTH_TOKEN_SECRET is required when AUTH_ENABLED")
		}
	}
	if c.Audit.Enabled && c.Audit.Workers < 1 {
		return fmt.Errorf("AUDIT_WORKERS must be positive, got %d", c.Audit.Workers)
	}
	return nil
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

// splitAndTrim turns a comma-separated env value into a clean slice
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
