package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"port" validate:"required,numeric"`
	GinMode  string `mapstructure:"gin_mode" validate:"oneof=debug release test"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	// LogFormat selects the slog handler
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`

	DBDriver     string `mapstructure:"db_driver" validate:"oneof=mysql postgres sqlite"`
	DBHost       string `mapstructure:"db_host"`
	DBPort       string `mapstructure:"db_port"`
	DBUser       string `mapstructure:"db_user"`
	DBPassword   string `mapstructure:"db_password"`
	DBName       string `mapstructure:"db_name"`
	DBSQLitePath string `mapstructure:"db_sqlite_path"`
	DBLogLevel   string `mapstructure:"db_log_level" validate:"oneof=silent error warn info"`

	SessionStore  string `mapstructure:"session_store" validate:"oneof=cookie redis"`
	SessionSecret string `mapstructure:"session_secret" validate:"required"`
	RedisHost     string `mapstructure:"redis_host"`
	RedisPort     string `mapstructure:"redis_port"`
	RedisPassword string `mapstructure:"redis_password"`

	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	JWTTTL    time.Duration `mapstructure:"jwt_ttl" validate:"gt=0"`

	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests" validate:"gt=0"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window" validate:"gt=0"`

	AdminUsername string `mapstructure:"admin_username"`
	AdminEmail    string `mapstructure:"admin_email" validate:"omitempty,email"`
	AdminPassword string `mapstructure:"admin_password"`

	// Timezone decides what "today" means for due date validation
	Timezone        string        `mapstructure:"timezone" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

var defaults = map[string]any{
	"port":                "8080",
	"gin_mode":            "debug",
	"log_level":           "info",
	"log_format":          "json",
	"db_driver":           "mysql",
	"db_host":             "localhost",
	"db_port":             "3306",
	"db_user":             "taskuser",
	"db_password":         "taskpassword",
	"db_name":             "task_management",
	"db_sqlite_path":      "tasks.db",
	"db_log_level":        "warn",
	"session_store":       "redis",
	"session_secret":      "default-secret-key-change-me",
	"redis_host":          "localhost",
	"redis_port":          "6379",
	"redis_password":      "",
	"jwt_secret":          "default-jwt-secret-change-me-0123456789",
	"jwt_ttl":             "24h",
	"rate_limit_enabled":  false,
	"rate_limit_requests": 20,
	"rate_limit_window":   "1m",
	"admin_username":      "",
	"admin_email":         "",
	"admin_password":      "",
	"timezone":            "UTC",
	"shutdown_timeout":    "15s",
}

// Load reads configuration from the environment, falling back to defaults,
// and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// RedisAddr returns host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// BootstrapAdmin reports whether an admin account should be ensured at startup.
func (c *Config) BootstrapAdmin() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}
