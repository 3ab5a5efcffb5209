package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the runtime configuration of the API and its tools.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string

	DBDriver    string
	DatabaseDSN string

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL string

	RedisURL            string
	LeaderboardCacheTTL time.Duration

	UploadDir      string
	UploadMaxBytes int64

	CORSOrigins string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads an optional .env file, then environment variables on top of
// the defaults below.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// SetDefaults registers every known key with its default.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "file:lostfound.db?cache=shared")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("LEADERBOARD_CACHE_TTL", "30s")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("ADMIN_NAME", "Admin")
	v.SetDefault("ADMIN_EMAIL", "admin@college.edu")
	v.SetDefault("ADMIN_PASSWORD", "admin1234")
}

// FromViper builds and validates a Config from an already populated viper.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:             v.GetString("APP_PORT"),
		AppEnv:              v.GetString("APP_ENV"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		DBDriver:            strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTTTL:              v.GetDuration("JWT_TTL"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		RedisURL:            v.GetString("REDIS_URL"),
		LeaderboardCacheTTL: v.GetDuration("LEADERBOARD_CACHE_TTL"),
		UploadDir:           v.GetString("UPLOAD_DIR"),
		UploadMaxBytes:      v.GetInt64("UPLOAD_MAX_BYTES"),
		CORSOrigins:         v.GetString("CORS_ORIGINS"),
		AdminName:           v.GetString("ADMIN_NAME"),
		AdminEmail:          v.GetString("ADMIN_EMAIL"),
		AdminPassword:       v.GetString("ADMIN_PASSWORD"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.UploadMaxBytes)
	}
	if c.LeaderboardCacheTTL < 0 {
		return fmt.Errorf("LEADERBOARD_CACHE_TTL must not be negative, got %s", c.LeaderboardCacheTTL)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}
