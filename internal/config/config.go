package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration, loaded from config files and
// environment variables. Environment variables take precedence.
type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTTTLHours int    `mapstructure:"JWT_TTL_HOURS"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	RedisURL string `mapstructure:"REDIS_URL"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	RateLimitAuthRPS   float64 `mapstructure:"RATE_LIMIT_AUTH_RPS"`
	RateLimitAuthBurst int     `mapstructure:"RATE_LIMIT_AUTH_BURST"`
	RateLimitAnonRPS   float64 `mapstructure:"RATE_LIMIT_ANON_RPS"`
	RateLimitAnonBurst int     `mapstructure:"RATE_LIMIT_ANON_BURST"`
}

// JWTTTL returns the configured token lifetime as a duration.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

// LoadConfig reads config.yml (searched upward from the working directory),
// merges an environment-specific profile when ENV is set, and overlays
// environment variables on top.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Info("No config file found, using environment and defaults")
	}

	env := v.GetString("ENV")
	if env != "" && env != "development" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("merge %s config: %w", env, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8480")
	v.SetDefault("ENV", "development")

	v.SetDefault("JWT_SECRET", "dev-secret-change-in-production")
	v.SetDefault("JWT_TTL_HOURS", 24)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ripple")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_URL", "localhost:6379")

	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("RATE_LIMIT_AUTH_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 30)
	v.SetDefault("RATE_LIMIT_ANON_RPS", 2.0)
	v.SetDefault("RATE_LIMIT_ANON_BURST", 10)
}

// Validate rejects configurations that are unsafe to run with. Checks are
// strict in production and advisory elsewhere.
func (c *Config) Validate() error {
	production := c.Env == "production" || c.Env == "prod"

	if production {
		if c.JWTSecret == "dev-secret-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if len(c.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "postgres" {
			return fmt.Errorf("DB_PASSWORD must not be the default in production")
		}
		if c.DBSSLMode == "disable" {
			slog.Warn("Database SSL is disabled in production")
		}
	}

	if c.RateLimitAuthRPS <= 0 || c.RateLimitAnonRPS <= 0 {
		return fmt.Errorf("rate limit refill rates must be positive")
	}
	if c.RateLimitAuthBurst < 1 || c.RateLimitAnonBurst < 1 {
		return fmt.Errorf("rate limit burst sizes must be at least 1")
	}

	// fiber's Listen wants ":8480"; accept a bare port number in config.
	if !strings.Contains(c.Port, ":") {
		c.Port = ":" + c.Port
	}
	return nil
}
