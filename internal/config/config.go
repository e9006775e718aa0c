package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	Auth           AuthConfig           `yaml:"auth"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	AdminBootstrap AdminBootstrapConfig `yaml:"admin_bootstrap"`
	Logging        LoggingConfig        `yaml:"logging"`
	Environment    string               `yaml:"environment"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type DatabaseConfig struct {
	URL            string `yaml:"url"`
	MaxConnections int    `yaml:"max_connections"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	JWTExpiry time.Duration `yaml:"jwt_expiry"`
	Issuer    string        `yaml:"issuer"`
}

type RateLimitConfig struct {
	PublicPerMinute int `yaml:"public_per_minute"`
	UserPerMinute   int `yaml:"user_per_minute"`
	AdminPerMinute  int `yaml:"admin_per_minute"`
	LoginPerMinute  int `yaml:"login_per_minute"`
}

type AdminBootstrapConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load builds the configuration from environment variables. When path is
// non-empty the YAML file at path is read first and environment variables
// override its values.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			MaxConnections: 25,
		},
		Auth: AuthConfig{
			JWTExpiry: 24 * time.Hour,
			Issuer:    "eventforge",
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: 60,
			UserPerMinute:   300,
			AdminPerMinute:  0,
			LoginPerMinute:  10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Environment: "development",
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("SERVER_PORT", cfg.Server.Port)
	cfg.Server.BaseURL = getEnv("SERVER_BASE_URL", cfg.Server.BaseURL)

	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxConnections = getEnvInt("DATABASE_MAX_CONNECTIONS", cfg.Database.MaxConnections)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	if hours := getEnvInt("JWT_EXPIRY_HOURS", 0); hours > 0 {
		cfg.Auth.JWTExpiry = time.Duration(hours) * time.Hour
	}
	cfg.Auth.Issuer = getEnv("JWT_ISSUER", cfg.Auth.Issuer)

	cfg.RateLimit.PublicPerMinute = getEnvInt("RATE_LIMIT_PUBLIC", cfg.RateLimit.PublicPerMinute)
	cfg.RateLimit.UserPerMinute = getEnvInt("RATE_LIMIT_USER", cfg.RateLimit.UserPerMinute)
	cfg.RateLimit.AdminPerMinute = getEnvInt("RATE_LIMIT_ADMIN", cfg.RateLimit.AdminPerMinute)
	cfg.RateLimit.LoginPerMinute = getEnvInt("RATE_LIMIT_LOGIN", cfg.RateLimit.LoginPerMinute)

	cfg.AdminBootstrap.Username = getEnv("ADMIN_USERNAME", cfg.AdminBootstrap.Username)
	cfg.AdminBootstrap.Password = getEnv("ADMIN_PASSWORD", cfg.AdminBootstrap.Password)
	cfg.AdminBootstrap.Email = getEnv("ADMIN_EMAIL", cfg.AdminBootstrap.Email)

	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = getEnv("LOG_FORMAT", cfg.Logging.Format)

	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
