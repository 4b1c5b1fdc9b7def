package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	DB       DBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	JWT      JWTConfig
	Worker   WorkerConfig
	CORS     CORSConfig
	Log      LogConfig
}

type DBConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Host          string
	Port          string
	RedisPassword string
	RedisDB       string
	TTL           time.Duration
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

type JWTConfig struct {
	Secret string
}

type WorkerConfig struct {
	Count       int
	MetricsPort string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn("Failed to parse .env file")
	}

	cfg := &Config{
		AppName: getEnv("APP_NAME", "job-tracker"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("PORT", getEnv("APP_PORT", "8080")),

		DB: DBConfig{
			URL:      os.Getenv("DB_URL"),
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getBoolEnv("DB_AUTO_MIGRATE", true),
		},

		Redis: RedisConfig{
			Host:          os.Getenv("REDIS_HOST"),
			Port:          getEnv("REDIS_PORT", "6379"),
			RedisPassword: os.Getenv("REDIS_PASSWORD"),
			RedisDB:       getEnv("REDIS_DB", "0"),
			TTL:           getDurationEnv("CACHE_TTL", 5*time.Minute),
		},

		RabbitMQ: RabbitMQConfig{
			URL:   os.Getenv("RABBITMQ_URL"),
			Queue: getEnv("EVENTS_QUEUE", "job_events"),
		},

		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", os.Getenv("SECRET")),
		},

		Worker: WorkerConfig{
			Count:       getIntEnv("WORKER_COUNT", 3),
			MetricsPort: getEnv("WORKER_METRICS_PORT", "8088"),
		},

		CORS: CORSConfig{
			AllowedOrigins: getStringSliceEnv("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},

		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the settings shared by every binary.
func (c *Config) Validate() error {
	if c.DB.URL == "" && c.DB.Host == "" {
		return errors.New("DB_URL or DB_HOST is required")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.Worker.Count)
	}
	return nil
}

// ValidateAPI checks the settings only the HTTP server needs.
func (c *Config) ValidateAPI() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET (or SECRET) is required")
	}
	return nil
}

// ValidateWorker checks the settings only the event worker needs.
func (c *Config) ValidateWorker() error {
	if !c.RabbitMQ.Enabled() {
		return errors.New("RABBITMQ_URL is required")
	}
	return nil
}

// DSN returns DB_URL when set, otherwise a URL assembled from the parts.
func (d DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		logrus.Warnf("Invalid integer for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
