package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Store drivers.
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)

	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	RedisURI      string // optional; empty disables the weather cache and Redis rate limiting
	PostgresURI   string // optional; empty disables the login audit log

	KafkaBrokers       []string // optional; empty disables feedback events
	KafkaFeedbackTopic string

	JWTSecret         string
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	WeatherBaseURL   string
	WeatherLatitude  float64
	WeatherLongitude float64
	WeatherTimeout   time.Duration
	WeatherCacheTTL  time.Duration

	RecentWindowDays int
	ExportLocation   *time.Location // date/time columns of the CSV export
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:3000"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	weatherCacheTTL, err := parseDuration("WEATHER_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	latitude, err := parseFloat("WEATHER_LATITUDE", "9.3468229")
	if err != nil {
		return nil, err
	}
	longitude, err := parseFloat("WEATHER_LONGITUDE", "-65.3365034")
	if err != nil {
		return nil, err
	}
	exportLocation, err := time.LoadLocation(getEnv("EXPORT_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid EXPORT_TIMEZONE: %w", err)
	}
	recentDays, err := strconv.Atoi(getEnv("RECENT_WINDOW_DAYS", "7"))
	if err != nil || recentDays <= 0 {
		return nil, errors.New("invalid RECENT_WINDOW_DAYS")
	}

	cfg := &Config{
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: allowedOrigins,

		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:      getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		MongoDatabase: getEnv("MONGODB_DATABASE", "universidad-clima"),
		RedisURI:      os.Getenv("REDIS_URI"),
		PostgresURI:   os.Getenv("POSTGRES_URI"),

		KafkaBrokers:       parseList(os.Getenv("KAFKA_BROKERS")),
		KafkaFeedbackTopic: getEnv("KAFKA_FEEDBACK_TOPIC", "feedback-submitted"),

		JWTSecret:         getEnv("JWT_SECRET", DefaultJWTSecret),
		AdminUsername:     os.Getenv("ADMIN_USERNAME"),
		AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		WeatherBaseURL:   getEnv("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherLatitude:  latitude,
		WeatherLongitude: longitude,
		WeatherTimeout:   weatherTimeout,
		WeatherCacheTTL:  weatherCacheTTL,

		RecentWindowDays: recentDays,
		ExportLocation:   exportLocation,
	}

	if cfg.StoreDriver != StoreMongo && cfg.StoreDriver != StoreMemory {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want %s or %s", cfg.StoreDriver, StoreMongo, StoreMemory)
	}
	if cfg.IsProduction() && cfg.JWTSecret == DefaultJWTSecret {
		return nil, errors.New("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

// AdminSecret returns the configured admin password or hash, preferring the hash.
func (c *Config) AdminSecret() string {
	if c.AdminPasswordHash != "" {
		return c.AdminPasswordHash
	}
	return c.AdminPassword
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseFloat(key, def string) (float64, error) {
	f, err := strconv.ParseFloat(getEnv(key, def), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return f, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
