package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort int
	AppEnv     string
	LogLevel   string

	MongoURI      string
	MongoDatabase string

	SessionSecret        string
	SessionStore         string // "redis" or "memory"
	SessionTTL           time.Duration
	SessionSweepSchedule string // cron spec, used by the memory store only
	CookieSecure         bool
	CookieHTTPOnly       bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	EmailJS EmailJSConfig

	AllowedOrigins []string
}

// EmailJSConfig holds the credentials for the recovery mailer.
type EmailJSConfig struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	SenderName string
}

// ErrMissingSessionSecret is returned when SESSION_SECRET is unset.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required")

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getEnvInt("PORT", 3000)
	if err != nil {
		return nil, err
	}
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cookieSecure, err := getEnvBool("SESSION_COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}
	cookieHTTPOnly, err := getEnvBool("SESSION_COOKIE_HTTP_ONLY", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:           port,
		AppEnv:               getEnv("APP_ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		MongoURI:             getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:        getEnv("MONGO_DB", "pinpass"),
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionStore:         getEnv("SESSION_STORE", "redis"),
		SessionTTL:           ttl,
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "*/5 * * * *"),
		CookieSecure:         cookieSecure,
		CookieHTTPOnly:       cookieHTTPOnly,
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              redisDB,
		EmailJS: EmailJSConfig{
			ServiceID:  getEnv("EMAILJS_SERVICE_ID", ""),
			TemplateID: getEnv("EMAILJS_TEMPLATE_ID", ""),
			PublicKey:  getEnv("EMAILJS_PUBLIC_KEY", ""),
			PrivateKey: getEnv("EMAILJS_PRIVATE_KEY", ""),
			SenderName: getEnv("EMAILJS_SENDER_NAME", "pinpass"),
		},
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if cfg.SessionSecret == "" {
		return nil, ErrMissingSessionSecret
	}
	if cfg.SessionStore != "redis" && cfg.SessionStore != "memory" {
		return nil, fmt.Errorf("invalid SESSION_STORE %q: want redis or memory", cfg.SessionStore)
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
