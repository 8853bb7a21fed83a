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

// Config holds everything main needs to wire the server.
type Config struct {
	Port     string
	Env      string
	LogLevel string
	LogFile  string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	JWTExpire time.Duration

	CORSOrigins []string

	GCSBucket      string
	GCSCredentials string

	KafkaBrokers    []string
	KafkaOrderTopic string

	StockSweepSpec string

	SMTPHost  string
	SMTPPort  int
	EmailFrom string
	EmailPass string
}

// IsProduction reports whether internal error details must be hidden from clients.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// LoadDotEnv loads a .env file into the process environment.
// A missing file is not fatal, the caller just logs it.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         os.Getenv("LOG_FILE"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "marketplace"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		GCSBucket:       os.Getenv("GCS_BUCKET"),
		GCSCredentials:  os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "marketplace.orders"),
		StockSweepSpec:  getEnv("STOCK_SWEEP_SPEC", "@every 5m"),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		EmailFrom:       os.Getenv("EMAIL_FROM"),
		EmailPass:       os.Getenv("EMAIL_PASS"),
	}

	if cfg.MongoURI == "" {
		return Config{}, errors.New("MONGODB_URI not set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET not set")
	}

	expire, err := parseExpire(getEnv("JWT_EXPIRE", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRE: %w", err)
	}
	cfg.JWTExpire = expire

	port, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return Config{}, fmt.Errorf("SMTP_PORT: %w", err)
	}
	cfg.SMTPPort = port

	return cfg, nil
}

// parseExpire accepts Go durations plus the "30d" day form used by jsonwebtoken configs.
func parseExpire(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if strings.HasSuffix(v, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(v, "d"))
		if err != nil {
			return 0, err
		}
		if days <= 0 {
			return 0, fmt.Errorf("expiry must be positive, got %q", v)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry must be positive, got %q", v)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
