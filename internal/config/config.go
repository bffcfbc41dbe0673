package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr             string
	DatabaseURL          string
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// MailProvider selects the delivery backend: log, smtp or resend.
	MailProvider string
	MailFrom     string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ResendAPIKey string

	PollInterval   time.Duration
	MaxConcurrency int
	RetryBackoff   time.Duration
	RetryLimit     int
	LockTTL        time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:             getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:          mustGetenv("DATABASE_URL"),
		CORSAllowCredentials: getenv("CORS_ALLOW_CREDENTIALS", "false") == "true",

		MailProvider: getenv("MAIL_PROVIDER", "log"),
		MailFrom:     getenv("MAIL_FROM", getenv("MAIL_USER", "birthdays@example.com")),
		SMTPHost:     getenv("MAIL_HOST", "smtp.example.com"),
		SMTPPort:     getenvInt("MAIL_PORT", 587),
		SMTPUser:     getenv("MAIL_USER", ""),
		SMTPPassword: getenv("MAIL_PASSWORD", ""),
		ResendAPIKey: getenv("RESEND_API_KEY", ""),

		PollInterval:   getenvDuration("POLL_INTERVAL", 30*time.Minute),
		MaxConcurrency: getenvInt("MAX_CONCURRENCY", 20),
		RetryBackoff:   getenvDuration("RETRY_BACKOFF", 5*time.Minute),
		RetryLimit:     getenvInt("RETRY_LIMIT", 0),
		LockTTL:        getenvDuration("LOCK_TTL", 90*time.Minute),
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic("invalid int env " + key + ": " + v)
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic("invalid duration env " + key + ": " + v)
	}
	return d
}
