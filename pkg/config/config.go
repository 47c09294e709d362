package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Email     EmailConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	URL         string
	MaxConns    int
	MinConns    int
	MaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type NATSConfig struct {
	URL string
}

type EmailConfig struct {
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	SMTPUseTLS    bool
	MailFrom      string
	MailTo        string
	MailToName    string
	MailerSendKey string
	DevMode       bool // print emails to logs instead of sending
}

type RateLimitConfig struct {
	ShortWindow   time.Duration
	ShortMax      int
	LongWindow    time.Duration
	LongMax       int
	EvictInterval time.Duration
}

func Load() *Config {
	smtpUser := getEnv("SMTP_USER", "")

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8000"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			URL:         getEnv("DATABASE_URL", ""),
			MaxConns:    getInt("DB_MAX_CONNS", 5),
			MinConns:    getInt("DB_MIN_CONNS", 1),
			MaxLifetime: getDuration("DB_MAX_LIFETIME", time.Hour),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		NATS: NATSConfig{
			URL: getEnv("NATS_URL", ""),
		},
		Email: EmailConfig{
			SMTPHost:      getEnv("SMTP_HOST", ""),
			SMTPPort:      getInt("SMTP_PORT", 587),
			SMTPUser:      smtpUser,
			SMTPPass:      getEnv("SMTP_PASS", ""),
			SMTPUseTLS:    getBool("SMTP_USE_TLS", true),
			MailFrom:      getEnv("MAIL_FROM", smtpUser),
			MailTo:        getEnv("MAIL_TO", "stkbarbershop@gmail.com"),
			MailToName:    getEnv("MAIL_TO_NAME", "Stk Barbershop"),
			MailerSendKey: getEnv("MAILERSEND_API_KEY", ""),
			DevMode:       getBool("EMAIL_DEV_MODE", false),
		},
		RateLimit: RateLimitConfig{
			ShortWindow:   getDuration("RATE_LIMIT_WINDOW_SHORT", 15*time.Second),
			ShortMax:      getInt("RATE_LIMIT_MAX_SHORT", 1),
			LongWindow:    getDuration("RATE_LIMIT_WINDOW_LONG", 5*time.Minute),
			LongMax:       getInt("RATE_LIMIT_MAX_LONG", 5),
			EvictInterval: getDuration("RATE_LIMIT_EVICT_INTERVAL", 10*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
