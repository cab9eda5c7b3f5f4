package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	AppPort  string
	LogMode  string
	Database DatabaseConfig

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr   string
	RabbitMQURL string

	OTP OTPConfig

	RequiredCategoryIDs []uint

	RateLimit RateLimitConfig

	AllowedAPIIPs []string

	SendGridAPIKey    string
	SendGridFromEmail string
	SMSAPIKey         string
}

// DatabaseConfig selects the gorm dialector and its DSN.
type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
}

// OTPConfig tunes the one-time passcode lifecycle.
type OTPConfig struct {
	MaxTry  int
	TTL     time.Duration
	Lockout time.Duration
}

// RateLimitConfig holds the two throttling scopes.
type RateLimitConfig struct {
	IPLimit     int
	IPWindow    time.Duration
	TokenLimit  int
	TokenWindow time.Duration
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=socialapp port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("ACCESS_TOKEN_TTL", "60m")
	v.SetDefault("REFRESH_TOKEN_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("OTP_MAX_TRY", 3)
	v.SetDefault("OTP_TTL", "5m")
	v.SetDefault("OTP_LOCKOUT", "1h")
	v.SetDefault("REQUIRED_CATEGORY_IDS", "1,2,3")
	v.SetDefault("RATE_LIMIT_IP", 30)
	v.SetDefault("RATE_LIMIT_IP_WINDOW", "10s")
	v.SetDefault("RATE_LIMIT_TOKEN", 1000)
	v.SetDefault("RATE_LIMIT_TOKEN_WINDOW", "60s")
	v.SetDefault("ALLOWED_API_IPS", "31.155.140.45,185.87.253.121")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("SENDGRID_FROM_EMAIL", "")
	v.SetDefault("SMS_API_KEY", "")
}

// Load reads a .env file when one exists, then resolves the configuration
// from v's defaults and the environment.
func Load(v *viper.Viper) (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	SetDefaults(v)
	v.AutomaticEnv()

	categoryIDs, err := parseUintList(v.GetString("REQUIRED_CATEGORY_IDS"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REQUIRED_CATEGORY_IDS: %w", err)
	}

	cfg := Config{
		AppPort: v.GetString("APP_PORT"),
		LogMode: v.GetString("LOG_MODE"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		OTP: OTPConfig{
			MaxTry:  v.GetInt("OTP_MAX_TRY"),
			TTL:     v.GetDuration("OTP_TTL"),
			Lockout: v.GetDuration("OTP_LOCKOUT"),
		},
		RequiredCategoryIDs: categoryIDs,
		RateLimit: RateLimitConfig{
			IPLimit:     v.GetInt("RATE_LIMIT_IP"),
			IPWindow:    v.GetDuration("RATE_LIMIT_IP_WINDOW"),
			TokenLimit:  v.GetInt("RATE_LIMIT_TOKEN"),
			TokenWindow: v.GetDuration("RATE_LIMIT_TOKEN_WINDOW"),
		},
		AllowedAPIIPs:     splitList(v.GetString("ALLOWED_API_IPS")),
		SendGridAPIKey:    v.GetString("SENDGRID_API_KEY"),
		SendGridFromEmail: v.GetString("SENDGRID_FROM_EMAIL"),
		SMSAPIKey:         v.GetString("SMS_API_KEY"),
	}

	if cfg.OTP.MaxTry < 1 {
		return Config{}, fmt.Errorf("OTP_MAX_TRY must be at least 1, got %d", cfg.OTP.MaxTry)
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.Database.Driver)
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseUintList(raw string) ([]uint, error) {
	var out []uint
	for _, part := range splitList(raw) {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, uint(n))
	}
	return out, nil
}
