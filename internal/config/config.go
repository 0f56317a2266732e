package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyEnvironment          = "environment"
	KeyDatabaseURL          = "database_url"
	KeyHTTPAddr             = "http_addr"
	KeyJWTSecret            = "jwt_secret"
	KeyJWTTTL               = "jwt_ttl"
	KeyTimezone             = "timezone"
	KeyRedisAddr            = "redis_addr"
	KeyRedisPassword        = "redis_password"
	KeyRedisDB              = "redis_db"
	KeyCacheTTL             = "cache_ttl"
	KeyAMQPURL              = "amqp_url"
	KeyTelegramToken        = "telegram_token"
	KeyTelegramAdminChatID  = "telegram_admin_chat_id"
	KeyPaymentSuccessRate   = "payment_success_rate"
	KeyBookingCodeAttempts  = "booking_code_attempts"
	KeyReconcileInterval    = "reconcile_interval"
	KeyAutoMigrate          = "auto_migrate"
	KeyRestoreSeatsOnCancel = "restore_seats_on_cancel"
	KeyCORSAllowedOrigins   = "cors_allowed_origins"
)

var envNames = map[string]string{
	KeyEnvironment:          "ENV",
	KeyDatabaseURL:          "DATABASE_URL",
	KeyHTTPAddr:             "HTTP_ADDR",
	KeyJWTSecret:            "JWT_SECRET",
	KeyJWTTTL:               "JWT_TTL",
	KeyTimezone:             "TIMEZONE",
	KeyRedisAddr:            "REDIS_ADDR",
	KeyRedisPassword:        "REDIS_PASSWORD",
	KeyRedisDB:              "REDIS_DB",
	KeyCacheTTL:             "CACHE_TTL",
	KeyAMQPURL:              "AMQP_URL",
	KeyTelegramToken:        "TELEGRAM_TOKEN",
	KeyTelegramAdminChatID:  "TELEGRAM_ADMIN_CHAT_ID",
	KeyPaymentSuccessRate:   "PAYMENT_SUCCESS_RATE",
	KeyBookingCodeAttempts:  "BOOKING_CODE_ATTEMPTS",
	KeyReconcileInterval:    "RECONCILE_INTERVAL",
	KeyAutoMigrate:          "AUTO_MIGRATE",
	KeyRestoreSeatsOnCancel: "RESTORE_SEATS_ON_CANCEL",
	KeyCORSAllowedOrigins:   "CORS_ALLOWED_ORIGINS",
}

var defaults = map[string]any{
	KeyEnvironment:          "development",
	KeyDatabaseURL:          "sqlite://boat.db",
	KeyHTTPAddr:             ":8080",
	KeyJWTTTL:               "24h",
	KeyTimezone:             "UTC",
	KeyRedisDB:              0,
	KeyCacheTTL:             "30s",
	KeyPaymentSuccessRate:   0.95,
	KeyBookingCodeAttempts:  20,
	KeyReconcileInterval:    "1h",
	KeyAutoMigrate:          true,
	KeyRestoreSeatsOnCancel: false,
	KeyCORSAllowedOrigins:   "*",
}

type Config struct {
	Environment string
	DatabaseURL string
	HTTPAddr    string

	JWTSecret string
	JWTTTL    time.Duration

	Timezone string
	Location *time.Location

	// Empty RedisAddr disables the schedule cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// Empty AMQPURL disables booking events.
	AMQPURL string

	// Empty TelegramToken disables admin notifications.
	TelegramToken       string
	TelegramAdminChatID int64

	PaymentSuccessRate   float64
	BookingCodeAttempts  int
	ReconcileInterval    time.Duration // 0 disables the background check
	AutoMigrate          bool
	RestoreSeatsOnCancel bool
	CORSAllowedOrigins   []string
}

// Load reads .env, the environment and flags (highest priority) into a Config.
// flags may be nil. A missing .env file is not an error.
func Load(flags *pflag.FlagSet) (*Config, error) {
	return LoadFile(".env", flags)
}

func LoadFile(envFile string, flags *pflag.FlagSet) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, env := range envNames {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if _, known := envNames[key]; !known || bindErr != nil {
				return
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return nil, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	cfg := &Config{
		Environment:          v.GetString(KeyEnvironment),
		DatabaseURL:          v.GetString(KeyDatabaseURL),
		HTTPAddr:             v.GetString(KeyHTTPAddr),
		JWTSecret:            v.GetString(KeyJWTSecret),
		JWTTTL:               v.GetDuration(KeyJWTTTL),
		Timezone:             v.GetString(KeyTimezone),
		RedisAddr:            v.GetString(KeyRedisAddr),
		RedisPassword:        v.GetString(KeyRedisPassword),
		RedisDB:              v.GetInt(KeyRedisDB),
		CacheTTL:             v.GetDuration(KeyCacheTTL),
		AMQPURL:              v.GetString(KeyAMQPURL),
		TelegramToken:        v.GetString(KeyTelegramToken),
		TelegramAdminChatID:  v.GetInt64(KeyTelegramAdminChatID),
		PaymentSuccessRate:   v.GetFloat64(KeyPaymentSuccessRate),
		BookingCodeAttempts:  v.GetInt(KeyBookingCodeAttempts),
		ReconcileInterval:    v.GetDuration(KeyReconcileInterval),
		AutoMigrate:          v.GetBool(KeyAutoMigrate),
		RestoreSeatsOnCancel: v.GetBool(KeyRestoreSeatsOnCancel),
		CORSAllowedOrigins:   splitList(v.GetString(KeyCORSAllowedOrigins)),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 1 {
		return fmt.Errorf("PAYMENT_SUCCESS_RATE must be within [0,1], got %v", c.PaymentSuccessRate)
	}
	if c.BookingCodeAttempts < 1 {
		return fmt.Errorf("BOOKING_CODE_ATTEMPTS must be at least 1, got %d", c.BookingCodeAttempts)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.ReconcileInterval < 0 {
		return fmt.Errorf("RECONCILE_INTERVAL must not be negative, got %s", c.ReconcileInterval)
	}
	if c.TelegramToken != "" && c.TelegramAdminChatID == 0 {
		return errors.New("TELEGRAM_ADMIN_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc
	return nil
}

// RequireJWTSecret is checked by commands that issue or verify tokens.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
