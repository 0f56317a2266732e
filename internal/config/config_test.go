package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, env := range envNames {
		t.Setenv(env, "")
		require.NoError(t, os.Unsetenv(env))
	}

	cfg, err := LoadFile("", nil)
	require.NoError(t, err)
	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "sqlite://boat.db", cfg.DatabaseURL)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 24*time.Hour, cfg.JWTTTL)
	require.Equal(t, 30*time.Second, cfg.CacheTTL)
	require.Equal(t, time.Hour, cfg.ReconcileInterval)
	require.Equal(t, 0.95, cfg.PaymentSuccessRate)
	require.Equal(t, 20, cfg.BookingCodeAttempts)
	require.True(t, cfg.AutoMigrate)
	require.False(t, cfg.RestoreSeatsOnCancel)
	require.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	require.Equal(t, time.UTC, cfg.Location)
	require.Error(t, cfg.RequireJWTSecret())
}

func TestLoadEnvironmentAndFlags(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://boats@localhost/boats")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("PAYMENT_SUCCESS_RATE", "1")
	t.Setenv("RECONCILE_INTERVAL", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("http-addr", ":8080", "")
	flags.String("unrelated", "", "")
	require.NoError(t, flags.Parse([]string{"--http-addr=:7070"}))

	cfg, err := LoadFile("", flags)
	require.NoError(t, err)
	require.Equal(t, "postgres://boats@localhost/boats", cfg.DatabaseURL)
	require.Equal(t, ":7070", cfg.HTTPAddr)
	require.Equal(t, 1.0, cfg.PaymentSuccessRate)
	require.Zero(t, cfg.ReconcileInterval)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	t.Cleanup(func() { _ = os.Unsetenv("JWT_SECRET") })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=from-dotenv\n"), 0o600))

	cfg, err := LoadFile(path, nil)
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.JWTSecret)
	require.NoError(t, cfg.RequireJWTSecret())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.env"), nil)
	require.NoError(t, err)
}

func TestLoadValidation(t *testing.T) {
	cases := map[string][2]string{
		"rate above one":   {"PAYMENT_SUCCESS_RATE", "1.5"},
		"zero attempts":    {"BOOKING_CODE_ATTEMPTS", "0"},
		"unknown timezone": {"TIMEZONE", "Mars/Olympus_Mons"},
		"negative ttl":     {"JWT_TTL", "-1h"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := LoadFile("", nil)
			require.Error(t, err)
		})
	}

	t.Run("telegram without chat", func(t *testing.T) {
		t.Setenv("TELEGRAM_TOKEN", "123:abc")
		t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "")
		_, err := LoadFile("", nil)
		require.Error(t, err)
	})
}
