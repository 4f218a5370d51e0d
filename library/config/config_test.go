package config_test

import (
	"testing"
	"time"

	"github.com/Astemirdum/library-borrowing/library/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("LIBRARY_HTTP_PORT", "8090")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("KAFKA_ADDRS", "k1:9092,k2:9092")

	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	require.Equal(t, "8090", cfg.Server.Port)
	require.Equal(t, time.Minute, cfg.Server.WriteTimeout)
	require.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	require.Equal(t, zapcore.DebugLevel, cfg.Log.LogLevel)
	require.Equal(t, "s3cret", cfg.Auth.Secret)
	require.Equal(t, 168*time.Hour, cfg.Auth.ExpiresIn)
	require.False(t, cfg.Auth.SecureCookie())
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addrs)
	require.False(t, cfg.Kafka.Enable)
	require.Equal(t, "5432", cfg.Database.Port)

	require.Same(t, cfg, config.NewConfig())
}

func TestAuth_SecureCookie(t *testing.T) {
	t.Parallel()
	require.True(t, config.Auth{AppEnv: "production"}.SecureCookie())
	require.True(t, config.Auth{}.SecureCookie())
	require.False(t, config.Auth{AppEnv: "Development"}.SecureCookie())
}
