package config_test

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Operaciones-api/pkg/config"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "secreto")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.RunMigrations)
	assert.False(t, cfg.Redis.Enabled(), "sin REDIS_ADDR la caché queda deshabilitada")
	assert.Equal(t, time.Hour, cfg.Redis.StockCacheTTL)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestFromViper_LeeStringsDeEntorno(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "secreto")
	v.Set("HTTP_PORT", "9090")
	v.Set("REDIS_ADDR", "localhost:6379")
	v.Set("STOCK_CACHE_TTL_MINUTES", "5")
	v.Set("DB_MIGRATIONS", "false")
	v.Set("OTEL_ENABLED", "true")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 5*time.Minute, cfg.Redis.StockCacheTTL)
	assert.False(t, cfg.DB.RunMigrations)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestFromViper_SinSecretoJWT(t *testing.T) {
	_, err := config.FromViper(viper.New())
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "ops", Password: "p@ss:word", DBName: "operaciones", SSLMode: "disable"}
	assert.Equal(t, "postgres://ops:p%40ss%3Aword@db:5432/operaciones?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://u:p@h:1/d"
	assert.Equal(t, "postgres://u:p@h:1/d", c.ConnectionString())
}
