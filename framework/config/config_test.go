package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-laravel-db/framework/config"
)

// unsetForTest removes key from the environment and restores it afterwards.
func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetForTest(t, "APP_NAME", "APP_ENV", "APP_PORT", "DB_DRIVER", "DB_DSN", "DB_MODELS", "DB_LAZY_CONNECT")

	cfg, err := config.Load("testdata/missing.env")
	require.NoError(t, err)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"App.Name", cfg.App.Name, "GoLaravel"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Port", cfg.App.Port, "8000"},
		{"App.Debug", cfg.App.Debug, true},
		{"App.ShutdownTimeout", cfg.App.ShutdownTimeout, 10 * time.Second},
		{"DB.Driver", cfg.DB.Driver, "sqlite3"},
		{"DB.DSN", cfg.DB.DSN, "database.sqlite"},
		{"DB.LazyConnect", cfg.DB.LazyConnect, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.Empty(t, cfg.DB.Models)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_DSN", "postgres://localhost/app")
	t.Setenv("DB_MODELS", "user:users,post:posts")
	t.Setenv("DB_LAZY_CONNECT", "true")
	t.Setenv("DB_CONN_MAX_LIFETIME", "5m")

	cfg, err := config.Load("testdata/missing.env")
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, "postgres://localhost/app", cfg.DB.DSN)
	assert.Equal(t, map[string]string{"user": "users", "post": "posts"}, cfg.DB.Models)
	assert.True(t, cfg.DB.LazyConnect)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
}

func TestLoad_ReadsDotenvFile(t *testing.T) {
	unsetForTest(t, "APP_NAME", "DB_DRIVER", "DB_MODELS")

	cfg, err := config.Load("testdata/app.env")
	require.NoError(t, err)

	assert.Equal(t, "FromDotenv", cfg.App.Name)
	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.Equal(t, "users", cfg.DB.Models["user"])
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	_, err := config.Load("testdata/missing.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing env config")
}
