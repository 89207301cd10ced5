package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "sqlite3")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "file:foodrescue.db", cfg.DatabaseURL)
	assert.Equal(t, 10*time.Second, cfg.TransitionTimeout)
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, 100, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DBConnLifetime)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.AllowedOrigins)
}

func TestFromEnvProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")

	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "CORS_ALLOWED_ORIGINS")

	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	t.Setenv("DB_DRIVER", "mysql")
	_, err := FromEnv()
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("TRANSITION_TIMEOUT", "soon")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "TRANSITION_TIMEOUT")

	t.Setenv("TRANSITION_TIMEOUT", "5s")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "DB_MAX_OPEN_CONNS")
}

func TestDatabaseURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "food")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "rescue")

	assert.Equal(t, "postgres://food:p%40ss@db:5432/rescue?sslmode=disable", getDatabaseURL())
}
