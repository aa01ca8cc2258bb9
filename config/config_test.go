package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SALT_ROUND", "")
	t.Setenv("JWT_REFRESH_TTL_HOURS", "")
	t.Setenv("PASSWORD_RESET_TTL_MINUTES", "")

	LoadConfig()

	assert.Equal(t, "3000", AppConfig.Port)
	assert.Equal(t, "postgres", AppConfig.DBDriver)
	assert.Equal(t, 10, AppConfig.SaltRound)
	assert.Equal(t, "*/5 * * * *", AppConfig.ReleaseCron)
	assert.Equal(t, 168, AppConfig.JWTRefreshTTLHours)
	assert.Equal(t, 60, AppConfig.ResetTTLMinutes)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_TTL_HOURS", "2")

	LoadConfig()

	assert.Equal(t, "8080", AppConfig.Port)
	assert.Equal(t, "sqlite", AppConfig.DBDriver)
	assert.Equal(t, 2, AppConfig.JWTTTLHours)
}

func TestGetEnvIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("SALT_ROUND", "many")
	assert.Equal(t, 10, getEnvInt("SALT_ROUND", 10))
}
