package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskroom/internal/config"
)

func TestFromViper_Defaults(t *testing.T) {
	v := config.New()
	v.Set("JWT_SECRET", "test_jwt_secret")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, 24*time.Hour, cfg.VerifyTokenExpiresIn)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "TaskRoom", cfg.MailFromName)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("JWT_EXPIRES_IN", "90m")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := config.FromViper(config.New())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "memory", cfg.DBDriver)
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiresIn)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestFromViper_Errors(t *testing.T) {
	_, err := config.FromViper(config.New())
	assert.ErrorContains(t, err, "JWT_SECRET")

	v := config.New()
	v.Set("JWT_SECRET", "s")
	v.Set("DB_DRIVER", "mongodb")
	_, err = config.FromViper(v)
	assert.ErrorContains(t, err, "DB_DRIVER")

	v = config.New()
	v.Set("JWT_SECRET", "s")
	v.Set("JWT_EXPIRES_IN", "soon")
	_, err = config.FromViper(v)
	assert.Error(t, err)
}
