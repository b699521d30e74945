package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("ENV", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.AllowDirectPasswordReset)
	assert.False(t, cfg.CloudinaryEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", " Production ")
	t.Setenv("ALLOWED_ORIGINS", "https://app.serenify.care, https://www.serenify.care,https://app.serenify.care")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("APPOINTMENT_AUTOCOMPLETE_AFTER", "0s")
	t.Setenv("ALLOW_DIRECT_PASSWORD_RESET", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://app.serenify.care", "https://www.serenify.care"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Duration(0), cfg.AppointmentAutoCompleteAge)
	assert.False(t, cfg.AllowDirectPasswordReset)
}
