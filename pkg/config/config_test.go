package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FRONTEND_URL", "")
	t.Setenv("CORS_ORIGINS", "")
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("SHARE_CODE_TTL", "")

	cfg := Load()

	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 168*time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, 5*time.Minute, cfg.ShareCodeTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://todo.example.com/")
	t.Setenv("CORS_ORIGINS", "https://todo.example.com, http://192.168.1.10:5173/ ,")
	t.Setenv("JWT_ACCESS_EXPIRY", "2h")
	t.Setenv("REMINDER_LEAD", "not-a-duration")
	t.Setenv("APP_ENV", "Production")

	cfg := Load()

	assert.Equal(t, "https://todo.example.com", cfg.FrontendURL)
	assert.Equal(t, []string{"https://todo.example.com", "http://192.168.1.10:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWTAccessExpiry)
	assert.Equal(t, time.Hour, cfg.ReminderLead)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.OriginAllowed("http://192.168.1.10:5173/"))
	assert.False(t, cfg.OriginAllowed("https://evil.example.com"))
}

func TestWildcardOrigins(t *testing.T) {
	cfg := &Config{
		FrontendURL: "https://todo.example.com",
		CORSOrigins: []string{"*", "http://192.168.1.10:5173"},
	}

	assert.True(t, cfg.AllowsAnyOrigin())
	assert.True(t, cfg.OriginAllowed("https://evil.example"))
	assert.False(t, cfg.OriginListed("https://evil.example"))
	assert.False(t, cfg.OriginListed("*"))
	assert.False(t, cfg.OriginListed(""))
	assert.True(t, cfg.OriginListed("https://todo.example.com/"))
	assert.True(t, cfg.OriginListed("http://192.168.1.10:5173"))
}
