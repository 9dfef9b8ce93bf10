package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/volley?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("NUM_COURTS", "")
	t.Setenv("ALLOWED_ORIGINS", "")
	t.Setenv("ORGANIZER_EMAIL", "")
	t.Setenv("ORGANIZER_PASSWORD", "")
	t.Setenv("R2_ACCOUNT_ID", "")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 5, cfg.NumCourts)
	assert.NotEmpty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.R2Enabled())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("NUM_COURTS", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ORGANIZER_EMAIL", "org@example.com")
	t.Setenv("ORGANIZER_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 0, cfg.NumCourts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "org@example.com", cfg.OrganizerEmail)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing database url", "DATABASE_URL", ""},
		{"missing jwt key", "JWT_SECRET_KEY", ""},
		{"bad port", "SERVER_PORT", "abc"},
		{"port out of range", "SERVER_PORT", "70000"},
		{"negative courts", "NUM_COURTS", "-1"},
		{"organizer email without password", "ORGANIZER_EMAIL", "org@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
