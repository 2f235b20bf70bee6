package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "support-desk", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, MailProviderRelay, cfg.Mail.Provider)
	assert.Equal(t, 587, cfg.Mail.RelayPort)
	assert.Equal(t, 10, cfg.Auth.LoginRateLimit)
}

func TestLoadMailProvider(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "managed")
	t.Setenv("EMAIL_USER", "notify@example.com")
	t.Setenv("EMAIL_PASSWORD", "app-password")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MailProviderManaged, cfg.Mail.Provider)
	assert.Equal(t, "notify@example.com", cfg.Mail.Username)
}

func TestLoadRelayPort(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "relay")
	t.Setenv("SMTP_HOST", "mail.example.com")
	t.Setenv("SMTP_PORT", "465")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mail.example.com", cfg.Mail.RelayHost)
	assert.Equal(t, 465, cfg.Mail.RelayPort)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("MAIL_PROVIDER", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}
