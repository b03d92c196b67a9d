package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SOMA_CONFIG", "PORT", "DATABASE_URL", "JWT_SECRET", "FRONTEND_URL",
		"MAIL_BACKEND", "RESEND_API_KEY", "SMTP_HOST", "SMTP_PORT",
		"ALLOWED_ORIGINS", "COOKIE_SECURE", "MINIO_ENDPOINT", "DEVELOPMENT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5050", cfg.Port)
	assert.Equal(t, MailBackendLog, cfg.Mail.Backend)
	assert.Equal(t, "https://api.resend.com/emails", cfg.Mail.ResendEndpoint)
	assert.Error(t, cfg.Validate(), "missing database url and secret must fail")
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "soma.yaml")
	body := []byte(`
port: "8080"
database_url: postgres://yaml
jwt_secret: from-yaml
allowed_origins:
  - https://soma.example
mail:
  smtp_host: smtp.example
  smtp_port: 465
`)
	require.NoError(t, os.WriteFile(path, body, 0o600))

	t.Setenv("SOMA_CONFIG", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres://yaml", cfg.DatabaseURL)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"https://soma.example"}, cfg.AllowedOrigins)
	assert.Equal(t, MailBackendSMTP, cfg.Mail.Backend)
	assert.Equal(t, 465, cfg.Mail.SMTPPort)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_ResendPreferred(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("SMTP_HOST", "smtp.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MailBackendResend, cfg.Mail.Backend)
}

func TestLoad_BadInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("SMTP_PORT", "not-a-port")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := Defaults()
	cfg.DatabaseURL = "postgres://x"
	cfg.JWTSecret = "s"
	cfg.Mail.Backend = "pigeon"

	assert.ErrorContains(t, cfg.Validate(), "pigeon")
}

func TestValidate_LogBackendOnlyInDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DEVELOPMENT", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, MailBackendLog, cfg.Mail.Backend)
	assert.ErrorContains(t, cfg.Validate(), "no mail backend configured")

	cfg.Mail.Backend = MailBackendLog
	assert.Error(t, cfg.Validate(), "explicit log backend outside development")

	cfg.Development = true
	assert.NoError(t, cfg.Validate())
}
