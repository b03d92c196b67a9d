package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

const (
	MailBackendResend = "resend"
	MailBackendSMTP   = "smtp"
	MailBackendLog    = "log"
)

type Config struct {
	Port           string   `yaml:"port"`
	DatabaseURL    string   `yaml:"database_url"`
	JWTSecret      string   `yaml:"jwt_secret"`
	FrontendURL    string   `yaml:"frontend_url"`
	CookieSecure   bool     `yaml:"cookie_secure"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogLevel       string   `yaml:"log_level"`
	Development    bool     `yaml:"development"`
	SeedFile       string   `yaml:"seed_file"`

	Mail  MailConfig  `yaml:"mail"`
	Media MediaConfig `yaml:"media"`
}

type MailConfig struct {
	Backend        string `yaml:"backend"`
	From           string `yaml:"from"`
	ResendAPIKey   string `yaml:"resend_api_key"`
	ResendEndpoint string `yaml:"resend_endpoint"`
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUsername   string `yaml:"smtp_username"`
	SMTPPassword   string `yaml:"smtp_password"`
}

// MediaConfig points at an S3-compatible bucket for profile pictures. An
// empty Endpoint keeps pictures inline on the user row.
type MediaConfig struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Bucket        string `yaml:"bucket"`
	UseSSL        bool   `yaml:"use_ssl"`
	PublicBaseURL string `yaml:"public_base_url"`
}

func Defaults() Config {
	return Config{
		Port:        "5050",
		FrontendURL: "http://localhost:5173",
		AllowedOrigins: []string{
			"http://localhost:5173",
			"http://localhost:3000",
		},
		LogLevel: "info",
		SeedFile: "seeds/soma.yaml",
		Mail: MailConfig{
			From:           "SOMA <noreply@soma.campus>",
			ResendEndpoint: "https://api.resend.com/emails",
			SMTPPort:       587,
		},
		Media: MediaConfig{
			Bucket: "soma-media",
		},
	}
}

// Load reads .env.local, then the optional YAML file named by SOMA_CONFIG,
// then environment variables. Later sources win.
func Load() (Config, error) {
	_ = godotenv.Load(".env.local")

	cfg := Defaults()
	if path := os.Getenv("SOMA_CONFIG"); path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Mail.Backend = resolveMailBackend(cfg.Mail)
	return cfg, nil
}

func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is empty"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is empty"))
	}
	switch c.Mail.Backend {
	case MailBackendResend:
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is empty"))
		}
	case MailBackendSMTP:
		if c.Mail.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is empty"))
		}
	case MailBackendLog, "":
		if !c.Development {
			errs = append(errs, errors.New("no mail backend configured: set RESEND_API_KEY or SMTP_HOST, or DEVELOPMENT=true to log mail"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mail backend %q", c.Mail.Backend))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Port, "PORT")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.FrontendURL, "FRONTEND_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.SeedFile, "SEED_FILE")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Mail.Backend, "MAIL_BACKEND")
	setString(&cfg.Mail.From, "MAIL_FROM")
	setString(&cfg.Mail.ResendAPIKey, "RESEND_API_KEY")
	setString(&cfg.Mail.ResendEndpoint, "RESEND_ENDPOINT")
	setString(&cfg.Mail.SMTPHost, "SMTP_HOST")
	setString(&cfg.Mail.SMTPUsername, "SMTP_USERNAME")
	setString(&cfg.Mail.SMTPPassword, "SMTP_PASSWORD")

	setString(&cfg.Media.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Media.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Media.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Media.Bucket, "MINIO_BUCKET")
	setString(&cfg.Media.PublicBaseURL, "MEDIA_PUBLIC_URL")

	if err := setInt(&cfg.Mail.SMTPPort, "SMTP_PORT"); err != nil {
		return err
	}
	for key, dst := range map[string]*bool{
		"COOKIE_SECURE": &cfg.CookieSecure,
		"DEVELOPMENT":   &cfg.Development,
		"MINIO_USE_SSL": &cfg.Media.UseSSL,
	} {
		if err := setBool(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// resolveMailBackend prefers Resend, then SMTP, then the log backend. The
// log backend only passes Validate in development.
func resolveMailBackend(m MailConfig) string {
	if m.Backend != "" {
		return strings.ToLower(m.Backend)
	}
	switch {
	case m.ResendAPIKey != "":
		return MailBackendResend
	case m.SMTPHost != "":
		return MailBackendSMTP
	default:
		return MailBackendLog
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
