// Package config loads backend credentials from the environment, an optional
// .env file and an optional YAML file. Environment variables always win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultIMAPPort    = 993
	defaultSMTPPort    = 587
	defaultToolTimeout = 60 * time.Second

	// TransportSMTP and TransportSES select the relay submitter.
	TransportSMTP = "smtp"
	TransportSES  = "ses"
)

// ErrNoBackend is returned when none of the three backends is configured.
var ErrNoBackend = errors.New("no mail backend configured: set GMAIL_*, IMAP_* or SMTP_* variables")

// Config holds the application configuration
type Config struct {
	Gmail       GmailConfig   `yaml:"gmail"`
	IMAP        IMAPConfig    `yaml:"imap"`
	SMTP        SMTPConfig    `yaml:"smtp"`
	LogLevel    string        `yaml:"log_level"`
	ToolTimeout time.Duration `yaml:"tool_timeout"`
}

// GmailConfig holds the REST backend's OAuth2 client credentials.
type GmailConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	AccessToken  string `yaml:"access_token"`
	User         string `yaml:"user"`
}

// IMAPConfig holds the mailbox backend's server and account.
type IMAPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Mailbox  string `yaml:"mailbox"`
}

// SMTPConfig holds the relay backend. With Transport "ses" the message is
// submitted through AWS SES instead of an SMTP session.
type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	TLS       bool   `yaml:"tls"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	From      string `yaml:"from"`
	Transport string `yaml:"transport"`

	SESRegion          string `yaml:"ses_region"`
	SESAccessKeyID     string `yaml:"ses_access_key_id"`
	SESSecretAccessKey string `yaml:"ses_secret_access_key"`
}

// GmailConfigured reports whether the REST backend can be initialised.
func (c *Config) GmailConfigured() bool {
	return c.Gmail.ClientID != "" && c.Gmail.ClientSecret != "" && c.Gmail.RefreshToken != ""
}

// IMAPConfigured reports whether the mailbox backend can be initialised.
func (c *Config) IMAPConfigured() bool {
	return c.IMAP.Host != "" && c.IMAP.User != "" && c.IMAP.Password != ""
}

// SMTPConfigured reports whether the relay backend can be initialised.
func (c *Config) SMTPConfigured() bool {
	if c.SMTP.Transport == TransportSES {
		return c.SMTP.From != ""
	}
	return c.SMTP.Host != "" && c.SMTP.User != ""
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()
	return load(keyringSecret)
}

func load(secret SecretFunc) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	if path := os.Getenv("MAIL_ROUTER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnvVars(); err != nil {
		return nil, err
	}
	if err := cfg.resolveSecrets(secret); err != nil {
		return nil, err
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.User
	}
	if cfg.Gmail.User == "" {
		cfg.Gmail.User = "me"
	}
	if cfg.IMAP.Mailbox == "" {
		cfg.IMAP.Mailbox = "INBOX"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.IMAP.Port = defaultIMAPPort
	c.IMAP.TLS = true
	c.SMTP.Port = defaultSMTPPort
	c.SMTP.Transport = TransportSMTP
	c.LogLevel = "INFO"
	c.ToolTimeout = defaultToolTimeout
}

// applyEnvVars overrides configuration with non-empty environment variables.
func (c *Config) applyEnvVars() error {
	strs := []struct {
		key string
		dst *string
	}{
		{"GMAIL_CLIENT_ID", &c.Gmail.ClientID},
		{"GMAIL_CLIENT_SECRET", &c.Gmail.ClientSecret},
		{"GMAIL_REFRESH_TOKEN", &c.Gmail.RefreshToken},
		{"GMAIL_ACCESS_TOKEN", &c.Gmail.AccessToken},
		{"GMAIL_USER", &c.Gmail.User},
		{"IMAP_HOST", &c.IMAP.Host},
		{"IMAP_USER", &c.IMAP.User},
		{"IMAP_PASSWORD", &c.IMAP.Password},
		{"IMAP_MAILBOX", &c.IMAP.Mailbox},
		{"SMTP_HOST", &c.SMTP.Host},
		{"SMTP_USER", &c.SMTP.User},
		{"SMTP_PASSWORD", &c.SMTP.Password},
		{"SMTP_FROM", &c.SMTP.From},
		{"SMTP_TRANSPORT", &c.SMTP.Transport},
		{"SES_REGION", &c.SMTP.SESRegion},
		{"SES_ACCESS_KEY_ID", &c.SMTP.SESAccessKeyID},
		{"SES_SECRET_ACCESS_KEY", &c.SMTP.SESSecretAccessKey},
		{"LOG_LEVEL", &c.LogLevel},
	}
	for _, s := range strs {
		if v := os.Getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"IMAP_PORT", &c.IMAP.Port},
		{"SMTP_PORT", &c.SMTP.Port},
	}
	for _, i := range ints {
		if v := os.Getenv(i.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be a number, got %q", i.key, v)
			}
			*i.dst = n
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"IMAP_TLS", &c.IMAP.TLS},
		{"SMTP_TLS", &c.SMTP.TLS},
	}
	for _, b := range bools {
		if v := os.Getenv(b.key); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s must be true or false, got %q", b.key, v)
			}
			*b.dst = parsed
		}
	}

	if v := os.Getenv("TOOL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOOL_TIMEOUT must be a duration, got %q", v)
		}
		c.ToolTimeout = d
	}

	c.SMTP.Transport = strings.ToLower(c.SMTP.Transport)
	c.LogLevel = strings.ToUpper(c.LogLevel)
	return nil
}

func (c *Config) resolveSecrets(secret SecretFunc) error {
	for _, dst := range []*string{
		&c.Gmail.ClientSecret,
		&c.Gmail.RefreshToken,
		&c.Gmail.AccessToken,
		&c.IMAP.Password,
		&c.SMTP.Password,
		&c.SMTP.SESSecretAccessKey,
	} {
		v, err := resolve(*dst, secret)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func (c *Config) validate() error {
	for name, port := range map[string]int{"IMAP_PORT": c.IMAP.Port, "SMTP_PORT": c.SMTP.Port} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%s out of range: %d", name, port)
		}
	}
	if c.SMTP.Transport != TransportSMTP && c.SMTP.Transport != TransportSES {
		return fmt.Errorf("SMTP_TRANSPORT must be %q or %q, got %q", TransportSMTP, TransportSES, c.SMTP.Transport)
	}
	if c.ToolTimeout <= 0 {
		return fmt.Errorf("TOOL_TIMEOUT must be positive, got %s", c.ToolTimeout)
	}
	if !c.GmailConfigured() && !c.IMAPConfigured() && !c.SMTPConfigured() {
		return ErrNoBackend
	}
	// SMTP_FROM falls back to SMTP_USER, which is not always an address.
	if c.SMTPConfigured() {
		if _, err := mail.ParseAddress(c.SMTP.From); err != nil {
			return fmt.Errorf("SMTP_FROM must be an email address, got %q", c.SMTP.From)
		}
	}
	return nil
}
