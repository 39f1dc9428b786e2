package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/rgabriel/mcp-mail-router/config"
	"github.com/rgabriel/mcp-mail-router/gmail"
	"github.com/rgabriel/mcp-mail-router/imap"
	"github.com/rgabriel/mcp-mail-router/provider"
	"github.com/rgabriel/mcp-mail-router/smtp"
)

// backends holds the adapters that initialised successfully.
type backends struct {
	adapters []provider.Adapter
	closers  []func() error
	logger   *slog.Logger
}

// newBackends initialises every configured backend. A backend that fails to
// start is logged and left out; calls routed to it report it unavailable.
func newBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) *backends {
	b := &backends{logger: logger}

	if cfg.GmailConfigured() {
		a, err := gmail.New(ctx, gmail.Config{
			ClientID:     cfg.Gmail.ClientID,
			ClientSecret: cfg.Gmail.ClientSecret,
			RefreshToken: cfg.Gmail.RefreshToken,
			AccessToken:  cfg.Gmail.AccessToken,
			User:         cfg.Gmail.User,
		})
		b.add(provider.RestMail, a, err)
	}

	if cfg.IMAPConfigured() {
		c, err := imap.NewClient(imap.Config{
			Host:     cfg.IMAP.Host,
			Port:     cfg.IMAP.Port,
			TLS:      cfg.IMAP.TLS,
			User:     cfg.IMAP.User,
			Password: cfg.IMAP.Password,
			Mailbox:  cfg.IMAP.Mailbox,
			Timeout:  cfg.ToolTimeout,
		})
		if err == nil {
			b.closers = append(b.closers, c.Close)
		}
		b.add(provider.StreamMailbox, c, err)
	}

	if cfg.SMTPConfigured() {
		c, err := newRelay(ctx, cfg.SMTP, cfg.ToolTimeout)
		b.add(provider.OutboundRelay, c, err)
	}

	return b
}

// newRelay builds the outbound relay with the configured submitter. An SMTP
// session is bounded by timeout.
func newRelay(ctx context.Context, cfg config.SMTPConfig, timeout time.Duration) (*smtp.Client, error) {
	if cfg.Transport == config.TransportSES {
		s, err := smtp.NewSESSubmitter(ctx, smtp.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return smtp.NewClient(cfg.From, s), nil
	}

	return smtp.NewClient(cfg.From, smtp.NewSMTPSubmitter(smtp.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		TLS:      cfg.TLS,
		User:     cfg.User,
		Password: cfg.Password,
		Timeout:  timeout,
	})), nil
}

// add records a constructed adapter, or logs why the backend is unavailable.
func (b *backends) add(k provider.Kind, a provider.Adapter, err error) {
	if err != nil {
		b.logger.Error("backend unavailable", "provider", k.String(), "error", err)
		return
	}
	b.adapters = append(b.adapters, a)
	b.logger.Info("backend ready", "provider", k.String())
}

func (b *backends) names() []string {
	names := make([]string, 0, len(b.adapters))
	for _, a := range b.adapters {
		names = append(names, a.Kind().String())
	}
	return names
}

// Close releases backend sessions.
func (b *backends) Close() {
	for _, c := range b.closers {
		if err := c(); err != nil {
			b.logger.Warn("failed to close backend", "error", err)
		}
	}
}
