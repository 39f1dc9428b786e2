package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

// Config describes an authenticated SMTP relay.
type Config struct {
	Host     string
	Port     int
	TLS      bool
	User     string
	Password string

	// Timeout bounds the whole session, dial included. Zero means no limit.
	Timeout time.Duration
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSubmitter submits messages over SMTP. With TLS set it dials implicit
// TLS; otherwise it upgrades with STARTTLS when the server offers it.
type SMTPSubmitter struct {
	cfg      Config
	sendMail sendMailFunc
}

// NewSMTPSubmitter creates a submitter for cfg.
func NewSMTPSubmitter(cfg Config) *SMTPSubmitter {
	s := &SMTPSubmitter{cfg: cfg}
	s.sendMail = s.send
	return s
}

// Submit sends msg and returns the Message-ID written by the composer.
func (s *SMTPSubmitter) Submit(ctx context.Context, env Envelope, msg []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var auth smtp.Auth
	if s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	}
	if err := s.sendMail(s.cfg.addr(), auth, env.From, env.Recipients, msg); err != nil {
		return "", err
	}
	return env.MessageID, nil
}

func (s *SMTPSubmitter) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: s.cfg.Host, MinVersion: tls.VersionTLS12}
}

// dial opens the connection and applies the session deadline.
func (s *SMTPSubmitter) dial(addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.TLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, s.tlsConfig())
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	if s.cfg.Timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(s.cfg.Timeout)); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set SMTP deadline: %w", err)
		}
	}
	return conn, nil
}

func (s *SMTPSubmitter) send(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	conn, err := s.dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !s.cfg.TLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(s.tlsConfig()); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send data command: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}
	return client.Quit()
}
