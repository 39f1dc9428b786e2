// Package imap is the mailbox-stream adapter. It searches, flags and fetches
// messages over a single IMAP session and has no transmission capability.
package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// Config describes the mailbox server and account.
type Config struct {
	Host     string
	Port     int
	TLS      bool
	User     string
	Password string
	Mailbox  string

	// Timeout bounds the dial and each command. Zero means no limit.
	Timeout time.Duration
}

func (c Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Backend is the part of *client.Client the adapter drives.
type Backend interface {
	State() imap.ConnState
	Select(name string, readOnly bool) (*imap.MailboxStatus, error)
	UidSearch(criteria *imap.SearchCriteria) ([]uint32, error)
	UidFetch(seqset *imap.SeqSet, items []imap.FetchItem, ch chan *imap.Message) error
	UidStore(seqset *imap.SeqSet, item imap.StoreItem, value interface{}, ch chan *imap.Message) error
	Logout() error
}

// Client implements the StreamMailbox provider. One command runs at a time.
type Client struct {
	mu       sync.Mutex
	backend  Backend
	dial     func() (Backend, error)
	username string
	mailbox  string
}

// NewClient connects and logs in.
func NewClient(cfg Config) (*Client, error) {
	dial := func() (Backend, error) { return connect(cfg) }
	b, err := dial()
	if err != nil {
		return nil, err
	}
	c := NewClientWithBackend(b, cfg.User)
	c.dial = dial
	if cfg.Mailbox != "" {
		c.mailbox = cfg.Mailbox
	}
	return c, nil
}

// NewClientWithBackend wraps an already authenticated session. The session
// is not re-dialled if it drops.
func NewClientWithBackend(b Backend, username string) *Client {
	return &Client{backend: b, username: username, mailbox: "INBOX"}
}

func connect(cfg Config) (Backend, error) {
	tlsConfig := &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12}

	dialer := &net.Dialer{Timeout: cfg.Timeout}

	var (
		c   *client.Client
		err error
	)
	if cfg.TLS {
		c, err = client.DialWithDialerTLS(dialer, cfg.addr(), tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, cfg.addr())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	c.Timeout = cfg.Timeout

	if !cfg.TLS {
		if ok, _ := c.SupportStartTLS(); ok {
			if err := c.StartTLS(tlsConfig); err != nil {
				c.Logout()
				return nil, fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if err := c.Login(cfg.User, cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	return c, nil
}

func (c *Client) Kind() provider.Kind { return provider.StreamMailbox }

// Close logs out of the session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.backend != nil {
		return c.backend.Logout()
	}
	return nil
}

// GetUsername returns the authenticated username.
func (c *Client) GetUsername() string {
	return c.username
}

// selectMailbox returns a live session with the configured mailbox selected,
// re-dialling once if the server closed the previous one. Caller must hold c.mu.
func (c *Client) selectMailbox(ctx context.Context) (Backend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.backend.State() == imap.LogoutState && c.dial != nil {
		b, err := c.dial()
		if err != nil {
			return nil, fmt.Errorf("reconnect: %w", err)
		}
		c.backend = b
	}
	if _, err := c.backend.Select(c.mailbox, false); err != nil {
		return nil, fmt.Errorf("failed to select folder %s: %w", c.mailbox, err)
	}
	return c.backend, nil
}

func parseUID(messageID string) (*imap.SeqSet, error) {
	uid, err := strconv.ParseUint(messageID, 10, 32)
	if err != nil || uid == 0 {
		return nil, fmt.Errorf("invalid email ID format: %q", messageID)
	}
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(uid))
	return seqSet, nil
}
