// Package smtp is the outbound relay adapter. It composes MIME messages and
// hands them to a submitter: an SMTP session or the AWS SES v2 API.
package smtp

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// Envelope is the transport-level addressing of a composed message.
type Envelope struct {
	From       string
	Recipients []string
	MessageID  string
}

// Submitter delivers a composed message and returns the id the transport
// accepted it under.
type Submitter interface {
	Submit(ctx context.Context, env Envelope, msg []byte) (string, error)
}

// Client implements the OutboundRelay provider.
type Client struct {
	from   string
	submit Submitter
}

// NewClient creates a relay adapter sending as from.
func NewClient(from string, s Submitter) *Client {
	return &Client{from: from, submit: s}
}

func (c *Client) Kind() provider.Kind { return provider.OutboundRelay }

// Send composes msg and submits it. Bcc recipients receive the message but
// are not written to the header.
func (c *Client) Send(ctx context.Context, msg provider.EmailMessage) (string, error) {
	raw, env, err := Compose(c.from, msg, time.Now())
	if err != nil {
		return "", err
	}
	id, err := c.submit.Submit(ctx, env, raw)
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return id, nil
}

// Compose renders msg as a text/plain MIME message from the given sender.
func Compose(from string, msg provider.EmailMessage, now time.Time) ([]byte, Envelope, error) {
	sender, err := mail.ParseAddress(from)
	if err != nil {
		return nil, Envelope{}, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	to, err := parseList("to", msg.To)
	if err != nil {
		return nil, Envelope{}, err
	}
	cc, err := parseList("cc", msg.Cc)
	if err != nil {
		return nil, Envelope{}, err
	}
	bcc, err := parseList("bcc", msg.Bcc)
	if err != nil {
		return nil, Envelope{}, err
	}
	if len(to) == 0 {
		return nil, Envelope{}, fmt.Errorf("no recipients")
	}

	messageID := uuid.NewString() + "@" + domainOf(sender.Address)

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{sender})
	h.SetAddressList("To", to)
	if len(cc) > 0 {
		h.SetAddressList("Cc", cc)
	}
	h.SetSubject(msg.Subject)
	h.SetMessageID(messageID)
	if msg.InReplyTo != "" {
		h.Set("In-Reply-To", msg.InReplyTo)
	}
	if len(msg.References) > 0 {
		h.Set("References", strings.Join(msg.References, " "))
	}
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, Envelope{}, fmt.Errorf("failed to create message writer: %w", err)
	}
	if _, err := w.Write([]byte(msg.Body)); err != nil {
		w.Close()
		return nil, Envelope{}, fmt.Errorf("failed to write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, Envelope{}, fmt.Errorf("failed to close message writer: %w", err)
	}

	env := Envelope{From: sender.Address, MessageID: "<" + messageID + ">"}
	for _, list := range [][]*mail.Address{to, cc, bcc} {
		for _, a := range list {
			env.Recipients = append(env.Recipients, a.Address)
		}
	}
	return buf.Bytes(), env, nil
}

func parseList(field, value string) ([]*mail.Address, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	addrs, err := mail.ParseAddressList(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s address list: %w", field, err)
	}
	return addrs, nil
}

func domainOf(addr string) string {
	if i := strings.LastIndexByte(addr, '@'); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}
