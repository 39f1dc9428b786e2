// Package gmail is the REST mail adapter. It talks to the Gmail API with an
// OAuth2 refresh-token source and supports every abstract operation.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/rgabriel/mcp-mail-router/message"
	"github.com/rgabriel/mcp-mail-router/provider"
)

const (
	labelUnread    = "UNREAD"
	labelImportant = "IMPORTANT"
)

// Config holds the OAuth2 client credentials for the REST backend.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	User         string
}

// Adapter implements the RestMail provider.
type Adapter struct {
	svc  *gmailv1.Service
	user string
}

// New creates an adapter authenticated with cfg's refresh token.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	return NewWithOptions(ctx, cfg.User, option.WithTokenSource(tokenSource(ctx, cfg, google.Endpoint)))
}

func tokenSource(ctx context.Context, cfg Config, endpoint oauth2.Endpoint) oauth2.TokenSource {
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       []string{gmailv1.GmailModifyScope, gmailv1.GmailComposeScope},
	}
	return oc.TokenSource(ctx, seedToken(cfg))
}

// seedToken builds the starting token. A configured access token carries no
// expiry, so it is marked expired and the first call refreshes it.
func seedToken(cfg Config) *oauth2.Token {
	tok := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	if cfg.AccessToken != "" {
		tok.AccessToken = cfg.AccessToken
		tok.Expiry = time.Unix(1, 0)
	}
	return tok
}

// NewWithOptions creates an adapter from explicit client options.
func NewWithOptions(ctx context.Context, user string, opts ...option.ClientOption) (*Adapter, error) {
	svc, err := gmailv1.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	if user == "" {
		user = "me"
	}
	return &Adapter{svc: svc, user: user}, nil
}

func (a *Adapter) Kind() provider.Kind { return provider.RestMail }

// CreateDraft stores msg as a draft and returns the draft id.
func (a *Adapter) CreateDraft(ctx context.Context, msg provider.EmailMessage) (string, error) {
	raw, err := encode(msg)
	if err != nil {
		return "", err
	}
	d, err := a.svc.Users.Drafts.Create(a.user, &gmailv1.Draft{
		Message: &gmailv1.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create draft: %w", err)
	}
	return d.Id, nil
}

// Send transmits msg and returns the new message id.
func (a *Adapter) Send(ctx context.Context, msg provider.EmailMessage) (string, error) {
	raw, err := encode(msg)
	if err != nil {
		return "", err
	}
	m, err := a.svc.Users.Messages.Send(a.user, &gmailv1.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return m.Id, nil
}

// MarkRead removes the UNREAD label. Removing an absent label is a no-op.
func (a *Adapter) MarkRead(ctx context.Context, messageID string) error {
	return a.modify(ctx, messageID, &gmailv1.ModifyMessageRequest{RemoveLabelIds: []string{labelUnread}})
}

// MarkImportant adds the IMPORTANT label.
func (a *Adapter) MarkImportant(ctx context.Context, messageID string) error {
	return a.modify(ctx, messageID, &gmailv1.ModifyMessageRequest{AddLabelIds: []string{labelImportant}})
}

func (a *Adapter) modify(ctx context.Context, messageID string, req *gmailv1.ModifyMessageRequest) error {
	if _, err := a.svc.Users.Messages.Modify(a.user, messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("modify message %s: %w", messageID, err)
	}
	return nil
}

func encode(msg provider.EmailMessage) (string, error) {
	raw, err := message.Build(msg)
	if err != nil {
		return "", fmt.Errorf("build message: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}
