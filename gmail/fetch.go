package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// FetchContent retrieves one message. Missing headers leave the matching
// summary field empty.
func (a *Adapter) FetchContent(ctx context.Context, messageID string) (*provider.EmailSummary, error) {
	msg, err := a.svc.Users.Messages.Get(a.user, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageID, err)
	}

	s := &provider.EmailSummary{ID: msg.Id, Snippet: msg.Snippet}
	if msg.Payload != nil {
		h := msg.Payload.Headers
		s.Subject = header(h, "Subject")
		s.From = header(h, "From")
		s.To = header(h, "To")
		s.Cc = header(h, "Cc")
		s.Date = header(h, "Date")
		s.MessageID = header(h, "Message-ID")
		s.Body = plainText(msg.Payload)
	}
	return s, nil
}

// header returns the first header named name, compared case-insensitively.
func header(headers []*gmailv1.MessagePartHeader, name string) string {
	for _, h := range headers {
		if h != nil && strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// plainText walks the part tree and returns the first text/plain body.
func plainText(part *gmailv1.MessagePart) string {
	if part == nil {
		return ""
	}
	if strings.EqualFold(part.MimeType, "text/plain") && part.Body != nil && part.Body.Data != "" {
		return decodeBase64URL(part.Body.Data)
	}
	for _, sub := range part.Parts {
		if body := plainText(sub); body != "" {
			return body
		}
	}
	return ""
}

func decodeBase64URL(data string) string {
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		// Gmail may omit padding.
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			slog.Warn("failed to decode message body", "error", err)
			return ""
		}
	}
	return string(b)
}
