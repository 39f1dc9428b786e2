package imap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/rgabriel/mcp-mail-router/provider"
)

const snippetLen = 200

// FetchContent fetches the envelope and full body of one message without
// setting \Seen.
func (c *Client) FetchContent(ctx context.Context, messageID string) (*provider.EmailSummary, error) {
	seqSet, err := parseUID(messageID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.selectMailbox(ctx)
	if err != nil {
		return nil, err
	}

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- b.UidFetch(seqSet, items, messages)
	}()

	msg := <-messages
	// Drain so the fetch goroutine can finish.
	for range messages {
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch message: %w", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("email %s not found", messageID)
	}

	s := summarize(msg)
	if s == nil {
		return nil, errors.New("failed to parse email")
	}
	for _, literal := range msg.Body {
		s.Body = plainBody(literal)
		break
	}
	s.Snippet = snippet(s.Body)
	return s, nil
}

// plainBody returns the first text/plain part, or the first text/html part
// when the message has no plain text.
func plainBody(r io.Reader) string {
	if r == nil {
		return ""
	}
	mr, err := mail.CreateReader(r)
	if message.IsUnknownCharset(err) {
		slog.Warn("unknown charset, reading body undecoded", "error", err)
	} else if err != nil {
		slog.Warn("failed to read email message", "error", err)
		return ""
	}
	defer mr.Close()

	var html string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if message.IsUnknownCharset(err) {
			slog.Warn("unknown charset, reading part undecoded", "error", err)
		} else if err != nil {
			slog.Warn("failed to read message part", "error", err)
			break
		}
		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := h.ContentType()
		body, _ := io.ReadAll(part.Body)
		switch {
		case contentType == "" || strings.HasPrefix(contentType, "text/plain"):
			return string(body)
		case strings.HasPrefix(contentType, "text/html") && html == "":
			html = string(body)
		}
	}
	return html
}

func snippet(body string) string {
	s := strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(s) <= snippetLen {
		return s
	}
	r := []rune(s)
	return string(r[:snippetLen-3]) + "..."
}
