// Package message renders canonical messages into the flat text form that the
// REST backend accepts as a raw message.
package message

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// Build renders msg as header fields, a blank line and the body verbatim.
// Only To and Subject are always present; Cc, Bcc and the threading fields
// are written when non-empty.
func Build(msg provider.EmailMessage) ([]byte, error) {
	var h mail.Header

	// textproto.Header writes fields last-added first.
	if len(msg.References) > 0 {
		h.Add("References", strings.Join(msg.References, " "))
	}
	if msg.InReplyTo != "" {
		h.Add("In-Reply-To", msg.InReplyTo)
	}
	h.SetSubject(msg.Subject)
	if msg.Bcc != "" {
		h.Add("Bcc", msg.Bcc)
	}
	if msg.Cc != "" {
		h.Add("Cc", msg.Cc)
	}
	h.Add("To", msg.To)

	var buf bytes.Buffer
	if err := textproto.WriteHeader(&buf, h.Header.Header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	buf.WriteString(msg.Body)
	return buf.Bytes(), nil
}
