package dispatch

import (
	"context"
	"strings"

	"github.com/rgabriel/mcp-mail-router/provider"
)

const replyPrefix = "Re: "

// reply fetches the original through the provider's read partner, derives
// the reply fields and re-enters Dispatch for the send. A failed fetch is
// reported as a compose failure and nothing is sent.
func (d *Dispatcher) reply(ctx context.Context, req provider.Request) (*provider.Outcome, error) {
	reader := provider.ReadPartner(req.Provider)

	fetched, err := d.Dispatch(ctx, provider.Request{
		Op:        provider.FetchContent,
		Provider:  reader,
		MessageID: req.Reply.MessageID,
	})
	if err != nil {
		return nil, &provider.Error{
			Kind:     provider.KindCompose,
			Op:       provider.Reply,
			Provider: req.Provider,
			Detail:   err.Error(),
			Err:      err,
		}
	}

	msg := ComposeReply(*fetched.Summary, req.Reply)
	if msg.To == "" {
		return nil, &provider.Error{
			Kind:     provider.KindCompose,
			Op:       provider.Reply,
			Provider: req.Provider,
			Detail:   "original message " + req.Reply.MessageID + " has no sender",
		}
	}

	out, err := d.Dispatch(ctx, provider.Request{Op: provider.Send, Provider: req.Provider, Message: msg})
	if err != nil {
		return nil, err
	}
	out.Op = provider.Reply
	return out, nil
}

// ComposeReply derives the outgoing message for a reply to original.
func ComposeReply(original provider.EmailSummary, p provider.ReplyParams) provider.EmailMessage {
	msg := provider.EmailMessage{
		To:      ReplyRecipients(original.From, original.Cc, p.ReplyAll),
		Subject: ReplySubject(original.Subject),
		Body:    p.Body,
	}
	if original.MessageID != "" {
		msg.InReplyTo = original.MessageID
		msg.References = []string{original.MessageID}
	}
	return msg
}

// ReplySubject keeps a subject that already carries a reply marker and
// prefixes one otherwise.
func ReplySubject(subject string) string {
	if len(subject) >= 3 && strings.EqualFold(subject[:3], "re:") {
		return subject
	}
	return replyPrefix + subject
}

// ReplyRecipients returns the sender, followed by the cc list on reply-all.
// Empty parts are dropped so no dangling separator is produced.
func ReplyRecipients(from, cc string, replyAll bool) string {
	from = strings.TrimSpace(from)
	if !replyAll {
		return from
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{from, strings.TrimSpace(cc)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
