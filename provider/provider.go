// Package provider holds the backend-independent model shared by every mail
// backend: provider kinds, abstract operations, the canonical message shapes,
// the capability matrix and the error taxonomy.
package provider

import (
	"fmt"
	"strings"
)

// Kind identifies which backend adapter handles a request.
type Kind int

const (
	// RestMail is the OAuth2-authenticated REST mail API.
	RestMail Kind = iota
	// StreamMailbox is the stateful mailbox protocol (IMAP).
	StreamMailbox
	// OutboundRelay is the send-only relay (SMTP).
	OutboundRelay

	kindCount
)

var kindNames = [kindCount]string{
	RestMail:      "gmail",
	StreamMailbox: "imap",
	OutboundRelay: "smtp",
}

// String returns the agent-facing provider label.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("provider(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every provider kind in declaration order.
func Kinds() []Kind {
	return []Kind{RestMail, StreamMailbox, OutboundRelay}
}

// ParseKind maps an agent-facing label ("gmail", "imap", "smtp") to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown provider %q", s)
}

// Operation is one abstract email action of the agent-facing catalog.
type Operation int

const (
	CreateDraft Operation = iota
	Send
	Reply
	SearchBySubject
	SearchBySender
	SearchByContent
	ListUnread
	ListImportant
	MarkRead
	MarkImportant
	FetchContent

	opCount
)

// Tool names double as the operation's string form.
var opNames = [opCount]string{
	CreateDraft:     "create_draft",
	Send:            "send_email",
	Reply:           "reply_email",
	SearchBySubject: "search_by_subject",
	SearchBySender:  "search_by_sender",
	SearchByContent: "search_by_content",
	ListUnread:      "get_unread_emails",
	ListImportant:   "get_important_emails",
	MarkRead:        "mark_as_read",
	MarkImportant:   "mark_as_important",
	FetchContent:    "get_email_content",
}

func (op Operation) String() string {
	if op < 0 || op >= opCount {
		return fmt.Sprintf("operation(%d)", int(op))
	}
	return opNames[op]
}

// Operations returns the full catalog in declaration order.
func Operations() []Operation {
	ops := make([]Operation, 0, opCount)
	for op := Operation(0); op < opCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

// ParseOperation maps a tool name to its Operation.
func ParseOperation(name string) (Operation, error) {
	for op, n := range opNames {
		if n == name {
			return Operation(op), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// IsQuery reports whether op is answered by a mailbox search.
func (op Operation) IsQuery() bool {
	switch op {
	case SearchBySubject, SearchBySender, SearchByContent, ListUnread, ListImportant:
		return true
	}
	return false
}

// EmailMessage is the only structure the message builders consume.
// To, Subject and Body are non-empty once validated.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	Cc      string
	Bcc     string

	// Threading headers, set by the reply composer.
	InReplyTo  string
	References []string
}

// EmailSummary is the canonical fetch/search result. Only ID is guaranteed;
// backends fill whatever they have.
type EmailSummary struct {
	ID        string `json:"id"`
	Subject   string `json:"subject,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Cc        string `json:"cc,omitempty"`
	Date      string `json:"date,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	Body      string `json:"body,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// Query is a search or list request against a mailbox. Value is empty for
// ListUnread and ListImportant.
type Query struct {
	Op         Operation
	Value      string
	MaxResults int
}

// ReplyParams are the caller-supplied inputs of a reply.
type ReplyParams struct {
	MessageID string
	Body      string
	ReplyAll  bool
}

// Request is a validated abstract operation. Only the field matching Op is
// meaningful: Message for CreateDraft and Send, Reply for Reply, Query for the
// search and list operations, MessageID for MarkRead, MarkImportant and
// FetchContent.
type Request struct {
	Op        Operation
	Provider  Kind
	Message   EmailMessage
	Reply     ReplyParams
	Query     Query
	MessageID string
}
