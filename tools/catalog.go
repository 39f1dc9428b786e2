// Package tools exposes the abstract mail operations as MCP tools: the tool
// catalog, argument validation, handlers and result rendering.
package tools

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// FieldType is the primitive JSON kind of a tool argument.
type FieldType int

const (
	String FieldType = iota
	Number
	Boolean
)

func (t FieldType) String() string {
	switch t {
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	default:
		return "string"
	}
}

// Field declares one tool argument. The same declaration drives the MCP
// schema and the validator.
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string
	Enum        []string
	Default     float64
}

// Spec declares one tool of the catalog.
type Spec struct {
	Op          provider.Operation
	Description string
	Fields      []Field
	ReadOnly    bool
	Idempotent  bool
}

// Name returns the tool name.
func (s Spec) Name() string {
	return s.Op.String()
}

const (
	maxResultsLimit = 500

	defaultSearchResults = 10
	defaultListResults   = 20
)

// providerField declares the provider enum for an operation. The enum is
// the agent-facing contract and may include providers that reject the
// operation at dispatch time.
func providerField(kinds ...provider.Kind) Field {
	labels := make([]string, len(kinds))
	for i, k := range kinds {
		labels[i] = k.String()
	}
	return Field{
		Name:        "provider",
		Type:        String,
		Required:    true,
		Description: "Mail backend that performs the operation.",
		Enum:        labels,
	}
}

func messageFields(kinds ...provider.Kind) []Field {
	return []Field{
		{Name: "to", Type: String, Required: true, Description: "Recipient address or comma-separated address list."},
		{Name: "subject", Type: String, Required: true, Description: "Email subject line."},
		{Name: "body", Type: String, Required: true, Description: "Plain text email body."},
		{Name: "cc", Type: String, Description: "CC address or comma-separated address list."},
		{Name: "bcc", Type: String, Description: "BCC address or comma-separated address list."},
		providerField(kinds...),
	}
}

func maxResultsField(def float64) Field {
	return Field{
		Name:        "maxResults",
		Type:        Number,
		Description: "Maximum number of emails to return. Most recent emails are returned first.",
		Default:     def,
	}
}

func messageIDField(desc string) Field {
	return Field{Name: "messageId", Type: String, Required: true, Description: desc}
}

// Catalog returns every tool in declaration order.
func Catalog() []Spec {
	var (
		gmail = provider.RestMail
		imap  = provider.StreamMailbox
		smtp  = provider.OutboundRelay
	)

	return []Spec{
		{
			Op:          provider.CreateDraft,
			Description: "Save an email as a draft for later review. Returns the draft id. Calling twice creates duplicate drafts.",
			Fields:      messageFields(gmail, imap),
		},
		{
			Op:          provider.Send,
			Description: "Compose and send a new email. Returns the sent message id. Calling twice sends duplicate emails.",
			Fields:      messageFields(gmail, smtp),
		},
		{
			Op:          provider.Reply,
			Description: "Reply to an existing email. Reads the original to derive the Re: subject, recipients and threading headers. The smtp provider reads the original through the imap backend.",
			Fields: []Field{
				messageIDField("Id of the message being replied to (from a search or get_email_content)."),
				{Name: "body", Type: String, Required: true, Description: "Plain text reply body."},
				{Name: "replyAll", Type: Boolean, Description: "Reply to the sender and every original CC recipient."},
				providerField(gmail, smtp),
			},
		},
		{
			Op:          provider.SearchBySubject,
			Description: "Search emails whose subject contains the given text. Returns the match count and each email's id.",
			Fields: []Field{
				{Name: "subject", Type: String, Required: true, Description: "Subject text to search for."},
				maxResultsField(defaultSearchResults),
				providerField(gmail, imap),
			},
			ReadOnly:   true,
			Idempotent: true,
		},
		{
			Op:          provider.SearchBySender,
			Description: "Search emails sent from the given address. Returns the match count and each email's id.",
			Fields: []Field{
				{Name: "sender", Type: String, Required: true, Description: "Sender address to search for."},
				maxResultsField(defaultSearchResults),
				providerField(gmail, imap),
			},
			ReadOnly:   true,
			Idempotent: true,
		},
		{
			Op:          provider.SearchByContent,
			Description: "Search emails containing the given text anywhere in headers or body.",
			Fields: []Field{
				{Name: "query", Type: String, Required: true, Description: "Text to search for."},
				maxResultsField(defaultSearchResults),
				providerField(gmail, imap),
			},
			ReadOnly:   true,
			Idempotent: true,
		},
		{
			Op:          provider.ListUnread,
			Description: "List unread emails, most recent first.",
			Fields: []Field{
				maxResultsField(defaultListResults),
				providerField(gmail, imap),
			},
			ReadOnly:   true,
			Idempotent: true,
		},
		{
			Op:          provider.ListImportant,
			Description: "List emails marked important (flagged), most recent first.",
			Fields: []Field{
				maxResultsField(defaultListResults),
				providerField(gmail, imap),
			},
			ReadOnly:   true,
			Idempotent: true,
		},
		{
			Op:          provider.MarkRead,
			Description: "Mark an email as read. Marking an already read email succeeds.",
			Fields: []Field{
				messageIDField("Id of the email to mark."),
				providerField(gmail, imap),
			},
			Idempotent: true,
		},
		{
			Op:          provider.MarkImportant,
			Description: "Mark an email as important. Marking an already important email succeeds.",
			Fields: []Field{
				messageIDField("Id of the email to mark."),
				providerField(gmail, imap),
			},
			Idempotent: true,
		},
		{
			Op:          provider.FetchContent,
			Description: "Fetch one email by id. Returns subject, from, to, cc, date, a short snippet and the plain text body when available.",
			Fields: []Field{
				messageIDField("Id of the email to fetch."),
				providerField(gmail, imap),
			},
			ReadOnly:   true,
			Idempotent: true,
		},
	}
}

// Tool builds the MCP tool definition for s.
func (s Spec) Tool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(s.Description),
		mcp.WithReadOnlyHintAnnotation(s.ReadOnly),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(s.Idempotent),
	}

	for _, f := range s.Fields {
		props := []mcp.PropertyOption{mcp.Description(f.Description)}
		if f.Required {
			props = append(props, mcp.Required())
		}

		switch f.Type {
		case String:
			if f.Required {
				props = append(props, mcp.MinLength(1))
			}
			if len(f.Enum) > 0 {
				props = append(props, mcp.Enum(f.Enum...))
			}
			opts = append(opts, mcp.WithString(f.Name, props...))
		case Number:
			props = append(props, mcp.Min(1), mcp.Max(maxResultsLimit))
			if f.Default != 0 {
				props = append(props, mcp.DefaultNumber(f.Default))
			}
			opts = append(opts, mcp.WithNumber(f.Name, props...))
		case Boolean:
			props = append(props, mcp.DefaultBool(false))
			opts = append(opts, mcp.WithBoolean(f.Name, props...))
		}
	}

	return mcp.NewTool(s.Name(), opts...)
}
