package tools

import (
	"fmt"
	"strings"

	"github.com/emersion/go-message/mail"

	"github.com/rgabriel/mcp-mail-router/provider"
)

const (
	maxBodySize    = 10 * 1024 * 1024 // 10 MB
	maxSubjectSize = 998              // RFC 5322 line length limit
)

// values holds arguments that passed the schema check, with defaults applied.
type values map[string]any

func (v values) str(key string) string {
	s, _ := v[key].(string)
	return s
}

func (v values) num(key string) int {
	n, _ := v[key].(float64)
	return int(n)
}

func (v values) flag(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// Validate checks args against the declared fields and builds the typed
// request. Every failure is a validation error naming the offending field;
// nothing is dispatched on failure.
func (s Spec) Validate(args map[string]any) (provider.Request, error) {
	vals, err := s.check(args)
	if err != nil {
		return provider.Request{}, s.invalid(err)
	}

	kind, err := provider.ParseKind(vals.str("provider"))
	if err != nil {
		return provider.Request{}, s.invalid(err)
	}
	req := provider.Request{Op: s.Op, Provider: kind}

	switch {
	case s.Op == provider.CreateDraft || s.Op == provider.Send:
		req.Message, err = buildMessage(vals)
	case s.Op == provider.Reply:
		req.Reply, err = buildReply(vals)
	case s.Op.IsQuery():
		req.Query = buildQuery(s, vals)
	default:
		req.MessageID = vals.str("messageId")
		err = validateMessageID(req.MessageID)
	}
	if err != nil {
		return provider.Request{}, s.invalid(err)
	}
	return req, nil
}

func (s Spec) invalid(err error) *provider.Error {
	return &provider.Error{Kind: provider.KindValidation, Op: s.Op, Detail: err.Error()}
}

// check enforces presence, primitive type and enum membership.
func (s Spec) check(args map[string]any) (values, error) {
	vals := make(values, len(s.Fields))

	for _, f := range s.Fields {
		raw, ok := args[f.Name]
		if !ok || raw == nil {
			if f.Required {
				return nil, fmt.Errorf("%s is required", f.Name)
			}
			if f.Type == Number && f.Default != 0 {
				vals[f.Name] = f.Default
			}
			continue
		}

		switch f.Type {
		case String:
			str, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a %s", f.Name, f.Type)
			}
			if f.Required && strings.TrimSpace(str) == "" {
				return nil, fmt.Errorf("%s is required", f.Name)
			}
			if len(f.Enum) > 0 && !contains(f.Enum, str) {
				return nil, fmt.Errorf("%s must be one of %s, got %q", f.Name, strings.Join(f.Enum, ", "), str)
			}
			vals[f.Name] = str
		case Number:
			switch n := raw.(type) {
			case float64:
				vals[f.Name] = n
			case int:
				vals[f.Name] = float64(n)
			default:
				return nil, fmt.Errorf("%s must be a %s", f.Name, f.Type)
			}
		case Boolean:
			b, ok := raw.(bool)
			if !ok {
				return nil, fmt.Errorf("%s must be a %s", f.Name, f.Type)
			}
			vals[f.Name] = b
		}
	}

	return vals, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func buildMessage(vals values) (provider.EmailMessage, error) {
	msg := provider.EmailMessage{
		To:      vals.str("to"),
		Subject: vals.str("subject"),
		Body:    vals.str("body"),
		Cc:      vals.str("cc"),
		Bcc:     vals.str("bcc"),
	}

	for _, a := range []struct{ key, value string }{
		{"to", msg.To},
		{"cc", msg.Cc},
		{"bcc", msg.Bcc},
	} {
		if err := validateAddressList(a.key, a.value); err != nil {
			return provider.EmailMessage{}, err
		}
	}
	if err := validateSubjectSize(msg.Subject); err != nil {
		return provider.EmailMessage{}, err
	}
	if err := validateBodySize(msg.Body); err != nil {
		return provider.EmailMessage{}, err
	}
	return msg, nil
}

func buildReply(vals values) (provider.ReplyParams, error) {
	p := provider.ReplyParams{
		MessageID: vals.str("messageId"),
		Body:      vals.str("body"),
		ReplyAll:  vals.flag("replyAll"),
	}
	if err := validateMessageID(p.MessageID); err != nil {
		return provider.ReplyParams{}, err
	}
	if err := validateBodySize(p.Body); err != nil {
		return provider.ReplyParams{}, err
	}
	return p, nil
}

// queryField names the search term argument of each query operation.
var queryField = map[provider.Operation]string{
	provider.SearchBySubject: "subject",
	provider.SearchBySender:  "sender",
	provider.SearchByContent: "query",
}

func buildQuery(s Spec, vals values) provider.Query {
	q := provider.Query{
		Op:         s.Op,
		MaxResults: clampResults(vals.num("maxResults")),
	}
	if key, ok := queryField[s.Op]; ok {
		q.Value = vals.str(key)
	}
	return q
}

// clampResults bounds maxResults to [1, maxResultsLimit].
func clampResults(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxResultsLimit {
		return maxResultsLimit
	}
	return n
}

// validateAddressList checks that an optional header value parses as an
// RFC 5322 address list.
func validateAddressList(key, value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if _, err := mail.ParseAddressList(value); err != nil {
		return fmt.Errorf("invalid %s address list %q: %v", key, value, err)
	}
	return nil
}

// validateMessageID rejects ids carrying control characters.
func validateMessageID(id string) error {
	if id == "" {
		return fmt.Errorf("messageId is required")
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("messageId contains invalid characters")
		}
	}
	return nil
}

// validateBodySize checks that body content doesn't exceed limits.
func validateBodySize(body string) error {
	if len(body) > maxBodySize {
		return fmt.Errorf("body exceeds maximum size of %d bytes", maxBodySize)
	}
	return nil
}

// validateSubjectSize checks that subject doesn't exceed limits.
func validateSubjectSize(subject string) error {
	if len(subject) > maxSubjectSize {
		return fmt.Errorf("subject exceeds maximum length of %d characters", maxSubjectSize)
	}
	return nil
}
