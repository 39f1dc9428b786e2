package dispatch

import (
	"context"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// MockAdapter implements every capability interface for any provider kind.
type MockAdapter struct {
	kind provider.Kind

	// Return values
	ID        string
	Summaries []provider.EmailSummary
	Summary   *provider.EmailSummary

	// Error injection
	Err      error
	FetchErr error

	// Call tracking
	LastMethod    string
	LastMessage   provider.EmailMessage
	LastQuery     provider.Query
	LastMessageID string
	Methods       []string
	CallCount     int

	// Per-message state for flag idempotence checks.
	Read      map[string]bool
	Important map[string]bool
}

func newMock(k provider.Kind) *MockAdapter {
	return &MockAdapter{kind: k, Read: map[string]bool{}, Important: map[string]bool{}}
}

func (m *MockAdapter) Kind() provider.Kind { return m.kind }

func (m *MockAdapter) track(method string) {
	m.LastMethod = method
	m.Methods = append(m.Methods, method)
	m.CallCount++
}

func (m *MockAdapter) CreateDraft(ctx context.Context, msg provider.EmailMessage) (string, error) {
	m.track("CreateDraft")
	m.LastMessage = msg
	if m.Err != nil {
		return "", m.Err
	}
	return m.ID, nil
}

func (m *MockAdapter) Send(ctx context.Context, msg provider.EmailMessage) (string, error) {
	m.track("Send")
	m.LastMessage = msg
	if m.Err != nil {
		return "", m.Err
	}
	return m.ID, nil
}

func (m *MockAdapter) Search(ctx context.Context, q provider.Query) ([]provider.EmailSummary, error) {
	m.track("Search")
	m.LastQuery = q
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Summaries, nil
}

func (m *MockAdapter) MarkRead(ctx context.Context, messageID string) error {
	m.track("MarkRead")
	m.LastMessageID = messageID
	if m.Err != nil {
		return m.Err
	}
	m.Read[messageID] = true
	return nil
}

func (m *MockAdapter) MarkImportant(ctx context.Context, messageID string) error {
	m.track("MarkImportant")
	m.LastMessageID = messageID
	if m.Err != nil {
		return m.Err
	}
	m.Important[messageID] = true
	return nil
}

func (m *MockAdapter) FetchContent(ctx context.Context, messageID string) (*provider.EmailSummary, error) {
	m.track("FetchContent")
	m.LastMessageID = messageID
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Summary, nil
}

// sendOnly implements only Sender, like a relay.
type sendOnly struct {
	CallCount int
}

func (s *sendOnly) Kind() provider.Kind { return provider.OutboundRelay }

func (s *sendOnly) Send(ctx context.Context, msg provider.EmailMessage) (string, error) {
	s.CallCount++
	return "<relay@id>", nil
}
