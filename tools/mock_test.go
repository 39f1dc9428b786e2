package tools

import (
	"context"
	"fmt"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// MockDispatcher implements Dispatcher for testing.
type MockDispatcher struct {
	// Return values
	Outcome *provider.Outcome

	// Error injection
	Err error

	// Call tracking
	LastRequest provider.Request
	CallCount   int
}

func (m *MockDispatcher) Dispatch(ctx context.Context, req provider.Request) (*provider.Outcome, error) {
	m.CallCount++
	m.LastRequest = req
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Outcome, nil
}

func newErrDispatcher(msg string) *MockDispatcher {
	return &MockDispatcher{Err: fmt.Errorf("%s", msg)}
}

// stubSearcher is a RestMail adapter answering every search with Found.
type stubSearcher struct {
	Found     []provider.EmailSummary
	LastQuery provider.Query
	CallCount int
}

func (s *stubSearcher) Kind() provider.Kind { return provider.RestMail }

func (s *stubSearcher) Search(ctx context.Context, q provider.Query) ([]provider.EmailSummary, error) {
	s.CallCount++
	s.LastQuery = q
	return s.Found, nil
}

// stubMailbox is a StreamMailbox adapter that only counts calls.
type stubMailbox struct {
	CallCount int
}

func (s *stubMailbox) Kind() provider.Kind { return provider.StreamMailbox }

func (s *stubMailbox) FetchContent(ctx context.Context, id string) (*provider.EmailSummary, error) {
	s.CallCount++
	return &provider.EmailSummary{ID: id}, nil
}
