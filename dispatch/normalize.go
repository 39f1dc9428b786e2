package dispatch

import (
	"errors"
	"fmt"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// failure converts an adapter fault into a backend failure. Errors already
// classified further down are passed through.
func failure(op provider.Operation, k provider.Kind, err error) *provider.Error {
	var pe *provider.Error
	if errors.As(err, &pe) {
		return pe
	}
	return provider.Backend(op, k, err)
}

func messageID(op provider.Operation, k provider.Kind, id string, err error) (*provider.Outcome, error) {
	if err != nil {
		return nil, failure(op, k, err)
	}
	return &provider.Outcome{Op: op, Provider: k, Shape: provider.ShapeMessageID, MessageID: id}, nil
}

func list(op provider.Operation, k provider.Kind, found []provider.EmailSummary, err error) (*provider.Outcome, error) {
	if err != nil {
		return nil, failure(op, k, err)
	}
	if found == nil {
		found = []provider.EmailSummary{}
	}
	return &provider.Outcome{
		Op:        op,
		Provider:  k,
		Shape:     provider.ShapeList,
		Count:     len(found),
		Summaries: found,
	}, nil
}

func summary(op provider.Operation, k provider.Kind, s *provider.EmailSummary, err error) (*provider.Outcome, error) {
	if err != nil {
		return nil, failure(op, k, err)
	}
	if s == nil {
		return nil, failure(op, k, fmt.Errorf("%s returned no message", k))
	}
	return &provider.Outcome{Op: op, Provider: k, Shape: provider.ShapeSummary, MessageID: s.ID, Summary: s}, nil
}
