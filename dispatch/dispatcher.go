// Package dispatch routes validated abstract operations to backend adapters.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// Dispatcher owns one adapter per configured provider. It is immutable after
// construction and safe for concurrent use as long as the adapters are.
type Dispatcher struct {
	adapters map[provider.Kind]provider.Adapter
	logger   *slog.Logger
}

// New creates a Dispatcher over the given adapters. Nil adapters are skipped,
// leaving their provider unavailable.
func New(logger *slog.Logger, adapters ...provider.Adapter) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		adapters: make(map[provider.Kind]provider.Adapter, len(adapters)),
		logger:   logger,
	}
	for _, a := range adapters {
		if a == nil {
			continue
		}
		d.adapters[a.Kind()] = a
	}
	return d
}

// Available reports whether an adapter is configured for k.
func (d *Dispatcher) Available(k provider.Kind) bool {
	_, ok := d.adapters[k]
	return ok
}

// Dispatch performs req and returns its outcome. Every failure is a
// *provider.Error; unsupported combinations are rejected before any adapter
// is touched.
func (d *Dispatcher) Dispatch(ctx context.Context, req provider.Request) (*provider.Outcome, error) {
	if !provider.Supports(req.Op, req.Provider) {
		d.logger.Debug("operation not supported", "operation", req.Op.String(), "provider", req.Provider.String())
		return nil, provider.Unsupported(req.Op, req.Provider)
	}

	d.logger.Debug("dispatching", "operation", req.Op.String(), "provider", req.Provider.String())

	if req.Op == provider.Reply {
		return d.reply(ctx, req)
	}

	out, err := d.invoke(ctx, req)
	if err != nil {
		d.logger.Warn("backend call failed",
			"operation", req.Op.String(),
			"provider", req.Provider.String(),
			"error", err,
		)
		return nil, err
	}
	return out, nil
}

func (d *Dispatcher) invoke(ctx context.Context, req provider.Request) (*provider.Outcome, error) {
	op, k := req.Op, req.Provider

	a, ok := d.adapters[k]
	if !ok {
		return nil, &provider.Error{
			Kind:     provider.KindBackend,
			Op:       op,
			Provider: k,
			Detail:   fmt.Sprintf("%s %s", k, provider.ErrBackendUnavailable),
			Err:      provider.ErrBackendUnavailable,
		}
	}

	switch op {
	case provider.CreateDraft:
		drafter, ok := a.(provider.Drafter)
		if !ok {
			return nil, missingCapability(op, k)
		}
		id, err := drafter.CreateDraft(ctx, req.Message)
		return messageID(op, k, id, err)

	case provider.Send:
		sender, ok := a.(provider.Sender)
		if !ok {
			return nil, missingCapability(op, k)
		}
		id, err := sender.Send(ctx, req.Message)
		return messageID(op, k, id, err)

	case provider.SearchBySubject, provider.SearchBySender, provider.SearchByContent,
		provider.ListUnread, provider.ListImportant:
		searcher, ok := a.(provider.Searcher)
		if !ok {
			return nil, missingCapability(op, k)
		}
		q := req.Query
		q.Op = op
		found, err := searcher.Search(ctx, q)
		return list(op, k, found, err)

	case provider.MarkRead, provider.MarkImportant:
		flagger, ok := a.(provider.Flagger)
		if !ok {
			return nil, missingCapability(op, k)
		}
		var err error
		if op == provider.MarkRead {
			err = flagger.MarkRead(ctx, req.MessageID)
		} else {
			err = flagger.MarkImportant(ctx, req.MessageID)
		}
		return messageID(op, k, req.MessageID, err)

	case provider.FetchContent:
		fetcher, ok := a.(provider.Fetcher)
		if !ok {
			return nil, missingCapability(op, k)
		}
		s, err := fetcher.FetchContent(ctx, req.MessageID)
		return summary(op, k, s, err)
	}

	return nil, provider.Unsupported(op, k)
}

// missingCapability covers an adapter wired for a provider whose matrix entry
// promises an operation the adapter does not implement.
func missingCapability(op provider.Operation, k provider.Kind) *provider.Error {
	return &provider.Error{
		Kind:     provider.KindBackend,
		Op:       op,
		Provider: k,
		Detail:   fmt.Sprintf("%s adapter cannot perform %s", k, op),
	}
}
