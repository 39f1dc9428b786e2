package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/rgabriel/mcp-mail-router/provider"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func fullDispatcher() (*Dispatcher, map[provider.Kind]*MockAdapter) {
	mocks := map[provider.Kind]*MockAdapter{}
	var adapters []provider.Adapter
	for _, k := range provider.Kinds() {
		m := newMock(k)
		m.ID = "id-1"
		m.Summary = &provider.EmailSummary{ID: "msg-1", Subject: "Hi", From: "b@y.com"}
		mocks[k] = m
		adapters = append(adapters, m)
	}
	return New(discard, adapters...), mocks
}

func requestFor(op provider.Operation, k provider.Kind) provider.Request {
	return provider.Request{
		Op:        op,
		Provider:  k,
		Message:   provider.EmailMessage{To: "a@x.com", Subject: "Hi", Body: "Hello"},
		Reply:     provider.ReplyParams{MessageID: "msg-1", Body: "Thanks"},
		Query:     provider.Query{Value: "Invoice", MaxResults: 10},
		MessageID: "msg-1",
	}
}

func TestDispatch_UnsupportedNeverReachesAdapter(t *testing.T) {
	for _, op := range provider.Operations() {
		for _, k := range provider.Kinds() {
			if provider.Supports(op, k) {
				continue
			}
			t.Run(op.String()+"/"+k.String(), func(t *testing.T) {
				d, mocks := fullDispatcher()

				out, err := d.Dispatch(context.Background(), requestFor(op, k))
				if out != nil {
					t.Errorf("expected nil outcome, got %+v", out)
				}
				if !provider.IsKind(err, provider.KindUnsupported) {
					t.Fatalf("expected unsupported, got %v", err)
				}
				want := op.String() + " not implemented for " + k.String()
				if err.Error() != want {
					t.Errorf("error = %q, want %q", err.Error(), want)
				}
				for kind, m := range mocks {
					if m.CallCount != 0 {
						t.Errorf("%s adapter called %d times (%v)", kind, m.CallCount, m.Methods)
					}
				}
			})
		}
	}
}

func TestDispatch_SupportedCallsExactlyOnce(t *testing.T) {
	for _, op := range provider.Operations() {
		if op == provider.Reply {
			continue
		}
		for _, k := range provider.SupportedBy(op) {
			t.Run(op.String()+"/"+k.String(), func(t *testing.T) {
				d, mocks := fullDispatcher()

				if _, err := d.Dispatch(context.Background(), requestFor(op, k)); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				total := 0
				for _, m := range mocks {
					total += m.CallCount
				}
				if total != 1 || mocks[k].CallCount != 1 {
					t.Errorf("expected one call on %s, got total %d", k, total)
				}
			})
		}
	}
}

func TestDispatch_Shapes(t *testing.T) {
	d, mocks := fullDispatcher()
	ctx := context.Background()
	mocks[provider.RestMail].Summaries = []provider.EmailSummary{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	tests := []struct {
		op    provider.Operation
		shape provider.Shape
		check func(t *testing.T, out *provider.Outcome)
	}{
		{provider.CreateDraft, provider.ShapeMessageID, func(t *testing.T, out *provider.Outcome) {
			if out.MessageID != "id-1" {
				t.Errorf("MessageID = %q", out.MessageID)
			}
		}},
		{provider.SearchBySubject, provider.ShapeList, func(t *testing.T, out *provider.Outcome) {
			if out.Count != 3 || len(out.Summaries) != 3 {
				t.Errorf("Count = %d, len = %d", out.Count, len(out.Summaries))
			}
		}},
		{provider.MarkImportant, provider.ShapeMessageID, func(t *testing.T, out *provider.Outcome) {
			if out.MessageID != "msg-1" {
				t.Errorf("MessageID = %q, want the flagged id", out.MessageID)
			}
		}},
		{provider.FetchContent, provider.ShapeSummary, func(t *testing.T, out *provider.Outcome) {
			if out.Summary == nil || out.Summary.Subject != "Hi" {
				t.Errorf("Summary = %+v", out.Summary)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			out, err := d.Dispatch(ctx, requestFor(tt.op, provider.RestMail))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Shape != tt.shape {
				t.Errorf("Shape = %v, want %v", out.Shape, tt.shape)
			}
			if out.Op != tt.op || out.Provider != provider.RestMail {
				t.Errorf("outcome tagged %s/%s", out.Op, out.Provider)
			}
			tt.check(t, out)
		})
	}
}

func TestDispatch_QueryCarriesOperation(t *testing.T) {
	d, mocks := fullDispatcher()
	req := requestFor(provider.ListUnread, provider.StreamMailbox)
	req.Query = provider.Query{MaxResults: 20}

	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := mocks[provider.StreamMailbox].LastQuery
	if got.Op != provider.ListUnread || got.MaxResults != 20 {
		t.Errorf("LastQuery = %+v", got)
	}
}

func TestDispatch_EmptySearchIsEmptyList(t *testing.T) {
	d, _ := fullDispatcher()
	out, err := d.Dispatch(context.Background(), requestFor(provider.SearchByContent, provider.RestMail))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Count != 0 || out.Summaries == nil {
		t.Errorf("expected empty non-nil list, got %+v", out)
	}
}

func TestDispatch_MarkReadIdempotent(t *testing.T) {
	d, mocks := fullDispatcher()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		out, err := d.Dispatch(ctx, requestFor(provider.MarkRead, provider.StreamMailbox))
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i+1, err)
		}
		if out.MessageID != "msg-1" {
			t.Errorf("call %d: MessageID = %q", i+1, out.MessageID)
		}
	}
	m := mocks[provider.StreamMailbox]
	if !m.Read["msg-1"] || len(m.Read) != 1 {
		t.Errorf("read state = %v", m.Read)
	}
}

func TestDispatch_BackendError(t *testing.T) {
	d, mocks := fullDispatcher()
	cause := errors.New("connection reset by peer")
	mocks[provider.RestMail].Err = cause

	out, err := d.Dispatch(context.Background(), requestFor(provider.Send, provider.RestMail))
	if out != nil {
		t.Errorf("expected nil outcome, got %+v", out)
	}
	if !provider.IsKind(err, provider.KindBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if err.Error() != cause.Error() {
		t.Errorf("error = %q, want backend message %q", err.Error(), cause.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("backend error should wrap the adapter fault")
	}
}

func TestDispatch_BackendUnavailable(t *testing.T) {
	d := New(discard)

	_, err := d.Dispatch(context.Background(), requestFor(provider.FetchContent, provider.StreamMailbox))
	if !provider.IsKind(err, provider.KindBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if !errors.Is(err, provider.ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable in chain, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "imap ") {
		t.Errorf("error = %q, want it to name the provider", err.Error())
	}
	if d.Available(provider.StreamMailbox) {
		t.Error("Available() = true with no adapters")
	}
}

func TestDispatch_NilAdapterSkipped(t *testing.T) {
	var none provider.Adapter
	d := New(nil, none)
	if d.Available(provider.RestMail) {
		t.Error("nil adapter should leave provider unavailable")
	}
}

func TestDispatch_MissingCapability(t *testing.T) {
	relay := &sendOnly{}
	d := New(discard, relay)

	// The matrix allows search on gmail, but route a gmail-kinded send-only
	// adapter to prove the type assertion guard.
	d.adapters[provider.RestMail] = relay

	_, err := d.Dispatch(context.Background(), requestFor(provider.SearchBySender, provider.RestMail))
	if !provider.IsKind(err, provider.KindBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if relay.CallCount != 0 {
		t.Errorf("relay called %d times", relay.CallCount)
	}
}
