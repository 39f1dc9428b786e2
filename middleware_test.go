package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rgabriel/mcp-mail-router/dispatch"
	"github.com/rgabriel/mcp-mail-router/provider"
	"github.com/rgabriel/mcp-mail-router/tools"
)

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: args,
		},
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"Warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	t.Run("handler completes in time", func(t *testing.T) {
		mw := timeoutMiddleware(1 * time.Second)

		handler := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			if _, ok := ctx.Deadline(); !ok {
				t.Error("expected a deadline on the handler context")
			}
			return &mcp.CallToolResult{}, nil
		})

		result, err := handler(context.Background(), makeRequest("mark_as_read", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result == nil {
			t.Fatal("expected non-nil result")
		}
	})

	t.Run("handler exceeds timeout", func(t *testing.T) {
		mw := timeoutMiddleware(10 * time.Millisecond)

		handler := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(1 * time.Second):
				return &mcp.CallToolResult{}, nil
			}
		})

		_, err := handler(context.Background(), makeRequest("search_by_content", nil))
		if err == nil {
			t.Fatal("expected timeout error")
		}
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got: %v", err)
		}
	})
}

func TestLoggingMiddleware(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		mw := loggingMiddleware()

		handler := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return &mcp.CallToolResult{}, nil
		})

		result, err := handler(context.Background(), makeRequest("get_unread_emails", map[string]any{"provider": "imap"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result == nil {
			t.Fatal("expected non-nil result")
		}
	})

	t.Run("handler error", func(t *testing.T) {
		mw := loggingMiddleware()

		handler := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, errors.New("handler failed")
		})

		_, err := handler(context.Background(), makeRequest("send_email", nil))
		if err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("result with IsError", func(t *testing.T) {
		mw := loggingMiddleware()

		handler := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultError("Erreur: create_draft not implemented for imap"), nil
		})

		result, err := handler(context.Background(), makeRequest("create_draft", map[string]any{"provider": "imap"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected IsError=true")
		}
	})

	t.Run("nil result", func(t *testing.T) {
		mw := loggingMiddleware()

		handler := mw(func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return nil, nil
		})

		result, err := handler(context.Background(), makeRequest("get_email_content", nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result != nil {
			t.Error("expected nil result")
		}
	})
}

// slowMailbox blocks every fetch until the context ends.
type slowMailbox struct{}

func (slowMailbox) Kind() provider.Kind { return provider.StreamMailbox }

func (slowMailbox) FetchContent(ctx context.Context, id string) (*provider.EmailSummary, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestComposedMiddleware(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := dispatch.New(discard, slowMailbox{})

	var fetch tools.Spec
	for _, s := range tools.Catalog() {
		if s.Op == provider.FetchContent {
			fetch = s
		}
	}

	t.Run("timeout surfaces as error text", func(t *testing.T) {
		// Match real registration order: logging wraps timeout wraps handler
		logging := loggingMiddleware()
		timeout := timeoutMiddleware(10 * time.Millisecond)
		handler := logging(timeout(tools.Handler(fetch, d)))

		result, err := handler(context.Background(), makeRequest("get_email_content", map[string]any{
			"messageId": "7", "provider": "imap",
		}))
		if err != nil {
			t.Fatalf("handlers must not return Go errors: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected error result")
		}
		text := result.Content[0].(mcp.TextContent).Text
		if !strings.HasPrefix(text, "Erreur: ") || !strings.Contains(text, "deadline exceeded") {
			t.Errorf("text = %q", text)
		}
	})

	t.Run("validation error passes through", func(t *testing.T) {
		handler := loggingMiddleware()(timeoutMiddleware(time.Second)(tools.Handler(fetch, d)))

		result, err := handler(context.Background(), makeRequest("get_email_content", map[string]any{"provider": "imap"}))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text := result.Content[0].(mcp.TextContent).Text; text != "Erreur: messageId is required" {
			t.Errorf("text = %q", text)
		}
	})
}
