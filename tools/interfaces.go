package tools

import (
	"context"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// Dispatcher routes a validated request to a backend. The concrete
// *dispatch.Dispatcher satisfies this.
type Dispatcher interface {
	Dispatch(ctx context.Context, req provider.Request) (*provider.Outcome, error)
}
