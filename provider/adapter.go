package provider

import "context"

// Adapter is implemented by every backend adapter. An adapter additionally
// implements one capability interface per group of operations it performs;
// the dispatcher only reaches them after consulting the capability matrix.
type Adapter interface {
	Kind() Kind
}

// Drafter stores a message as a draft and returns the draft id.
type Drafter interface {
	Adapter
	CreateDraft(ctx context.Context, msg EmailMessage) (string, error)
}

// Sender transmits a message and returns the backend's message id.
type Sender interface {
	Adapter
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

// Searcher answers the search and list operations.
type Searcher interface {
	Adapter
	Search(ctx context.Context, q Query) ([]EmailSummary, error)
}

// Flagger changes per-message state. Both calls are idempotent.
type Flagger interface {
	Adapter
	MarkRead(ctx context.Context, messageID string) error
	MarkImportant(ctx context.Context, messageID string) error
}

// Fetcher retrieves a single message.
type Fetcher interface {
	Adapter
	FetchContent(ctx context.Context, messageID string) (*EmailSummary, error)
}
