package gmail

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// BuildQuery translates an abstract query into Gmail search syntax.
func BuildQuery(q provider.Query) (string, error) {
	v := strings.ReplaceAll(q.Value, `"`, "")
	switch q.Op {
	case provider.SearchBySubject:
		return fmt.Sprintf(`subject:"%s"`, v), nil
	case provider.SearchBySender:
		return "from:" + v, nil
	case provider.SearchByContent:
		return `"` + v + `"`, nil
	case provider.ListUnread:
		return "is:unread", nil
	case provider.ListImportant:
		return "is:important", nil
	}
	return "", fmt.Errorf("%s is not a search operation", q.Op)
}

// Search lists matching message ids. Gmail's list call returns identifiers
// only, so summaries carry just the id.
func (a *Adapter) Search(ctx context.Context, q provider.Query) ([]provider.EmailSummary, error) {
	query, err := BuildQuery(q)
	if err != nil {
		return nil, err
	}

	call := a.svc.Users.Messages.List(a.user).Q(query).Context(ctx)
	if q.MaxResults > 0 {
		call = call.MaxResults(int64(q.MaxResults))
	}
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	summaries := make([]provider.EmailSummary, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		summaries = append(summaries, provider.EmailSummary{ID: m.Id})
	}
	return summaries, nil
}
