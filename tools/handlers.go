package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rgabriel/mcp-mail-router/provider"
)

// errorPrefix starts the text of every failed tool call.
const errorPrefix = "Erreur: "

// Handler creates the handler for one catalog entry. Failures are returned
// as error results, never as Go errors.
func Handler(spec Spec, d Dispatcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := spec.Validate(req.GetArguments())
		if err != nil {
			return errorResult(err), nil
		}

		out, err := d.Dispatch(ctx, r)
		if err != nil {
			return errorResult(err), nil
		}

		text, err := render(r, out)
		if err != nil {
			return errorResult(err), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(errorPrefix + err.Error())
}

// render formats a successful outcome as the confirmation text.
func render(req provider.Request, out *provider.Outcome) (string, error) {
	if out == nil {
		return "", fmt.Errorf("%s returned no result", req.Op)
	}

	switch req.Op {
	case provider.CreateDraft:
		return fmt.Sprintf("Brouillon créé avec l'ID: %s", out.MessageID), nil
	case provider.Send:
		return fmt.Sprintf("Email envoyé avec l'ID: %s", out.MessageID), nil
	case provider.Reply:
		return fmt.Sprintf("Réponse envoyée avec l'ID: %s", out.MessageID), nil
	case provider.MarkRead:
		return fmt.Sprintf("Email %s marqué comme lu", req.MessageID), nil
	case provider.MarkImportant:
		return fmt.Sprintf("Email %s marqué comme important", req.MessageID), nil

	case provider.FetchContent:
		data, err := json.MarshalIndent(out.Summary, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to format response: %w", err)
		}
		return fmt.Sprintf("Contenu de l'email %s\n\n%s", req.MessageID, data), nil
	}

	var head string
	switch req.Op {
	case provider.SearchBySubject:
		head = fmt.Sprintf("Trouvé %d emails avec le sujet %q", out.Count, req.Query.Value)
	case provider.SearchBySender:
		head = fmt.Sprintf("Trouvé %d emails de %s", out.Count, req.Query.Value)
	case provider.SearchByContent:
		head = fmt.Sprintf("Trouvé %d emails contenant %q", out.Count, req.Query.Value)
	case provider.ListUnread:
		head = fmt.Sprintf("%d emails non lus trouvés", out.Count)
	case provider.ListImportant:
		head = fmt.Sprintf("%d emails importants trouvés", out.Count)
	default:
		return "", fmt.Errorf("no rendering for %s", req.Op)
	}

	if len(out.Summaries) == 0 {
		return head, nil
	}
	data, err := json.MarshalIndent(out.Summaries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format response: %w", err)
	}
	return head + "\n\n" + string(data), nil
}
