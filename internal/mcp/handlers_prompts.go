// file: internal/mcp/handlers_prompts.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
	mcptypes "github.com/dkoosis/manifest-mcp/internal/mcp_types"
	"github.com/dkoosis/manifest-mcp/internal/prompts"
)

// ListPrompts returns every loadable prompt in scan order. Missing
// descriptions are "" and missing arguments are an empty list.
func (h *Handler) ListPrompts(ctx context.Context) (mcptypes.ListPromptsResult, error) {
	found, err := h.catalog.List(ctx)
	if err != nil {
		return mcptypes.ListPromptsResult{}, mcperrors.NewInternalError("failed to list prompts", err, nil)
	}

	out := make([]mcptypes.Prompt, 0, len(found))
	for _, p := range found {
		published := p.PublishedArguments()
		args := make([]mcptypes.PromptArgument, 0, len(published))
		for _, a := range published {
			args = append(args, mcptypes.PromptArgument{Name: a.Name, Description: a.Description, Required: a.Required})
		}
		out = append(out, mcptypes.Prompt{
			Name:        p.Name(),
			Description: p.Description,
			Arguments:   args,
		})
	}
	return mcptypes.ListPromptsResult{Prompts: out}, nil
}

// GetPrompt resolves name and expands it into its user messages.
func (h *Handler) GetPrompt(ctx context.Context, name string) (mcptypes.GetPromptResult, error) {
	p, ok, err := h.catalog.Resolve(ctx, name)
	if err != nil {
		return mcptypes.GetPromptResult{}, mcperrors.NewInternalError("failed to resolve prompt", err,
			map[string]interface{}{"name": name})
	}
	if !ok {
		h.logger.Info("Prompt not found.", "name", name)
		return mcptypes.GetPromptResult{}, mcperrors.NewPromptNotFoundError(name)
	}

	blocks := h.resolver.Messages(p, name)
	messages := make([]mcptypes.PromptMessage, 0, len(blocks))
	for _, b := range blocks {
		messages = append(messages, promptMessage(b))
	}

	h.logger.Debug("Prompt expanded.", "name", name, "path", p.Path, "messages", len(messages))
	return mcptypes.GetPromptResult{
		Description: p.Description,
		Messages:    messages,
	}, nil
}

func promptMessage(b prompts.Block) mcptypes.PromptMessage {
	msg := mcptypes.PromptMessage{Role: string(mcp.RoleUser)}
	switch b.Kind {
	case prompts.BlockResource:
		msg.Content = mcptypes.ResourceContent{
			Type:     "resource",
			Resource: mcptypes.EmbeddedText{Type: "text", Text: b.Text},
		}
	default:
		msg.Content = mcptypes.TextContent{Type: "text", Text: b.Text}
	}
	return msg
}

func (h *Handler) handlePromptsList(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
	res, err := h.ListPrompts(ctx)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("Listed prompts.", "count", len(res.Prompts))
	return marshalResult(res, "ListPromptsResult")
}

func (h *Handler) handlePromptsGet(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.GetPromptRequest
	if err := decodeParams(params, &req, methodPromptsGet); err != nil {
		return nil, err
	}
	if len(req.Arguments) > 0 {
		h.logger.Debug("Prompt arguments are accepted but not substituted.", "name", req.Name, "arguments", len(req.Arguments))
	}

	res, err := h.GetPrompt(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return marshalResult(res, "GetPromptResult")
}
