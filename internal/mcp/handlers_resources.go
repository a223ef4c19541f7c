// file: internal/mcp/handlers_resources.go
package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
	mcptypes "github.com/dkoosis/manifest-mcp/internal/mcp_types"
	"github.com/dkoosis/manifest-mcp/internal/resources"
)

func (h *Handler) handleResourcesList(_ context.Context, _ json.RawMessage) (json.RawMessage, error) {
	listed := h.store.List()
	out := make([]mcptypes.Resource, 0, len(listed))
	for _, r := range listed {
		out = append(out, mcptypes.Resource{
			URI:         r.URI,
			Name:        r.Name,
			Description: r.Description,
			MimeType:    r.MIMEType,
		})
	}
	h.logger.Debug("Listed resources.", "count", len(out))
	return marshalResult(mcptypes.ListResourcesResult{Resources: out}, "ListResourcesResult")
}

// handleResourcesRead strips the resource:/// prefix from the uri and
// returns the named resource's text. The uri is echoed as given.
func (h *Handler) handleResourcesRead(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.ReadResourceRequest
	if err := decodeParams(params, &req, methodResourcesRead); err != nil {
		return nil, err
	}

	name := resources.NameFromURI(req.URI)
	text, ok := h.store.Read(name)
	if !ok {
		h.logger.Info("Resource not found.", "uri", req.URI)
		return nil, mcperrors.NewResourceNotFoundError(req.URI)
	}

	return marshalResult(mcp.ReadResourceResult{
		Contents: []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.URI,
				MIMEType: resources.MIMEType(name),
				Text:     text,
			},
		},
	}, "ReadResourceResult")
}
