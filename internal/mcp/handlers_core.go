// file: internal/mcp/handlers_core.go
package mcp

import (
	"context"
	"encoding/json"

	mcptypes "github.com/dkoosis/manifest-mcp/internal/mcp_types"
)

// handleInitialize answers the initialize handshake with the configured
// protocol version, server identity and the static capability set.
// Client parameters are logged but never rejected.
func (h *Handler) handleInitialize(_ context.Context, params json.RawMessage) (json.RawMessage, error) {
	var req mcptypes.InitializeRequest
	if len(params) > 0 {
		if err := json.Unmarshal(params, &req); err != nil {
			h.logger.Warn("Ignoring undecodable initialize params.", "error", err)
		}
	}

	serverVersion := h.config.Server.ProtocolVersion
	h.logger.Info("Handling initialize request.",
		"clientName", req.ClientInfo.Name,
		"clientVersion", req.ClientInfo.Version,
		"clientProtocolVersion", req.ProtocolVersion,
		"serverProtocolVersion", serverVersion)
	if req.ProtocolVersion != "" && req.ProtocolVersion != serverVersion {
		h.logger.Warn("Client requested a different protocol version.",
			"clientRequested", req.ProtocolVersion,
			"serverRespondingWith", serverVersion)
	}

	return marshalResult(mcptypes.InitializeResult{
		ProtocolVersion: serverVersion,
		Capabilities: mcptypes.ServerCapabilities{
			Prompts:   mcptypes.PromptsCapability{ListChanged: false},
			Resources: mcptypes.ResourcesCapability{Subscribe: false, ListChanged: false},
		},
		ServerInfo: mcptypes.Implementation{
			Name:    h.config.Server.Name,
			Version: h.config.Server.Version,
		},
	}, "InitializeResult")
}
