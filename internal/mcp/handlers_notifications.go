// file: internal/mcp/handlers_notifications.go
package mcp

import (
	"context"
	"encoding/json"
)

// handleNotificationsInitialized accepts the client's initialized
// notification. Nothing is tracked per session, so it is only logged.
func (h *Handler) handleNotificationsInitialized(_ context.Context, _ json.RawMessage) error {
	h.logger.Debug("Client reported initialized.")
	return nil
}
