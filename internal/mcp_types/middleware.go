// file: internal/mcp_types/middleware.go
package mcptypes

import (
	"context"
)

// MessageHandler processes one raw inbound message and returns the raw
// response, or nil when the message warrants no response.
type MessageHandler func(ctx context.Context, message []byte) ([]byte, error)

// MiddlewareFunc wraps a MessageHandler with additional behavior such as
// tracing or logging.
type MiddlewareFunc func(handler MessageHandler) MessageHandler

// Chain composes middleware around a final MessageHandler.
type Chain interface {
	// Use adds a middleware function to the chain. The first added runs outermost.
	Use(middleware MiddlewareFunc) Chain

	// Handler returns the composed handler.
	Handler() MessageHandler
}
