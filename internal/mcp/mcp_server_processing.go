// file: internal/mcp/mcp_server_processing.go
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
	mcptypes "github.com/dkoosis/manifest-mcp/internal/mcp_types"
	"github.com/dkoosis/manifest-mcp/internal/transport"
)

// errInputEnded stops the serve loop when the peer is gone.
var errInputEnded = errors.New("input ended")

// envelope holds the members of an inbound message. Fields stay raw so a
// member of the wrong type is reported as an invalid request, not a parse error.
type envelope struct {
	JSONRPC json.RawMessage `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  json.RawMessage `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// serverProcessing is the main loop: read one message, handle it to
// completion, write the response, repeat.
func (s *Server) serverProcessing(ctx context.Context, handlerFunc mcptypes.MessageHandler) error {
	if handlerFunc == nil {
		return errors.New("serve called with nil handler function")
	}

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("Context canceled, stopping server loop.")
			return err
		}
		if err := s.processNextMessage(ctx, handlerFunc); err != nil {
			if errors.Is(err, errInputEnded) {
				s.logger.Info("Input ended, stopping server loop.")
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				s.logger.Info("Context canceled, stopping server loop.")
				return ctxErr
			}
			s.logger.Error("Terminal error, stopping server loop.", "error", fmt.Sprintf("%+v", err))
			return err
		}
	}
}

// processNextMessage handles reading, processing and responding to a single
// message. It returns an error only when the loop must stop.
func (s *Server) processNextMessage(ctx context.Context, handlerFunc mcptypes.MessageHandler) error {
	msgBytes, readErr := s.transport.ReadMessage(ctx)
	if readErr != nil {
		return s.handleTransportReadError(ctx, readErr)
	}

	done := s.metrics.TrackInFlight()
	respBytes, handleErr := handlerFunc(ctx, msgBytes)
	done()

	if handleErr != nil {
		return s.handleProcessingError(ctx, msgBytes, handleErr)
	}
	if respBytes == nil {
		return nil
	}
	return s.writeResponse(ctx, respBytes)
}

// handleTransportReadError decides whether a read error ends the loop. An
// oversized line is answered with an error response and reading continues.
func (s *Server) handleTransportReadError(ctx context.Context, readErr error) error {
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case transport.IsClosedError(readErr):
		return errInputEnded
	case transport.IsRecoverable(readErr):
		s.metrics.RecordTransportError("oversized")
		code, message, data := transport.MapErrorToJSONRPC(readErr)
		s.logger.Warn("Rejected unreadable message.", "code", code, "error", readErr)
		respBytes, err := s.marshalError(mcptypes.NullID, code, message, data)
		if err != nil {
			return err
		}
		return s.writeResponse(ctx, respBytes)
	default:
		s.metrics.RecordTransportError("read")
		return errors.Wrap(readErr, "failed to read message")
	}
}

// handleMessage is the final handler of the middleware chain. It returns the
// response bytes, nil for notifications, or an error to be sent back as an
// error response.
func (s *Server) handleMessage(ctx context.Context, message []byte) ([]byte, error) {
	var probe interface{}
	if err := json.Unmarshal(message, &probe); err != nil {
		s.metrics.RecordTransportError("parse")
		return nil, mcperrors.NewParseError("message is not valid JSON", err)
	}
	if _, isObject := probe.(map[string]interface{}); !isObject {
		s.metrics.RecordTransportError("invalid_request")
		return nil, mcperrors.NewInvalidRequestError("message must be a JSON object", nil)
	}

	var env envelope
	if err := json.Unmarshal(message, &env); err != nil {
		s.metrics.RecordTransportError("invalid_request")
		return nil, mcperrors.NewInvalidRequestError("message could not be decoded", err)
	}
	var method string
	if len(env.Method) == 0 || json.Unmarshal(env.Method, &method) != nil {
		s.metrics.RecordTransportError("invalid_request")
		return nil, mcperrors.NewInvalidRequestError("method must be a string", nil)
	}
	if !validID(env.ID) {
		s.metrics.RecordTransportError("invalid_request")
		return nil, mcperrors.NewInvalidRequestError("id must be a string, number or null", nil)
	}
	isNotification := env.ID == nil

	span := trace.SpanFromContext(ctx)
	span.SetName("mcp." + method)
	span.SetAttributes(
		attribute.String("rpc.system", "jsonrpc"),
		attribute.String("rpc.method", method),
		attribute.Bool("mcp.notification", isNotification),
	)

	if s.options.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.router.Route(ctx, method, env.Params, isNotification)
	s.recordRequestMetrics(method, start, err)

	if isNotification {
		if err != nil {
			s.logger.Warn("Notification handling failed, no response sent.", "method", method, "error", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	resp, err := json.Marshal(mcptypes.Response{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      env.ID,
		Result:  result,
	})
	if err != nil {
		return nil, mcperrors.NewInternalError("failed to marshal response", err, map[string]interface{}{"method": method})
	}
	return resp, nil
}

// validID reports whether id is absent or a JSON string, number or null.
func validID(id json.RawMessage) bool {
	trimmed := bytes.TrimSpace(id)
	if len(trimmed) == 0 {
		return true
	}
	switch trimmed[0] {
	case '{', '[', 't', 'f':
		return false
	}
	return true
}

// handleProcessingError sends err back to the client as a JSON-RPC error
// response. It returns an error only if writing the response fails.
func (s *Server) handleProcessingError(ctx context.Context, msgBytes []byte, handleErr error) error {
	errRespBytes, err := s.createErrorResponse(msgBytes, handleErr)
	if err != nil {
		return err
	}
	return s.writeResponse(ctx, errRespBytes)
}

// writeResponse sends response bytes through the transport. A closed
// transport ends the loop quietly.
func (s *Server) writeResponse(ctx context.Context, respBytes []byte) error {
	if err := s.transport.WriteMessage(ctx, respBytes); err != nil {
		if transport.IsClosedError(err) {
			return errInputEnded
		}
		s.metrics.RecordTransportError("write")
		return errors.Wrap(err, "failed to write response")
	}
	return nil
}
