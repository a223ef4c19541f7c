// file: internal/mcp/mcp_server_error_handling.go
package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
	mcptypes "github.com/dkoosis/manifest-mcp/internal/mcp_types"
)

// createErrorResponse builds the JSON-RPC error response for a message that
// failed. The request id is echoed when it can be recovered, else null.
func (s *Server) createErrorResponse(msgBytes []byte, err error) ([]byte, error) {
	requestID := extractRequestID(s.logger, msgBytes)
	code, message, data := mcperrors.MapMCPErrorToJSONRPC(err)
	s.logErrorDetails(code, message, requestID, data, err)
	return s.marshalError(requestID, code, message, data)
}

func (s *Server) marshalError(id json.RawMessage, code int, message string, data map[string]interface{}) ([]byte, error) {
	payload := mcptypes.JSONRPCErrorPayload{Code: code, Message: message}
	if len(data) > 0 {
		payload.Data = data
	}
	b, err := json.Marshal(mcptypes.JSONRPCErrorContainer{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Error:   payload,
	})
	if err != nil {
		s.logger.Error("Failed to marshal error response.", "error", fmt.Sprintf("%+v", err))
		return nil, errors.Wrap(err, "failed to marshal error response object")
	}
	return b, nil
}

// extractRequestID attempts to get the id from raw message bytes. Missing,
// unparsable and non-scalar ids become null.
func extractRequestID(logger logging.Logger, msgBytes []byte) json.RawMessage {
	var request struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(msgBytes, &request); err != nil || request.ID == nil {
		return mcptypes.NullID
	}
	if !validID(request.ID) {
		logger.Warn("Invalid JSON-RPC id, answering with null.", "rawId", string(request.ID))
		return mcptypes.NullID
	}
	return request.ID
}

// logErrorDetails logs an error response server side. Failures of the server
// itself are errors; failures caused by the request are warnings.
func (s *Server) logErrorDetails(code int, message string, requestID json.RawMessage, data map[string]interface{}, err error) {
	args := []interface{}{
		"jsonrpcErrorCode", code,
		"jsonrpcErrorMessage", message,
		"requestID", string(requestID),
	}
	if len(data) > 0 {
		args = append(args, "errorData", data)
	}

	if code == mcp.INTERNAL_ERROR {
		args = append(args, "originalError", fmt.Sprintf("%+v", err))
		s.logger.Error("Generating JSON-RPC error response.", args...)
		return
	}
	args = append(args, "originalError", err.Error())
	s.logger.Warn("Generating JSON-RPC error response.", args...)
}
