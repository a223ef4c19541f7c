// Package errors defines domain-specific error types and codes for the MCP layer.
// These errors carry more context than plain Go errors and are mapped to
// JSON-RPC error objects in exactly one place, MapMCPErrorToJSONRPC.
package errors

// file: internal/mcp/mcp_errors/errors.go

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorCode defines domain-specific error codes for the MCP layer.
type ErrorCode int

// Lookup errors. Both are reported to clients as invalid params.
const (
	ErrPromptNotFound ErrorCode = 3000 + iota
	ErrResourceNotFound
	ErrMalformedManifest
)

// Protocol errors that share their value with the JSON-RPC code.
const (
	ErrParseError     ErrorCode = mcp.PARSE_ERROR
	ErrInvalidRequest ErrorCode = mcp.INVALID_REQUEST
	ErrMethodNotFound ErrorCode = mcp.METHOD_NOT_FOUND
	ErrInvalidParams  ErrorCode = mcp.INVALID_PARAMS
	ErrInternalError  ErrorCode = mcp.INTERNAL_ERROR
)

// BaseError is the common base for MCP error types.
type BaseError struct {
	// Code is a numeric error code for categorization.
	Code ErrorCode
	// Message is a human-readable error message for logs.
	Message string
	// Cause is the underlying error, if any.
	Cause error
	// Context contains additional key-value details (prompt name, uri).
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *BaseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("MCPError (Code: %d): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("MCPError (Code: %d): %s", e.Code, e.Message)
}

// Unwrap returns the underlying error (Cause), enabling errors.Is and errors.As.
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithContext adds a key-value pair to the error's context map.
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func newBaseError(code ErrorCode, message string, cause error, context map[string]interface{}) *BaseError {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &BaseError{
		Code:    code,
		Message: message,
		Cause:   wrapped,
		Context: context,
	}
}

// NewPromptNotFoundError reports that no prompt file resolves to name.
func NewPromptNotFoundError(name string) error {
	return newBaseError(ErrPromptNotFound, fmt.Sprintf("prompt '%s' not found", name), nil,
		map[string]interface{}{"name": name})
}

// NewResourceNotFoundError reports that the resource behind uri does not exist.
func NewResourceNotFoundError(uri string) error {
	return newBaseError(ErrResourceNotFound, fmt.Sprintf("resource '%s' not found", uri), nil,
		map[string]interface{}{"uri": uri})
}

// NewMalformedManifestError reports a manifest file that could not be parsed or validated.
func NewMalformedManifestError(path string, cause error) error {
	return newBaseError(ErrMalformedManifest, fmt.Sprintf("malformed manifest file '%s'", path), cause,
		map[string]interface{}{"path": path})
}

// NewParseError creates a JSON parse error (maps to -32700).
func NewParseError(message string, cause error) error {
	return newBaseError(ErrParseError, message, cause, nil)
}

// NewInvalidRequestError creates an invalid request structure error (maps to -32600).
func NewInvalidRequestError(message string, cause error) error {
	return newBaseError(ErrInvalidRequest, message, cause, nil)
}

// NewMethodNotFoundError creates an error for method not found (maps to -32601).
func NewMethodNotFoundError(method string) error {
	return newBaseError(ErrMethodNotFound, fmt.Sprintf("method '%s' not found", method), nil,
		map[string]interface{}{"method": method})
}

// NewInvalidParamsError creates an error for invalid parameters (maps to -32602).
func NewInvalidParamsError(message string, cause error, context map[string]interface{}) error {
	return newBaseError(ErrInvalidParams, message, cause, context)
}

// NewInternalError creates a generic internal server error (maps to -32603).
func NewInternalError(message string, cause error, context map[string]interface{}) error {
	return newBaseError(ErrInternalError, message, cause, context)
}

// IsMalformedManifest reports whether err is (or wraps) a malformed manifest error.
func IsMalformedManifest(err error) bool {
	var baseErr *BaseError
	return errors.As(err, &baseErr) && baseErr.Code == ErrMalformedManifest
}

// --- JSON-RPC Error Mapping ---.

// MapMCPErrorToJSONRPC translates an error into JSON-RPC components.
// Messages for the lookup and dispatch failures are fixed strings clients match on.
func MapMCPErrorToJSONRPC(err error) (code int, message string, data map[string]interface{}) {
	data = make(map[string]interface{})

	var baseErr *BaseError
	if !errors.As(err, &baseErr) {
		return mcp.INTERNAL_ERROR, "Internal error", nil
	}

	switch baseErr.Code {
	case ErrParseError:
		code = mcp.PARSE_ERROR
		message = "Parse error"
		if baseErr.Cause != nil {
			message = "Parse error: " + errors.UnwrapAll(baseErr.Cause).Error()
		}
	case ErrInvalidRequest:
		code = mcp.INVALID_REQUEST
		message = "Invalid Request"
		data["detail"] = baseErr.Message
	case ErrMethodNotFound:
		code = mcp.METHOD_NOT_FOUND
		message = "Method not found"
	case ErrInvalidParams:
		code = mcp.INVALID_PARAMS
		message = "Invalid params"
		data["detail"] = baseErr.Message
	case ErrPromptNotFound:
		code = mcp.INVALID_PARAMS
		message = "Prompt not found"
	case ErrResourceNotFound:
		code = mcp.INVALID_PARAMS
		message = "Resource not found"
	default:
		code = mcp.INTERNAL_ERROR
		message = "Internal error"
	}

	for k, v := range baseErr.Context {
		switch k {
		case "uri", "name", "method":
			if _, exists := data[k]; !exists {
				data[k] = v
			}
		default:
			// Paths and other internal details stay server-side.
		}
	}

	if len(data) == 0 {
		data = nil
	}
	return code, message, data
}
