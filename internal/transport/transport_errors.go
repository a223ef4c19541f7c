// Package transport defines interfaces and implementations for sending and receiving MCP messages.
// This file defines the structured errors produced by the transport layer.
package transport

// file: internal/transport/transport_errors.go

import (
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorCode defines specific numeric codes for transport-layer errors.
type ErrorCode int

// Defined error codes for the transport layer.
const (
	// ErrGeneric represents a general or unspecified transport error.
	ErrGeneric ErrorCode = iota + 1000
	// ErrMessageTooLarge signifies a message exceeded MaxMessageSize.
	ErrMessageTooLarge
	// ErrTransportClosed indicates the transport or its peer has gone away.
	ErrTransportClosed
	// ErrReadTimeout signifies a read abandoned because its context ended.
	ErrReadTimeout
	// ErrWriteTimeout signifies a write abandoned because its context ended.
	ErrWriteTimeout
)

// ErrorType categorizes transport errors for higher-level handling.
type ErrorType int

// Defined error types for transport errors.
const (
	ErrorTypeGeneric ErrorType = iota
	ErrorTypeMessageSize
	ErrorTypeTimeout
	ErrorTypeClosed
)

// Error represents a transport-level error.
type Error struct {
	Type    ErrorType
	Code    ErrorCode
	Message string
	Cause   error
	// Context stores additional key-value pairs (message preview, operation).
	Context map[string]interface{}

	// Size and MaxSize are set for message size errors.
	Size    int
	MaxSize int
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := fmt.Sprintf("TransportError [%d] %s", e.Code, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", base, e.Cause)
	}
	return base
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithContext adds or updates a key-value pair in the error's context map.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Is matches another transport Error with the same Type and Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// NewError creates a basic transport error with a generic type.
func NewError(code ErrorCode, message string, cause error) *Error {
	var wrappedCause error
	if cause != nil {
		wrappedCause = errors.WithStack(cause)
	}
	errType := ErrorTypeGeneric
	if code == ErrTransportClosed {
		errType = ErrorTypeClosed
	}
	return &Error{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   wrappedCause,
		Context: map[string]interface{}{
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}
}

// NewMessageSizeError creates an error for an inbound line longer than maxSize.
func NewMessageSizeError(size, maxSize int, fragment []byte) *Error {
	err := NewError(
		ErrMessageTooLarge,
		fmt.Sprintf("message size %d exceeds maximum allowed size %d", size, maxSize),
		nil,
	)
	err.Type = ErrorTypeMessageSize
	err.Size = size
	err.MaxSize = maxSize
	if len(fragment) > 0 {
		err = err.WithContext("messagePreview", string(fragment))
	}
	return err
}

// NewTimeoutError creates an error for a read or write cut short by its context.
func NewTimeoutError(operation string, cause error) *Error {
	code := ErrReadTimeout
	if operation == "write" {
		code = ErrWriteTimeout
	}
	err := NewError(code, fmt.Sprintf("%s operation timed out", operation), cause)
	err.Type = ErrorTypeTimeout
	return err.WithContext("operation", operation)
}

// NewClosedError creates an error for an operation on a closed transport.
func NewClosedError(operation string) *Error {
	err := NewError(ErrTransportClosed, fmt.Sprintf("cannot perform %s on closed transport", operation), nil)
	return err.WithContext("operation", operation)
}

// IsClosedError reports whether err signifies a closed transport or end of input.
func IsClosedError(err error) bool {
	var transportErr *Error
	if errors.As(err, &transportErr) {
		return transportErr.Type == ErrorTypeClosed
	}
	return errors.Is(err, io.EOF)
}

// isSizeError reports whether err is an oversized message error. The stream
// remains usable after one.
func isSizeError(err error) bool {
	var transportErr *Error
	return errors.As(err, &transportErr) && transportErr.Type == ErrorTypeMessageSize
}

// IsRecoverable reports whether reading may continue after err.
func IsRecoverable(err error) bool {
	return isSizeError(err)
}

// MapErrorToJSONRPC maps transport errors to JSON-RPC 2.0 error components.
// Only oversized messages are expected to reach a client; the rest end the session.
func MapErrorToJSONRPC(err error) (code int, message string, data map[string]interface{}) {
	var transportErr *Error
	if !errors.As(err, &transportErr) {
		return mcp.INTERNAL_ERROR, "Internal error", nil
	}

	switch transportErr.Code {
	case ErrMessageTooLarge:
		return mcp.INVALID_REQUEST, "Invalid Request", map[string]interface{}{
			"detail": fmt.Sprintf("Message size (%d bytes) exceeds limit (%d bytes).", transportErr.Size, transportErr.MaxSize),
		}
	default:
		return mcp.INTERNAL_ERROR, "Internal error", nil
	}
}
