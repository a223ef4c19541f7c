// Package transport defines interfaces and implementations for sending and receiving MCP messages.
package transport

// file: internal/transport/transport.go

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/manifest-mcp/internal/logging"
)

// MaxMessageSize defines the maximum allowed size for a single inbound message in bytes.
const MaxMessageSize = 1024 * 1024 // 1MB.

// previewSize bounds the message fragments copied into logs and errors.
const previewSize = 100

// Transport defines the interface for sending and receiving JSON-RPC messages.
// Implementations must be safe for one reader and many writers.
type Transport interface {
	// ReadMessage returns the next non-blank message from the transport.
	// The bytes are not validated; classifying them is the caller's job.
	ReadMessage(ctx context.Context) ([]byte, error)

	// WriteMessage sends a single message. Framing is added by the transport.
	WriteMessage(ctx context.Context, message []byte) error

	// Close shuts down the transport. Blocked reads return a closed error.
	Close() error
}

// preview returns at most previewSize bytes of message.
func preview(message []byte) []byte {
	return message[:min(len(message), previewSize)]
}

type readResult struct {
	data []byte
	err  error
}

// NDJSONTransport implements Transport for newline-delimited JSON over
// any reader and writer pair, typically stdin and stdout.
type NDJSONTransport struct {
	reader    *bufio.Reader
	writer    io.Writer
	closer    io.Closer
	logger    logging.Logger
	writeLock sync.Mutex

	startOnce sync.Once
	lines     chan readResult
	done      chan struct{}

	closed    bool
	closeLock sync.RWMutex
}

// NewNDJSONTransport creates a transport that reads NDJSON from reader and
// writes NDJSON to writer. closer, if non-nil, is closed by Close.
func NewNDJSONTransport(reader io.Reader, writer io.Writer, closer io.Closer, logger logging.Logger) *NDJSONTransport {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &NDJSONTransport{
		reader: bufio.NewReaderSize(reader, 64*1024),
		writer: writer,
		closer: closer,
		logger: logger.WithField("component", "ndjson_transport"),
		lines:  make(chan readResult),
		done:   make(chan struct{}),
	}
}

// readLoop delivers lines to ReadMessage until the reader fails.
// One goroutine owns the bufio.Reader so a cancelled ReadMessage never
// leaves a second reader racing on the same stream.
func (t *NDJSONTransport) readLoop() {
	defer close(t.lines)
	for {
		data, err := t.readLine()
		if err == nil && len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		select {
		case t.lines <- readResult{data: data, err: err}:
		case <-t.done:
			return
		}
		if err != nil && !isSizeError(err) {
			return
		}
	}
}

// readLine reads one line, stripping the terminator. An oversized line is
// consumed up to its newline so the stream stays in sync, and a size error
// is returned in its place. A final line without a newline is still returned.
func (t *NDJSONTransport) readLine() ([]byte, error) {
	var buffer bytes.Buffer
	totalSize := 0
	oversized := false

	for {
		chunk, isPrefix, err := t.reader.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if totalSize > 0 && !oversized {
					return buffer.Bytes(), nil
				}
				return nil, NewError(ErrTransportClosed, "connection closed by peer", io.EOF)
			}
			return nil, NewError(ErrGeneric, "failed to read message line", err)
		}

		totalSize += len(chunk)
		if !oversized {
			if totalSize > MaxMessageSize {
				oversized = true
			} else {
				buffer.Write(chunk)
			}
		}

		if !isPrefix {
			break
		}
	}

	if oversized {
		return nil, NewMessageSizeError(totalSize, MaxMessageSize, preview(buffer.Bytes()))
	}

	message := bytes.TrimSuffix(buffer.Bytes(), []byte("\r"))
	t.logger.Debug("Received raw message.", "size", len(message), "contentPreview", string(preview(message)))
	return message, nil
}

// ReadMessage implements Transport.ReadMessage for NDJSON.
func (t *NDJSONTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	t.closeLock.RLock()
	if t.closed {
		t.closeLock.RUnlock()
		return nil, NewClosedError("read")
	}
	t.closeLock.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, NewTimeoutError("read", err)
	}
	t.startOnce.Do(func() { go t.readLoop() })

	select {
	case <-ctx.Done():
		return nil, NewTimeoutError("read", ctx.Err())
	case <-t.done:
		return nil, NewClosedError("read")
	case result, ok := <-t.lines:
		if !ok {
			return nil, NewClosedError("read")
		}
		if result.err != nil && !IsClosedError(result.err) {
			t.logger.Warn("Error reading message.", "error", result.err)
		}
		return result.data, result.err
	}
}

// WriteMessage implements Transport.WriteMessage for NDJSON.
// It writes message followed by a single newline in one Write call.
func (t *NDJSONTransport) WriteMessage(ctx context.Context, message []byte) error {
	t.closeLock.RLock()
	if t.closed {
		t.closeLock.RUnlock()
		return NewClosedError("write")
	}
	t.closeLock.RUnlock()

	if err := ctx.Err(); err != nil {
		return NewTimeoutError("write", err)
	}

	t.writeLock.Lock()
	defer t.writeLock.Unlock()

	buf := make([]byte, len(message)+1)
	copy(buf, message)
	buf[len(message)] = '\n'

	t.logger.Debug("Writing message.", "size", len(buf), "contentPreview", string(preview(message)))
	n, err := t.writer.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		t.logger.Error("Failed to write message.", "error", err)
		return NewError(ErrGeneric, "failed to write message", err)
	}
	return nil
}

// Close implements Transport.Close.
func (t *NDJSONTransport) Close() error {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()

	if t.closed {
		return nil
	}

	t.logger.Debug("Closing NDJSON transport.")
	t.closed = true
	close(t.done)

	if t.closer != nil {
		if err := t.closer.Close(); err != nil {
			return NewError(ErrTransportClosed, "failed to close underlying transport stream", err)
		}
	}
	return nil
}
