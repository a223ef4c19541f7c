// file: internal/transport/in_memory_transport.go
package transport

import (
	"context"
	"sync"
)

// InMemoryTransport implements Transport using in-memory channels.
// Two linked instances stand in for a client and the server in tests.
type InMemoryTransport struct {
	incoming chan []byte
	outgoing chan []byte

	closed    bool
	closeLock sync.RWMutex
	closeOnce sync.Once

	readLock sync.Mutex
}

// InMemoryTransportPair contains a pair of linked InMemoryTransport instances.
type InMemoryTransportPair struct {
	ClientTransport *InMemoryTransport
	ServerTransport *InMemoryTransport
}

// NewInMemoryTransportPair creates two transports wired to each other.
// Messages written to one can be read from the other. Closing one side
// ends the peer's input once it has drained what was already sent.
func NewInMemoryTransportPair() *InMemoryTransportPair {
	clientToServer := make(chan []byte, 100)
	serverToClient := make(chan []byte, 100)

	return &InMemoryTransportPair{
		ClientTransport: &InMemoryTransport{incoming: serverToClient, outgoing: clientToServer},
		ServerTransport: &InMemoryTransport{incoming: clientToServer, outgoing: serverToClient},
	}
}

// ReadMessage implements Transport.ReadMessage.
func (t *InMemoryTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	t.readLock.Lock()
	defer t.readLock.Unlock()

	t.closeLock.RLock()
	if t.closed {
		t.closeLock.RUnlock()
		return nil, NewClosedError("read")
	}
	t.closeLock.RUnlock()

	select {
	case <-ctx.Done():
		return nil, NewTimeoutError("read", ctx.Err())
	case msg, ok := <-t.incoming:
		if !ok {
			return nil, NewClosedError("read from closed peer")
		}
		return msg, nil
	}
}

// WriteMessage implements Transport.WriteMessage.
func (t *InMemoryTransport) WriteMessage(ctx context.Context, message []byte) error {
	t.closeLock.RLock()
	defer t.closeLock.RUnlock()

	if t.closed {
		return NewClosedError("write")
	}

	msg := make([]byte, len(message))
	copy(msg, message)

	select {
	case <-ctx.Done():
		return NewTimeoutError("write", ctx.Err())
	case t.outgoing <- msg:
		return nil
	}
}

// Close implements Transport.Close. It closes the outgoing channel so the
// peer observes end of input.
func (t *InMemoryTransport) Close() error {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()

	t.closeOnce.Do(func() {
		t.closed = true
		close(t.outgoing)
	})
	return nil
}
