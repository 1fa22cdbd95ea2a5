// Package bridge drives an in-process service through the JSON-RPC-shaped
// request/response contract the peer expects from a remote MCP server.
package bridge

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	errs "github.com/wagiedev/agentwire/internal/errors"
	"github.com/wagiedev/agentwire/internal/queue"
)

// Service is the contract an in-process server satisfies to be driven
// through the bridge. Connect receives the in-memory transport and must
// register a message handler before returning. A service may additionally
// implement Close() error for teardown.
type Service interface {
	Connect(t *Transport) error
}

// Transport is the in-memory duplex adapter handed to a Service's Connect.
// Deliver pushes a message into the service's registered handler; Send
// carries the service's replies out through an async queue that the
// ServerBridge pulls for correlation.
type Transport struct {
	sessionID string
	out       *queue.Queue[map[string]any]

	mu        sync.Mutex
	onMessage func(map[string]any) error
	onClose   func()
	onError   func(error)
	closed    bool
}

// NewTransport returns an open transport with a fresh session identifier.
func NewTransport() *Transport {
	return &Transport{
		sessionID: uuid.NewString(),
		out:       queue.New[map[string]any](),
	}
}

// SessionID identifies this transport instance.
func (t *Transport) SessionID() string {
	return t.sessionID
}

// SetMessageHandler registers the function invoked for each delivered
// message.
func (t *Transport) SetMessageHandler(handler func(map[string]any) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMessage = handler
}

// SetCloseHandler registers the function invoked once when the transport
// closes.
func (t *Transport) SetCloseHandler(handler func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClose = handler
}

// SetErrorHandler registers the function that receives message-handler
// errors instead of the Deliver caller.
func (t *Transport) SetErrorHandler(handler func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onError = handler
}

// Send enqueues an outbound message from the service. It returns
// queue.ErrClosed once the transport has been closed.
func (t *Transport) Send(msg map[string]any) error {
	return t.out.Push(msg)
}

// Deliver invokes the registered message handler with msg, in the caller's
// goroutine. A handler error is routed to the error handler when one is
// registered; otherwise it is returned.
func (t *Transport) Deliver(msg map[string]any) error {
	t.mu.Lock()
	handler := t.onMessage
	onError := t.onError
	t.mu.Unlock()

	if handler == nil {
		return fmt.Errorf("%w: no message handler registered", errs.ErrTransportNotReady)
	}

	if err := handler(msg); err != nil {
		if onError != nil {
			onError(err)

			return nil
		}

		return err
	}

	return nil
}

// Messages exposes the outbound leg for the bridge's correlation loop.
func (t *Transport) Messages() *queue.Queue[map[string]any] {
	return t.out
}

// Close ends the outbound queue and fires the close handler exactly once.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()

		return nil
	}

	t.closed = true
	onClose := t.onClose
	t.mu.Unlock()

	t.out.Close()

	if onClose != nil {
		onClose()
	}

	return nil
}
