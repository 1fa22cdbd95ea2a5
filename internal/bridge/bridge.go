package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	errs "github.com/wagiedev/agentwire/internal/errors"
	"github.com/wagiedev/agentwire/internal/queue"
)

// DefaultTimeout bounds the wait for a reply matching a delivered request.
const DefaultTimeout = 60 * time.Second

// ServerBridge exposes HandleRequest over a lazily-connected in-process
// service. Calls are serialized so the service's message handler never runs
// reentrantly, and replies are matched to requests by identifier.
type ServerBridge struct {
	log     *slog.Logger
	name    string
	service Service
	timeout time.Duration

	mu        sync.Mutex
	transport *Transport
	connected bool

	closeOnce sync.Once
	closeErr  error
}

// NewServerBridge wraps service under the given server name. A timeout of
// zero or less selects DefaultTimeout.
func NewServerBridge(log *slog.Logger, name string, service Service, timeout time.Duration) *ServerBridge {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &ServerBridge{
		log:       log.With("component", "bridge", "server", name),
		name:      name,
		service:   service,
		timeout:   timeout,
		transport: NewTransport(),
	}
}

// HandleRequest delivers one JSON-RPC message to the service and returns the
// matching reply. The service is connected on first use. A message without
// an identifier is a fire-and-forget notification and synthesizes an empty
// success reply without waiting.
func (b *ServerBridge) HandleRequest(ctx context.Context, msg map[string]any) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.connectLocked(); err != nil {
		return nil, err
	}

	if err := b.transport.Deliver(msg); err != nil {
		return nil, &errs.BridgeError{Server: b.name, Err: err}
	}

	id, ok := msg["id"]
	if !ok || id == nil {
		return map[string]any{}, nil
	}

	return b.awaitReply(ctx, normalizeID(id))
}

func (b *ServerBridge) connectLocked() error {
	if b.connected {
		return nil
	}

	if b.service == nil {
		return &errs.BridgeError{Server: b.name, Err: errors.New("no service instance")}
	}

	if err := b.service.Connect(b.transport); err != nil {
		return &errs.BridgeError{Server: b.name, Err: err}
	}

	b.connected = true
	b.log.Debug("connected in-process server", "session_id", b.transport.SessionID())

	return nil
}

// awaitReply pulls outbound messages until one carries the expected
// identifier, discarding everything else (e.g. unrelated notifications).
func (b *ServerBridge) awaitReply(ctx context.Context, want string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	for {
		reply, err := b.transport.Messages().Next(ctx)

		switch {
		case errors.Is(err, queue.ErrClosed):
			return nil, errs.ErrBridgeClosed
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w after %s waiting for id %q", errs.ErrBridgeTimeout, b.timeout, want)
		case err != nil:
			return nil, err
		}

		if normalizeID(reply["id"]) == want {
			return reply, nil
		}

		b.log.Debug("discarding unmatched reply", "want", want, "got", reply["id"])
	}
}

// Close tears down the in-memory transport and then the service, when the
// service exposes a Close method. Errors are the caller's to handle; the
// engine logs and discards them.
//
// Close deliberately does not take the serialization mutex: closing the
// outbound queue is what unblocks an in-flight HandleRequest, which then
// fails with ErrBridgeClosed instead of holding the lock until its timeout.
func (b *ServerBridge) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.transport.Close()

		if closer, ok := b.service.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil && b.closeErr == nil {
				b.closeErr = cerr
			}
		}
	})

	return b.closeErr
}

// normalizeID renders a JSON-RPC identifier for comparison. Decoded JSON
// numbers arrive as float64, so numeric 1 and string "1" normalize to the
// same key; absent and null identifiers are one class (empty string).
func normalizeID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
