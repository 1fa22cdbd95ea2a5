package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/agentwire/internal/bridge"
	"github.com/wagiedev/agentwire/internal/config"
	errs "github.com/wagiedev/agentwire/internal/errors"
	"github.com/wagiedev/agentwire/internal/hook"
	"github.com/wagiedev/agentwire/internal/permission"
	"github.com/wagiedev/agentwire/internal/queue"
)

// Engine multiplexes two kinds of traffic over one ordered channel of JSON
// lines: free-form data messages, which flow to ReceiveMessages untouched,
// and correlated control exchanges, which the engine resolves itself.
//
// A single read loop owns the inbound side. Engine-initiated requests are
// correlated by request id through a pending table; peer-initiated requests
// are dispatched to handlers on their own goroutines so a slow callback
// never stalls the loop. Every peer request terminates in exactly one
// control response.
type Engine struct {
	log       *slog.Logger
	transport config.Transport
	opts      *config.Options

	// Correlation state for engine-initiated requests.
	requestCounter atomic.Uint64
	pendingMu      sync.Mutex
	pending        map[string]chan *ControlResponse

	// Hook callbacks registered during Initialize, keyed by callback id.
	hooksMu       sync.RWMutex
	hookCallbacks map[string]hook.Callback

	// In-process server bridges, created lazily per server name.
	bridgesMu sync.Mutex
	bridges   map[string]*bridge.ServerBridge

	// Data messages awaiting consumption through ReceiveMessages.
	inbound *queue.Queue[map[string]any]

	initMu     sync.RWMutex
	initResult map[string]any

	lifecycleMu sync.Mutex
	started     bool
	cancelRead  context.CancelFunc

	readErrMu sync.RWMutex
	readErr   error

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
	done      chan struct{}
	wg        sync.WaitGroup
}

// New creates an engine speaking the control protocol over transport.
// The engine is inert until Start launches its read loop.
func New(transport config.Transport, opts *config.Options) *Engine {
	if opts == nil {
		opts = &config.Options{}
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		log:           log.With("component", "protocol"),
		transport:     transport,
		opts:          opts,
		pending:       make(map[string]chan *ControlResponse, 10),
		hookCallbacks: make(map[string]hook.Callback, 16),
		bridges:       make(map[string]*bridge.ServerBridge, 4),
		inbound:       queue.New[map[string]any](),
		done:          make(chan struct{}),
	}
}

// Start launches the read loop. It is idempotent: later calls are no-ops.
// Failures inside the loop do not surface here; they fail the inbound queue
// and are re-thrown by the next ReceiveMessages pull.
func (e *Engine) Start(ctx context.Context) error {
	e.lifecycleMu.Lock()
	defer e.lifecycleMu.Unlock()

	if e.closed.Load() {
		return errs.ErrEngineClosed
	}

	if e.started {
		return nil
	}
	e.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	e.cancelRead = cancel

	msgCh, errCh := e.transport.ReadMessages(loopCtx)

	e.wg.Add(1)
	go e.readLoop(loopCtx, msgCh, errCh)

	e.log.Debug("engine started")

	return nil
}

// readLoop drains the transport until it closes, fails, or the engine shuts
// down. It is the only goroutine that classifies inbound records.
func (e *Engine) readLoop(ctx context.Context, msgCh <-chan map[string]any, errCh <-chan error) {
	defer func() {
		e.inbound.Close()
		close(e.done)
		e.wg.Done()
		e.log.Debug("read loop stopped")
	}()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			e.route(ctx, msg)

		case err, ok := <-errCh:
			if !ok {
				return
			}
			if err != nil {
				e.log.Debug("transport read failed", "error", err)
				e.setReadErr(err)
				e.inbound.Fail(err)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// route classifies one inbound record by its type field. Control traffic is
// consumed here; everything else is a data message.
func (e *Engine) route(ctx context.Context, msg map[string]any) {
	msgType, _ := msg["type"].(string)

	switch msgType {
	case TypeControlResponse:
		e.resolveControlResponse(msg)

	case TypeControlRequest:
		e.dispatchControlRequest(ctx, msg)

	case TypeControlCancelRequest:
		// Recognized but not actioned; in-flight handlers run to completion.
		e.log.Debug("ignoring control cancel request", "request_id", msg["request_id"])

	default:
		if e.closed.Load() {
			return
		}
		if err := e.inbound.Push(msg); err != nil {
			e.log.Debug("dropping data message", "error", err)
		}
	}
}

// resolveControlResponse claims the pending entry matching the response's
// request id and hands the response to the waiting caller. Responses naming
// an unknown id are dropped: late, duplicated, or not ours.
func (e *Engine) resolveControlResponse(msg map[string]any) {
	body, ok := msg["response"].(map[string]any)
	if !ok {
		e.log.Warn("control response missing response body")
		return
	}

	resp := &ControlResponse{Type: TypeControlResponse, Response: body}

	requestID := resp.RequestID()
	if requestID == "" {
		e.log.Warn("control response missing request_id")
		return
	}

	e.pendingMu.Lock()
	waiter, ok := e.pending[requestID]
	if ok {
		delete(e.pending, requestID)
	}
	e.pendingMu.Unlock()

	if !ok {
		e.log.Debug("dropping response with no pending request", "request_id", requestID)
		return
	}

	// The channel is buffered and the entry was claimed above, so this
	// never blocks the read loop.
	waiter <- resp
}

// dispatchControlRequest answers one peer-initiated request on its own
// goroutine. Completion order may differ from arrival order; the peer
// correlates by request id.
func (e *Engine) dispatchControlRequest(ctx context.Context, msg map[string]any) {
	requestID, ok := msg["request_id"].(string)
	if !ok || requestID == "" {
		e.log.Warn("control request missing request_id")
		return
	}

	body, ok := msg["request"].(map[string]any)
	if !ok {
		e.log.Warn("control request missing request body", "request_id", requestID)
		return
	}

	req := &ControlRequest{Type: TypeControlRequest, RequestID: requestID, Request: body}

	e.log.Debug("dispatching control request",
		"request_id", requestID,
		"subtype", req.Subtype())

	e.wg.Go(func() {
		payload, err := e.handleControlRequest(ctx, req)
		if err != nil {
			e.writeResponse(ctx, newErrorResponse(requestID, err.Error()))
			return
		}
		e.writeResponse(ctx, newSuccessResponse(requestID, payload))
	})
}

// writeResponse marshals and sends one control response. Responses are
// fire-and-forget: failures are logged, not raised, since the handler that
// produced them has already completed.
func (e *Engine) writeResponse(ctx context.Context, resp *ControlResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		e.log.Error("marshal control response", "error", err)
		return
	}

	if err := e.transport.SendMessage(ctx, data); err != nil {
		if ctx.Err() != nil || e.closed.Load() {
			e.log.Debug("control response dropped during shutdown", "error", err)
			return
		}
		e.log.Error("send control response", "error", err)
	}
}

// sendControlRequest writes one correlated control request and waits for the
// matching response. The pending entry is removed on every exit path. A zero
// RequestTimeout waits indefinitely, trusting the peer's liveness.
func (e *Engine) sendControlRequest(ctx context.Context, subtype string, payload map[string]any) (map[string]any, error) {
	if e.closed.Load() {
		return nil, fmt.Errorf("control request %q: %w", subtype, errs.ErrEngineClosed)
	}

	requestID := e.nextRequestID()

	waiter := make(chan *ControlResponse, 1)

	e.pendingMu.Lock()
	e.pending[requestID] = waiter
	e.pendingMu.Unlock()

	defer func() {
		e.pendingMu.Lock()
		delete(e.pending, requestID)
		e.pendingMu.Unlock()
	}()

	data, err := json.Marshal(newControlRequest(requestID, subtype, payload))
	if err != nil {
		return nil, fmt.Errorf("marshal control request %q: %w", subtype, err)
	}

	e.log.Debug("sending control request", "request_id", requestID, "subtype", subtype)

	if err := e.transport.SendMessage(ctx, data); err != nil {
		return nil, fmt.Errorf("send control request %q: %w", subtype, err)
	}

	var expired <-chan time.Time
	if e.opts.RequestTimeout > 0 {
		timer := time.NewTimer(e.opts.RequestTimeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case resp := <-waiter:
		if resp.IsError() {
			return nil, &errs.ControlError{Subtype: subtype, Message: resp.ErrorMessage()}
		}
		return resp.Payload(), nil

	case <-expired:
		return nil, fmt.Errorf("control request %q: %w after %s",
			subtype, errs.ErrRequestTimeout, e.opts.RequestTimeout)

	case <-e.done:
		if err := e.loopErr(); err != nil {
			return nil, fmt.Errorf("control request %q: %w", subtype, err)
		}
		return nil, fmt.Errorf("control request %q: %w", subtype, errs.ErrEngineClosed)

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// nextRequestID builds "req_<n>_<ulid>". The counter keeps ids unique within
// one engine; the ULID keeps concurrent engines apart in shared logs.
func (e *Engine) nextRequestID() string {
	return fmt.Sprintf("req_%d_%s", e.requestCounter.Add(1), ulid.Make().String())
}

func (e *Engine) setReadErr(err error) {
	e.readErrMu.Lock()
	defer e.readErrMu.Unlock()
	if e.readErr == nil {
		e.readErr = err
	}
}

func (e *Engine) loopErr() error {
	e.readErrMu.RLock()
	defer e.readErrMu.RUnlock()
	return e.readErr
}

// Initialize negotiates the session in streaming mode: the configured hooks
// are translated to wire form, each callback registered under a fresh
// unpredictable id, and the initialize request is sent. The peer's
// acknowledgement is recorded and returned.
//
// Outside streaming mode there is no session to negotiate; Initialize
// performs no I/O and records an empty result.
func (e *Engine) Initialize(ctx context.Context) (map[string]any, error) {
	if !e.opts.Streaming {
		e.initMu.Lock()
		e.initResult = map[string]any{}
		e.initMu.Unlock()

		return map[string]any{}, nil
	}

	payload := map[string]any{}
	if hooks := e.registerHooks(); len(hooks) > 0 {
		payload["hooks"] = hooks
	}

	result, err := e.sendControlRequest(ctx, SubtypeInitialize, payload)
	if err != nil {
		return nil, err
	}

	e.initMu.Lock()
	e.initResult = result
	e.initMu.Unlock()

	return maps.Clone(result), nil
}

// registerHooks translates the configured hook matchers into the initialize
// payload, minting one unpredictable callback id per callback. Ids are
// random rather than positional so a stale peer cannot guess its way into a
// different callback. Registrations live for the engine's lifetime.
func (e *Engine) registerHooks() map[string]any {
	if len(e.opts.Hooks) == 0 {
		return nil
	}

	wire := make(map[string]any, len(e.opts.Hooks))

	e.hooksMu.Lock()
	defer e.hooksMu.Unlock()

	for event, matchers := range e.opts.Hooks {
		entries := make([]map[string]any, 0, len(matchers))

		for _, m := range matchers {
			if m == nil {
				continue
			}

			ids := make([]string, 0, len(m.Hooks))
			for _, callback := range m.Hooks {
				id := "hook_" + ulid.Make().String()
				e.hookCallbacks[id] = callback
				ids = append(ids, id)
			}

			entry := map[string]any{
				"matcher":         m.Matcher,
				"hookCallbackIds": ids,
			}
			if m.Timeout != nil {
				entry["timeout"] = *m.Timeout
			}

			entries = append(entries, entry)
		}

		wire[string(event)] = entries
	}

	return wire
}

// InitializationResult returns the recorded outcome of Initialize without
// further I/O: the peer's acknowledgement in streaming mode, an empty record
// outside it, nil when Initialize has not completed.
func (e *Engine) InitializationResult() map[string]any {
	e.initMu.RLock()
	defer e.initMu.RUnlock()

	return maps.Clone(e.initResult)
}

// ReceiveMessages exposes inbound data messages as a lazy, single-pass
// sequence. The sequence ends silently when the peer's stream closes, and
// yields the captured error when the transport fails.
func (e *Engine) ReceiveMessages(ctx context.Context) iter.Seq2[map[string]any, error] {
	return e.inbound.All(ctx)
}

// StreamInput writes each message as one line in iteration order, then
// signals end of input even when a send fails partway. It is only valid in
// streaming mode.
func (e *Engine) StreamInput(ctx context.Context, messages iter.Seq[map[string]any]) (err error) {
	if !e.opts.Streaming {
		return fmt.Errorf("stream input: %w", errs.ErrStreamingRequired)
	}

	defer func() {
		if endErr := e.transport.EndInput(); endErr != nil && err == nil {
			err = fmt.Errorf("end input: %w", endErr)
		}
	}()

	for msg := range messages {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		data, merr := json.Marshal(msg)
		if merr != nil {
			return fmt.Errorf("marshal input message: %w", merr)
		}

		if serr := e.transport.SendMessage(ctx, data); serr != nil {
			return fmt.Errorf("send input message: %w", serr)
		}
	}

	return nil
}

// Interrupt asks the peer to stop its current work. It returns once the
// peer acknowledges.
func (e *Engine) Interrupt(ctx context.Context) error {
	if !e.opts.Streaming {
		return fmt.Errorf("interrupt: %w", errs.ErrStreamingRequired)
	}

	_, err := e.sendControlRequest(ctx, SubtypeInterrupt, nil)

	return err
}

// SetPermissionMode switches the peer's permission handling mode. Legacy
// mode names are normalized before sending.
func (e *Engine) SetPermissionMode(ctx context.Context, mode string) error {
	if !e.opts.Streaming {
		return fmt.Errorf("set permission mode: %w", errs.ErrStreamingRequired)
	}

	_, err := e.sendControlRequest(ctx, SubtypeSetPermissionMode, map[string]any{
		"mode": permission.NormalizeMode(mode),
	})

	return err
}

// SetModel redirects the peer to a different model. An empty model selects
// the peer's default.
func (e *Engine) SetModel(ctx context.Context, model string) error {
	if !e.opts.Streaming {
		return fmt.Errorf("set model: %w", errs.ErrStreamingRequired)
	}

	_, err := e.sendControlRequest(ctx, SubtypeSetModel, map[string]any{
		"model": model,
	})

	return err
}

// Close tears the engine down in a fixed order: mark closed, terminate the
// inbound queue, close the server bridges best-effort, close the transport,
// then stop the read loop and wait for it and any in-flight handlers. Close
// is idempotent; later calls return the first outcome.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		e.log.Debug("closing engine")

		e.inbound.Close()

		e.bridgesMu.Lock()
		bridges := make([]*bridge.ServerBridge, 0, len(e.bridges))
		for _, b := range e.bridges {
			bridges = append(bridges, b)
		}
		clear(e.bridges)
		e.bridgesMu.Unlock()

		for _, b := range bridges {
			if err := b.Close(); err != nil {
				e.log.Warn("closing server bridge", "error", err)
			}
		}

		e.closeErr = e.transport.Close()

		e.lifecycleMu.Lock()
		cancel := e.cancelRead
		e.lifecycleMu.Unlock()
		if cancel != nil {
			cancel()
		}

		e.wg.Wait()
	})

	return e.closeErr
}
