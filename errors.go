package agentwire

import "github.com/wagiedev/agentwire/internal/errors"

// Re-export error types from internal package

// EngineError is the base interface for all engine errors.
type EngineError = errors.EngineError

// ControlError reports a control response of subtype "error" received for
// an engine-initiated request. The peer's message is carried verbatim.
type ControlError = errors.ControlError

// ProtocolError indicates a malformed peer-initiated control request.
type ProtocolError = errors.ProtocolError

// BridgeError wraps a failure from a named in-process server bridge.
type BridgeError = errors.BridgeError

// Re-export sentinel errors from internal package.
var (
	// ErrEngineClosed indicates the engine has been closed and cannot be reused.
	ErrEngineClosed = errors.ErrEngineClosed

	// ErrStreamingRequired indicates an operation that is only valid in
	// streaming mode was called on a non-streaming engine.
	ErrStreamingRequired = errors.ErrStreamingRequired

	// ErrTransportNotReady indicates the transport is not ready for writes.
	ErrTransportNotReady = errors.ErrTransportNotReady

	// ErrRequestTimeout indicates an engine-initiated control request
	// exceeded its configured bound.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrNoPermissionCallback indicates a can_use_tool request arrived but
	// no permission callback was registered.
	ErrNoPermissionCallback = errors.ErrNoPermissionCallback

	// ErrHookNotFound indicates a hook_callback request named an id that
	// was never registered during initialization.
	ErrHookNotFound = errors.ErrHookNotFound

	// ErrUnsupportedSubtype indicates a control request with a subtype the
	// engine does not handle.
	ErrUnsupportedSubtype = errors.ErrUnsupportedSubtype

	// ErrBridgeClosed indicates an in-process bridge's reply stream ended
	// before a matching response arrived.
	ErrBridgeClosed = errors.ErrBridgeClosed

	// ErrBridgeTimeout indicates no matching reply arrived within the
	// bridge's correlation bound.
	ErrBridgeTimeout = errors.ErrBridgeTimeout
)
