package errors

import (
	"errors"
	"fmt"
)

// EngineError is the base interface for all engine errors.
type EngineError interface {
	error
	IsEngineError() bool
}

// Compile-time verification that all error types implement EngineError.
var (
	_ EngineError = (*ControlError)(nil)
	_ EngineError = (*ProtocolError)(nil)
	_ EngineError = (*BridgeError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrEngineClosed indicates the engine has been closed and cannot be reused.
	ErrEngineClosed = errors.New("engine closed")

	// ErrStreamingRequired indicates an operation that is only valid in
	// streaming mode was called on a non-streaming engine.
	ErrStreamingRequired = errors.New("streaming mode required")

	// ErrTransportNotReady indicates the transport is not ready for writes.
	ErrTransportNotReady = errors.New("transport not ready")

	// ErrRequestTimeout indicates an engine-initiated control request
	// exceeded its configured bound.
	ErrRequestTimeout = errors.New("control request timeout")

	// ErrNoPermissionCallback indicates a can_use_tool request arrived but
	// no permission callback was registered.
	ErrNoPermissionCallback = errors.New("no permission callback provided")

	// ErrHookNotFound indicates a hook_callback request named an id that was
	// never registered during initialization.
	ErrHookNotFound = errors.New("no hook callback found")

	// ErrUnsupportedSubtype indicates a control request with a subtype the
	// engine does not handle.
	ErrUnsupportedSubtype = errors.New("unsupported control request subtype")

	// ErrBridgeClosed indicates the in-process bridge's reply queue ended
	// before a matching response arrived.
	ErrBridgeClosed = errors.New("bridge closed")

	// ErrBridgeTimeout indicates no matching reply arrived within the
	// bridge's correlation bound.
	ErrBridgeTimeout = errors.New("bridge request timeout")
)

// ControlError reports a control-response of subtype "error" received for an
// engine-initiated control request.
type ControlError struct {
	Subtype string
	Message string
}

func (e *ControlError) Error() string {
	return fmt.Sprintf("control request %q failed: %s", e.Subtype, e.Message)
}

// IsEngineError implements EngineError.
func (e *ControlError) IsEngineError() bool { return true }

// ProtocolError indicates a malformed server-initiated control request.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

// IsEngineError implements EngineError.
func (e *ProtocolError) IsEngineError() bool { return true }

// BridgeError wraps a failure from a named in-process server bridge.
type BridgeError struct {
	Server string
	Err    error
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("mcp server %q: %v", e.Server, e.Err)
}

func (e *BridgeError) Unwrap() error {
	return e.Err
}

// IsEngineError implements EngineError.
func (e *BridgeError) IsEngineError() bool { return true }
