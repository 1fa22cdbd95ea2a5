package agentwire

import (
	"log/slog"
	"time"
)

// Option configures an Engine using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithStreaming selects streaming mode. In streaming mode Initialize
// negotiates a session with the peer, input flows through StreamInput, and
// the session-management operations (Interrupt, SetPermissionMode, SetModel)
// become available. Outside streaming mode those operations fail with
// ErrStreamingRequired and Initialize performs no I/O.
func WithStreaming(streaming bool) Option {
	return func(o *Options) {
		o.Streaming = streaming
	}
}

// ===== Hooks =====

// WithHooks configures event hooks. They are announced to the peer during
// Initialize under generated callback ids; the peer triggers them back with
// hook_callback control requests.
func WithHooks(hooks map[HookEvent][]*HookMatcher) Option {
	return func(o *Options) {
		o.Hooks = hooks
	}
}

// ===== Permissions =====

// WithCanUseTool sets the callback consulted for each can_use_tool control
// request. Without one, such requests are answered with an error response.
func WithCanUseTool(callback CanUseToolCallback) Option {
	return func(o *Options) {
		o.CanUseTool = callback
	}
}

// ===== MCP =====

// WithMCPServer registers one in-process server under the given name,
// reachable through mcp_message bridging.
func WithMCPServer(name string, service MCPService) Option {
	return func(o *Options) {
		if o.MCPServers == nil {
			o.MCPServers = make(map[string]MCPService, 1)
		}
		o.MCPServers[name] = service
	}
}

// WithMCPServers registers in-process servers by name. It replaces any
// previously registered set.
func WithMCPServers(servers map[string]MCPService) Option {
	return func(o *Options) {
		o.MCPServers = servers
	}
}

// ===== Timeouts =====

// WithRequestTimeout bounds each engine-initiated control request. Zero (the
// default) waits indefinitely, trusting the peer's liveness.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.RequestTimeout = timeout
	}
}

// WithBridgeTimeout bounds the wait for a matching reply from an in-process
// server. Zero selects the 60-second default.
func WithBridgeTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.BridgeTimeout = timeout
	}
}
