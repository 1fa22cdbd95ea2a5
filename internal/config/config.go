package config

import (
	"log/slog"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/wagiedev/agentwire/internal/bridge"
	"github.com/wagiedev/agentwire/internal/hook"
	"github.com/wagiedev/agentwire/internal/permission"
)

// Options configures the behavior of a protocol engine.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Streaming selects streaming mode: Initialize negotiates a session
	// with the peer and input flows through StreamInput. Outside streaming
	// mode the session-management operations fail with ErrStreamingRequired
	// and Initialize performs no I/O.
	Streaming bool

	// Hooks configures event hooks. They are translated to wire form and
	// registered under generated callback ids during Initialize.
	Hooks map[hook.Event][]*hook.Matcher

	// CanUseTool is called for each can_use_tool control request.
	// If nil, such requests are answered with an error response.
	CanUseTool permission.Callback

	// MCPServers maps server names to in-process service instances
	// reachable through mcp_message bridging.
	MCPServers map[string]bridge.Service

	// RequestTimeout bounds engine-initiated control requests.
	// Zero means wait indefinitely, trusting the peer's liveness.
	RequestTimeout time.Duration

	// BridgeTimeout bounds the server bridge's wait for a matching reply.
	// Zero selects the 60-second default.
	BridgeTimeout time.Duration
}

// envDefaults are the environment overrides applied to options left unset.
type envDefaults struct {
	RequestTimeout time.Duration `env:"AGENTWIRE_REQUEST_TIMEOUT,default=0s"`
	BridgeTimeout  time.Duration `env:"AGENTWIRE_BRIDGE_TIMEOUT,default=60s"`
}

// ApplyEnvDefaults fills unset timeout options from the environment.
// Explicitly configured values win.
func (o *Options) ApplyEnvDefaults() {
	var env envDefaults
	_ = envdecode.Decode(&env)

	if o.RequestTimeout == 0 {
		o.RequestTimeout = env.RequestTimeout
	}

	if o.BridgeTimeout == 0 {
		o.BridgeTimeout = env.BridgeTimeout
	}
}
