package agentwire

import (
	"github.com/wagiedev/agentwire/internal/protocol"
)

// Engine is the bidirectional control-protocol engine. It multiplexes data
// messages and correlated control exchanges over one transport.
//
// See the package documentation for the full lifecycle; in short:
//
//	engine := agentwire.New(transport, agentwire.WithStreaming(true))
//	if err := engine.Start(ctx); err != nil { ... }
//	defer engine.Close()
//
//	result, err := engine.Initialize(ctx)
//	...
//	for msg, err := range engine.ReceiveMessages(ctx) {
//	    ...
//	}
type Engine = protocol.Engine

// New creates an Engine over transport. Timeout options left unset are
// filled from the environment (AGENTWIRE_REQUEST_TIMEOUT,
// AGENTWIRE_BRIDGE_TIMEOUT); explicitly configured values win.
//
// The engine is inert until Start launches its read loop. New never fails:
// configuration problems surface on the operation that hits them.
func New(transport Transport, opts ...Option) *Engine {
	options := applyOptions(opts)
	options.ApplyEnvDefaults()

	return protocol.New(transport, options)
}
