// Package protocol implements the bidirectional control engine.
//
// The engine shares one ordered channel of JSON lines with the peer and
// multiplexes two kinds of traffic over it: free-form data messages, which
// pass through to the consumer untouched, and control exchanges, which the
// engine resolves itself. Control requests flow both ways. Engine-initiated
// requests (initialize, interrupt, set_permission_mode, set_model) are
// correlated with their responses by request id. Peer-initiated requests
// (can_use_tool, hook_callback, mcp_message) are dispatched to the
// configured callbacks, each on its own goroutine, and always answered with
// exactly one control response.
//
// Example usage:
//
//	engine := protocol.New(transport, opts)
//	engine.Start(ctx)
//
//	result, err := engine.Initialize(ctx)
//	...
//	for msg, err := range engine.ReceiveMessages(ctx) {
//	    ...
//	}
package protocol
