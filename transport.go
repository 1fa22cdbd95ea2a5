package agentwire

import "github.com/wagiedev/agentwire/internal/config"

// Transport defines the interface for communicating with the peer.
// Implement this to provide custom transports for testing, mocking, or
// alternative communication methods (e.g., remote connections).
//
// The engine never parses raw bytes: ReadMessages hands it already-decoded
// JSON objects and SendMessage accepts one whole document per call. How the
// lines travel (pipes, sockets, in-memory channels) is the transport's
// business.
type Transport = config.Transport
