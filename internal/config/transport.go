// Package config provides configuration types for the protocol engine.
package config

import "context"

// Transport defines the interface for communicating with the peer process.
// Implement this to provide custom transports for testing, mocking, or
// alternative communication methods (e.g., remote connections).
//
// The engine never parses raw bytes; a transport hands it already-decoded
// message objects and accepts whole lines for writing.
type Transport interface {
	// Start initializes the transport and prepares it for communication.
	// The engine assumes a started transport; Start exists for the
	// orchestration layer that owns the peer's lifecycle.
	Start(ctx context.Context) error

	// ReadMessages returns channels for receiving messages and errors.
	// The message channel yields decoded JSON objects from the peer.
	// The error channel yields any errors that occur during reading.
	// Both channels are closed when reading completes or an error occurs.
	ReadMessages(ctx context.Context) (<-chan map[string]any, <-chan error)

	// SendMessage sends one JSON document to the peer as a single line.
	// This method must be safe for concurrent use.
	SendMessage(ctx context.Context, data []byte) error

	// Close terminates the transport and releases resources.
	// It's safe to call Close multiple times.
	Close() error

	// IsReady returns true if the transport is ready for communication.
	IsReady() bool

	// EndInput signals that no more input will be sent.
	// For process-based transports, this typically closes stdin.
	EndInput() error
}
