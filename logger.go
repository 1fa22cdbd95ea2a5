package agentwire

import "log/slog"

// NopLogger returns a logger that drops every record. The engine behaves as
// if constructed with it whenever no logger is configured; it exists so
// callers can ask for silence explicitly.
func NopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
