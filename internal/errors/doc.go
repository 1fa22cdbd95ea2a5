// Package errors defines error types for the control-protocol engine.
//
// This package provides structured error types that wrap different failure
// scenarios when exchanging control traffic with the peer process. All error
// types support error unwrapping and can be checked using errors.Is,
// errors.As, and errors.AsType.
package errors
