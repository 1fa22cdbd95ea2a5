// Package mcp implements an in-process Model Context Protocol server.
//
// The server keeps a thread-safe registry of programmatically registered
// tools and speaks JSON-RPC 2.0 over the in-process bridge transport:
// Connect attaches its message handler to a transport, and replies flow
// back through the transport's outbound queue where the server bridge
// correlates them with requests by id.
package mcp
