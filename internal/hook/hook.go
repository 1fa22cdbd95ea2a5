// Package hook provides the hook registration and invocation contract.
package hook

import (
	"context"
	"strings"
)

// Event names a peer-side event a hook can be attached to. The engine does
// not interpret events; they key the configuration sent during the
// initialize handshake.
type Event string

const (
	// EventPreToolUse is triggered before a tool is used.
	EventPreToolUse Event = "PreToolUse"
	// EventPostToolUse is triggered after a tool is used.
	EventPostToolUse Event = "PostToolUse"
	// EventUserPromptSubmit is triggered when a user submits a prompt.
	EventUserPromptSubmit Event = "UserPromptSubmit"
	// EventStop is triggered when a session stops.
	EventStop Event = "Stop"
	// EventSubagentStop is triggered when a subagent stops.
	EventSubagentStop Event = "SubagentStop"
	// EventPreCompact is triggered before compaction.
	EventPreCompact Event = "PreCompact"
	// EventPostToolUseFailure is triggered after a tool use fails.
	EventPostToolUseFailure Event = "PostToolUseFailure"
	// EventNotification is triggered when a notification is sent.
	EventNotification Event = "Notification"
	// EventSubagentStart is triggered when a subagent starts.
	EventSubagentStart Event = "SubagentStart"
	// EventPermissionRequest is triggered when a permission is requested.
	EventPermissionRequest Event = "PermissionRequest"
)

// Context provides context for hook execution. Signal is reserved for
// future cancellation support and is never set.
type Context struct {
	Signal <-chan struct{}
}

// Callback is the function signature for hook callbacks. The input record
// arrives verbatim from the peer; the returned record is sent back after
// NormalizeOutput.
type Callback func(
	ctx context.Context,
	input map[string]any,
	toolUseID *string,
	hookCtx *Context,
) (map[string]any, error)

// Matcher configures which tools/events a hook applies to.
type Matcher struct {
	// Matcher is a tool name like "Bash" or a pipe-separated combination
	// like "Write|Edit". When nil, the hook matches all tools/events.
	// This is NOT regex - pipe (|) separates multiple tool names to match.
	Matcher *string
	Hooks   []Callback
	Timeout *float64 // seconds
}

// NormalizeOutput maps a callback's output fields to their wire names in one
// pass: a field whose name carries a trailing underscore (the convention for
// outputs that would otherwise collide with reserved words, e.g. async_ and
// continue_) is emitted without it; every other field passes through
// unchanged.
func NormalizeOutput(output map[string]any) map[string]any {
	wire := make(map[string]any, len(output))
	for k, v := range output {
		wire[strings.TrimSuffix(k, "_")] = v
	}

	return wire
}
