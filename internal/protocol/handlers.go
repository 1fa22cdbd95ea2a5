package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/wagiedev/agentwire/internal/bridge"
	errs "github.com/wagiedev/agentwire/internal/errors"
	"github.com/wagiedev/agentwire/internal/hook"
	"github.com/wagiedev/agentwire/internal/permission"
)

// handleControlRequest routes one peer-initiated request to its handler.
// The returned payload becomes a success response; an error becomes an
// error response carrying the message verbatim.
func (e *Engine) handleControlRequest(ctx context.Context, req *ControlRequest) (map[string]any, error) {
	switch subtype := req.Subtype(); subtype {
	case SubtypeCanUseTool:
		return e.handleCanUseTool(ctx, req)

	case SubtypeHookCallback:
		return e.handleHookCallback(ctx, req)

	case SubtypeMCPMessage:
		return e.handleMCPMessage(ctx, req)

	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedSubtype, subtype)
	}
}

// handleCanUseTool asks the configured permission callback to decide on one
// tool use and serializes its verdict for the wire.
func (e *Engine) handleCanUseTool(ctx context.Context, req *ControlRequest) (map[string]any, error) {
	if e.opts.CanUseTool == nil {
		return nil, errs.ErrNoPermissionCallback
	}

	toolName, _ := req.Request["tool_name"].(string)
	input, _ := req.Request["input"].(map[string]any)

	permCtx := &permission.Context{}

	if raw, ok := req.Request["suggestions"].([]any); ok {
		for _, entry := range raw {
			dict, ok := entry.(map[string]any)
			if !ok {
				continue
			}

			update, err := permission.UpdateFromDict(dict)
			if err != nil {
				e.log.Warn("skipping malformed permission suggestion", "error", err)
				continue
			}

			permCtx.Suggestions = append(permCtx.Suggestions, update)
		}
	}

	if blocked, ok := req.Request["blocked_path"].(string); ok {
		permCtx.BlockedPath = &blocked
	}

	decision, err := e.opts.CanUseTool(ctx, toolName, input, permCtx)
	if err != nil {
		return nil, err
	}

	switch d := decision.(type) {
	case *permission.ResultAllow:
		result := map[string]any{"behavior": "allow"}

		// The peer replaces the tool input with updatedInput wholesale, so
		// a callback that leaves it nil gets the original input echoed back.
		if d.UpdatedInput != nil {
			result["updatedInput"] = d.UpdatedInput
		} else {
			result["updatedInput"] = input
		}

		if len(d.UpdatedPermissions) > 0 {
			updates := make([]map[string]any, len(d.UpdatedPermissions))
			for i, u := range d.UpdatedPermissions {
				updates[i] = u.ToDict()
			}
			result["updatedPermissions"] = updates
		}

		return result, nil

	case *permission.ResultDeny:
		result := map[string]any{
			"behavior": "deny",
			"message":  d.Message,
		}
		if d.Interrupt {
			result["interrupt"] = true
		}

		return result, nil

	default:
		return nil, &errs.ProtocolError{
			Reason: fmt.Sprintf("permission callback returned %T, want ResultAllow or ResultDeny", decision),
		}
	}
}

// handleHookCallback invokes the registered hook named by the request's
// callback id and returns its output in wire form.
func (e *Engine) handleHookCallback(ctx context.Context, req *ControlRequest) (map[string]any, error) {
	callbackID, _ := req.Request["callback_id"].(string)

	e.hooksMu.RLock()
	callback, ok := e.hookCallbacks[callbackID]
	e.hooksMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w for ID: %s", errs.ErrHookNotFound, callbackID)
	}

	input, _ := req.Request["input"].(map[string]any)

	var toolUseID *string
	if id, ok := req.Request["tool_use_id"].(string); ok && id != "" {
		toolUseID = &id
	}

	output, err := callback(ctx, input, toolUseID, &hook.Context{})
	if err != nil {
		return nil, err
	}

	return hook.NormalizeOutput(output), nil
}

// handleMCPMessage relays one JSON-RPC message to the named in-process
// server and wraps the reply for the wire.
func (e *Engine) handleMCPMessage(ctx context.Context, req *ControlRequest) (map[string]any, error) {
	serverName, _ := req.Request["server_name"].(string)
	if serverName == "" {
		return nil, &errs.ProtocolError{Reason: "mcp_message missing server_name"}
	}

	message, ok := req.Request["message"].(map[string]any)
	if !ok {
		return nil, &errs.ProtocolError{Reason: "mcp_message missing message"}
	}

	b, err := e.bridgeFor(serverName)
	if err != nil {
		return nil, err
	}

	reply, err := b.HandleRequest(ctx, message)
	if err != nil {
		return nil, err
	}

	return map[string]any{"mcp_response": reply}, nil
}

// bridgeFor returns the server bridge for name, creating and memoizing it on
// first reference. Bridges live until the engine closes.
func (e *Engine) bridgeFor(name string) (*bridge.ServerBridge, error) {
	if e.closed.Load() {
		return nil, errs.ErrEngineClosed
	}

	e.bridgesMu.Lock()
	defer e.bridgesMu.Unlock()

	if b, ok := e.bridges[name]; ok {
		return b, nil
	}

	service, ok := e.opts.MCPServers[name]
	if !ok {
		return nil, &errs.BridgeError{Server: name, Err: errors.New("server not configured")}
	}

	b := bridge.NewServerBridge(e.log, name, service, e.opts.BridgeTimeout)
	e.bridges[name] = b

	return b, nil
}
