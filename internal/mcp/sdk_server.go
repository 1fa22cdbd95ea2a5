package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/agentwire/internal/bridge"
)

// protocolVersion is the MCP protocol revision advertised during initialize.
const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes used by the in-process server.
const (
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Compile-time verification that SDKServer can sit behind a server bridge.
var _ bridge.Service = (*SDKServer)(nil)

// SDKServer wraps the official MCP SDK tool types for in-process access.
//
// Since the official SDK's Server is designed for transport-based
// communication (stdio, HTTP, SSE), this wrapper maintains its own tool
// registry and speaks JSON-RPC 2.0 directly over the in-process bridge
// transport.
type SDKServer struct {
	name    string
	version string
	mu      sync.RWMutex
	tools   map[string]*sdkTool
}

// sdkTool holds tool metadata and handler for the internal registry.
type sdkTool struct {
	tool    *mcp.Tool
	handler mcp.ToolHandler
}

// NewSDKServer creates a new in-process MCP server.
func NewSDKServer(name, version string) *SDKServer {
	return &SDKServer{
		name:    name,
		version: version,
		tools:   make(map[string]*sdkTool, 8),
	}
}

// AddTool registers a tool with the server.
func (s *SDKServer) AddTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools[tool.Name] = &sdkTool{
		tool:    tool,
		handler: handler,
	}
}

// Name returns the server name.
func (s *SDKServer) Name() string {
	return s.name
}

// Version returns the server version.
func (s *SDKServer) Version() string {
	return s.version
}

// ServerInfo returns server information for the MCP initialize response.
func (s *SDKServer) ServerInfo() map[string]any {
	return map[string]any{
		"name":    s.name,
		"version": s.version,
	}
}

// Capabilities returns server capabilities for the MCP initialize response.
func (s *SDKServer) Capabilities() map[string]any {
	return map[string]any{
		"tools": map[string]any{},
	}
}

// Connect implements bridge.Service. It attaches the server's JSON-RPC
// handler to the in-process transport; replies are sent back through the
// transport so the bridge can correlate them by id.
func (s *SDKServer) Connect(t *bridge.Transport) error {
	t.SetMessageHandler(func(msg map[string]any) error {
		return s.handleMessage(t, msg)
	})

	return nil
}

// handleMessage routes a single JSON-RPC message. Requests produce exactly
// one reply carrying the request's id; notifications produce none. A non-nil
// error here means the reply could not be sent, not that the method failed:
// method-level failures are reported in-band as JSON-RPC error objects.
func (s *SDKServer) handleMessage(t *bridge.Transport, msg map[string]any) error {
	id, hasID := msg["id"]
	method, _ := msg["method"].(string)
	params, _ := msg["params"].(map[string]any)

	if method == "" {
		return s.replyError(t, id, hasID, codeInvalidRequest, "missing method")
	}

	switch method {
	case "initialize":
		return s.reply(t, id, hasID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities":    s.Capabilities(),
			"serverInfo":      s.ServerInfo(),
		})

	case "notifications/initialized":
		// Notification, nothing to send back.
		return nil

	case "tools/list":
		return s.reply(t, id, hasID, map[string]any{"tools": s.ListTools()})

	case "tools/call":
		return s.handleToolsCall(t, id, hasID, params)

	default:
		return s.replyError(t, id, hasID, codeMethodNotFound, "method not found: "+method)
	}
}

// handleToolsCall validates tools/call params and executes the tool. The
// tool runs even for notifications; only the reply is skipped.
func (s *SDKServer) handleToolsCall(t *bridge.Transport, id any, hasID bool, params map[string]any) error {
	if params == nil {
		return s.replyError(t, id, hasID, codeInvalidParams, "missing params for tools/call")
	}

	toolName, _ := params["name"].(string)
	if toolName == "" {
		return s.replyError(t, id, hasID, codeInvalidParams, "missing tool name in params")
	}

	arguments, _ := params["arguments"].(map[string]any)

	// The in-memory transport does not carry cancellation, so tool handlers
	// run under a background context.
	result, err := s.CallTool(context.Background(), toolName, arguments)
	if err != nil {
		return s.replyError(t, id, hasID, codeInternalError, err.Error())
	}

	return s.reply(t, id, hasID, result)
}

// reply sends a JSON-RPC success response unless the message was a
// notification.
func (s *SDKServer) reply(t *bridge.Transport, id any, hasID bool, result map[string]any) error {
	if !hasID {
		return nil
	}

	return t.Send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

// replyError sends a JSON-RPC error response unless the message was a
// notification.
func (s *SDKServer) replyError(t *bridge.Transport, id any, hasID bool, code int, message string) error {
	if !hasID {
		return nil
	}

	return t.Send(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

// ListTools returns metadata for all registered tools, in name order so
// repeated listings are stable.
func (s *SDKServer) ListTools() []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]map[string]any, 0, len(s.tools))

	for _, name := range slices.Sorted(maps.Keys(s.tools)) {
		t := s.tools[name]
		toolMap := map[string]any{
			"name":        t.tool.Name,
			"description": t.tool.Description,
		}

		// Schemas and annotations cross the wire as plain maps.
		if t.tool.InputSchema != nil {
			schemaData, err := json.Marshal(t.tool.InputSchema)
			if err == nil {
				var schemaMap map[string]any
				if json.Unmarshal(schemaData, &schemaMap) == nil {
					toolMap["inputSchema"] = schemaMap
				}
			}
		}

		if t.tool.Annotations != nil {
			annotData, err := json.Marshal(t.tool.Annotations)
			if err == nil {
				var annotMap map[string]any
				if json.Unmarshal(annotData, &annotMap) == nil {
					toolMap["annotations"] = annotMap
				}
			}
		}

		result = append(result, toolMap)
	}

	return result
}

// CallTool executes a tool by name with the given input. Handler failures
// are encoded in-band as is_error results so the peer sees them as tool
// output rather than protocol failures.
func (s *SDKServer) CallTool(ctx context.Context, name string, input map[string]any) (map[string]any, error) {
	s.mu.RLock()
	t, exists := s.tools[name]
	s.mu.RUnlock()

	if !exists {
		return map[string]any{
			"content":  []map[string]any{{"type": "text", "text": "Tool not found: " + name}},
			"is_error": true,
		}, nil
	}

	inputBytes, err := json.Marshal(input)
	if err != nil {
		//nolint:nilerr // Intentionally return nil error - error is encoded in the result
		return map[string]any{
			"content":  []map[string]any{{"type": "text", "text": "Failed to marshal input: " + err.Error()}},
			"is_error": true,
		}, nil
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: inputBytes,
		},
	}

	result, err := t.handler(ctx, req)
	if err != nil {
		//nolint:nilerr // Intentionally return nil error - error is encoded in the result
		return map[string]any{
			"content":  []map[string]any{{"type": "text", "text": "Tool execution failed: " + err.Error()}},
			"is_error": true,
		}, nil
	}

	return convertCallToolResultToMap(result), nil
}

// convertCallToolResultToMap converts an MCP CallToolResult to a plain map
// for the wire.
func convertCallToolResultToMap(result *mcp.CallToolResult) map[string]any {
	if result == nil {
		return map[string]any{
			"content": []map[string]any{},
		}
	}

	content := make([]map[string]any, 0, len(result.Content))
	for _, c := range result.Content {
		switch v := c.(type) {
		case *mcp.TextContent:
			content = append(content, map[string]any{
				"type": "text",
				"text": v.Text,
			})
		case *mcp.ImageContent:
			content = append(content, map[string]any{
				"type":     "image",
				"data":     v.Data,
				"mimeType": v.MIMEType,
			})
		case *mcp.AudioContent:
			content = append(content, map[string]any{
				"type":     "audio",
				"data":     v.Data,
				"mimeType": v.MIMEType,
			})
		case *mcp.ResourceLink:
			content = append(content, map[string]any{
				"type": "resource_link",
				"uri":  v.URI,
				"name": v.Name,
			})
		case *mcp.EmbeddedResource:
			if v.Resource != nil {
				content = append(content, map[string]any{
					"type": "resource",
					"resource": map[string]any{
						"uri":      v.Resource.URI,
						"mimeType": v.Resource.MIMEType,
						"text":     v.Resource.Text,
					},
				})
			}
		}
	}

	resultMap := map[string]any{
		"content": content,
	}

	if result.IsError {
		resultMap["is_error"] = true
	}

	return resultMap
}

// ParseArguments unmarshals CallToolRequest arguments into a map.
func ParseArguments(req *mcp.CallToolRequest) (map[string]any, error) {
	if req == nil || req.Params == nil {
		return make(map[string]any), nil
	}

	if len(req.Params.Arguments) == 0 {
		return make(map[string]any), nil
	}

	var args map[string]any
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	return args, nil
}
