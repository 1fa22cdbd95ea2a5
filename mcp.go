package agentwire

import (
	internalmcp "github.com/wagiedev/agentwire/internal/mcp"
)

// SDKServer is an in-process MCP server. It runs inside your application:
// the peer reaches it through mcp_message control requests, which the engine
// relays over an in-memory bridge, so tool calls never leave the process.
type SDKServer = internalmcp.SDKServer

// NewServer creates an in-process MCP server with the given tools.
//
// The returned server is registered with an engine under a name:
//
//	addTool := agentwire.NewTool("add", "Add two numbers",
//	    agentwire.SimpleSchema(map[string]string{"a": "float64", "b": "float64"}),
//	    func(ctx context.Context, req *agentwire.CallToolRequest) (*agentwire.CallToolResult, error) {
//	        args, _ := agentwire.ParseArguments(req)
//	        a, b := args["a"].(float64), args["b"].(float64)
//	        return agentwire.TextResult(fmt.Sprintf("Result: %v", a+b)), nil
//	    },
//	)
//
//	calculator := agentwire.NewServer("calculator", "1.0.0", addTool)
//
//	engine := agentwire.New(transport,
//	    agentwire.WithMCPServer("calculator", calculator),
//	)
//
// Parameters:
//   - name: Server name reported during the MCP initialize handshake
//   - version: Server version string
//   - tools: Tool instances to register with the server
func NewServer(name, version string, tools ...*Tool) *SDKServer {
	server := internalmcp.NewSDKServer(name, version)

	for _, tool := range tools {
		mcpTool := internalmcp.NewTool(tool.ToolName, tool.ToolDescription, tool.ToolSchema)
		mcpTool.Annotations = tool.ToolAnnotations
		server.AddTool(mcpTool, tool.ToolHandler)
	}

	return server
}
