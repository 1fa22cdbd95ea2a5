package agentwire

import (
	"context"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextResult(t *testing.T) {
	result := TextResult("Hello, World!")

	assert.Len(t, result.Content, 1)
	assert.False(t, result.IsError)

	textContent, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Hello, World!", textContent.Text)
}

func TestErrorResult(t *testing.T) {
	result := ErrorResult("Something went wrong")

	assert.Len(t, result.Content, 1)
	assert.True(t, result.IsError)

	textContent, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Something went wrong", textContent.Text)
}

func TestImageResult(t *testing.T) {
	result := ImageResult([]byte("base64data"), "image/png")

	assert.Len(t, result.Content, 1)
	assert.False(t, result.IsError)

	imageContent, ok := result.Content[0].(*mcp.ImageContent)
	require.True(t, ok)
	assert.Equal(t, []byte("base64data"), imageContent.Data)
	assert.Equal(t, "image/png", imageContent.MIMEType)
}

func TestNewTool(t *testing.T) {
	t.Run("has name, description, and schema", func(t *testing.T) {
		schema := SimpleSchema(map[string]string{"a": "float64"})
		tool := NewTool("test_tool", "A tool for testing", schema,
			func(context.Context, *CallToolRequest) (*CallToolResult, error) {
				return TextResult("ok"), nil
			},
		)

		assert.Equal(t, "test_tool", tool.Name())
		assert.Equal(t, "A tool for testing", tool.Description())
		assert.Same(t, schema, tool.InputSchema())
		assert.NotNil(t, tool.Handler())
		assert.Nil(t, tool.Annotations())
	})

	t.Run("with annotations", func(t *testing.T) {
		tool := NewTool("reader", "Reads things", nil,
			func(context.Context, *CallToolRequest) (*CallToolResult, error) {
				return TextResult("ok"), nil
			},
			WithToolAnnotations(&McpToolAnnotations{ReadOnlyHint: true}),
		)

		require.NotNil(t, tool.Annotations())
		assert.True(t, tool.Annotations().ReadOnlyHint)
	})
}

func TestNewServerServesTools(t *testing.T) {
	addTool := NewTool("add", "Add two numbers",
		SimpleSchema(map[string]string{"a": "float64", "b": "float64"}),
		func(_ context.Context, req *CallToolRequest) (*CallToolResult, error) {
			args, err := ParseArguments(req)
			if err != nil {
				return ErrorResult(err.Error()), nil
			}
			a, _ := args["a"].(float64)
			b, _ := args["b"].(float64)

			return TextResult(fmt.Sprintf("%v", a+b)), nil
		},
		WithToolAnnotations(&McpToolAnnotations{ReadOnlyHint: true}),
	)

	server := NewServer("calculator", "1.2.3", addTool)

	assert.Equal(t, "calculator", server.Name())
	assert.Equal(t, "1.2.3", server.Version())

	tools := server.ListTools()
	require.Len(t, tools, 1)
	assert.Equal(t, "add", tools[0]["name"])

	result, err := server.CallTool(context.Background(), "add", map[string]any{
		"a": float64(2), "b": float64(3),
	})
	require.NoError(t, err)

	content := result["content"].([]map[string]any)
	require.Len(t, content, 1)
	assert.Equal(t, "5", content[0]["text"])
}

func TestNewMcpTool(t *testing.T) {
	schema := SimpleSchema(map[string]string{"q": "string"})
	tool := NewMcpTool("search", "Searches the index", schema)

	assert.Equal(t, "search", tool.Name)
	assert.Equal(t, "Searches the index", tool.Description)
	assert.Same(t, schema, tool.InputSchema)
}
