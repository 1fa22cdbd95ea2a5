package agentwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("Hello!")

	assert.Equal(t, "user", msg["type"])

	content := msg["message"].(map[string]any)
	assert.Equal(t, "user", content["role"])
	assert.Equal(t, "Hello!", content["content"])
}

func TestMessagesFromSlice_Empty(t *testing.T) {
	msgs := MessagesFromSlice([]map[string]any{})

	count := 0

	for range msgs {
		count++
	}

	assert.Equal(t, 0, count)
}

func TestMessagesFromSlice_PreservesOrder(t *testing.T) {
	input := []map[string]any{
		NewUserMessage("first"),
		NewUserMessage("second"),
		NewUserMessage("third"),
	}

	collected := make([]map[string]any, 0, len(input))
	for msg := range MessagesFromSlice(input) {
		collected = append(collected, msg)
	}

	require.Len(t, collected, 3)
	assert.Equal(t, input, collected)
}

func TestMessagesFromSlice_StopsEarly(t *testing.T) {
	input := []map[string]any{
		NewUserMessage("first"),
		NewUserMessage("second"),
	}

	count := 0
	for range MessagesFromSlice(input) {
		count++
		break
	}

	assert.Equal(t, 1, count)
}

func TestMessagesFromChannel(t *testing.T) {
	ch := make(chan map[string]any, 2)
	ch <- NewUserMessage("first")
	ch <- NewUserMessage("second")
	close(ch)

	collected := make([]map[string]any, 0, 2)
	for msg := range MessagesFromChannel(ch) {
		collected = append(collected, msg)
	}

	require.Len(t, collected, 2)
	assert.Equal(t, "first", collected[0]["message"].(map[string]any)["content"])
	assert.Equal(t, "second", collected[1]["message"].(map[string]any)["content"])
}

func TestSingleMessage(t *testing.T) {
	collected := make([]map[string]any, 0, 1)
	for msg := range SingleMessage("just one") {
		collected = append(collected, msg)
	}

	require.Len(t, collected, 1)
	assert.Equal(t, NewUserMessage("just one"), collected[0])
}
