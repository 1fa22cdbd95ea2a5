package agentwire

import (
	"iter"
)

// MessagesFromSlice creates an input stream from a slice of messages.
// This is useful for sending a fixed set of messages in streaming mode.
func MessagesFromSlice(msgs []map[string]any) iter.Seq[map[string]any] {
	return func(yield func(map[string]any) bool) {
		for _, msg := range msgs {
			if !yield(msg) {
				return
			}
		}
	}
}

// MessagesFromChannel creates an input stream from a channel.
// This is useful for dynamic message generation where messages are produced
// over time. The iterator completes when the channel is closed.
func MessagesFromChannel(ch <-chan map[string]any) iter.Seq[map[string]any] {
	return func(yield func(map[string]any) bool) {
		for msg := range ch {
			if !yield(msg) {
				return
			}
		}
	}
}

// SingleMessage creates an input stream with a single user message.
// This is a convenience function for simple string prompts in streaming mode.
func SingleMessage(content string) iter.Seq[map[string]any] {
	return MessagesFromSlice([]map[string]any{NewUserMessage(content)})
}

// NewUserMessage creates a user message record. The engine does not
// interpret it; the shape is the conventional one peers expect.
func NewUserMessage(content string) map[string]any {
	return map[string]any{
		"type": "user",
		"message": map[string]any{
			"role":    "user",
			"content": content,
		},
	}
}
