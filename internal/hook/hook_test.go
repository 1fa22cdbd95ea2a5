package hook

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeOutput(t *testing.T) {
	tests := []struct {
		name   string
		output map[string]any
		want   map[string]any
	}{
		{
			name: "reserved word suffixes stripped",
			output: map[string]any{
				"async_":    true,
				"continue_": false,
				"extra":     "value",
			},
			want: map[string]any{
				"async":    true,
				"continue": false,
				"extra":    "value",
			},
		},
		{
			name:   "plain fields pass through",
			output: map[string]any{"decision": "block", "reason": "nope"},
			want:   map[string]any{"decision": "block", "reason": "nope"},
		},
		{
			name:   "only one trailing underscore is stripped",
			output: map[string]any{"weird__": 1},
			want:   map[string]any{"weird_": 1},
		},
		{
			name:   "nil output becomes empty record",
			output: nil,
			want:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeOutput(tt.output))
		})
	}
}
