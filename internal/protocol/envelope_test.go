package protocol

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func golden(t *testing.T) *goldie.Goldie {
	t.Helper()

	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func marshalIndent(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)

	return data
}

func TestInitializeRequestWireFormat(t *testing.T) {
	req := newControlRequest("req_1_01ARZ3NDEKTSV4RRFFQ69G5FAV", SubtypeInitialize, map[string]any{
		"hooks": map[string]any{
			"PreToolUse": []any{
				map[string]any{
					"matcher":         "Bash",
					"hookCallbackIds": []any{"hook_01BX5ZZKBKACTAV9WEVGEMMVRZ"},
					"timeout":         float64(30),
				},
			},
		},
	})

	golden(t).Assert(t, "initialize_request", marshalIndent(t, req))
}

func TestSetPermissionModeRequestWireFormat(t *testing.T) {
	req := newControlRequest("req_2_01ARZ3NDEKTSV4RRFFQ69G5FAV", SubtypeSetPermissionMode, map[string]any{
		"mode": "acceptEdits",
	})

	golden(t).Assert(t, "set_permission_mode_request", marshalIndent(t, req))
}

func TestSuccessResponseWireFormat(t *testing.T) {
	resp := newSuccessResponse("req-peer-7", map[string]any{
		"behavior": "allow",
		"updatedInput": map[string]any{
			"command": "ls -la",
		},
	})

	golden(t).Assert(t, "success_response", marshalIndent(t, resp))
}

func TestErrorResponseWireFormat(t *testing.T) {
	resp := newErrorResponse("req-peer-8", "no permission callback provided")

	golden(t).Assert(t, "error_response", marshalIndent(t, resp))
}

func TestControlRequestSubtype(t *testing.T) {
	req := newControlRequest("req_1_x", SubtypeInterrupt, nil)
	assert.Equal(t, SubtypeInterrupt, req.Subtype())

	empty := &ControlRequest{Type: TypeControlRequest, Request: map[string]any{}}
	assert.Equal(t, "", empty.Subtype())
}

func TestControlRequestMergesPayloadNextToSubtype(t *testing.T) {
	req := newControlRequest("req_3_x", SubtypeSetModel, map[string]any{"model": "claude-sonnet-4-5"})

	assert.Equal(t, map[string]any{
		"subtype": SubtypeSetModel,
		"model":   "claude-sonnet-4-5",
	}, req.Request)
}

func TestControlResponseAccessors(t *testing.T) {
	success := newSuccessResponse("req_1_x", map[string]any{"ok": true})
	assert.False(t, success.IsError())
	assert.Equal(t, "req_1_x", success.RequestID())
	assert.Equal(t, map[string]any{"ok": true}, success.Payload())
	assert.Equal(t, "", success.ErrorMessage())

	failure := newErrorResponse("req_2_x", "went sideways")
	assert.True(t, failure.IsError())
	assert.Equal(t, "req_2_x", failure.RequestID())
	assert.Nil(t, failure.Payload())
	assert.Equal(t, "went sideways", failure.ErrorMessage())

	blank := &ControlResponse{Type: TypeControlResponse, Response: map[string]any{}}
	assert.False(t, blank.IsError())
	assert.Equal(t, "", blank.RequestID())
}

func TestSuccessResponseNilPayloadBecomesEmptyObject(t *testing.T) {
	resp := newSuccessResponse("req_4_x", nil)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"response":{}`)
}
