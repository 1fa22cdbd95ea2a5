package permission

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateToDict_Minimal(t *testing.T) {
	update := &Update{
		Type: UpdateTypeSetMode,
	}

	got := update.ToDict()

	require.Equal(t, map[string]any{
		"type": string(UpdateTypeSetMode),
	}, got)
}

func TestUpdateToDict_Full(t *testing.T) {
	ruleContent := "allow all"
	behavior := BehaviorAllow
	mode := ModeAcceptEdits
	destination := UpdateDestProjectSettings

	update := &Update{
		Type: UpdateTypeAddRules,
		Rules: []*RuleValue{
			{
				ToolName:    "Read",
				RuleContent: &ruleContent,
			},
			{
				ToolName: "Write",
			},
		},
		Behavior:    &behavior,
		Mode:        &mode,
		Directories: []string{"/workspace", "/tmp"},
		Destination: &destination,
	}

	got := update.ToDict()

	require.Equal(t, map[string]any{
		"type":        string(UpdateTypeAddRules),
		"destination": string(UpdateDestProjectSettings),
		"rules": []map[string]any{
			{
				"toolName":    "Read",
				"ruleContent": "allow all",
			},
			{
				"toolName":    "Write",
				"ruleContent": nil,
			},
		},
		"behavior":    string(BehaviorAllow),
		"mode":        string(ModeAcceptEdits),
		"directories": []string{"/workspace", "/tmp"},
	}, got)
}

func TestUpdateToDict_OmitsAbsentFields(t *testing.T) {
	mode := ModePlan
	update := &Update{
		Type: UpdateTypeSetMode,
		Mode: &mode,
	}

	got := update.ToDict()

	require.Equal(t, map[string]any{
		"type": "setMode",
		"mode": "plan",
	}, got)

	// Absent optionals must be missing entirely, not null.
	for _, key := range []string{"destination", "rules", "behavior", "directories"} {
		_, present := got[key]
		require.False(t, present, "field %q should be omitted", key)
	}
}

func TestUpdateFromDict(t *testing.T) {
	u, err := UpdateFromDict(map[string]any{
		"type":        "addRules",
		"destination": "session",
		"behavior":    "allow",
		"rules": []any{
			map[string]any{"toolName": "Bash", "ruleContent": "ls *"},
			map[string]any{"toolName": "Read"},
		},
		"directories": []any{"/workspace"},
	})
	require.NoError(t, err)

	require.Equal(t, UpdateTypeAddRules, u.Type)
	require.NotNil(t, u.Destination)
	require.Equal(t, UpdateDestSession, *u.Destination)
	require.NotNil(t, u.Behavior)
	require.Equal(t, BehaviorAllow, *u.Behavior)
	require.Equal(t, []string{"/workspace"}, u.Directories)

	require.Len(t, u.Rules, 2)
	require.Equal(t, "Bash", u.Rules[0].ToolName)
	require.NotNil(t, u.Rules[0].RuleContent)
	require.Equal(t, "ls *", *u.Rules[0].RuleContent)
	require.Equal(t, "Read", u.Rules[1].ToolName)
	require.Nil(t, u.Rules[1].RuleContent)
}

func TestUpdateFromDict_MissingType(t *testing.T) {
	_, err := UpdateFromDict(map[string]any{"behavior": "allow"})
	require.ErrorContains(t, err, "missing type")
}

func TestNormalizeMode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acceptAll", "bypassPermissions"},
		{"prompt", "default"},
		{"plan", "plan"},
		{"default", "default"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, NormalizeMode(tt.in))
	}
}

func TestResultBehaviors(t *testing.T) {
	allow := &ResultAllow{}
	deny := &ResultDeny{}

	require.Equal(t, "allow", allow.GetBehavior())
	require.Equal(t, "deny", deny.GetBehavior())
}
