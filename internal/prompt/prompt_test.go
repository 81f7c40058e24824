package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_Sections(t *testing.T) {
	got := Build("draw a red box", `[{"id":"a"}]`)

	boardIdx := strings.Index(got, "## CURRENT BOARD STATE")
	instrIdx := strings.Index(got, "## USER INSTRUCTION")
	closeIdx := strings.Index(got, "## YOUR RESPONSE (JSON ONLY, NO OTHER TEXT):")

	assert.GreaterOrEqual(t, boardIdx, 0)
	assert.Greater(t, instrIdx, boardIdx)
	assert.Greater(t, closeIdx, instrIdx)
	assert.Contains(t, got, `[{"id":"a"}]`)
	assert.Contains(t, got, "draw a red box")
	assert.True(t, strings.HasSuffix(got, "## YOUR RESPONSE (JSON ONLY, NO OTHER TEXT):"))
}

func TestNormalizeBoardState(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "[]"},
		{"valid array", `[{"id":"x"}]`, `[{"id":"x"}]`},
		{"valid empty array", "[]", "[]"},
		{"garbage", "not json at all", "[]"},
		{"truncated", `[{"id":`, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBoardState(tt.input))
		})
	}
}

func TestSystemPrompt_ProtocolContract(t *testing.T) {
	// The parser depends on these literals; a drift here breaks the wire
	// contract with the model.
	for _, needle := range []string{
		`"action": "add" | "update" | "delete"`,
		`"delete_ids"`,
		`"rectangle", "ellipse", "diamond", "text", "arrow"`,
		`"#rrggbb" or "transparent"`,
		`{"action": "error", "message": "Element not found"}`,
		"NEVER invent element IDs",
	} {
		assert.Contains(t, SystemPrompt, needle)
	}
}
