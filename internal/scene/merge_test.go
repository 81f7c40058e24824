package scene

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string, current Scene) *Action {
	t.Helper()
	action, err := Parse(raw, current)
	require.NoError(t, err)
	return action
}

func TestApplyAdd(t *testing.T) {
	current := board()
	action := mustParse(t, `{"action":"add","elements":[
		{"type":"rectangle","id":"rect-9","x":50,"y":60},
		{"type":"text","id":"note-1","x":10,"y":20,"text":"hi"}]}`, current)

	merged, err := Apply(current, action)
	require.NoError(t, err)

	assert.Len(t, merged, len(current)+2)
	// Originals unchanged, order preserved.
	for i := range current {
		assert.Empty(t, cmp.Diff(current[i], merged[i]))
	}
	// New elements appended at the end, in action order.
	assert.Equal(t, "rect-9", merged[len(merged)-2].ID)
	assert.Equal(t, "note-1", merged[len(merged)-1].ID)
}

func TestApplyAdd_Defaults(t *testing.T) {
	action := mustParse(t, `{"action":"add","elements":[
		{"type":"rectangle","id":"r","x":1,"y":2},
		{"type":"text","id":"t","x":3,"y":4,"text":"hello"}]}`, Scene{})

	merged, err := Apply(Scene{}, action)
	require.NoError(t, err)

	rect := merged[0]
	assert.Equal(t, DefaultSize, rect.Width)
	assert.Equal(t, DefaultSize, rect.Height)
	assert.Equal(t, DefaultFillColor, rect.BackgroundColor)
	assert.Equal(t, DefaultStrokeColor, rect.StrokeColor)
	assert.Equal(t, DefaultStrokeWidth, rect.StrokeWidth)
	assert.Equal(t, DefaultStrokeStyle, rect.StrokeStyle)
	assert.Equal(t, 1, rect.Version)

	text := merged[1]
	assert.Equal(t, DefaultFontSize, text.FontSize)
	assert.Zero(t, text.Width)
}

func TestApplyAdd_DuplicateID(t *testing.T) {
	current := board()

	t.Run("collides with board", func(t *testing.T) {
		action := mustParse(t, `{"action":"add","elements":[{"type":"rectangle","id":"user-box","x":1,"y":1}]}`, current)
		got, err := Apply(current, action)
		require.ErrorIs(t, err, ErrDuplicateID)
		assert.Empty(t, cmp.Diff(current, got))
	})

	t.Run("collides within batch", func(t *testing.T) {
		action := mustParse(t, `{"action":"add","elements":[
			{"type":"rectangle","id":"twin","x":1,"y":1},
			{"type":"ellipse","id":"twin","x":2,"y":2}]}`, current)
		_, err := Apply(current, action)
		require.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("tombstoned id may be reused", func(t *testing.T) {
		action := mustParse(t, `{"action":"add","elements":[{"type":"text","id":"old-note","x":1,"y":1,"text":"back"}]}`, current)
		merged, err := Apply(current, action)
		require.NoError(t, err)
		assert.Len(t, merged, len(current)+1)
	})
}

func TestApplyUpdate_PartialMerge(t *testing.T) {
	current := Scene{{
		ID: "user-box", Kind: KindRectangle,
		X: 100, Y: 200, Width: 120, Height: 80,
		BackgroundColor: "#a5d8ff", StrokeColor: "#1e1e1e",
		Label:   &Label{Text: "User", FontSize: 18},
		Version: 3,
	}}

	action := mustParse(t, `{"action":"update","elements":[{"id":"user-box","backgroundColor":"#fff3bf","x":150}]}`, current)
	merged, err := Apply(current, action)
	require.NoError(t, err)

	got := merged[0]
	// Provided fields replaced.
	assert.Equal(t, "#fff3bf", got.BackgroundColor)
	assert.Equal(t, 150.0, got.X)
	// Unmentioned fields preserved, not cleared.
	assert.Equal(t, 200.0, got.Y)
	assert.Equal(t, 120.0, got.Width)
	assert.Equal(t, "#1e1e1e", got.StrokeColor)
	require.NotNil(t, got.Label)
	assert.Equal(t, "User", got.Label.Text)
	// Version moves by exactly one.
	assert.Equal(t, 4, got.Version)
	// Input untouched.
	assert.Equal(t, "#a5d8ff", current[0].BackgroundColor)
	assert.Equal(t, 3, current[0].Version)
}

func TestApplyUpdate_OrderUnchanged(t *testing.T) {
	current := board()
	action := mustParse(t, `{"action":"update","elements":[{"id":"database","x":999}]}`, current)

	merged, err := Apply(current, action)
	require.NoError(t, err)
	require.Len(t, merged, len(current))
	for i := range current {
		assert.Equal(t, current[i].ID, merged[i].ID)
	}
}

func TestApplyDelete(t *testing.T) {
	current := board()
	action := mustParse(t, `{"action":"delete","delete_ids":["user-box"]}`, current)

	merged, err := Apply(current, action)
	require.NoError(t, err)

	// Tombstone, never removal.
	assert.Len(t, merged, len(current))
	idx := -1
	for i := range merged {
		if merged[i].ID == "user-box" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, merged[idx].IsDeleted)
	// Everything else byte-for-byte unchanged.
	for i := range merged {
		if i == idx {
			continue
		}
		assert.Empty(t, cmp.Diff(current[i], merged[i]))
	}
	// Input untouched.
	assert.False(t, current[0].IsDeleted)
}

func TestApplyDelete_Idempotent(t *testing.T) {
	current := board()
	action := mustParse(t, `{"action":"delete","delete_ids":["user-box"]}`, current)

	once, err := Apply(current, action)
	require.NoError(t, err)
	twice, err := Apply(once, action)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(once, twice))
}

func TestApplyError_NoOp(t *testing.T) {
	current := board()
	action := mustParse(t, `{"action":"error","message":"Element not found"}`, current)

	got, err := Apply(current, action)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(current, got))
}

func TestApply_Deterministic(t *testing.T) {
	current := board()
	action := mustParse(t, `{"action":"update","elements":[{"id":"user-box","x":150,"strokeColor":"#e03131"}]}`, current)

	a, err := Apply(current, action)
	require.NoError(t, err)
	b, err := Apply(current, action)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a, b))
}

func TestEnsureIDs(t *testing.T) {
	action := mustParse(t, `{"action":"add","elements":[
		{"type":"rectangle","x":1,"y":1},
		{"type":"ellipse","id":"kept","x":2,"y":2}]}`, Scene{})

	EnsureIDs(action)
	assert.NotEmpty(t, action.Elements[0].ID)
	assert.Contains(t, action.Elements[0].ID, "rectangle-")
	assert.Equal(t, "kept", action.Elements[1].ID)

	// Non-add actions are left alone.
	del := &Action{Type: ActionDelete, DeleteIDs: []string{"x"}}
	EnsureIDs(del)
	assert.Empty(t, del.Elements)
}
