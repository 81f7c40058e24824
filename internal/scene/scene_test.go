package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneLookup(t *testing.T) {
	s := board()
	assert.Equal(t, 0, s.Lookup("user-box"))
	assert.Equal(t, -1, s.Lookup("ghost"))
	// Tombstoned elements are invisible to Lookup.
	assert.Equal(t, -1, s.Lookup("old-note"))
}

func TestSceneActiveAndJSON(t *testing.T) {
	s := board()
	active := s.Active()
	assert.Len(t, active, 2)

	out, err := s.JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"user-box"`)
	assert.NotContains(t, out, `"old-note"`)

	empty, err := Scene{}.JSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestChanged(t *testing.T) {
	base := func() Scene {
		return Scene{
			{ID: "a", Kind: KindRectangle, X: 100, Y: 100, Width: 50, Height: 50, Version: 1},
			{ID: "b", Kind: KindEllipse, X: 300, Y: 100, Width: 80, Height: 80, Version: 2},
		}
	}

	tests := []struct {
		name   string
		mutate func(Scene) Scene
		want   bool
	}{
		{"identical", func(s Scene) Scene { return s }, false},
		{"element added", func(s Scene) Scene {
			return append(s, Element{ID: "c", Kind: KindText, X: 1, Y: 1})
		}, true},
		{"version bumped", func(s Scene) Scene { s[0].Version++; return s }, true},
		{"tombstoned", func(s Scene) Scene { s[1].IsDeleted = true; return s }, true},
		{"moved beyond epsilon", func(s Scene) Scene { s[0].X += 0.5; return s }, true},
		{"resized beyond epsilon", func(s Scene) Scene { s[1].Height += 1; return s }, true},
		{"jitter below epsilon", func(s Scene) Scene { s[0].X += 0.005; s[1].Width += 0.009; return s }, false},
		{"id swapped", func(s Scene) Scene { s[0].ID = "z"; return s }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Changed(base(), tt.mutate(base())))
		})
	}
}

func TestValidColor(t *testing.T) {
	assert.True(t, ValidColor("#1e1e1e"))
	assert.True(t, ValidColor("#A5D8FF"))
	assert.True(t, ValidColor("transparent"))
	assert.True(t, ValidColor(""))
	assert.False(t, ValidColor("#fff"))
	assert.False(t, ValidColor("red"))
	assert.False(t, ValidColor("#12345g"))
	assert.False(t, ValidColor("1e1e1e"))
}

func TestNewID(t *testing.T) {
	a := NewID(KindRectangle)
	b := NewID(KindRectangle)
	assert.Contains(t, a, "rectangle-")
	assert.NotEqual(t, a, b)
	assert.Contains(t, NewID(""), "element-")
}
