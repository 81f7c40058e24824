// Package scene holds the whiteboard data model: elements, scenes, and the
// validated actions that mutate them. A Scene is an ordered sequence of
// elements (later entries render on top); deleted elements stay in the
// sequence as tombstones so ids remain stable for undo and re-reference.
package scene

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ElementKind enumerates the visual primitives the model may produce.
type ElementKind string

const (
	KindRectangle ElementKind = "rectangle"
	KindEllipse   ElementKind = "ellipse"
	KindDiamond   ElementKind = "diamond"
	KindText      ElementKind = "text"
	KindArrow     ElementKind = "arrow"
)

// Valid reports whether the kind is one of the five known primitives.
func (k ElementKind) Valid() bool {
	switch k {
	case KindRectangle, KindEllipse, KindDiamond, KindText, KindArrow:
		return true
	}
	return false
}

// Default style values, matching the prompt protocol's documented defaults.
const (
	DefaultSize        = 100.0
	DefaultStrokeColor = "#1e1e1e"
	DefaultFillColor   = "transparent"
	DefaultStrokeWidth = 2.0
	DefaultStrokeStyle = "solid"
	DefaultFontSize    = 20.0
)

// Label is optional text attached to a shape or arrow.
type Label struct {
	Text        string  `json:"text"`
	FontSize    float64 `json:"fontSize,omitempty"`
	StrokeColor string  `json:"strokeColor,omitempty"`
}

// Binding references another element by id. Arrows use bindings for their
// start and end anchors.
type Binding struct {
	ID string `json:"id"`
}

// Element is one visual primitive on the board.
type Element struct {
	ID              string      `json:"id"`
	Kind            ElementKind `json:"type"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	Width           float64     `json:"width,omitempty"`
	Height          float64     `json:"height,omitempty"`
	Text            string      `json:"text,omitempty"`
	FontSize        float64     `json:"fontSize,omitempty"`
	StrokeColor     string      `json:"strokeColor,omitempty"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	StrokeWidth     float64     `json:"strokeWidth,omitempty"`
	StrokeStyle     string      `json:"strokeStyle,omitempty"`
	Label           *Label      `json:"label,omitempty"`
	Start           *Binding    `json:"start,omitempty"`
	End             *Binding    `json:"end,omitempty"`
	Version         int         `json:"version,omitempty"`
	IsDeleted       bool        `json:"isDeleted,omitempty"`
}

// clone returns a deep copy so merge operations never alias the input scene.
func (e Element) clone() Element {
	c := e
	if e.Label != nil {
		l := *e.Label
		c.Label = &l
	}
	if e.Start != nil {
		b := *e.Start
		c.Start = &b
	}
	if e.End != nil {
		b := *e.End
		c.End = &b
	}
	return c
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidColor reports whether s is a 6-hex-digit RGB color or "transparent".
// The empty string is allowed: omitted colors take defaults.
func ValidColor(s string) bool {
	return s == "" || s == "transparent" || hexColorRe.MatchString(s)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// NewID generates a fresh element id with a kind-derived prefix, e.g.
// "rectangle-1b9d6bcd". Ids are produced caller-side; the merge engine only
// ever accepts ids, it never invents them.
func NewID(kind ElementKind) string {
	prefix := string(kind)
	if prefix == "" {
		prefix = "element"
	}
	return fmt.Sprintf("%s-%s", prefix, strings.Split(uuid.NewString(), "-")[0])
}
