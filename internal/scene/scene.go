package scene

import (
	"encoding/json"
	"math"
)

// Scene is the ordered collection of elements on one board. Order is
// render order: later entries draw on top. A Scene is owned by a single
// session at a time; the package itself does no locking.
type Scene []Element

// Lookup returns the index of the non-deleted element with the given id,
// or -1 when absent.
func (s Scene) Lookup(id string) int {
	for i := range s {
		if s[i].ID == id && !s[i].IsDeleted {
			return i
		}
	}
	return -1
}

// Active returns the non-deleted elements in render order.
func (s Scene) Active() []Element {
	out := make([]Element, 0, len(s))
	for _, e := range s {
		if !e.IsDeleted {
			out = append(out, e)
		}
	}
	return out
}

// JSON serializes the active elements as the JSON array embedded into
// prompts and delivered to collaborators. An empty scene yields "[]".
func (s Scene) JSON() (string, error) {
	data, err := json.Marshal(s.Active())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s Scene) clone() Scene {
	out := make(Scene, len(s))
	for i := range s {
		out[i] = s[i].clone()
	}
	return out
}

// PositionEpsilon is the threshold below which geometry differences are
// treated as pure re-render noise rather than a material change.
const PositionEpsilon = 0.01

// Changed reports whether two scenes differ materially: element count, or
// for any shared id a version bump, tombstone flip, or a position/size
// delta beyond PositionEpsilon. It is the cheap gate in front of the
// change notifier; unchanged scenes are suppressed before debouncing.
func Changed(before, after Scene) bool {
	if len(before) != len(after) {
		return true
	}
	prev := make(map[string]*Element, len(before))
	for i := range before {
		prev[before[i].ID] = &before[i]
	}
	for i := range after {
		e := &after[i]
		p, ok := prev[e.ID]
		if !ok {
			return true
		}
		if p.Version != e.Version || p.IsDeleted != e.IsDeleted {
			return true
		}
		if beyond(p.X, e.X) || beyond(p.Y, e.Y) || beyond(p.Width, e.Width) || beyond(p.Height, e.Height) {
			return true
		}
	}
	return false
}

func beyond(a, b float64) bool {
	return math.Abs(a-b) > PositionEpsilon
}
