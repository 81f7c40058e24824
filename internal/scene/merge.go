package scene

import "fmt"

// EnsureIDs fills in missing ids on add skeletons. Id generation happens
// here, on the producer side, never inside Apply: the merge engine only
// accepts ids it is given.
func EnsureIDs(a *Action) {
	if a.Type != ActionAdd {
		return
	}
	for i := range a.Elements {
		if a.Elements[i].ID == "" {
			a.Elements[i].ID = NewID(a.Elements[i].Kind)
		}
	}
}

// Apply merges a validated action into the scene and returns the result.
// The input scene is never mutated; on any error it remains the caller's
// scene, byte for byte. Error actions are not applied at all: the scene
// comes back unchanged and the caller surfaces the message.
//
// Apply is deterministic: the same scene and action always produce the
// same result.
func Apply(s Scene, a *Action) (Scene, error) {
	switch a.Type {
	case ActionAdd:
		return applyAdd(s, a)
	case ActionUpdate:
		return applyUpdate(s, a)
	case ActionDelete:
		return applyDelete(s, a)
	case ActionError:
		return s, nil
	default:
		return s, fmt.Errorf("%w: cannot apply action %q", ErrMalformedResponse, a.Type)
	}
}

// applyAdd appends each new element to the end of the sequence, so new
// content renders on top of everything already on the board.
func applyAdd(s Scene, a *Action) (Scene, error) {
	seen := make(map[string]bool, len(a.Elements))
	for i := range a.Elements {
		id := a.Elements[i].ID
		if id == "" {
			return s, fmt.Errorf("%w: add element %d has no id; run EnsureIDs first", ErrInvalidField, i)
		}
		if seen[id] || s.Lookup(id) >= 0 {
			return s, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = true
	}

	out := s.clone()
	for i := range a.Elements {
		out = append(out, materialize(&a.Elements[i]))
	}
	return out, nil
}

// applyUpdate shallow-merges each skeleton's provided fields onto the
// existing element with the same id. Fields the update does not mention
// are preserved, not cleared. The version counter moves by exactly one
// per update, and element order is untouched.
func applyUpdate(s Scene, a *Action) (Scene, error) {
	out := s.clone()
	for i := range a.Elements {
		sk := &a.Elements[i]
		idx := out.Lookup(sk.ID)
		if idx < 0 {
			return s, fmt.Errorf("%w: update references %q which is not on the board", ErrUnknownElement, sk.ID)
		}
		mergeInto(&out[idx], sk)
		out[idx].Version++
	}
	return out, nil
}

// applyDelete tombstones each referenced element. Nothing is physically
// removed, so the operation never changes the scene's length and applying
// the same delete twice is a no-op the second time.
func applyDelete(s Scene, a *Action) (Scene, error) {
	out := s.clone()
	for _, id := range a.DeleteIDs {
		idx := out.Lookup(id)
		if idx < 0 {
			// Already tombstoned by an earlier entry of the same action.
			if alreadyDeleted(out, id) {
				continue
			}
			return s, fmt.Errorf("%w: delete references %q which is not on the board", ErrUnknownElement, id)
		}
		out[idx].IsDeleted = true
	}
	return out, nil
}

func alreadyDeleted(s Scene, id string) bool {
	for i := range s {
		if s[i].ID == id && s[i].IsDeleted {
			return true
		}
	}
	return false
}

// materialize turns an add skeleton into a full element with protocol
// defaults filled in for everything the model omitted.
func materialize(sk *Skeleton) Element {
	e := sk.Element.clone()

	switch e.Kind {
	case KindRectangle, KindEllipse, KindDiamond:
		if e.Width == 0 {
			e.Width = DefaultSize
		}
		if e.Height == 0 {
			e.Height = DefaultSize
		}
		if e.BackgroundColor == "" {
			e.BackgroundColor = DefaultFillColor
		}
	case KindText:
		if e.FontSize == 0 {
			e.FontSize = DefaultFontSize
		}
	}
	if e.StrokeColor == "" {
		e.StrokeColor = DefaultStrokeColor
	}
	if e.StrokeWidth == 0 {
		e.StrokeWidth = DefaultStrokeWidth
	}
	if e.StrokeStyle == "" && e.Kind != KindText {
		e.StrokeStyle = DefaultStrokeStyle
	}
	if e.Label != nil && e.Label.FontSize == 0 {
		e.Label.FontSize = DefaultFontSize
	}
	e.Version = 1
	e.IsDeleted = false
	return e
}

// mergeInto copies the skeleton's provided fields onto dst. Keys are the
// wire-format JSON names; id, version, and isDeleted are never merged.
func mergeInto(dst *Element, sk *Skeleton) {
	for key := range sk.provided {
		switch key {
		case "type":
			dst.Kind = sk.Kind
		case "x":
			dst.X = sk.X
		case "y":
			dst.Y = sk.Y
		case "width":
			dst.Width = sk.Width
		case "height":
			dst.Height = sk.Height
		case "text":
			dst.Text = sk.Text
		case "fontSize":
			dst.FontSize = sk.FontSize
		case "strokeColor":
			dst.StrokeColor = sk.StrokeColor
		case "backgroundColor":
			dst.BackgroundColor = sk.BackgroundColor
		case "strokeWidth":
			dst.StrokeWidth = sk.StrokeWidth
		case "strokeStyle":
			dst.StrokeStyle = sk.StrokeStyle
		case "label":
			if sk.Label != nil {
				l := *sk.Label
				dst.Label = &l
			} else {
				dst.Label = nil
			}
		case "start":
			if sk.Start != nil {
				b := *sk.Start
				dst.Start = &b
			} else {
				dst.Start = nil
			}
		case "end":
			if sk.End != nil {
				b := *sk.End
				dst.End = &b
			} else {
				dst.End = nil
			}
		}
	}
}
