package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ActionType discriminates the model's structured intent.
type ActionType string

const (
	ActionAdd    ActionType = "add"
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
	ActionError  ActionType = "error"
)

// Validation failure taxonomy. These are deterministic protocol faults:
// retrying the same response reproduces the same failure, so callers must
// not retry automatically.
var (
	ErrMalformedResponse = errors.New("malformed model response")
	ErrUnknownElement    = errors.New("unknown element reference")
	ErrInvalidField      = errors.New("invalid element field")
	ErrDuplicateID       = errors.New("duplicate element id")
)

// Skeleton is an under-specified element as it arrives from the model.
// It remembers which JSON keys were actually present so updates can
// shallow-merge only the provided fields.
type Skeleton struct {
	Element

	provided map[string]bool
}

// Provided reports whether the named JSON key was present in the raw
// skeleton. Always false for skeletons built in code rather than parsed.
func (sk *Skeleton) Provided(key string) bool {
	return sk.provided[key]
}

// UnmarshalJSON decodes the element and records the set of provided keys.
func (sk *Skeleton) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &sk.Element); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	sk.provided = make(map[string]bool, len(keys))
	for k := range keys {
		sk.provided[k] = true
	}
	return nil
}

// MarshalJSON writes the skeleton back in the wire format the model emits.
func (sk Skeleton) MarshalJSON() ([]byte, error) {
	return json.Marshal(sk.Element)
}

// Action is a validated description of one scene mutation.
type Action struct {
	Type      ActionType `json:"action"`
	Elements  []Skeleton `json:"elements,omitempty"`
	DeleteIDs []string   `json:"delete_ids,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// Serialize renders the action in the model's wire format.
func (a *Action) Serialize() (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Parse turns raw model text into a validated Action against the current
// scene. The text may wrap the JSON object in markdown fences or prose;
// the first balanced object is extracted before decoding. Any validation
// failure leaves the caller's scene untouched by construction: parsing
// never mutates anything.
func Parse(raw string, current Scene) (*Action, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedResponse)
	}

	var action Action
	if err := json.Unmarshal([]byte(payload), &action); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	switch action.Type {
	case ActionAdd:
		if err := validateAdd(&action, current); err != nil {
			return nil, err
		}
	case ActionUpdate:
		if err := validateUpdate(&action, current); err != nil {
			return nil, err
		}
	case ActionDelete:
		if err := validateDelete(&action, current); err != nil {
			return nil, err
		}
	case ActionError:
		// Surfaced to the caller as-is; nothing to validate beyond shape.
	default:
		return nil, fmt.Errorf("%w: unrecognized action %q", ErrMalformedResponse, action.Type)
	}

	return &action, nil
}

func validateAdd(a *Action, current Scene) error {
	if len(a.Elements) == 0 {
		return fmt.Errorf("%w: add requires a non-empty elements array", ErrMalformedResponse)
	}
	// Arrow endpoints may reference elements added in the same batch.
	batch := make(map[string]bool, len(a.Elements))
	for i := range a.Elements {
		if id := a.Elements[i].ID; id != "" {
			batch[id] = true
		}
	}
	for i := range a.Elements {
		el := &a.Elements[i].Element
		if !el.Kind.Valid() {
			return fmt.Errorf("%w: element %d has unknown type %q", ErrInvalidField, i, el.Kind)
		}
		if err := validateFields(el, i); err != nil {
			return err
		}
		if err := validateBindings(el, current, batch); err != nil {
			return err
		}
	}
	return nil
}

func validateUpdate(a *Action, current Scene) error {
	if len(a.Elements) == 0 {
		return fmt.Errorf("%w: update requires a non-empty elements array", ErrMalformedResponse)
	}
	for i := range a.Elements {
		el := &a.Elements[i].Element
		if strings.TrimSpace(el.ID) == "" {
			return fmt.Errorf("%w: update element %d is missing an id", ErrMalformedResponse, i)
		}
		if current.Lookup(el.ID) < 0 {
			return fmt.Errorf("%w: update references %q which is not on the board", ErrUnknownElement, el.ID)
		}
		if el.Kind != "" && !el.Kind.Valid() {
			return fmt.Errorf("%w: element %d has unknown type %q", ErrInvalidField, i, el.Kind)
		}
		if err := validateFields(el, i); err != nil {
			return err
		}
		if err := validateBindings(el, current, nil); err != nil {
			return err
		}
	}
	return nil
}

func validateDelete(a *Action, current Scene) error {
	if len(a.DeleteIDs) == 0 {
		return fmt.Errorf("%w: delete requires a non-empty delete_ids array", ErrMalformedResponse)
	}
	for _, id := range a.DeleteIDs {
		if current.Lookup(id) < 0 {
			return fmt.Errorf("%w: delete references %q which is not on the board", ErrUnknownElement, id)
		}
	}
	return nil
}

func validateFields(el *Element, i int) error {
	for _, c := range []struct {
		name  string
		value string
	}{
		{"strokeColor", el.StrokeColor},
		{"backgroundColor", el.BackgroundColor},
	} {
		if !ValidColor(c.value) {
			return fmt.Errorf("%w: element %d %s %q is not #rrggbb or transparent", ErrInvalidField, i, c.name, c.value)
		}
	}
	if el.Label != nil && !ValidColor(el.Label.StrokeColor) {
		return fmt.Errorf("%w: element %d label strokeColor %q is not #rrggbb or transparent", ErrInvalidField, i, el.Label.StrokeColor)
	}
	for _, n := range []struct {
		name  string
		value float64
	}{
		{"x", el.X},
		{"y", el.Y},
		{"width", el.Width},
		{"height", el.Height},
		{"fontSize", el.FontSize},
		{"strokeWidth", el.StrokeWidth},
	} {
		if !finite(n.value) {
			return fmt.Errorf("%w: element %d %s is not a finite number", ErrInvalidField, i, n.name)
		}
	}
	return nil
}

// validateBindings checks arrow endpoints against the board plus, for adds,
// ids introduced by the same batch. A dangling endpoint is a validation
// error, never a silent no-op.
func validateBindings(el *Element, current Scene, batch map[string]bool) error {
	for _, b := range []*Binding{el.Start, el.End} {
		if b == nil {
			continue
		}
		if current.Lookup(b.ID) >= 0 || batch[b.ID] {
			continue
		}
		return fmt.Errorf("%w: arrow endpoint %q is not on the board", ErrUnknownElement, b.ID)
	}
	return nil
}

// extractJSON returns the first balanced JSON object in text, tolerating
// markdown fences and surrounding prose. String contents and escapes are
// honored so braces inside values do not confuse the depth count.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
