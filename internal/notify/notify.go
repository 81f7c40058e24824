// Package notify debounces scene-change notifications before they reach
// the persistence collaborator. Rapid interactive edits collapse into one
// delivery carrying the most recent state.
package notify

import (
	"sync"
	"time"

	"voiceboard/internal/scene"
)

// DefaultQuiet is the quiet period that must elapse without further
// calls before a pending notification is delivered.
const DefaultQuiet = 1000 * time.Millisecond

// Sink receives the debounced snapshots. Implementations are the
// persistence collaborator's concern; the pipeline never calls one
// directly, only through a Notifier.
type Sink interface {
	SaveSnapshot(elements scene.Scene, appState map[string]any)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(elements scene.Scene, appState map[string]any)

// SaveSnapshot calls f.
func (f SinkFunc) SaveSnapshot(elements scene.Scene, appState map[string]any) {
	f(elements, appState)
}

// Notifier coalesces rapid Notify calls: only the most recent pending
// call's arguments are delivered, and only after the quiet period passes
// with no further calls. The pending state machine (idle, or pending with
// args and a timer) is owned privately behind the mutex.
type Notifier struct {
	sink  Sink
	quiet time.Duration

	mu       sync.Mutex
	timer    *time.Timer
	elements scene.Scene
	appState map[string]any
}

// NewNotifier wraps a sink with debounced delivery. quiet <= 0 selects
// DefaultQuiet.
func NewNotifier(sink Sink, quiet time.Duration) *Notifier {
	if quiet <= 0 {
		quiet = DefaultQuiet
	}
	return &Notifier{sink: sink, quiet: quiet}
}

// Notify records the latest state and (re)starts the quiet-period timer.
// A call while a delivery is pending replaces the pending arguments and
// resets the clock.
func (n *Notifier) Notify(elements scene.Scene, appState map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.elements = elements
	n.appState = appState

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.quiet, n.deliver)
}

// deliver fires on timer expiry. It re-checks under the lock that the
// timer was not cancelled in the window between expiry and acquiring the
// mutex, so a Cancel always wins over a racing delivery.
func (n *Notifier) deliver() {
	n.mu.Lock()
	if n.timer == nil {
		n.mu.Unlock()
		return
	}
	n.timer = nil
	elements, appState := n.elements, n.appState
	n.elements, n.appState = nil, nil
	n.mu.Unlock()

	n.sink.SaveSnapshot(elements, appState)
}

// Cancel discards any pending notification without delivering it. Used
// when the owning session ends so superseded state is never written.
func (n *Notifier) Cancel() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.elements, n.appState = nil, nil
}

// Flush delivers any pending notification immediately.
func (n *Notifier) Flush() {
	n.mu.Lock()
	if n.timer == nil {
		n.mu.Unlock()
		return
	}
	n.timer.Stop()
	n.timer = nil
	elements, appState := n.elements, n.appState
	n.elements, n.appState = nil, nil
	n.mu.Unlock()

	n.sink.SaveSnapshot(elements, appState)
}
