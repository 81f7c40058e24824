// Package session wires the speech-to-mutation pipeline: one spoken
// instruction in, one validated scene delta out. The session owns the
// scene single-writer discipline; this package assumes one writer at a
// time per scene and does no cross-session locking.
package session

import (
	"context"

	"go.uber.org/zap"

	"voiceboard/internal/llm"
	"voiceboard/internal/scene"
)

// Generator is the dispatcher boundary the pipeline depends on.
type Generator interface {
	Generate(ctx context.Context, instruction, boardState string) (*llm.Response, error)
}

// Pipeline turns instructions into validated, merged scenes.
type Pipeline struct {
	gen      Generator
	notifier Notifier
	logger   *zap.Logger
}

// Notifier is the debounced delivery contract for interactively edited
// scenes. Model-applied mutations do not route through it.
type Notifier interface {
	Notify(elements scene.Scene, appState map[string]any)
}

// NewPipeline builds a pipeline. notifier and logger may be nil.
func NewPipeline(gen Generator, notifier Notifier, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{gen: gen, notifier: notifier, logger: logger}
}

// Instruct runs one instruction end to end: dispatch to the model, parse
// and validate the response against the current scene, merge. On any
// failure the returned scene is the input scene, untouched; there is no
// partial application. The returned action is non-nil whenever parsing
// succeeded, so callers can surface a model "error" action's message.
func (p *Pipeline) Instruct(ctx context.Context, current scene.Scene, instruction string) (scene.Scene, *scene.Action, error) {
	boardState, err := current.JSON()
	if err != nil {
		return current, nil, err
	}

	resp, err := p.gen.Generate(ctx, instruction, boardState)
	if err != nil {
		return current, nil, err
	}

	action, err := scene.Parse(resp.Text, current)
	if err != nil {
		p.logger.Warn("model response rejected", zap.Error(err))
		return current, nil, err
	}

	if action.Type == scene.ActionError {
		p.logger.Info("model returned error action", zap.String("message", action.Message))
		return current, action, nil
	}

	scene.EnsureIDs(action)
	merged, err := scene.Apply(current, action)
	if err != nil {
		p.logger.Warn("validated action failed to apply", zap.Error(err))
		return current, action, err
	}

	p.logger.Debug("instruction applied",
		zap.String("action", string(action.Type)),
		zap.Int("elements", len(merged)))
	return merged, action, nil
}

// EditorUpdate is the interactive-edit path. The edited scene is compared
// structurally against the previous one; only material changes reach the
// notifier, so pure re-renders never restart the debounce clock.
func (p *Pipeline) EditorUpdate(previous, edited scene.Scene, appState map[string]any) bool {
	if p.notifier == nil {
		return false
	}
	if !scene.Changed(previous, edited) {
		return false
	}
	p.notifier.Notify(edited, appState)
	return true
}
