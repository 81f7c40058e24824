// Package llm contains the pluggable text-generation backends and the
// dispatcher that serializes access to them. Exactly one provider call is
// in flight per dispatcher at any time; providers themselves are plain
// synchronous clients with no queueing of their own.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Response is one completed generation.
type Response struct {
	Text      string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Provider performs one synchronous generate call. Implementations differ
// in transport and payload shape but share this contract: decoding
// parameters are tuned for deterministic, low-creativity output, and any
// transport failure, non-success status, or empty completion surfaces as
// a *ProviderError.
type Provider interface {
	GenerateSync(ctx context.Context, prompt, systemPrompt string) (*Response, error)
	Name() string
}

// Recoverable dispatch errors. Callers may retry after ErrTimeout (with
// backoff) and after ErrEmptyInput (with real input); ErrClosed is final
// for this dispatcher instance. Caller cancellation surfaces as the
// caller's own ctx.Err().
var (
	ErrEmptyInput = errors.New("empty instruction")
	ErrClosed     = errors.New("dispatcher is closed")
	ErrTimeout    = errors.New("generation timed out")
)

// ProviderError wraps a backend failure: transport error, non-success
// HTTP status, or an empty completion payload. Always recoverable; it
// never terminates the dispatcher worker.
type ProviderError struct {
	Provider string
	Status   int // HTTP status when applicable, otherwise 0
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
