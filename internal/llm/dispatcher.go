package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"voiceboard/internal/prompt"
)

const defaultQueueSize = 10

// request is one queued unit of work. The result and error channels each
// have capacity 1 so the worker's single fulfillment never blocks, even
// when the caller has already given up.
type request struct {
	prompt       string
	systemPrompt string
	ctx          context.Context
	resultCh     chan *Response
	errCh        chan error
}

// Dispatcher serializes generation requests against one provider. A
// single worker goroutine, started at construction and bound to the
// dispatcher's lifetime, services queued requests strictly in submission
// order, one at a time; no two provider calls from the same dispatcher
// ever overlap. Dispatchers are independent: one per provider or per test
// is fine, and separate instances may run concurrently.
type Dispatcher struct {
	provider Provider
	timeout  time.Duration
	logger   *zap.Logger

	requests chan *request
	closing  chan struct{}
	done     chan struct{}

	closeOnce sync.Once
}

// DispatcherOption customizes a dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout sets the per-call provider timeout. This bound is owned by
// the dispatcher and independent of any caller's context.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithQueueSize sets the bounded queue capacity (minimum 10).
func WithQueueSize(n int) DispatcherOption {
	return func(disp *Dispatcher) {
		if n >= defaultQueueSize {
			disp.requests = make(chan *request, n)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) DispatcherOption {
	return func(disp *Dispatcher) {
		if l != nil {
			disp.logger = l
		}
	}
}

// NewDispatcher creates a dispatcher and starts its worker.
func NewDispatcher(p Provider, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		provider: p,
		timeout:  20 * time.Second,
		logger:   zap.NewNop(),
		requests: make(chan *request, defaultQueueSize),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}

	go d.worker()
	return d
}

// Generate runs one instruction through the provider. It builds the full
// prompt over the supplied board state, enqueues the request, and waits
// for the worker. Blocking points are: the bounded queue when full, and
// the wait for the worker's answer; both return promptly on caller
// cancellation (ctx.Err()) or dispatcher close (ErrClosed).
func (d *Dispatcher) Generate(ctx context.Context, instruction, boardState string) (*Response, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrEmptyInput
	}

	req := &request{
		prompt:       prompt.Build(instruction, boardState),
		systemPrompt: prompt.SystemPrompt,
		ctx:          ctx,
		resultCh:     make(chan *Response, 1),
		errCh:        make(chan error, 1),
	}

	select {
	case d.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.closing:
		return nil, ErrClosed
	}

	select {
	case resp := <-req.resultCh:
		return resp, nil
	case err := <-req.errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.closing:
		return nil, ErrClosed
	}
}

// worker drains the queue one request at a time. Provider failures are
// reported to the waiting caller and never terminate the loop.
func (d *Dispatcher) worker() {
	defer close(d.done)
	for {
		select {
		case <-d.closing:
			return
		case req := <-d.requests:
			// Caller already gone: drain the slot, discard the work.
			if req.ctx.Err() != nil {
				d.logger.Debug("dropping abandoned request",
					zap.String("provider", d.provider.Name()),
					zap.NamedError("cause", req.ctx.Err()))
				continue
			}
			d.serve(req)
		}
	}
}

// serve runs one provider call under the dispatcher-owned timeout. The
// timeout context is rooted at Background deliberately: the caller's
// cancellation releases the caller, not the in-flight backend call.
func (d *Dispatcher) serve(req *request) {
	callCtx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	start := time.Now()
	resp, err := d.provider.GenerateSync(callCtx, req.prompt, req.systemPrompt)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %v: %v", ErrTimeout, d.timeout, err)
		}
		d.logger.Warn("generation failed",
			zap.String("provider", d.provider.Name()),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
		req.errCh <- err
		return
	}

	d.logger.Debug("generation complete",
		zap.String("provider", d.provider.Name()),
		zap.Duration("elapsed", elapsed),
		zap.Int("response_bytes", len(resp.Text)),
		zap.Int("queued", len(d.requests)))
	req.resultCh <- resp
}

// Close stops the worker and releases the queue. Idempotent. Requests
// still queued or waiting observe ErrClosed; nobody hangs.
func (d *Dispatcher) Close() error {
	d.closeOnce.Do(func() {
		close(d.closing)
		<-d.done
	})
	return nil
}
