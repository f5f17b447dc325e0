// Package mpfe implements the multiprocessing front-end: a proxy that
// executes one evaluable term asynchronously, exposing a non-blocking
// start-calculation / blocking fetch-value protocol. Non-inline front-ends
// isolate the term on a dedicated worker goroutine; the inline front-end
// evaluates on the caller's goroutine at fetch time, which lets a controller
// keep one partition in-process instead of paying for an extra worker.
package mpfe

import (
	"fmt"
	"sync"

	apperrors "github.com/agbru/gofcalc/internal/errors"
	"github.com/agbru/gofcalc/internal/logging"
	"github.com/agbru/gofcalc/internal/model"
)

// Term is the capability a front-end wraps: anything that can produce a
// scalar value and accept constant-optimization hints.
type Term interface {
	// Name identifies the term.
	Name() string
	// Evaluate computes the term's current value.
	Evaluate() (float64, error)
	// ConstOptimize applies a constant-term optimization hint.
	ConstOptimize(op model.OptCode) error
}

// result carries one evaluation outcome from the worker goroutine.
type result struct {
	value float64
	err   error
}

// FrontEnd wraps one Term and executes it asynchronously. A FrontEnd must be
// initialized before use; Close releases the worker goroutine. The
// start/value protocol is strictly alternating: every StartCalculation must
// be paired with exactly one Value before the next start.
type FrontEnd struct {
	name   string
	term   Term
	inline bool
	logger logging.Logger

	mu          sync.Mutex
	initialized bool
	closed      bool
	pending     bool

	reqCh  chan struct{}
	resCh  chan result
	quitCh chan struct{}
}

// Option configures a FrontEnd.
type Option func(*FrontEnd)

// WithLogger sets the front-end's logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(f *FrontEnd) { f.logger = l }
}

// New creates a front-end wrapping the term. If inline is true the term is
// evaluated on the goroutine that calls Value; otherwise Initialize spawns a
// dedicated worker goroutine.
func New(name string, term Term, inline bool, opts ...Option) *FrontEnd {
	f := &FrontEnd{
		name:   name,
		term:   term,
		inline: inline,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the front-end name.
func (f *FrontEnd) Name() string { return f.name }

// Inline reports whether the front-end evaluates on the caller's goroutine.
func (f *FrontEnd) Inline() bool { return f.inline }

// Initialize establishes the execution boundary. For non-inline front-ends
// this starts the worker goroutine; for inline front-ends it only marks the
// front-end ready. Initializing twice is a benign no-op.
func (f *FrontEnd) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("front-end %q: initialize after close", f.name)
	}
	if f.initialized {
		return nil
	}
	if !f.inline {
		f.reqCh = make(chan struct{}, 1)
		f.resCh = make(chan result, 1)
		f.quitCh = make(chan struct{})
		go f.serve()
		f.logger.Info("started worker front-end", logging.String("frontend", f.name))
	}
	f.initialized = true
	return nil
}

// serve is the worker goroutine loop: wait for a calculation request,
// evaluate the wrapped term, deliver the result.
func (f *FrontEnd) serve() {
	for {
		select {
		case <-f.reqCh:
			f.mu.Lock()
			term := f.term
			f.mu.Unlock()
			v, err := term.Evaluate()
			f.resCh <- result{value: v, err: err}
		case <-f.quitCh:
			return
		}
	}
}

// StartCalculation triggers an asynchronous evaluation. It never blocks: for
// a non-inline front-end the request is queued to the worker goroutine; for
// the inline front-end the evaluation is deferred to the Value call. Calling
// StartCalculation on an uninitialized front-end initializes it first.
func (f *FrontEnd) StartCalculation() error {
	if err := f.Initialize(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending {
		return fmt.Errorf("front-end %q: calculation already in flight", f.name)
	}
	f.pending = true
	if !f.inline {
		f.reqCh <- struct{}{}
	}
	return nil
}

// Value returns the result of the calculation most recently started. For a
// non-inline front-end it blocks until the worker goroutine delivers the
// result; for the inline front-end it performs the evaluation now. Calling
// Value without a prior StartCalculation is an error.
func (f *FrontEnd) Value() (float64, error) {
	f.mu.Lock()
	if !f.pending {
		f.mu.Unlock()
		return 0, fmt.Errorf("front-end %q: no calculation in flight", f.name)
	}
	f.pending = false
	if f.inline {
		term := f.term
		f.mu.Unlock()
		v, err := term.Evaluate()
		if err != nil {
			return 0, apperrors.NewEvaluationError(f.name, err)
		}
		return v, nil
	}
	f.mu.Unlock()
	res := <-f.resCh
	if res.err != nil {
		return 0, apperrors.NewEvaluationError(f.name, res.err)
	}
	return res.value, nil
}

// ConstOptimize forwards the optimization hint to the wrapped term. The
// start/value protocol guarantees the worker goroutine is idle between
// evaluations, so the forward happens directly.
func (f *FrontEnd) ConstOptimize(op model.OptCode) error {
	f.mu.Lock()
	if f.pending {
		f.mu.Unlock()
		return fmt.Errorf("front-end %q: const-optimize during calculation", f.name)
	}
	term := f.term
	f.mu.Unlock()
	return term.ConstOptimize(op)
}

// Close stops the worker goroutine. A closed front-end cannot be reused.
// Closing twice, or closing a never-initialized front-end, is a no-op.
func (f *FrontEnd) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	if f.initialized && !f.inline {
		close(f.quitCh)
	}
	return nil
}

// Clone creates a front-end with the same execution mode wrapping the given
// term (typically a deep copy of the original term). If the source was
// initialized the clone is initialized too, so copies of a running fan-out
// are immediately usable.
func (f *FrontEnd) Clone(name string, term Term) (*FrontEnd, error) {
	f.mu.Lock()
	inline := f.inline
	initialized := f.initialized
	logger := f.logger
	f.mu.Unlock()

	cp := New(name, term, inline, WithLogger(logger))
	if initialized {
		if err := cp.Initialize(); err != nil {
			return nil, err
		}
	}
	return cp, nil
}
