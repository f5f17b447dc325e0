// Package objective implements the evaluation controller for goodness-of-fit
// calculations: the scalar objective measuring how well a parametric model
// explains an observed dataset.
//
// The controller exploits two orthogonal decompositions. A composite
// (simultaneous) model is split into one sub-objective per category present
// in both model and data, and the objective is the sum of the parts. A
// single model/dataset pair can instead be split by event range across N
// worker front-ends, evaluated concurrently and recombined in the parent.
// Which decomposition runs is fixed at construction time; worker and child
// collections are allocated lazily on the first evaluation so prototypes
// that exist only to be cloned never spawn workers.
package objective

import (
	"fmt"
	"time"

	"github.com/agbru/gofcalc/internal/dataset"
	apperrors "github.com/agbru/gofcalc/internal/errors"
	"github.com/agbru/gofcalc/internal/logging"
	"github.com/agbru/gofcalc/internal/model"
	"github.com/agbru/gofcalc/internal/mpfe"
	"github.com/agbru/gofcalc/internal/params"
	"github.com/agbru/gofcalc/internal/telemetry"
)

// Mode is the operating mode of an objective instance, selected once at
// construction time.
type Mode int

const (
	// Slave evaluates its assigned event-range partition directly.
	Slave Mode = iota
	// SimMaster owns one child objective per active category of a composite
	// model and sums their values.
	SimMaster
	// MPMaster owns N worker front-ends, each evaluating one event-range
	// partition, and sums their values.
	MPMaster
)

// String returns the mode label used in logs and metrics.
func (m Mode) String() string {
	switch m {
	case SimMaster:
		return "sim-master"
	case MPMaster:
		return "mp-master"
	default:
		return "slave"
	}
}

// Objective is the recursive unit of computation. Concrete objective kinds
// wrap a Controller and supply the partition evaluation and the factory
// through which same-kind children are produced.
type Objective interface {
	// Name identifies the instance.
	Name() string
	// Title is the human-readable description.
	Title() string
	// Mode returns the operating mode fixed at construction.
	Mode() Mode
	// Evaluate computes the objective value, lazily initializing first.
	Evaluate() (float64, error)
	// Initialize performs the one-shot mode-specific setup. A second call is
	// a benign no-op.
	Initialize() error
	// ConstOptimize broadcasts a constant-term optimization hint through the
	// active decomposition, initializing first if necessary.
	ConstOptimize(op model.OptCode) error
	// RedirectParameters rebinds the instance's parameters against repl and
	// forwards the rebinding to owned children. It returns false
	// unconditionally; this layer signals no failure of its own.
	RedirectParameters(repl *params.Set, mustReplaceAll, nameChange bool) bool
	// SetPartition assigns the event-range partition (index, count) and
	// recurses through sim-master children so every leaf slave carries the
	// same assignment.
	SetPartition(index, count int) error
	// Partition returns the current partition assignment.
	Partition() (index, count int)
	// SetSimCount records how many simultaneous sibling objectives exist.
	SetSimCount(n int)
	// SimCount returns the recorded sibling count (1 when standalone).
	SimCount() int
	// Parameters returns the instance's live parameter set.
	Parameters() *params.Set
	// Clone produces a deep copy mirroring mode, initialization state,
	// partition assignment and owned sub-objectives, without re-running
	// initialization.
	Clone(name string) (Objective, error)
	// Close releases owned children and worker front-ends.
	Close() error
}

// Factory is the abstract-create contract every concrete objective kind
// supplies: it produces a same-kind child bound to the given model and data
// without the controller knowing the concrete kind.
type Factory func(name, title string, m model.Model, d dataset.Dataset, projDeps *params.Set, opts ...Option) (Objective, error)

// Hooks carries the two capabilities a concrete kind contributes to its
// Controller.
type Hooks struct {
	// EvaluatePartition computes the partial objective over the half-open
	// event range [first, last). An empty range must evaluate to 0.
	EvaluatePartition func(first, last int) (float64, error)
	// Create is the kind's factory.
	Create Factory
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver registers a telemetry observer notified on every top-level
// evaluation of this instance. Observers are not inherited by children or
// workers; only the instance the caller evaluates reports.
func WithObserver(o telemetry.Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// Controller is the mode selector, lifecycle owner and combine engine shared
// by every concrete objective kind. It is not safe for concurrent use; one
// evaluation at a time drives the worker fan-out.
type Controller struct {
	name  string
	title string

	model    model.Model
	data     dataset.Dataset
	projDeps *params.Set
	paramSet *params.Set

	mode       Mode
	numWorkers int
	nEvents    int

	init   bool
	closed bool

	// Event-range partition assignment, meaningful in Slave mode only.
	partIdx   int
	partCount int

	// Number of simultaneous sibling objectives, forwarded to every child.
	simCount int

	// Last constant-optimization hint seen by a slave leaf.
	optHint model.OptCode

	// Mode-specific owned collections, allocated on first initialization.
	children  []Objective      // SimMaster
	workers   []Objective      // MPMaster: per-worker slave objectives
	frontEnds []*mpfe.FrontEnd // MPMaster: front-ends wrapping workers

	hooks    Hooks
	logger   logging.Logger
	observer telemetry.Observer
}

// NewController creates the shared controller state for a concrete objective
// kind. Mode selection: a requested worker count above 1 always selects
// MPMaster; otherwise a composite model selects SimMaster; otherwise Slave.
// Multiprocessing decomposition is orthogonal to and takes precedence over
// category decomposition.
func NewController(name, title string, m model.Model, d dataset.Dataset, projDeps *params.Set, numWorkers int, hooks Hooks, opts ...Option) *Controller {
	if numWorkers < 1 {
		numWorkers = 1
	}
	c := &Controller{
		name:       name,
		title:      title,
		model:      m,
		data:       d,
		projDeps:   projDeps.Clone(),
		paramSet:   m.Parameters(d),
		numWorkers: numWorkers,
		nEvents:    d.NumEntries(),
		partIdx:    0,
		partCount:  1,
		simCount:   1,
		hooks:      hooks,
		logger:     logging.Nop(),
	}
	switch {
	case numWorkers > 1:
		c.mode = MPMaster
	default:
		if _, ok := model.IsComposite(m); ok {
			c.mode = SimMaster
		} else {
			c.mode = Slave
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the instance name.
func (c *Controller) Name() string { return c.name }

// Title returns the instance title.
func (c *Controller) Title() string { return c.title }

// Mode returns the operating mode.
func (c *Controller) Mode() Mode { return c.mode }

// Model returns the owning model reference.
func (c *Controller) Model() model.Model { return c.model }

// Data returns the owning dataset reference.
func (c *Controller) Data() dataset.Dataset { return c.data }

// Parameters returns the live parameter set.
func (c *Controller) Parameters() *params.Set { return c.paramSet }

// ProjDeps returns the instance's owned projected-parameter set.
func (c *Controller) ProjDeps() *params.Set { return c.projDeps }

// NumWorkers returns the worker count requested at construction.
func (c *Controller) NumWorkers() int { return c.numWorkers }

// Initialized reports whether the one-shot initialization has run.
func (c *Controller) Initialized() bool { return c.init }

// Partition returns the current event-range partition assignment.
func (c *Controller) Partition() (index, count int) { return c.partIdx, c.partCount }

// SetSimCount records the number of simultaneous siblings.
func (c *Controller) SetSimCount(n int) {
	if n >= 1 {
		c.simCount = n
	}
}

// SimCount returns the recorded simultaneous-sibling count.
func (c *Controller) SimCount() int { return c.simCount }

// OptHint returns the last constant-optimization hint recorded on a slave
// leaf, for partition evaluators that want to consult it.
func (c *Controller) OptHint() model.OptCode { return c.optHint }

// Initialize performs the one-shot mode-specific setup: SimMaster builds its
// category children, MPMaster builds its worker fan-out, Slave needs
// nothing. Re-initialization is a no-op.
func (c *Controller) Initialize() error {
	if c.init {
		return nil
	}
	if c.closed {
		return fmt.Errorf("objective %q: initialize after close", c.name)
	}
	switch c.mode {
	case SimMaster:
		if err := c.initSimMode(); err != nil {
			return err
		}
	case MPMaster:
		if err := c.initMPMode(); err != nil {
			return err
		}
	}
	c.init = true
	return nil
}

// Evaluate computes the objective value, initializing lazily on the first
// call, and dispatches to the mode-specific combine routine.
func (c *Controller) Evaluate() (float64, error) {
	start := time.Now()
	v, err := c.evaluate()
	if c.observer != nil {
		c.observer.EvaluationDone(c.name, c.mode.String(), v, time.Since(start), err)
	}
	return v, err
}

func (c *Controller) evaluate() (float64, error) {
	if !c.init {
		if err := c.Initialize(); err != nil {
			return 0, err
		}
	}

	switch c.mode {
	case SimMaster:
		// Sum the current values of every owned category objective.
		var sum float64
		for _, child := range c.children {
			v, err := child.Evaluate()
			if err != nil {
				return 0, apperrors.NewEvaluationError(child.Name(), err)
			}
			sum += v
		}
		return sum, nil

	case MPMaster:
		// Fire all calculations in submission order, then fetch in the same
		// fixed order. Addition is commutative, but a fixed fetch order keeps
		// floating-point accumulation reproducible.
		for _, fe := range c.frontEnds {
			if err := fe.StartCalculation(); err != nil {
				return 0, err
			}
		}
		var sum float64
		var firstErr error
		for _, fe := range c.frontEnds {
			v, err := fe.Value()
			if err != nil {
				// Keep fetching so every front-end returns to idle.
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			sum += v
		}
		if firstErr != nil {
			return 0, firstErr
		}
		return sum, nil

	default:
		// Direct evaluation of the assigned event-range partition. The
		// partition count is 1 unless an assignment was forwarded.
		nFirst := c.nEvents * c.partIdx / c.partCount
		nLast := c.nEvents * (c.partIdx + 1) / c.partCount
		return c.hooks.EvaluatePartition(nFirst, nLast)
	}
}

// Close disposes the mode-specific owned collection: category children,
// worker objectives and their front-ends. Closing twice is a no-op.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var firstErr error
	for _, fe := range c.frontEnds {
		if err := fe.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		telemetry.WorkerStopped()
	}
	for _, w := range c.workers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, child := range c.children {
		if err := child.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
