// Negative log-likelihood: the concrete objective kind shipped with the
// engine. The partial sum over an event range is -Σ log density(event); an
// empty range contributes 0.
package objective

import (
	"fmt"
	"math"

	"github.com/agbru/gofcalc/internal/dataset"
	"github.com/agbru/gofcalc/internal/model"
	"github.com/agbru/gofcalc/internal/params"
)

// NLL scores a model against a dataset by summed negative log density.
// Lower is better. It inherits decomposition, forwarding and lifecycle from
// Controller, contributing only the partition evaluation and the factory.
type NLL struct {
	*Controller
}

// NewNLL creates a negative-log-likelihood objective. With numWorkers > 1
// the evaluation fans out over event-range partitions; with a composite
// model it decomposes by category; otherwise it evaluates directly.
func NewNLL(name, title string, m model.Model, d dataset.Dataset, projDeps *params.Set, numWorkers int, opts ...Option) (*NLL, error) {
	if m == nil {
		return nil, fmt.Errorf("nll %q: nil model", name)
	}
	if d == nil {
		return nil, fmt.Errorf("nll %q: nil dataset", name)
	}
	n := &NLL{}
	n.Controller = NewController(name, title, m, d, projDeps, numWorkers, Hooks{
		EvaluatePartition: n.evaluatePartition,
		Create: func(name, title string, m model.Model, d dataset.Dataset, projDeps *params.Set, opts ...Option) (Objective, error) {
			return NewNLL(name, title, m, d, projDeps, 1, opts...)
		},
	}, opts...)
	return n, nil
}

// evaluatePartition sums -log density over the half-open event range
// [first, last). A non-positive density is an evaluation error: the model
// claims the observed event is impossible, so the likelihood is undefined.
func (n *NLL) evaluatePartition(first, last int) (float64, error) {
	m := n.Model()
	d := n.Data()
	p := n.Parameters()

	var sum float64
	for i := first; i < last; i++ {
		dens := m.Density(d.Row(i), p)
		if dens <= 0 || math.IsNaN(dens) {
			return 0, fmt.Errorf("nll %q: non-positive density %g at entry %d", n.Name(), dens, i)
		}
		sum -= math.Log(dens)
	}
	return sum, nil
}

// Clone produces a deep copy mirroring the source's mode, initialization
// state, partition assignment and owned sub-objectives.
func (n *NLL) Clone(name string) (Objective, error) {
	cp, err := NewNLL(name, n.Title(), n.Model(), n.Data(), n.ProjDeps(), n.NumWorkers())
	if err != nil {
		return nil, err
	}
	if err := cp.CopyStateFrom(n.Controller); err != nil {
		return nil, err
	}
	return cp, nil
}
