// Package model defines the probability-model contracts consumed by
// goodness-of-fit objectives, along with a small set of concrete model kinds.
// A Model evaluates a normalized density at one event; a Composite selects
// one sub-model per discrete category label.
package model

import (
	"github.com/agbru/gofcalc/internal/dataset"
	"github.com/agbru/gofcalc/internal/params"
)

// OptCode is a constant-term optimization hint broadcast through an
// objective tree before repeated evaluation.
type OptCode int

const (
	// OptNone clears any active optimization.
	OptNone OptCode = iota
	// OptActivate asks evaluators to cache sub-expressions that depend only
	// on constant parameters.
	OptActivate
	// OptDeactivate drops such caches (parameters are about to change
	// constness).
	OptDeactivate
)

// String returns the opcode name for log output.
func (c OptCode) String() string {
	switch c {
	case OptActivate:
		return "activate"
	case OptDeactivate:
		return "deactivate"
	default:
		return "none"
	}
}

// Model is a parametric probability density.
type Model interface {
	// Name identifies the model.
	Name() string
	// Parameters returns the model's free parameters given the dataset the
	// model will be evaluated against (observables present in the data are
	// not parameters). The returned set is owned by the caller.
	Parameters(d dataset.Dataset) *params.Set
	// Density evaluates the normalized density at one event, reading current
	// parameter values from p. Implementations return a strictly positive
	// value on support; a non-positive return is treated as an evaluation
	// error by callers.
	Density(row []float64, p *params.Set) float64
}

// Composite is a model that selects one sub-model per discrete category
// label, paired with data partitioned along the same axis.
type Composite interface {
	Model
	// IndexAxis returns the name of the discrete axis the model switches on.
	IndexAxis() string
	// Labels enumerates the category labels the composite knows, in a fixed
	// order.
	Labels() []string
	// SubModel returns the model registered for the label, if any.
	SubModel(label string) (Model, bool)
}

// IsComposite reports whether m selects sub-models by category.
func IsComposite(m Model) (Composite, bool) {
	c, ok := m.(Composite)
	return c, ok
}
