// Package model provides concrete model kinds used by tests and the demo
// command. Each kind reads its parameters by name from the Set supplied at
// evaluation time, so parameter redirection changes what a model sees without
// touching the model itself.
package model

import (
	"math"

	"github.com/agbru/gofcalc/internal/dataset"
	"github.com/agbru/gofcalc/internal/params"
)

// Gaussian is a one-observable normal density with named mean and width
// parameters.
type Gaussian struct {
	ModelName string
	// MeanParam and SigmaParam name the parameters holding mean and width.
	MeanParam  string
	SigmaParam string
	// Mean and Sigma are the initial parameter values reported by Parameters.
	Mean  float64
	Sigma float64
}

// Name returns the model name.
func (g *Gaussian) Name() string { return g.ModelName }

// Parameters returns a fresh set holding the mean and width parameters at
// their initial values.
func (g *Gaussian) Parameters(_ dataset.Dataset) *params.Set {
	return params.NewSet(
		&params.Parameter{Name: g.MeanParam, Value: g.Mean},
		&params.Parameter{Name: g.SigmaParam, Value: g.Sigma},
	)
}

// Density evaluates the normal density at the first observable of the event.
// An unknown or non-positive width yields 0, which callers reject.
func (g *Gaussian) Density(row []float64, p *params.Set) float64 {
	mean, ok := p.Value(g.MeanParam)
	if !ok {
		mean = g.Mean
	}
	sigma, ok := p.Value(g.SigmaParam)
	if !ok {
		sigma = g.Sigma
	}
	if sigma <= 0 {
		return 0
	}
	z := (row[0] - mean) / sigma
	return math.Exp(-0.5*z*z) / (sigma * math.Sqrt(2*math.Pi))
}

// Uniform is a one-observable flat density over [Lo, Hi]. It has no free
// parameters.
type Uniform struct {
	ModelName string
	Lo, Hi    float64
}

// Name returns the model name.
func (u *Uniform) Name() string { return u.ModelName }

// Parameters returns an empty set; a uniform density has nothing to fit.
func (u *Uniform) Parameters(_ dataset.Dataset) *params.Set { return params.NewSet() }

// Density returns the flat density inside [Lo, Hi] and 0 outside.
func (u *Uniform) Density(row []float64, _ *params.Set) float64 {
	if u.Hi <= u.Lo {
		return 0
	}
	if row[0] < u.Lo || row[0] > u.Hi {
		return 0
	}
	return 1 / (u.Hi - u.Lo)
}

// Simultaneous is the concrete Composite: one sub-model per category label
// of a discrete index axis.
type Simultaneous struct {
	ModelName string
	Axis      string
	labels    []string
	subs      map[string]Model
}

// NewSimultaneous creates an empty simultaneous model switching on the given
// axis.
func NewSimultaneous(name, axis string) *Simultaneous {
	return &Simultaneous{ModelName: name, Axis: axis, subs: make(map[string]Model)}
}

// Register binds a sub-model to a category label. Re-registering a label
// replaces its sub-model without changing label order. It returns the
// receiver for chaining.
func (s *Simultaneous) Register(label string, m Model) *Simultaneous {
	if _, exists := s.subs[label]; !exists {
		s.labels = append(s.labels, label)
	}
	s.subs[label] = m
	return s
}

// Name returns the model name.
func (s *Simultaneous) Name() string { return s.ModelName }

// IndexAxis returns the discrete axis the model switches on.
func (s *Simultaneous) IndexAxis() string { return s.Axis }

// Labels returns the registered category labels in registration order.
func (s *Simultaneous) Labels() []string { return append([]string(nil), s.labels...) }

// SubModel returns the model registered for the label.
func (s *Simultaneous) SubModel(label string) (Model, bool) {
	m, ok := s.subs[label]
	return m, ok
}

// Parameters returns the union of all sub-model parameters.
func (s *Simultaneous) Parameters(d dataset.Dataset) *params.Set {
	union := params.NewSet()
	for _, label := range s.labels {
		union.AddAll(s.subs[label].Parameters(d))
	}
	return union
}

// Density dispatches to a sub-model only when evaluated through a split
// dataset; evaluating the composite directly is not meaningful, so it
// returns 0 (rejected by callers).
func (s *Simultaneous) Density(_ []float64, _ *params.Set) float64 { return 0 }
