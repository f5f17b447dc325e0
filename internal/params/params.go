// Package params provides ordered, named parameter collections for
// goodness-of-fit objectives. A Set owns its entries; cloning a Set produces
// deeply independent parameters so sibling objectives never share mutable
// state.
package params

import (
	"fmt"
	"strings"
)

// Parameter is a single named model parameter.
type Parameter struct {
	// Name identifies the parameter within a Set. Names are unique per Set.
	Name string
	// Value is the current parameter value.
	Value float64
	// Constant marks the parameter as fixed; constant-optimization hints may
	// treat constant parameters as foldable.
	Constant bool
}

// Clone returns an independent copy of the parameter.
func (p *Parameter) Clone() *Parameter {
	cp := *p
	return &cp
}

// Set is an ordered collection of parameters with unique names.
// The zero value is an empty, usable Set.
type Set struct {
	entries []*Parameter
	index   map[string]int
}

// NewSet creates a Set holding the given parameters. Later duplicates of a
// name replace earlier ones.
func NewSet(entries ...*Parameter) *Set {
	s := &Set{}
	for _, p := range entries {
		s.Add(p)
	}
	return s
}

// Len returns the number of parameters in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Add inserts a parameter, replacing any existing parameter of the same name
// in place (preserving order).
func (s *Set) Add(p *Parameter) {
	if p == nil {
		return
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[p.Name]; ok {
		s.entries[i] = p
		return
	}
	s.index[p.Name] = len(s.entries)
	s.entries = append(s.entries, p)
}

// AddAll inserts every parameter from other. The receiver keeps its own
// ordering for names it already contains.
func (s *Set) AddAll(other *Set) {
	if other == nil {
		return
	}
	for _, p := range other.entries {
		s.Add(p)
	}
}

// Get returns the parameter with the given name, or nil if absent.
func (s *Set) Get(name string) *Parameter {
	if s == nil || s.index == nil {
		return nil
	}
	if i, ok := s.index[name]; ok {
		return s.entries[i]
	}
	return nil
}

// At returns the i-th parameter in insertion order.
func (s *Set) At(i int) *Parameter { return s.entries[i] }

// Names returns the parameter names in insertion order.
func (s *Set) Names() []string {
	names := make([]string, len(s.entries))
	for i, p := range s.entries {
		names[i] = p.Name
	}
	return names
}

// Value returns the value of the named parameter. The boolean reports
// whether the parameter exists.
func (s *Set) Value(name string) (float64, bool) {
	p := s.Get(name)
	if p == nil {
		return 0, false
	}
	return p.Value, true
}

// Clone returns a deep copy of the set. The copy shares no parameters with
// the original.
func (s *Set) Clone() *Set {
	if s == nil {
		return NewSet()
	}
	cp := &Set{}
	for _, p := range s.entries {
		cp.Add(p.Clone())
	}
	return cp
}

// Redirect substitutes, by name, every parameter in the receiver that has a
// counterpart in repl. The substituted entries are shared with repl so that
// subsequent value updates through repl are visible to the receiver.
//
// If mustReplaceAll is true and any receiver entry lacks a counterpart, an
// error naming the unmatched parameters is returned and no substitution at
// all is performed.
func (s *Set) Redirect(repl *Set, mustReplaceAll bool) error {
	if s == nil || repl == nil {
		return nil
	}
	if mustReplaceAll {
		var missing []string
		for _, p := range s.entries {
			if repl.Get(p.Name) == nil {
				missing = append(missing, p.Name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("redirect: no replacement for %s", strings.Join(missing, ", "))
		}
	}
	for i, p := range s.entries {
		if np := repl.Get(p.Name); np != nil {
			s.entries[i] = np
		}
	}
	return nil
}

// String renders the set as "name=value" pairs, mainly for log output.
func (s *Set) String() string {
	if s == nil || len(s.entries) == 0 {
		return "()"
	}
	parts := make([]string, len(s.entries))
	for i, p := range s.entries {
		parts[i] = fmt.Sprintf("%s=%g", p.Name, p.Value)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
