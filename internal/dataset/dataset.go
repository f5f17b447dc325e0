// Package dataset defines the data abstraction consumed by goodness-of-fit
// objectives: a read-only table of observed events that can report its entry
// count and split itself along a discrete category axis.
package dataset

import (
	"fmt"
)

// Dataset is the read-only event collection an objective evaluates against.
type Dataset interface {
	// Name identifies the dataset in log output.
	Name() string
	// NumEntries returns the number of events.
	NumEntries() int
	// Row returns the observable values of event i. The returned slice must
	// not be modified.
	Row(i int) []float64
	// SplitByCategory partitions the dataset along the named discrete axis,
	// returning one non-overlapping sub-dataset per observed label. An axis
	// the dataset does not carry is a non-recoverable error.
	SplitByCategory(axis string) ([]Split, error)
}

// Split is one cell of a category partition: the label and the events that
// carry it.
type Split struct {
	Label string
	Data  Dataset
}

// Table is an in-memory Dataset. Rows are dense float64 vectors over a fixed
// column list; an optional category column assigns each row a discrete label.
type Table struct {
	name     string
	columns  []string
	catAxis  string
	catLabel []string
	rows     [][]float64
}

// NewTable creates an empty table over the given observable columns.
func NewTable(name string, columns ...string) *Table {
	return &Table{name: name, columns: append([]string(nil), columns...)}
}

// WithCategory declares the discrete axis rows will be labelled with.
// It returns the table for chaining.
func (t *Table) WithCategory(axis string) *Table {
	t.catAxis = axis
	return t
}

// Append adds one event. The label is ignored unless a category axis was
// declared. It panics if the value count does not match the column count;
// table construction is a programming-time concern, not a runtime input.
func (t *Table) Append(label string, values ...float64) *Table {
	if len(values) != len(t.columns) {
		panic(fmt.Sprintf("dataset: %d values for %d columns", len(values), len(t.columns)))
	}
	t.rows = append(t.rows, append([]float64(nil), values...))
	if t.catAxis != "" {
		t.catLabel = append(t.catLabel, label)
	}
	return t
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Columns returns the observable column names.
func (t *Table) Columns() []string { return t.columns }

// NumEntries returns the number of events in the table.
func (t *Table) NumEntries() int { return len(t.rows) }

// Row returns event i.
func (t *Table) Row(i int) []float64 { return t.rows[i] }

// SplitByCategory partitions the table by its category axis. Label order in
// the result follows first appearance in the data. Splitting along any axis
// other than the one declared with WithCategory fails.
func (t *Table) SplitByCategory(axis string) ([]Split, error) {
	if t.catAxis == "" || axis != t.catAxis {
		return nil, fmt.Errorf("dataset %q: cannot split along axis %q", t.name, axis)
	}
	byLabel := make(map[string]*Table)
	var order []string
	for i, row := range t.rows {
		label := t.catLabel[i]
		sub, ok := byLabel[label]
		if !ok {
			sub = NewTable(fmt.Sprintf("%s[%s]", t.name, label), t.columns...)
			byLabel[label] = sub
			order = append(order, label)
		}
		sub.rows = append(sub.rows, row)
	}
	splits := make([]Split, 0, len(order))
	for _, label := range order {
		splits = append(splits, Split{Label: label, Data: byLabel[label]})
	}
	return splits, nil
}
