// Simultaneous-master initialization: decompose a composite model and its
// dataset into one child objective per category present in both.
package objective

import (
	"fmt"

	"github.com/agbru/gofcalc/internal/dataset"
	apperrors "github.com/agbru/gofcalc/internal/errors"
	"github.com/agbru/gofcalc/internal/logging"
	"github.com/agbru/gofcalc/internal/model"
)

// initSimMode splits the dataset along the composite model's index axis and
// creates one same-kind child objective for every category label that has
// both a registered sub-model and a non-empty sub-dataset. Categories with a
// sub-model but no data are skipped with an informational note. A dataset
// that cannot be split along the axis is a fatal setup failure: no children
// are created and the error wraps apperrors.ErrSplitFailed.
func (c *Controller) initSimMode() error {
	comp, ok := model.IsComposite(c.model)
	if !ok {
		return fmt.Errorf("objective %q: sim-master mode with non-composite model %q", c.name, c.model.Name())
	}

	splits, err := c.data.SplitByCategory(comp.IndexAxis())
	if err != nil {
		c.logger.Error("unable to split dataset, abort", err,
			logging.String("objective", c.name),
			logging.String("axis", comp.IndexAxis()))
		return fmt.Errorf("objective %q: %w: %v", c.name, apperrors.ErrSplitFailed, err)
	}
	byLabel := make(map[string]dataset.Dataset, len(splits))
	for _, s := range splits {
		byLabel[s.Label] = s.Data
	}

	// Count the used categories first so every child can be told its full
	// sibling count at creation.
	nGof := 0
	for _, label := range comp.Labels() {
		sub, ok := comp.SubModel(label)
		ds := byLabel[label]
		if ok && sub != nil && ds != nil && ds.NumEntries() > 0 {
			nGof++
		}
	}

	children := make([]Objective, 0, nGof)
	for _, label := range comp.Labels() {
		sub, ok := comp.SubModel(label)
		if !ok || sub == nil {
			continue
		}
		ds := byLabel[label]
		if ds == nil || ds.NumEntries() == 0 {
			c.logger.Info("category has no data entries, no child objective created",
				logging.String("objective", c.name),
				logging.String("category", label))
			continue
		}

		c.logger.Info("creating category child objective",
			logging.String("objective", c.name),
			logging.String("category", label),
			logging.Int("index", len(children)),
			logging.Int("entries", ds.NumEntries()))

		child, err := c.hooks.Create(label, label, sub, ds, c.projDeps, WithLogger(c.logger))
		if err != nil {
			for _, created := range children {
				created.Close()
			}
			return apperrors.WrapError(err, "objective %q: creating child for category %q", c.name, label)
		}
		child.SetSimCount(nGof)

		// Parameters may have been redirected between this instance's
		// construction and the deferred initialization; rebind the child
		// against the canonical set.
		child.RedirectParameters(c.paramSet, false, false)
		children = append(children, child)
	}

	c.children = children
	return nil
}
