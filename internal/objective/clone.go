// Deep-copy support. A copy of an objective mirrors the source's mode,
// initialization flag, partition assignment and sibling count, and
// deep-copies the owned children or worker front-ends recursively; it never
// re-runs initialization.
package objective

import (
	apperrors "github.com/agbru/gofcalc/internal/errors"
	"github.com/agbru/gofcalc/internal/telemetry"
)

// CopyStateFrom mirrors src's runtime state into c. Concrete kinds call it
// from their Clone implementation after constructing a fresh instance over
// the same model and data.
func (c *Controller) CopyStateFrom(src *Controller) error {
	c.mode = src.mode
	c.numWorkers = src.numWorkers
	c.nEvents = src.nEvents
	c.partIdx = src.partIdx
	c.partCount = src.partCount
	c.simCount = src.simCount
	c.optHint = src.optHint
	c.logger = src.logger
	c.observer = src.observer

	fail := func(err error) error {
		c.Close()
		return err
	}

	for _, child := range src.children {
		cc, err := child.Clone(child.Name())
		if err != nil {
			return fail(apperrors.WrapError(err, "objective %q: cloning child %q", c.name, child.Name()))
		}
		c.children = append(c.children, cc)
	}

	for i, w := range src.workers {
		wc, err := w.Clone(w.Name())
		if err != nil {
			return fail(apperrors.WrapError(err, "objective %q: cloning worker %q", c.name, w.Name()))
		}
		fe, err := src.frontEnds[i].Clone(src.frontEnds[i].Name(), wc)
		if err != nil {
			wc.Close()
			return fail(apperrors.WrapError(err, "objective %q: cloning front-end %d", c.name, i))
		}
		telemetry.WorkerStarted()
		c.workers = append(c.workers, wc)
		c.frontEnds = append(c.frontEnds, fe)
	}

	c.init = src.init
	return nil
}
