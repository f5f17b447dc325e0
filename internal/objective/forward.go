// Cross-cutting forwarders: operations that must traverse whichever
// mode-specific collection is active and forward unchanged, so parameter
// rebinding, optimization hints and partition assignments reach every owned
// sub-objective or worker regardless of decomposition.
package objective

import (
	"github.com/agbru/gofcalc/internal/logging"
	"github.com/agbru/gofcalc/internal/model"
	"github.com/agbru/gofcalc/internal/params"
)

// RedirectParameters rebinds this instance's parameter set against repl
// (by-name substitution) and forwards the rebinding to every sim-master
// child recursively. Forwarding to worker front-ends under MPMaster is a
// known gap carried over from the original design; the dropped forward is
// logged at debug level rather than silently ignored. RedirectParameters
// returns false unconditionally: no failure is signaled by this layer
// itself.
func (c *Controller) RedirectParameters(repl *params.Set, mustReplaceAll, nameChange bool) bool {
	if err := c.paramSet.Redirect(repl, mustReplaceAll); err != nil {
		c.logger.Debug("parameter redirect incomplete",
			logging.String("objective", c.name),
			logging.Field{Key: "error", Value: err})
	}

	switch c.mode {
	case SimMaster:
		for _, child := range c.children {
			if child != nil {
				child.RedirectParameters(repl, mustReplaceAll, nameChange)
			}
		}
	case MPMaster:
		// Not forwarded to workers; see the redirect gap note above.
		if len(c.frontEnds) > 0 {
			c.logger.Debug("parameter redirect not forwarded to worker front-ends",
				logging.String("objective", c.name),
				logging.Int("workers", len(c.frontEnds)))
		}
	}
	return false
}

// ConstOptimize ensures lazy initialization has occurred, then broadcasts
// the optimization opcode to every child objective or worker front-end. The
// broadcast is best-effort: per-child failures are logged, not aggregated.
func (c *Controller) ConstOptimize(op model.OptCode) error {
	if err := c.Initialize(); err != nil {
		return err
	}
	switch c.mode {
	case SimMaster:
		for _, child := range c.children {
			if child == nil {
				continue
			}
			if err := child.ConstOptimize(op); err != nil {
				c.logger.Debug("const-optimize forward failed",
					logging.String("objective", c.name),
					logging.String("child", child.Name()),
					logging.Field{Key: "error", Value: err})
			}
		}
	case MPMaster:
		for _, fe := range c.frontEnds {
			if err := fe.ConstOptimize(op); err != nil {
				c.logger.Debug("const-optimize forward failed",
					logging.String("objective", c.name),
					logging.String("frontend", fe.Name()),
					logging.Field{Key: "error", Value: err})
			}
		}
	default:
		c.optHint = op
	}
	return nil
}

// SetPartition assigns this instance's event-range partition (index, count).
// In SimMaster mode it forces initialization and recurses into every child,
// so a sim-master nested inside a multiprocessing worker prototype passes
// its assignment down to every leaf slave before the worker starts
// computing.
func (c *Controller) SetPartition(index, count int) error {
	if count < 1 {
		count = 1
	}
	if index < 0 || index >= count {
		index = 0
	}
	c.partIdx = index
	c.partCount = count

	if c.mode == SimMaster {
		if err := c.Initialize(); err != nil {
			return err
		}
		for _, child := range c.children {
			if child == nil {
				continue
			}
			if err := child.SetPartition(index, count); err != nil {
				return err
			}
		}
	}
	return nil
}
