// Multiprocessing-master initialization: decompose a single model/dataset
// pair into N event-range partitions evaluated by worker front-ends.
package objective

import (
	"fmt"

	apperrors "github.com/agbru/gofcalc/internal/errors"
	"github.com/agbru/gofcalc/internal/logging"
	"github.com/agbru/gofcalc/internal/mpfe"
	"github.com/agbru/gofcalc/internal/telemetry"
)

// initMPMode creates one prototype child objective over the full dataset,
// then derives N worker objectives from it, each assigned partition (i, N)
// and wrapped in a front-end. The last front-end runs inline in the
// controlling process; all others run isolated. The prototype itself is
// disposed once the workers are derived.
func (c *Controller) initMPMode() error {
	proto, err := c.hooks.Create(c.name+"_proto", c.title, c.model, c.data, c.projDeps, WithLogger(c.logger))
	if err != nil {
		return apperrors.WrapError(err, "objective %q: creating worker prototype", c.name)
	}
	defer proto.Close()

	workers := make([]Objective, 0, c.numWorkers)
	frontEnds := make([]*mpfe.FrontEnd, 0, c.numWorkers)
	fail := func(err error) error {
		for _, fe := range frontEnds {
			fe.Close()
			telemetry.WorkerStopped()
		}
		for _, w := range workers {
			w.Close()
		}
		return err
	}

	for i := 0; i < c.numWorkers; i++ {
		w, err := proto.Clone(fmt.Sprintf("%s_gof%d", c.name, i))
		if err != nil {
			return fail(apperrors.WrapError(err, "objective %q: deriving worker %d", c.name, i))
		}
		if err := w.SetPartition(i, c.numWorkers); err != nil {
			w.Close()
			return fail(apperrors.WrapError(err, "objective %q: partitioning worker %d", c.name, i))
		}

		inline := i == c.numWorkers-1
		if !inline {
			c.logger.Info("starting isolated worker",
				logging.String("objective", c.name),
				logging.Int("worker", i))
		}
		fe := mpfe.New(fmt.Sprintf("%s_mpfe%d", c.name, i), w, inline, mpfe.WithLogger(c.logger))
		if err := fe.Initialize(); err != nil {
			w.Close()
			return fail(apperrors.WrapError(err, "objective %q: initializing front-end %d", c.name, i))
		}
		telemetry.WorkerStarted()
		workers = append(workers, w)
		frontEnds = append(frontEnds, fe)
	}

	c.workers = workers
	c.frontEnds = frontEnds
	return nil
}
