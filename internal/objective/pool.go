// Batch evaluation of independent objectives.
package objective

import (
	"context"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/gofcalc/internal/errors"
)

// EvaluateMany evaluates several independent objectives concurrently and
// returns their values in input order. Objectives must not share state; each
// owns its own parameter set, so no synchronization beyond the group join is
// needed. The first failure cancels the batch via the group context and is
// returned wrapped with the failing objective's name.
func EvaluateMany(ctx context.Context, objs []Objective) ([]float64, error) {
	g, ctx := errgroup.WithContext(ctx)
	values := make([]float64, len(objs))

	for i, obj := range objs {
		i, obj := i, obj
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := obj.Evaluate()
			if err != nil {
				return apperrors.NewEvaluationError(obj.Name(), err)
			}
			values[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
