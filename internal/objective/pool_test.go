package objective

import (
	"context"
	"testing"

	"github.com/agbru/gofcalc/internal/model"
	"github.com/agbru/gofcalc/internal/params"
)

func TestEvaluateMany(t *testing.T) {
	t.Parallel()

	t.Run("returns values in input order", func(t *testing.T) {
		t.Parallel()
		g := testGauss()
		objs := make([]Objective, 0, 3)
		want := make([]float64, 0, 3)
		for i := 0; i < 3; i++ {
			d := gaussTable(t, 50+i*10, int64(40+i), 5, 2)
			nll, err := NewNLL("n", "t", g, d, params.NewSet(), 1)
			if err != nil {
				t.Fatalf("NewNLL() error = %v", err)
			}
			defer nll.Close()
			objs = append(objs, nll)
			want = append(want, refNLL(t, g, d, 0, d.NumEntries()))
		}

		got, err := EvaluateMany(context.Background(), objs)
		if err != nil {
			t.Fatalf("EvaluateMany() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("got %d values, want 3", len(got))
		}
		for i := range got {
			if !closeTo(got[i], want[i]) {
				t.Errorf("values[%d] = %g, want %g", i, got[i], want[i])
			}
		}
	})

	t.Run("first failure names the failing objective", func(t *testing.T) {
		t.Parallel()
		good, err := NewNLL("good", "t", testGauss(), gaussTable(t, 20, 43, 5, 2), params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer good.Close()
		bad, err := NewNLL("bad", "t",
			&model.Uniform{ModelName: "u", Lo: 0, Hi: 1},
			gaussTable(t, 20, 44, 50, 1), params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer bad.Close()

		if _, err := EvaluateMany(context.Background(), []Objective{good, bad}); err == nil {
			t.Error("EvaluateMany() succeeded with a failing objective")
		}
	})

	t.Run("canceled context aborts", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		nll, err := NewNLL("n", "t", testGauss(), gaussTable(t, 20, 45, 5, 2), params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer nll.Close()
		if _, err := EvaluateMany(ctx, []Objective{nll}); err == nil {
			t.Error("EvaluateMany() succeeded with canceled context")
		}
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		t.Parallel()
		got, err := EvaluateMany(context.Background(), nil)
		if err != nil {
			t.Fatalf("EvaluateMany() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d values, want 0", len(got))
		}
	})
}
