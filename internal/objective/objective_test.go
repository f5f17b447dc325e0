package objective

import (
	"math"
	"math/rand"
	"testing"

	"github.com/agbru/gofcalc/internal/dataset"
	"github.com/agbru/gofcalc/internal/model"
	"github.com/agbru/gofcalc/internal/params"
)

// gaussTable builds a reproducible one-column table of normal samples.
func gaussTable(t *testing.T, n int, seed int64, mean, sigma float64) *dataset.Table {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	tbl := dataset.NewTable("d", "x")
	for i := 0; i < n; i++ {
		tbl.Append("", rng.NormFloat64()*sigma+mean)
	}
	return tbl
}

// refNLL computes the reference negative log-likelihood over [first, last)
// with the model's initial parameter values.
func refNLL(t *testing.T, m model.Model, d dataset.Dataset, first, last int) float64 {
	t.Helper()
	p := m.Parameters(d)
	var sum float64
	for i := first; i < last; i++ {
		dens := m.Density(d.Row(i), p)
		if dens <= 0 {
			t.Fatalf("reference density %g at entry %d", dens, i)
		}
		sum -= math.Log(dens)
	}
	return sum
}

func testGauss() *model.Gaussian {
	return &model.Gaussian{ModelName: "g", MeanParam: "mean", SigmaParam: "sigma", Mean: 5, Sigma: 2}
}

// closeTo reports approximate equality with a relative tolerance, absolute
// near zero.
func closeTo(a, b float64) bool {
	diff := math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		return diff < 1e-9
	}
	return diff/scale < 1e-12
}

func TestModeSelection(t *testing.T) {
	t.Parallel()

	d := gaussTable(t, 10, 1, 5, 2)
	sim := model.NewSimultaneous("sim", "channel").
		Register("a", testGauss())

	cases := []struct {
		name    string
		m       model.Model
		workers int
		want    Mode
	}{
		{"plain model one worker", testGauss(), 1, Slave},
		{"plain model zero workers", testGauss(), 0, Slave},
		{"composite model one worker", sim, 1, SimMaster},
		{"plain model many workers", testGauss(), 3, MPMaster},
		{"composite model many workers", sim, 3, MPMaster},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			nll, err := NewNLL("n", "t", tc.m, d, params.NewSet(), tc.workers)
			if err != nil {
				t.Fatalf("NewNLL() error = %v", err)
			}
			defer nll.Close()
			if nll.Mode() != tc.want {
				t.Errorf("Mode() = %v, want %v", nll.Mode(), tc.want)
			}
			// Construction alone must not allocate workers or children.
			if nll.Initialized() {
				t.Error("initialized at construction; expected lazy init")
			}
		})
	}
}

func TestSlave_Evaluate(t *testing.T) {
	t.Parallel()

	t.Run("matches reference over the full range", func(t *testing.T) {
		t.Parallel()
		g := testGauss()
		d := gaussTable(t, 200, 2, 5, 2)
		nll, err := NewNLL("n", "t", g, d, params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer nll.Close()

		got, err := nll.Evaluate()
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		want := refNLL(t, g, d, 0, 200)
		if !closeTo(got, want) {
			t.Errorf("Evaluate() = %g, want %g", got, want)
		}
		if idx, count := nll.Partition(); idx != 0 || count != 1 {
			t.Errorf("Partition() = (%d,%d), want (0,1)", idx, count)
		}
	})

	t.Run("assigned partition selects the event sub-range", func(t *testing.T) {
		t.Parallel()
		g := testGauss()
		d := gaussTable(t, 100, 3, 5, 2)
		nll, err := NewNLL("n", "t", g, d, params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer nll.Close()

		if err := nll.SetPartition(1, 3); err != nil {
			t.Fatalf("SetPartition() error = %v", err)
		}
		got, err := nll.Evaluate()
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		want := refNLL(t, g, d, 33, 66)
		if !closeTo(got, want) {
			t.Errorf("Evaluate() = %g, want %g (range [33,66))", got, want)
		}
	})

	t.Run("empty dataset evaluates to zero", func(t *testing.T) {
		t.Parallel()
		nll, err := NewNLL("n", "t", testGauss(), dataset.NewTable("empty", "x"), params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer nll.Close()
		got, err := nll.Evaluate()
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		if got != 0 {
			t.Errorf("Evaluate() on empty dataset = %g, want 0", got)
		}
	})

	t.Run("non-positive density is an evaluation error", func(t *testing.T) {
		t.Parallel()
		u := &model.Uniform{ModelName: "u", Lo: 0, Hi: 1}
		d := dataset.NewTable("d", "x").Append("", 0.5).Append("", 2.0)
		nll, err := NewNLL("n", "t", u, d, params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer nll.Close()
		if _, err := nll.Evaluate(); err == nil {
			t.Error("Evaluate() with out-of-support entry succeeded")
		}
	})
}

func TestInitialize_Idempotent(t *testing.T) {
	t.Parallel()

	d := dataset.NewTable("d", "x").WithCategory("channel")
	for i := 0; i < 40; i++ {
		d.Append([]string{"a", "b"}[i%2], float64(i%7)+1)
	}
	sim := model.NewSimultaneous("sim", "channel").
		Register("a", &model.Uniform{ModelName: "ua", Lo: 0, Hi: 10}).
		Register("b", &model.Uniform{ModelName: "ub", Lo: 0, Hi: 10})

	nll, err := NewNLL("n", "t", sim, d, params.NewSet(), 1)
	if err != nil {
		t.Fatalf("NewNLL() error = %v", err)
	}
	defer nll.Close()

	if err := nll.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	first, err := nll.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	childrenBefore := len(nll.children)

	if err := nll.Initialize(); err != nil {
		t.Fatalf("second Initialize() error = %v", err)
	}
	second, err := nll.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() after re-init error = %v", err)
	}

	if len(nll.children) != childrenBefore {
		t.Errorf("re-init changed child count: %d -> %d", childrenBefore, len(nll.children))
	}
	if first != second {
		t.Errorf("re-init changed value: %g -> %g", first, second)
	}
}

func TestRedirectParameters_Slave(t *testing.T) {
	t.Parallel()

	g := testGauss()
	d := gaussTable(t, 50, 4, 5, 2)
	nll, err := NewNLL("n", "t", g, d, params.NewSet(), 1)
	if err != nil {
		t.Fatalf("NewNLL() error = %v", err)
	}
	defer nll.Close()

	repl := params.NewSet(
		&params.Parameter{Name: "mean", Value: 6},
		&params.Parameter{Name: "sigma", Value: 2},
	)
	if got := nll.RedirectParameters(repl, false, false); got != false {
		t.Error("RedirectParameters() = true, want unconditional false")
	}

	got, err := nll.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	shifted := &model.Gaussian{ModelName: "g", MeanParam: "mean", SigmaParam: "sigma", Mean: 6, Sigma: 2}
	want := refNLL(t, shifted, d, 0, 50)
	if !closeTo(got, want) {
		t.Errorf("Evaluate() after redirect = %g, want %g", got, want)
	}
}

func TestConstOptimize(t *testing.T) {
	t.Parallel()

	t.Run("forces initialization and records hint on a slave", func(t *testing.T) {
		t.Parallel()
		nll, err := NewNLL("n", "t", testGauss(), gaussTable(t, 10, 5, 5, 2), params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer nll.Close()

		if err := nll.ConstOptimize(model.OptActivate); err != nil {
			t.Fatalf("ConstOptimize() error = %v", err)
		}
		if !nll.Initialized() {
			t.Error("ConstOptimize did not initialize")
		}
		if nll.OptHint() != model.OptActivate {
			t.Errorf("OptHint() = %v, want OptActivate", nll.OptHint())
		}
	})
}

func TestClone(t *testing.T) {
	t.Parallel()

	t.Run("slave clone mirrors partition without re-init", func(t *testing.T) {
		t.Parallel()
		g := testGauss()
		d := gaussTable(t, 90, 6, 5, 2)
		nll, err := NewNLL("n", "t", g, d, params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer nll.Close()
		if err := nll.SetPartition(2, 3); err != nil {
			t.Fatalf("SetPartition() error = %v", err)
		}

		cpObj, err := nll.Clone("n_copy")
		if err != nil {
			t.Fatalf("Clone() error = %v", err)
		}
		defer cpObj.Close()

		if idx, count := cpObj.Partition(); idx != 2 || count != 3 {
			t.Errorf("clone Partition() = (%d,%d), want (2,3)", idx, count)
		}
		v1, err := nll.Evaluate()
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		v2, err := cpObj.Evaluate()
		if err != nil {
			t.Fatalf("clone Evaluate() error = %v", err)
		}
		if v1 != v2 {
			t.Errorf("clone Evaluate() = %g, want %g", v2, v1)
		}
	})

	t.Run("initialized sim-master clone keeps child count and value", func(t *testing.T) {
		t.Parallel()
		d := dataset.NewTable("d", "x").WithCategory("channel")
		for i := 0; i < 30; i++ {
			d.Append([]string{"a", "b"}[i%2], float64(i%5)+1)
		}
		sim := model.NewSimultaneous("sim", "channel").
			Register("a", &model.Uniform{ModelName: "ua", Lo: 0, Hi: 10}).
			Register("b", &model.Uniform{ModelName: "ub", Lo: 0, Hi: 10})

		src, err := NewNLL("n", "t", sim, d, params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		defer src.Close()
		want, err := src.Evaluate()
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}

		cpObj, err := src.Clone("n_copy")
		if err != nil {
			t.Fatalf("Clone() error = %v", err)
		}
		defer cpObj.Close()

		cp := cpObj.(*NLL)
		if !cp.Initialized() {
			t.Error("clone of initialized objective reports uninitialized")
		}
		if len(cp.children) != len(src.children) {
			t.Errorf("clone has %d children, want %d", len(cp.children), len(src.children))
		}
		got, err := cp.Evaluate()
		if err != nil {
			t.Fatalf("clone Evaluate() error = %v", err)
		}
		if got != want {
			t.Errorf("clone Evaluate() = %g, want %g", got, want)
		}
	})
}

func TestClose(t *testing.T) {
	t.Parallel()

	t.Run("safe on a never-initialized controller", func(t *testing.T) {
		t.Parallel()
		nll, err := NewNLL("n", "t", testGauss(), gaussTable(t, 5, 7, 5, 2), params.NewSet(), 4)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		if err := nll.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if err := nll.Close(); err != nil {
			t.Errorf("second Close() error = %v", err)
		}
	})

	t.Run("initialize after close fails", func(t *testing.T) {
		t.Parallel()
		nll, err := NewNLL("n", "t", testGauss(), gaussTable(t, 5, 8, 5, 2), params.NewSet(), 1)
		if err != nil {
			t.Fatalf("NewNLL() error = %v", err)
		}
		if err := nll.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if err := nll.Initialize(); err == nil {
			t.Error("Initialize() after Close() succeeded")
		}
	})
}
