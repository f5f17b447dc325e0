// Command gofcalc demonstrates the goodness-of-fit engine: it generates a
// synthetic dataset, scores it with a negative-log-likelihood objective and
// reports the value and timing. With -workers N the evaluation fans out over
// N event-range partitions; with -sim the model is a two-category
// simultaneous model split by channel.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"

	"github.com/agbru/gofcalc/internal/config"
	"github.com/agbru/gofcalc/internal/dataset"
	apperrors "github.com/agbru/gofcalc/internal/errors"
	"github.com/agbru/gofcalc/internal/logging"
	"github.com/agbru/gofcalc/internal/model"
	"github.com/agbru/gofcalc/internal/objective"
	"github.com/agbru/gofcalc/internal/params"
	"github.com/agbru/gofcalc/internal/telemetry"
)

// evalReport is the JSON shape of a run result.
type evalReport struct {
	Value   float64 `json:"value"`
	Events  int     `json:"events"`
	Workers int     `json:"workers"`
	Mode    string  `json:"mode"`
	Seconds float64 `json:"seconds"`
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	programName := "gofcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	logger := logging.NewZerologAdapter(
		zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger(),
	)

	var (
		m model.Model
		d dataset.Dataset
	)
	if cfg.Simultaneous {
		m, d = buildSimultaneous(cfg)
	} else {
		m, d = buildSingle(cfg)
	}

	obs := telemetry.MultiObserver{
		telemetry.NewPrometheusObserver(),
		telemetry.NewLoggingObserver(logger),
	}
	nll, err := objective.NewNLL("nll", "demo negative log-likelihood", m, d, params.NewSet(), cfg.Workers,
		objective.WithLogger(logger), objective.WithObserver(obs))
	if err != nil {
		logger.Error("building objective failed", err)
		return apperrors.ExitErrorGeneric
	}
	defer nll.Close()

	sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = fmt.Sprintf(" evaluating %d events with %d worker(s)...", d.NumEntries(), cfg.Workers)
	if !cfg.JSONOutput {
		sp.Start()
	}

	type outcome struct {
		value   float64
		elapsed time.Duration
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		start := time.Now()
		v, err := nll.Evaluate()
		done <- outcome{value: v, elapsed: time.Since(start), err: err}
	}()

	var res outcome
	select {
	case res = <-done:
	case <-time.After(cfg.Timeout):
		sp.Stop()
		fmt.Fprintf(os.Stderr, "Status: Failure (Timeout). The execution limit of %s was reached.\n", cfg.Timeout)
		return apperrors.ExitErrorTimeout
	}
	sp.Stop()

	if res.err != nil {
		logger.Error("evaluation failed", res.err)
		return apperrors.ExitErrorGeneric
	}

	if cfg.JSONOutput {
		report := evalReport{
			Value:   res.value,
			Events:  d.NumEntries(),
			Workers: cfg.Workers,
			Mode:    nll.Mode().String(),
			Seconds: res.elapsed.Seconds(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Error("encoding report failed", err)
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	fmt.Printf("NLL = %.6f  (%d events, %d worker(s), mode %s, %s)\n",
		res.value, d.NumEntries(), cfg.Workers, nll.Mode(), res.elapsed.Round(time.Microsecond))
	return apperrors.ExitSuccess
}

// buildSingle generates a Gaussian sample and the matching model.
func buildSingle(cfg config.AppConfig) (model.Model, dataset.Dataset) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	tbl := dataset.NewTable("demo", "x")
	for i := 0; i < cfg.Events; i++ {
		tbl.Append("", rng.NormFloat64()*2.0+5.0)
	}
	g := &model.Gaussian{ModelName: "gauss", MeanParam: "mean", SigmaParam: "sigma", Mean: 5.0, Sigma: 2.0}
	return g, tbl
}

// buildSimultaneous generates a two-channel sample and a composite model
// switching on the channel label. A third registered channel deliberately
// receives no data, exercising the category-skip path.
func buildSimultaneous(cfg config.AppConfig) (model.Model, dataset.Dataset) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	tbl := dataset.NewTable("demo", "x").WithCategory("channel")
	for i := 0; i < cfg.Events; i++ {
		if i%2 == 0 {
			tbl.Append("signal", rng.NormFloat64()*1.5+0.0)
		} else {
			tbl.Append("control", rng.NormFloat64()*3.0+10.0)
		}
	}
	sim := model.NewSimultaneous("sim", "channel").
		Register("signal", &model.Gaussian{ModelName: "sig", MeanParam: "sig_mean", SigmaParam: "sig_sigma", Mean: 0.0, Sigma: 1.5}).
		Register("control", &model.Gaussian{ModelName: "ctl", MeanParam: "ctl_mean", SigmaParam: "ctl_sigma", Mean: 10.0, Sigma: 3.0}).
		Register("spare", &model.Uniform{ModelName: "spare", Lo: -1, Hi: 1})
	return sim, tbl
}
