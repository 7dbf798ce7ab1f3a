package experiment

import (
	"context"
	"fmt"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/metrics"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

// Result is an ensemble together with the metrics evaluated over it.
type Result struct {
	*sim.Result
	Metrics map[string]float64
}

type Experiment struct {
	model   *crn.Model
	cfg     sim.Config
	metrics []metrics.Metric
}

func New(model *crn.Model, cfg sim.Config) *Experiment {
	return &Experiment{model: model, cfg: cfg}
}

func (e *Experiment) Setup(ms ...metrics.Metric) {
	e.metrics = append(e.metrics, ms...)
}

func (e *Experiment) Model() *crn.Model  { return e.model }
func (e *Experiment) Config() sim.Config { return e.cfg }

// Run simulates the ensemble and evaluates every configured metric. On a
// simulation error the partial result is returned along with the error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.model == nil {
		return nil, fmt.Errorf("experiment has no model")
	}

	res, err := sim.Simulate(ctx, e.model, e.cfg)
	if res == nil {
		return nil, err
	}

	out := &Result{Result: res, Metrics: metrics.Evaluate(res, e.metrics...)}
	return out, err
}
