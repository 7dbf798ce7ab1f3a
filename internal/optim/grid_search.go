// Package optim runs parameter sweeps over reaction networks.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/experiment"
	"github.com/HarryCaveMan/gillespy/internal/metrics"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

// Point is one evaluated combination of parameter values.
type Point struct {
	Params map[string]float64
	Value  float64
}

// GridSearch evaluates a metric over the cartesian product of parameter
// ranges, rebuilding and recompiling the model for every combination.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize makes Search prefer larger metric values.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

func (g *GridSearch) better(v, best float64) bool {
	if math.IsNaN(v) {
		return false
	}
	if g.maximize {
		return v > best
	}
	return v < best
}

// Search returns every evaluated point in grid order and the best one. The
// model's original parameter expressions are restored and recompiled before
// returning; a restore failure is reported when the search itself succeeded.
func (g *GridSearch) Search(ctx context.Context, model *crn.Model, cfg sim.Config, metric metrics.Metric) (points []Point, best Point, err error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, Point{}, fmt.Errorf("grid search: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	originals := make([]*crn.Parameter, len(g.paramNames))
	for i, name := range g.paramNames {
		p, ok := model.LookupParameter(name)
		if !ok {
			return nil, Point{}, fmt.Errorf("grid search: %w: %s", crn.ErrUnresolvedParameter, name)
		}
		originals[i] = p
	}
	defer func() {
		var restoreErr error
		for _, p := range originals {
			if e := model.SetParameter(p); e != nil && restoreErr == nil {
				restoreErr = e
			}
		}
		if restoreErr == nil {
			_, restoreErr = model.Compile()
		}
		if err == nil && restoreErr != nil {
			err = fmt.Errorf("grid search: restore parameters: %w", restoreErr)
		}
	}()

	best = Point{Value: math.Inf(1)}
	if g.maximize {
		best.Value = math.Inf(-1)
	}

	err = g.searchRecursive(ctx, 0, make(map[string]float64), model, cfg, metric, func(p Point) {
		points = append(points, p)
		if best.Params == nil || g.better(p.Value, best.Value) {
			best = p
		}
	})
	return points, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	model *crn.Model,
	cfg sim.Config,
	metric metrics.Metric,
	visit func(Point),
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		for name, v := range current {
			if err := model.SetParameter(crn.NewValueParameter(name, v)); err != nil {
				return err
			}
		}
		if _, err := model.Compile(); err != nil {
			return fmt.Errorf("grid search %v: %w", current, err)
		}

		exp := experiment.New(model, cfg)
		exp.Setup(metric)
		res, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("grid search %v: %w", current, err)
		}

		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		p := Point{Params: params, Value: res.Metrics[metric.Name()]}
		logrus.WithFields(logrus.Fields{"params": params, metric.Name(): p.Value}).Debug("grid point evaluated")
		visit(p)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, model, cfg, metric, visit); err != nil {
			return err
		}
	}
	return nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
