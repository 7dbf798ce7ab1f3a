package metrics

import "github.com/HarryCaveMan/gillespy/internal/sim"

// Metric accumulates a statistic over the trajectories of an ensemble.
type Metric interface {
	Name() string
	Observe(t *sim.Trajectory)
	Value() float64
	Reset()
}

// Evaluate resets each metric, feeds it every completed trajectory of r and
// returns the values by name.
func Evaluate(r *sim.Result, metrics ...Metric) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	trajs := r.Completed()
	for _, m := range metrics {
		m.Reset()
		for _, t := range trajs {
			m.Observe(t)
		}
		out[m.Name()] = m.Value()
	}
	return out
}

// Default returns the mean final population of every species plus event
// and absorption statistics.
func Default(species []string, end float64) []Metric {
	ms := make([]Metric, 0, len(species)+2)
	for i, name := range species {
		ms = append(ms, NewMeanAt(name, i, end))
	}
	ms = append(ms, NewMeanEvents(), NewAbsorbed())
	return ms
}
