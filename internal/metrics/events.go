package metrics

import "github.com/HarryCaveMan/gillespy/internal/sim"

// MeanEvents is the mean number of fired reactions per trajectory.
type MeanEvents struct {
	total   int
	samples int
}

func NewMeanEvents() *MeanEvents { return &MeanEvents{} }

func (m *MeanEvents) Name() string { return "mean_events" }

func (m *MeanEvents) Observe(t *sim.Trajectory) {
	m.total += t.Events
	m.samples++
}

func (m *MeanEvents) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.total) / float64(m.samples)
}

func (m *MeanEvents) Reset() {
	m.total = 0
	m.samples = 0
}

// Absorbed is the fraction of trajectories that reached an absorbing state.
type Absorbed struct {
	absorbed int
	samples  int
}

func NewAbsorbed() *Absorbed { return &Absorbed{} }

func (a *Absorbed) Name() string { return "absorbed" }

func (a *Absorbed) Observe(t *sim.Trajectory) {
	a.samples++
	if t.Absorbed {
		a.absorbed++
	}
}

func (a *Absorbed) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.absorbed) / float64(a.samples)
}

func (a *Absorbed) Reset() {
	a.absorbed = 0
	a.samples = 0
}
