package metrics

import (
	"fmt"
	"math"

	"github.com/HarryCaveMan/gillespy/internal/sim"
)

// MeanAt is the ensemble mean population of one species at a fixed time.
type MeanAt struct {
	name    string
	species int
	time    float64
	sum     float64
	samples int
}

func NewMeanAt(species string, index int, time float64) *MeanAt {
	return &MeanAt{
		name:    fmt.Sprintf("mean_%s@%g", species, time),
		species: index,
		time:    time,
	}
}

func (m *MeanAt) Name() string { return m.name }

func (m *MeanAt) Observe(t *sim.Trajectory) {
	x, ok := t.At(m.time)
	if !ok {
		return
	}
	m.sum += float64(x[m.species])
	m.samples++
}

func (m *MeanAt) Value() float64 {
	if m.samples == 0 {
		return math.NaN()
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAt) Reset() {
	m.sum = 0
	m.samples = 0
}

// VarianceAt is the unbiased sample variance of one species at a fixed time,
// accumulated with Welford's update.
type VarianceAt struct {
	name    string
	species int
	time    float64
	n       int
	mean    float64
	m2      float64
}

func NewVarianceAt(species string, index int, time float64) *VarianceAt {
	return &VarianceAt{
		name:    fmt.Sprintf("var_%s@%g", species, time),
		species: index,
		time:    time,
	}
}

func (v *VarianceAt) Name() string { return v.name }

func (v *VarianceAt) Observe(t *sim.Trajectory) {
	x, ok := t.At(v.time)
	if !ok {
		return
	}
	v.n++
	val := float64(x[v.species])
	delta := val - v.mean
	v.mean += delta / float64(v.n)
	v.m2 += delta * (val - v.mean)
}

func (v *VarianceAt) Value() float64 {
	if v.n < 2 {
		return math.NaN()
	}
	return v.m2 / float64(v.n-1)
}

func (v *VarianceAt) Reset() {
	v.n = 0
	v.mean = 0
	v.m2 = 0
}

// Extinction is the fraction of trajectories whose final population of a
// species is zero.
type Extinction struct {
	name    string
	species int
	extinct int
	samples int
}

func NewExtinction(species string, index int) *Extinction {
	return &Extinction{name: "extinct_" + species, species: index}
}

func (e *Extinction) Name() string { return e.name }

func (e *Extinction) Observe(t *sim.Trajectory) {
	final := t.Final()
	if final == nil {
		return
	}
	e.samples++
	if final[e.species] == 0 {
		e.extinct++
	}
}

func (e *Extinction) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return float64(e.extinct) / float64(e.samples)
}

func (e *Extinction) Reset() {
	e.extinct = 0
	e.samples = 0
}
