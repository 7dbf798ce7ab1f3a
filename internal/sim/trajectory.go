package sim

import (
	"math"
	"sort"
)

// Trajectory is one realized sample path. Times are strictly increasing,
// start at 0 with the initial populations and, unless Truncated, end at the
// configured end time.
type Trajectory struct {
	Index   int
	Seed    uint64
	Species []string
	Times   []float64
	States  []State

	// Events counts fired reactions; Firings counts them per reaction.
	Events  int
	Firings []int64

	// Absorbed is set when total propensity reached zero; AbsorbedAt is
	// only meaningful when it is.
	Absorbed   bool
	AbsorbedAt float64

	// Truncated is set when MaxEvents stopped the trajectory before EndTime.
	Truncated bool
}

// Sample is a (time, populations) pair keyed by species name.
type Sample struct {
	Time        float64
	Populations map[string]int64
}

func newTrajectory(index int, seed uint64, species []string, numReactions int) *Trajectory {
	return &Trajectory{
		Index:   index,
		Seed:    seed,
		Species: species,
		Times:   make([]float64, 0, 64),
		States:  make([]State, 0, 64),
		Firings: make([]int64, numReactions),
	}
}

// record appends a sample. A time that does not advance past the last sample
// (an event too small to move a large clock) replaces the last state.
func (t *Trajectory) record(time float64, x State) {
	n := len(t.Times)
	if n > 1 && time <= t.Times[n-1] {
		t.States[n-1] = x.Clone()
		return
	}
	t.Times = append(t.Times, time)
	t.States = append(t.States, x.Clone())
}

// hold pads the trajectory with the last state at end.
func (t *Trajectory) hold(end float64) {
	n := len(t.Times)
	if n == 0 || t.Times[n-1] >= end {
		return
	}
	t.Times = append(t.Times, end)
	t.States = append(t.States, t.States[n-1].Clone())
}

func (t *Trajectory) Len() int { return len(t.Times) }

// EndTime is the time of the last sample.
func (t *Trajectory) EndTime() float64 {
	if len(t.Times) == 0 {
		return 0
	}
	return t.Times[len(t.Times)-1]
}

// Final returns the last recorded populations.
func (t *Trajectory) Final() State {
	if len(t.States) == 0 {
		return nil
	}
	return t.States[len(t.States)-1]
}

// Sample returns the i-th sample keyed by species name.
func (t *Trajectory) Sample(i int) Sample {
	pops := make(map[string]int64, len(t.Species))
	for j, name := range t.Species {
		pops[name] = t.States[i][j]
	}
	return Sample{Time: t.Times[i], Populations: pops}
}

// At returns the populations held at time. The path is a step function, so
// this is the last sample at or before time. It reports false outside
// [0, EndTime].
func (t *Trajectory) At(time float64) (State, bool) {
	if len(t.Times) == 0 || time < 0 || time > t.EndTime() {
		return nil, false
	}
	i := sort.Search(len(t.Times), func(i int) bool { return t.Times[i] > time }) - 1
	return t.States[i], true
}

// Series returns the population of one species across all samples.
func (t *Trajectory) Series(species int) []int64 {
	out := make([]int64, len(t.States))
	for i, s := range t.States {
		out[i] = s[species]
	}
	return out
}

// Grid resamples the trajectory onto 0, interval, 2*interval, ... up to its
// end time, the fixed-increment layout of a rectangular time-by-species table.
func (t *Trajectory) Grid(interval float64) ([]float64, []State) {
	if interval <= 0 || len(t.Times) == 0 {
		return nil, nil
	}
	end := t.EndTime()
	steps := int(math.Floor(end/interval + 1e-9))

	times := make([]float64, 0, steps+1)
	states := make([]State, 0, steps+1)
	for k := 0; k <= steps; k++ {
		tk := math.Min(float64(k)*interval, end)
		s, _ := t.At(tk)
		times = append(times, tk)
		states = append(states, s)
	}
	return times, states
}
