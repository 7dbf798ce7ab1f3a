package sim

import (
	"math/rand/v2"
	"time"
)

// State is a population vector indexed by compiled species index.
type State []int64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsValid reports whether every population is non-negative.
func (s State) IsValid() bool {
	for _, v := range s {
		if v < 0 {
			return false
		}
	}
	return true
}

// Stepper draws the next reaction event. props holds the current
// propensities in reaction order and total is their positive sum. It returns
// the time to the next event and the index of the reaction that fires.
// Implementations must consume the random stream deterministically.
type Stepper interface {
	Name() string
	Next(rng *rand.Rand, props []float64, total float64) (tau float64, reaction int)
}

type Config struct {
	Trajectories int
	EndTime      float64
	// MaxEvents bounds the events per trajectory; 0 means unbounded.
	MaxEvents int
	// Seed is the run seed. When nil a seed is drawn and reported in Result.Seed.
	Seed *int64
	// Workers bounds concurrent trajectories; 0 means GOMAXPROCS.
	Workers int
	// Method names the Stepper; empty selects the direct method.
	Method string
}

func DefaultConfig() Config {
	return Config{
		Trajectories: 1,
		EndTime:      10.0,
		Method:       MethodDirect,
	}
}

// Seed returns a pointer to v for Config.Seed.
func Seed(v int64) *int64 { return &v }

type Result struct {
	Model   string
	Method  string
	Seed    int64
	EndTime float64
	Species []string
	// Trajectories is indexed by trajectory number. After a failed or
	// canceled run, entries for unfinished trajectories are nil.
	Trajectories []*Trajectory
	Elapsed      time.Duration
}

// Completed returns the trajectories that finished, in index order.
func (r *Result) Completed() []*Trajectory {
	out := make([]*Trajectory, 0, len(r.Trajectories))
	for _, t := range r.Trajectories {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// TotalEvents sums the events fired across completed trajectories.
func (r *Result) TotalEvents() int {
	n := 0
	for _, t := range r.Completed() {
		n += t.Events
	}
	return n
}
