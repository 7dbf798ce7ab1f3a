package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	MethodDirect        = "direct"
	MethodFirstReaction = "first-reaction"
)

// Direct is Gillespie's direct method: one exponential draw for the waiting
// time and one uniform draw to pick the reaction by cumulative propensity.
type Direct struct{}

func NewDirect() *Direct { return &Direct{} }

func (d *Direct) Name() string { return MethodDirect }

func (d *Direct) Next(rng *rand.Rand, props []float64, total float64) (float64, int) {
	tau := rng.ExpFloat64() / total
	target := rng.Float64() * total

	// Reactions are scanned in model order, so equal cumulative boundaries
	// resolve to the lower index.
	cum := 0.0
	last := -1
	for i, a := range props {
		if a == 0 {
			continue
		}
		last = i
		cum += a
		if target < cum {
			return tau, i
		}
	}
	// rounding left target at or past the final boundary
	return tau, last
}

// FirstReaction is Gillespie's first-reaction method: a tentative waiting
// time per enabled reaction, the smallest one fires.
type FirstReaction struct{}

func NewFirstReaction() *FirstReaction { return &FirstReaction{} }

func (f *FirstReaction) Name() string { return MethodFirstReaction }

func (f *FirstReaction) Next(rng *rand.Rand, props []float64, total float64) (float64, int) {
	best := -1
	tau := math.Inf(1)
	for i, a := range props {
		if a == 0 {
			continue
		}
		if t := rng.ExpFloat64() / a; t < tau {
			tau, best = t, i
		}
	}
	return tau, best
}

var steppers = map[string]func() Stepper{
	MethodDirect:        func() Stepper { return NewDirect() },
	MethodFirstReaction: func() Stepper { return NewFirstReaction() },
}

// NewStepper returns the stepper registered under name; empty selects Direct.
func NewStepper(name string) (Stepper, error) {
	if name == "" {
		name = MethodDirect
	}
	fn, ok := steppers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, name)
	}
	return fn(), nil
}

// Methods lists the registered stepper names.
func Methods() []string {
	return []string{MethodDirect, MethodFirstReaction}
}
