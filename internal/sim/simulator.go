package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/sirupsen/logrus"
)

// Simulator runs single trajectories of a compiled model. It holds no
// per-trajectory state, so Run may be called from many goroutines at once.
type Simulator struct {
	model     *crn.Compiled
	reactions []*crn.CompiledReaction
	method    Stepper
	pool      *PropensityPool
}

func New(model *crn.Compiled, method Stepper) *Simulator {
	if method == nil {
		method = NewDirect()
	}
	return &Simulator{
		model:     model,
		reactions: model.Reactions(),
		method:    method,
		pool:      NewPropensityPool(model.NumReactions()),
	}
}

func (s *Simulator) Model() *crn.Compiled { return s.model }
func (s *Simulator) Method() Stepper      { return s.method }

func validateRun(cfg Config) error {
	if !(cfg.EndTime > 0) || math.IsInf(cfg.EndTime, 0) {
		return configError("end time must be positive and finite, got %v", cfg.EndTime)
	}
	if cfg.MaxEvents < 0 {
		return configError("max events must be non-negative, got %d", cfg.MaxEvents)
	}
	return nil
}

// Run produces trajectory index from seed. Cancellation is checked once per
// event; a canceled trajectory returns ctx.Err() and no partial path.
func (s *Simulator) Run(ctx context.Context, index int, seed uint64, cfg Config) (*Trajectory, error) {
	if err := validateRun(cfg); err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{"trajectory": index, "seed": seed})
	log.Debugf("starting trajectory (method=%s, end=%g)", s.method.Name(), cfg.EndTime)

	rng := newRand(seed)
	props := s.pool.Get()
	defer s.pool.Put(props)

	x := State(s.model.InitialState())
	traj := newTrajectory(index, seed, s.model.Species(), len(s.reactions))
	traj.record(0, x)

	t := 0.0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if cfg.MaxEvents > 0 && traj.Events >= cfg.MaxEvents {
			traj.Truncated = true
			break
		}

		total, err := s.evaluate(x, props)
		if err != nil {
			err.Trajectory, err.Event, err.Time = index, traj.Events, t
			return nil, err
		}

		if total == 0 {
			traj.Absorbed = true
			traj.AbsorbedAt = t
			break
		}

		tau, j := s.method.Next(rng, props, total)
		if t+tau > cfg.EndTime {
			break
		}

		if j < 0 || !s.reactions[j].Fire(x) {
			return nil, &SimulationError{
				Trajectory: index, Event: traj.Events, Time: t,
				Wrapped: fmt.Errorf("sim: %s selected reaction %d which cannot fire", s.method.Name(), j),
			}
		}

		t += tau
		traj.Events++
		traj.Firings[j]++
		traj.record(t, x)
	}

	if !traj.Truncated {
		traj.hold(cfg.EndTime)
	}

	log.WithField("events", traj.Events).Debugf("trajectory finished at t=%g (absorbed=%t)", traj.EndTime(), traj.Absorbed)
	return traj, nil
}

// evaluate fills props and returns their sum. Negative, NaN or infinite
// values are model-authoring bugs and abort the trajectory.
func (s *Simulator) evaluate(x State, props []float64) (float64, *SimulationError) {
	total := 0.0
	for i, r := range s.reactions {
		a := r.Propensity(x)
		if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
			return 0, &SimulationError{Reaction: r.Name(), Value: a, Wrapped: ErrNonFiniteRate}
		}
		props[i] = a
		total += a
	}
	if math.IsInf(total, 0) {
		return 0, &SimulationError{Value: total, Wrapped: ErrNonFiniteRate}
	}
	return total, nil
}
