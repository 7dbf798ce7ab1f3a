package sim

import (
	"errors"
	"fmt"
)

// Domain errors for simulation runs.
var (
	// ErrInvalidModel indicates a model that was never compiled or changed since.
	ErrInvalidModel = errors.New("sim: model is not compiled or is stale")

	// ErrInvalidConfiguration indicates a run configuration rejected before any work.
	ErrInvalidConfiguration = errors.New("sim: invalid configuration")

	// ErrNonFiniteRate indicates a propensity that evaluated to NaN, infinity or a negative value.
	ErrNonFiniteRate = errors.New("sim: propensity is negative or not finite")

	// ErrUnknownMethod indicates an SSA method name with no registered stepper.
	ErrUnknownMethod = errors.New("sim: unknown method")
)

// SimulationError wraps an error with the trajectory context it occurred in.
type SimulationError struct {
	Trajectory int
	Event      int
	Time       float64
	Reaction   string
	Value      float64
	Wrapped    error
}

func (e *SimulationError) Error() string {
	msg := fmt.Sprintf("trajectory %d, event %d (t=%.6g): %v", e.Trajectory, e.Event, e.Time, e.Wrapped)
	if e.Reaction != "" {
		msg += fmt.Sprintf(": reaction %q evaluated to %v", e.Reaction, e.Value)
	}
	return msg
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}
