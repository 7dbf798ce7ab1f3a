package crn

import "github.com/HarryCaveMan/gillespy/internal/expr"

// Species is a named population counter.
type Species struct {
	name    string
	initial int64
}

// NewSpecies returns a species with the given initial population. The name
// must be a valid expression identifier so propensities can reference it.
func NewSpecies(name string, initial int64) (*Species, error) {
	if !expr.IsIdentifier(name) {
		return nil, newError("species", name, ErrInvalidSpecies, "name is not a valid identifier")
	}
	if initial < 0 {
		return nil, newError("species", name, ErrInvalidSpecies, "initial value %d is negative", initial)
	}
	return &Species{name: name, initial: initial}, nil
}

func (s *Species) Name() string         { return s.name }
func (s *Species) InitialValue() int64 { return s.initial }
