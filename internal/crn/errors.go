package crn

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for model construction and compilation.
var (
	// ErrDuplicateName indicates a name already registered in the same collection.
	ErrDuplicateName = errors.New("crn: duplicate name")

	// ErrUnresolvedParameter indicates a parameter expression referencing an unknown name.
	ErrUnresolvedParameter = errors.New("crn: unresolved parameter reference")

	// ErrCyclicParameter indicates parameters whose expressions reference each other in a cycle.
	ErrCyclicParameter = errors.New("crn: cyclic parameter reference")

	// ErrUnknownSymbol indicates a reaction referencing a species or parameter not in the model.
	ErrUnknownSymbol = errors.New("crn: unknown symbol")

	// ErrNotCompiled indicates a model that has never been compiled.
	ErrNotCompiled = errors.New("crn: model not compiled")

	// ErrStaleModel indicates a model mutated after its last compilation.
	ErrStaleModel = errors.New("crn: model changed since last compile")

	ErrInvalidSpecies   = errors.New("crn: invalid species")
	ErrInvalidParameter = errors.New("crn: invalid parameter")
	ErrInvalidReaction  = errors.New("crn: invalid reaction")
	ErrInvalidModel     = errors.New("crn: invalid model")
)

// ModelError ties a domain error to the entity that caused it.
type ModelError struct {
	Kind   string // "species", "parameter", "reaction" or "model"
	Name   string
	Detail string
	Err    error
}

func (e *ModelError) Error() string {
	msg := fmt.Sprintf("%v: %s %q", e.Err, e.Kind, e.Name)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// CycleError lists the parameter names forming a reference cycle, with the
// first name repeated at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCyclicParameter, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error {
	return ErrCyclicParameter
}

func newError(kind, name string, err error, format string, args ...any) *ModelError {
	return &ModelError{Kind: kind, Name: name, Err: err, Detail: fmt.Sprintf(format, args...)}
}
