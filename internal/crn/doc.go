// Package crn defines the chemical reaction network data model.
//
// A [Model] aggregates:
//
//   - [Species]: named integer population counters with initial values
//   - [Parameter]: named constants, literal or expressions over other parameters
//   - [Reaction]: stoichiometry plus a mass-action rate or a custom propensity
//
// Construction checks only what a single value can check on its own.
// Cross references (names, parameter cycles, expression symbols) are checked
// by [Model.Compile], which produces an immutable [Compiled] snapshot with
// species assigned stable integer indices.
//
// # Example
//
//	m, _ := crn.NewModel("decay", 1)
//	x, _ := crn.NewSpecies("X", 10)
//	k := crn.NewValueParameter("k", 1.0)
//	r, _ := crn.NewMassAction("X decay", crn.Stoichiometry{"X": 1}, nil, "k")
//	_ = m.AddSpecies(x)
//	_ = m.AddParameter(k)
//	_ = m.AddReaction(r)
//	c, err := m.Compile()
//
// # Thread Safety
//
// Model is NOT safe for concurrent mutation. A Compiled snapshot is read-only
// and may be shared across goroutines.
package crn
