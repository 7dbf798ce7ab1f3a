// Package models holds built-in reaction networks. Every constructor returns
// a model that is already compiled and ready to simulate.
package models

import (
	"fmt"
	"sort"

	"github.com/HarryCaveMan/gillespy/internal/crn"
)

// Builder constructs a fresh copy of a built-in model.
type Builder func() (*crn.Model, error)

var builtins = map[string]Builder{
	"decay":        func() (*crn.Model, error) { return NewDecay(DefaultDecayInitial, DefaultDecayRate) },
	"birth_death":  func() (*crn.Model, error) { return NewBirthDeath(DefaultBirthRate, DefaultDeathRate) },
	"dimerization": NewDimerization,
	"tyson":        NewTyson,
}

// Lookup returns a fresh instance of the named built-in model.
func Lookup(name string) (*crn.Model, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return b()
}

// Names lists the built-in models in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type network struct {
	name  string
	model *crn.Model
	err   error
}

func newNetwork(name string, volume float64) *network {
	m, err := crn.NewModel(name, volume)
	return &network{name: name, model: m, err: err}
}

func (n *network) species(name string, initial int64) {
	if n.err != nil {
		return
	}
	s, err := crn.NewSpecies(name, initial)
	if err != nil {
		n.err = err
		return
	}
	n.err = n.model.AddSpecies(s)
}

func (n *network) param(name, expression string) {
	if n.err != nil {
		return
	}
	p, err := crn.NewParameter(name, expression)
	if err != nil {
		n.err = err
		return
	}
	n.err = n.model.AddParameter(p)
}

func (n *network) reaction(def crn.ReactionDef) {
	if n.err != nil {
		return
	}
	r, err := crn.NewReaction(def)
	if err != nil {
		n.err = err
		return
	}
	n.err = n.model.AddReaction(r)
}

func (n *network) build() (*crn.Model, error) {
	if n.err != nil {
		return nil, fmt.Errorf("build %s: %w", n.name, n.err)
	}
	if _, err := n.model.Compile(); err != nil {
		return nil, fmt.Errorf("compile %s: %w", n.name, err)
	}
	return n.model, nil
}
