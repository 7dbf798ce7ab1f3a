package models

import (
	"strconv"

	"github.com/HarryCaveMan/gillespy/internal/crn"
)

const (
	DefaultDecayInitial = 100
	DefaultDecayRate    = 0.2

	DefaultBirthRate = 10.0
	DefaultDeathRate = 0.5

	DefaultMonomers         = 30
	DefaultCreationRate     = 0.005
	DefaultDissociationRate = 0.08
)

func number(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// NewDecay is X -> 0 at rate k.
func NewDecay(initial int64, k float64) (*crn.Model, error) {
	n := newNetwork("decay", 1)
	n.param("k", number(k))
	n.species("X", initial)
	n.reaction(crn.ReactionDef{
		Name:      "decay",
		Reactants: crn.Stoichiometry{"X": 1},
		Rate:      "k",
	})
	return n.build()
}

// NewBirthDeath is 0 -> X at rate birth and X -> 0 at rate death, with a
// stationary mean of birth/death.
func NewBirthDeath(birth, death float64) (*crn.Model, error) {
	n := newNetwork("birth_death", 1)
	n.param("birth", number(birth))
	n.param("death", number(death))
	n.species("X", 0)
	n.reaction(crn.ReactionDef{
		Name:     "birth",
		Products: crn.Stoichiometry{"X": 1},
		Rate:     "birth",
	})
	n.reaction(crn.ReactionDef{
		Name:      "death",
		Reactants: crn.Stoichiometry{"X": 1},
		Rate:      "death",
	})
	return n.build()
}

// NewDimerization is the reversible 2 M <-> D network.
func NewDimerization() (*crn.Model, error) {
	n := newNetwork("dimerization", 1)
	n.param("k_c", number(DefaultCreationRate))
	n.param("k_d", number(DefaultDissociationRate))
	n.species("Monomer", DefaultMonomers)
	n.species("Dimer", 0)
	n.reaction(crn.ReactionDef{
		Name:      "creation",
		Reactants: crn.Stoichiometry{"Monomer": 2},
		Products:  crn.Stoichiometry{"Dimer": 1},
		Rate:      "k_c",
	})
	n.reaction(crn.ReactionDef{
		Name:      "dissociation",
		Reactants: crn.Stoichiometry{"Dimer": 1},
		Products:  crn.Stoichiometry{"Monomer": 2},
		Rate:      "k_d",
	})
	return n.build()
}
