package models

import "github.com/HarryCaveMan/gillespy/internal/crn"

// TysonVolume is the system size of the Tyson two-state oscillator.
const TysonVolume = 150.0

// NewTyson builds the Tyson two-state oscillator: X activates its own
// repressor Y, which is degraded by a saturating enzyme.
func NewTyson() (*crn.Model, error) {
	n := newNetwork("tyson", TysonVolume)
	n.param("vol", number(TysonVolume))
	n.param("P", "2")
	n.param("kt", "20")
	n.param("kd", "1")
	n.param("a0", "0.005")
	n.param("a1", "0.05")
	n.param("a2", "0.1")
	n.param("kdx", "1")

	// initial concentrations 0.65609071 and 0.85088331 scaled by volume
	n.species("X", 98)
	n.species("Y", 127)

	n.reaction(crn.ReactionDef{
		Name:       "X production",
		Products:   crn.Stoichiometry{"X": 1},
		Propensity: "vol/(1 + (Y/vol)^P)",
	})
	n.reaction(crn.ReactionDef{
		Name:      "X degradation",
		Reactants: crn.Stoichiometry{"X": 1},
		Rate:      "kdx",
	})
	n.reaction(crn.ReactionDef{
		Name:      "Y production",
		Reactants: crn.Stoichiometry{"X": 1},
		Products:  crn.Stoichiometry{"X": 1, "Y": 1},
		Rate:      "kt",
	})
	n.reaction(crn.ReactionDef{
		Name:      "Y degradation",
		Reactants: crn.Stoichiometry{"Y": 1},
		Rate:      "kd",
	})
	n.reaction(crn.ReactionDef{
		Name:       "Y nonlinear degradation",
		Reactants:  crn.Stoichiometry{"Y": 1},
		Propensity: "Y/(a0 + a1*(Y/vol) + a2*Y*Y/(vol*vol))",
	})
	return n.build()
}
