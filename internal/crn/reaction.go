package crn

import (
	"sort"

	"github.com/HarryCaveMan/gillespy/internal/expr"
)

// Stoichiometry maps species names to positive molecule counts.
type Stoichiometry map[string]int

// Order is the total molecule count, Σ n_i.
func (s Stoichiometry) Order() int {
	order := 0
	for _, n := range s {
		order += n
	}
	return order
}

// Names returns the species names in sorted order.
func (s Stoichiometry) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Stoichiometry) clone() Stoichiometry {
	c := make(Stoichiometry, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// ReactionDef is the declarative form of a reaction. Exactly one of Rate
// (a parameter name, mass-action kinetics) or Propensity (a custom
// expression) must be set.
type ReactionDef struct {
	Name       string
	Reactants  Stoichiometry
	Products   Stoichiometry
	Rate       string
	Propensity string
}

// Reaction is an immutable validated reaction definition.
type Reaction struct {
	name       string
	reactants  Stoichiometry
	products   Stoichiometry
	rate       string
	propensity string
	tree       expr.Node
}

// NewReaction validates def: a non-empty name, positive stoichiometry and
// exactly one of rate or propensity function.
func NewReaction(def ReactionDef) (*Reaction, error) {
	if def.Name == "" {
		return nil, newError("reaction", def.Name, ErrInvalidReaction, "name is required")
	}
	switch {
	case def.Rate != "" && def.Propensity != "":
		return nil, newError("reaction", def.Name, ErrInvalidReaction, "both rate and propensity_function given")
	case def.Rate == "" && def.Propensity == "":
		return nil, newError("reaction", def.Name, ErrInvalidReaction, "one of rate or propensity_function is required")
	}

	for _, side := range []struct {
		label string
		stoch Stoichiometry
	}{{"reactant", def.Reactants}, {"product", def.Products}} {
		for species, n := range side.stoch {
			if species == "" {
				return nil, newError("reaction", def.Name, ErrInvalidReaction, "empty %s species name", side.label)
			}
			if n <= 0 {
				return nil, newError("reaction", def.Name, ErrInvalidReaction,
					"%s %q has non-positive coefficient %d", side.label, species, n)
			}
		}
	}

	r := &Reaction{
		name:      def.Name,
		reactants: def.Reactants.clone(),
		products:  def.Products.clone(),
		rate:      def.Rate,
	}

	if def.Propensity != "" {
		tree, err := expr.Parse(def.Propensity)
		if err != nil {
			return nil, &ModelError{Kind: "reaction", Name: def.Name, Err: ErrInvalidReaction, Detail: err.Error()}
		}
		r.propensity = def.Propensity
		r.tree = tree
	}

	return r, nil
}

// NewMassAction is shorthand for a reaction whose propensity follows
// mass-action kinetics with the rate constant held by parameter rate.
func NewMassAction(name string, reactants, products Stoichiometry, rate string) (*Reaction, error) {
	return NewReaction(ReactionDef{Name: name, Reactants: reactants, Products: products, Rate: rate})
}

// NewCustom is shorthand for a reaction with a custom propensity expression.
func NewCustom(name string, reactants, products Stoichiometry, propensity string) (*Reaction, error) {
	return NewReaction(ReactionDef{Name: name, Reactants: reactants, Products: products, Propensity: propensity})
}

func (r *Reaction) Name() string { return r.name }

// Reactants returns a copy of the reactant stoichiometry.
func (r *Reaction) Reactants() Stoichiometry { return r.reactants.clone() }

// Products returns a copy of the product stoichiometry.
func (r *Reaction) Products() Stoichiometry { return r.products.clone() }

// Rate returns the rate parameter name, empty for custom propensities.
func (r *Reaction) Rate() string { return r.rate }

// PropensityFunction returns the custom propensity source, empty for mass action.
func (r *Reaction) PropensityFunction() string { return r.propensity }

// MassAction reports whether the propensity is derived from Rate.
func (r *Reaction) MassAction() bool { return r.rate != "" }
