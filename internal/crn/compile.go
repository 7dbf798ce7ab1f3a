package crn

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/HarryCaveMan/gillespy/internal/expr"
)

// Term is one side of a stoichiometric entry with the species resolved to its
// compiled index.
type Term struct {
	Species int
	Count   int64
}

// CompiledReaction is a reaction bound to species indices with a ready
// propensity evaluator.
type CompiledReaction struct {
	name       string
	index      int
	reactants  []Term
	products   []Term
	delta      []Term
	massAction bool
	expression string
	propensity expr.Func
}

func (r *CompiledReaction) Name() string       { return r.name }
func (r *CompiledReaction) Index() int         { return r.index }
func (r *CompiledReaction) MassAction() bool   { return r.massAction }
func (r *CompiledReaction) Expression() string { return r.expression }
func (r *CompiledReaction) Reactants() []Term  { return append([]Term(nil), r.reactants...) }
func (r *CompiledReaction) Products() []Term   { return append([]Term(nil), r.products...) }

// Delta returns the net population change per firing, one entry per species
// whose count changes, ordered by species index.
func (r *CompiledReaction) Delta() []Term { return append([]Term(nil), r.delta...) }

// Propensity evaluates the reaction rate at population pop.
func (r *CompiledReaction) Propensity(pop []int64) float64 {
	return r.propensity(pop)
}

// CanFire reports whether every reactant is present in sufficient number.
func (r *CompiledReaction) CanFire(pop []int64) bool {
	for _, t := range r.reactants {
		if pop[t.Species] < t.Count {
			return false
		}
	}
	return true
}

// Fire applies the reaction to pop in place. Nothing is changed and false is
// returned when a reactant is insufficient.
func (r *CompiledReaction) Fire(pop []int64) bool {
	if !r.CanFire(pop) {
		return false
	}
	for _, d := range r.delta {
		pop[d.Species] += d.Count
	}
	return true
}

// Compiled is an immutable, executable snapshot of a Model.
type Compiled struct {
	name       string
	volume     float64
	revision   uint64
	species    []string
	speciesIdx map[string]int
	initial    []int64
	paramNames []string
	params     map[string]float64
	reactions  []*CompiledReaction
}

func (c *Compiled) Name() string      { return c.name }
func (c *Compiled) Volume() float64   { return c.volume }
func (c *Compiled) Revision() uint64  { return c.revision }
func (c *Compiled) NumSpecies() int   { return len(c.species) }
func (c *Compiled) NumReactions() int { return len(c.reactions) }

// Species returns species names in index order.
func (c *Compiled) Species() []string { return append([]string(nil), c.species...) }

// SpeciesIndex returns the population vector index of a species.
func (c *Compiled) SpeciesIndex(name string) (int, bool) {
	i, ok := c.speciesIdx[name]
	return i, ok
}

// InitialState returns a fresh copy of the initial population vector.
func (c *Compiled) InitialState() []int64 { return append([]int64(nil), c.initial...) }

// Parameter returns the resolved value of a parameter.
func (c *Compiled) Parameter(name string) (float64, bool) {
	v, ok := c.params[name]
	return v, ok
}

// ParameterNames returns parameter names in insertion order.
func (c *Compiled) ParameterNames() []string { return append([]string(nil), c.paramNames...) }

// Reactions returns the compiled reactions in stable model order.
func (c *Compiled) Reactions() []*CompiledReaction {
	return append([]*CompiledReaction(nil), c.reactions...)
}

// Compile validates the model and builds its executable snapshot:
//
//  1. resolve parameter expressions to constants (unknown references and
//     cycles are errors),
//  2. bind every reaction's propensity against species and parameters,
//  3. fix reaction order and species indices.
//
// Compile is idempotent; an unchanged model returns the cached snapshot. On
// failure the model's compiled state is left untouched.
func (m *Model) Compile() (*Compiled, error) {
	if m.compiled != nil {
		return m.compiled, nil
	}

	for _, p := range m.parameters {
		if _, clash := m.speciesIdx[p.name]; clash {
			return nil, newError("parameter", p.name, ErrDuplicateName, "name is also a species")
		}
	}

	params, err := m.resolveParameters()
	if err != nil {
		return nil, err
	}

	c := &Compiled{
		name:       m.name,
		volume:     m.volume,
		revision:   m.revision,
		species:    make([]string, len(m.species)),
		speciesIdx: make(map[string]int, len(m.species)),
		initial:    make([]int64, len(m.species)),
		paramNames: make([]string, len(m.parameters)),
		params:     params,
		reactions:  make([]*CompiledReaction, 0, len(m.reactions)),
	}
	for i, s := range m.species {
		c.species[i] = s.name
		c.speciesIdx[s.name] = i
		c.initial[i] = s.initial
	}
	for i, p := range m.parameters {
		c.paramNames[i] = p.name
	}

	for i, r := range m.reactions {
		cr, err := c.compileReaction(i, r)
		if err != nil {
			return nil, err
		}
		c.reactions = append(c.reactions, cr)
	}

	m.compiled = c
	m.everCompiled = true
	return c, nil
}

const (
	unvisited = iota
	visiting
	resolved
)

// resolveParameters evaluates every parameter in dependency order using a
// depth-first traversal; a back edge to a parameter still being visited is a
// cycle.
func (m *Model) resolveParameters() (map[string]float64, error) {
	values := make(map[string]float64, len(m.parameters))
	state := make(map[string]int, len(m.parameters))
	var stack []string

	lookup := func(name string) (expr.Binding, bool) {
		v, ok := values[name]
		return expr.Const(v), ok
	}

	var visit func(p *Parameter) error
	visit = func(p *Parameter) error {
		switch state[p.name] {
		case resolved:
			return nil
		case visiting:
			start := 0
			for i, name := range stack {
				if name == p.name {
					start = i
					break
				}
			}
			path := append(append([]string(nil), stack[start:]...), p.name)
			return &CycleError{Path: path}
		}

		state[p.name] = visiting
		stack = append(stack, p.name)

		for _, ref := range p.References() {
			dep, ok := m.LookupParameter(ref)
			if !ok {
				return newError("parameter", p.name, ErrUnresolvedParameter, "references unknown name %q", ref)
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		v, err := expr.Eval(p.tree, lookup)
		if err != nil {
			return &ModelError{Kind: "parameter", Name: p.name, Err: ErrInvalidParameter, Detail: err.Error()}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return newError("parameter", p.name, ErrInvalidParameter, "evaluates to %v", v)
		}

		values[p.name] = v
		state[p.name] = resolved
		stack = stack[:len(stack)-1]
		return nil
	}

	for _, p := range m.parameters {
		if err := visit(p); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func (c *Compiled) terms(reaction string, s Stoichiometry) ([]Term, error) {
	terms := make([]Term, 0, len(s))
	for _, name := range s.Names() {
		idx, ok := c.speciesIdx[name]
		if !ok {
			return nil, newError("reaction", reaction, ErrUnknownSymbol, "species %q is not in the model", name)
		}
		terms = append(terms, Term{Species: idx, Count: int64(s[name])})
	}
	return terms, nil
}

func netDelta(reactants, products []Term, numSpecies int) []Term {
	change := make([]int64, numSpecies)
	for _, t := range reactants {
		change[t.Species] -= t.Count
	}
	for _, t := range products {
		change[t.Species] += t.Count
	}
	var delta []Term
	for i, d := range change {
		if d != 0 {
			delta = append(delta, Term{Species: i, Count: d})
		}
	}
	return delta
}

func (c *Compiled) compileReaction(index int, r *Reaction) (*CompiledReaction, error) {
	reactants, err := c.terms(r.name, r.reactants)
	if err != nil {
		return nil, err
	}
	products, err := c.terms(r.name, r.products)
	if err != nil {
		return nil, err
	}

	cr := &CompiledReaction{
		name:       r.name,
		index:      index,
		reactants:  reactants,
		products:   products,
		delta:      netDelta(reactants, products, len(c.species)),
		massAction: r.MassAction(),
	}

	if cr.massAction {
		k, ok := c.params[r.rate]
		if !ok {
			return nil, newError("reaction", r.name, ErrUnknownSymbol, "rate parameter %q is not in the model", r.rate)
		}
		cr.propensity = massAction(k, c.volume, reactants)
		cr.expression = c.massActionExpression(r.rate, reactants)
		return cr, nil
	}

	fn, err := expr.Compile(r.tree, c.lookup)
	if err != nil {
		var symErr *expr.SymbolError
		if errors.As(err, &symErr) && errors.Is(err, expr.ErrUnknownSymbol) {
			return nil, newError("reaction", r.name, ErrUnknownSymbol, "propensity references unknown name %q", symErr.Name)
		}
		return nil, &ModelError{Kind: "reaction", Name: r.name, Err: ErrInvalidReaction, Detail: err.Error()}
	}
	cr.propensity = guarded(fn, reactants)
	cr.expression = r.propensity
	return cr, nil
}

func (c *Compiled) lookup(name string) (expr.Binding, bool) {
	if i, ok := c.speciesIdx[name]; ok {
		return expr.Var(i), true
	}
	if v, ok := c.params[name]; ok {
		return expr.Const(v), true
	}
	return expr.Binding{}, false
}

// guarded forces a custom propensity to zero while any reactant is short, so
// a selected reaction can always fire.
func guarded(fn expr.Func, reactants []Term) expr.Func {
	if len(reactants) == 0 {
		return fn
	}
	return func(pop []int64) float64 {
		for _, t := range reactants {
			if pop[t.Species] < t.Count {
				return 0
			}
		}
		return fn(pop)
	}
}

// massAction returns k * V^(1-order) * Π C(pop_i, n_i).
func massAction(k, volume float64, reactants []Term) expr.Func {
	order := int64(0)
	for _, t := range reactants {
		order += t.Count
	}
	scale := k * math.Pow(volume, float64(1-order))

	return func(pop []int64) float64 {
		a := scale
		for _, t := range reactants {
			p := pop[t.Species]
			if p < t.Count {
				return 0
			}
			a *= Binomial(p, t.Count)
		}
		return a
	}
}

// Binomial returns C(n, k) as a float64, zero when n < k.
func Binomial(n, k int64) float64 {
	if k < 0 || n < k {
		return 0
	}
	if n-k < k {
		k = n - k
	}
	// c holds C(n, j) exactly; C(n, j)*(n-j) is always divisible by j+1.
	c := uint64(1)
	for j := int64(0); j < k; j++ {
		hi, lo := bits.Mul64(c, uint64(n-j))
		if hi != 0 {
			return binomialFloat(float64(c), n, j, k)
		}
		c = lo / uint64(j+1)
	}
	return float64(c)
}

// binomialFloat continues C(n, k) from c = C(n, j) once the product no
// longer fits in 64 bits.
func binomialFloat(c float64, n, j, k int64) float64 {
	for ; j < k; j++ {
		c = c * float64(n-j) / float64(j+1)
	}
	return c
}

func (c *Compiled) massActionExpression(rate string, reactants []Term) string {
	parts := []string{rate}
	order := int64(0)
	for _, t := range reactants {
		order += t.Count
		name := c.species[t.Species]
		if t.Count == 1 {
			parts = append(parts, name)
		} else {
			parts = append(parts, fmt.Sprintf("C(%s, %d)", name, t.Count))
		}
	}
	if order != 1 && c.volume != 1 {
		parts = append(parts, strconv.FormatFloat(c.volume, 'g', -1, 64)+"^"+strconv.FormatInt(1-order, 10))
	}
	return strings.Join(parts, " * ")
}
