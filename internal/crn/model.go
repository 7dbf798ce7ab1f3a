package crn

import "math"

// Model is a mutable reaction network under construction. Collections keep
// insertion order, which fixes species indices and reaction order at compile
// time.
type Model struct {
	name   string
	volume float64

	species    []*Species
	parameters []*Parameter
	reactions  []*Reaction

	speciesIdx   map[string]int
	parameterIdx map[string]int
	reactionIdx  map[string]int

	revision     uint64
	compiled     *Compiled
	everCompiled bool
}

// NewModel returns an empty model. Volume is the system-size factor used by
// mass-action propensities and must be positive and finite.
func NewModel(name string, volume float64) (*Model, error) {
	if volume <= 0 || math.IsNaN(volume) || math.IsInf(volume, 0) {
		return nil, newError("model", name, ErrInvalidModel, "volume must be positive, got %v", volume)
	}
	return &Model{
		name:         name,
		volume:       volume,
		speciesIdx:   make(map[string]int),
		parameterIdx: make(map[string]int),
		reactionIdx:  make(map[string]int),
	}, nil
}

func (m *Model) Name() string      { return m.name }
func (m *Model) Volume() float64   { return m.volume }
func (m *Model) Revision() uint64  { return m.revision }
func (m *Model) NumSpecies() int   { return len(m.species) }
func (m *Model) NumReactions() int { return len(m.reactions) }

// Species returns the registered species in insertion order.
func (m *Model) Species() []*Species { return append([]*Species(nil), m.species...) }

// Parameters returns the registered parameters in insertion order.
func (m *Model) Parameters() []*Parameter { return append([]*Parameter(nil), m.parameters...) }

// Reactions returns the registered reactions in insertion order.
func (m *Model) Reactions() []*Reaction { return append([]*Reaction(nil), m.reactions...) }

// LookupSpecies returns the species registered under name.
func (m *Model) LookupSpecies(name string) (*Species, bool) {
	i, ok := m.speciesIdx[name]
	if !ok {
		return nil, false
	}
	return m.species[i], true
}

// LookupParameter returns the parameter registered under name.
func (m *Model) LookupParameter(name string) (*Parameter, bool) {
	i, ok := m.parameterIdx[name]
	if !ok {
		return nil, false
	}
	return m.parameters[i], true
}

// checkNames rejects batches that collide with existing names or with
// themselves, before anything is registered.
func checkNames(kind string, existing map[string]int, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := existing[name]; ok {
			return newError(kind, name, ErrDuplicateName, "already registered")
		}
		if _, ok := seen[name]; ok {
			return newError(kind, name, ErrDuplicateName, "repeated in batch")
		}
		seen[name] = struct{}{}
	}
	return nil
}

// invalidate drops the compiled snapshot after a structural change.
func (m *Model) invalidate() {
	m.revision++
	m.compiled = nil
}

// AddSpecies registers one or more species. The batch is all-or-nothing.
func (m *Model) AddSpecies(species ...*Species) error {
	names := make([]string, len(species))
	for i, s := range species {
		if s == nil {
			return newError("species", "", ErrInvalidSpecies, "nil species at batch position %d", i)
		}
		names[i] = s.name
	}
	if err := checkNames("species", m.speciesIdx, names); err != nil {
		return err
	}
	for _, s := range species {
		m.speciesIdx[s.name] = len(m.species)
		m.species = append(m.species, s)
	}
	m.invalidate()
	return nil
}

// AddParameter registers one or more parameters. The batch is all-or-nothing.
func (m *Model) AddParameter(params ...*Parameter) error {
	names := make([]string, len(params))
	for i, p := range params {
		if p == nil {
			return newError("parameter", "", ErrInvalidParameter, "nil parameter at batch position %d", i)
		}
		names[i] = p.name
	}
	if err := checkNames("parameter", m.parameterIdx, names); err != nil {
		return err
	}
	for _, p := range params {
		m.parameterIdx[p.name] = len(m.parameters)
		m.parameters = append(m.parameters, p)
	}
	m.invalidate()
	return nil
}

// AddReaction registers one or more reactions. The batch is all-or-nothing.
func (m *Model) AddReaction(reactions ...*Reaction) error {
	names := make([]string, len(reactions))
	for i, r := range reactions {
		if r == nil {
			return newError("reaction", "", ErrInvalidReaction, "nil reaction at batch position %d", i)
		}
		names[i] = r.name
	}
	if err := checkNames("reaction", m.reactionIdx, names); err != nil {
		return err
	}
	for _, r := range reactions {
		m.reactionIdx[r.name] = len(m.reactions)
		m.reactions = append(m.reactions, r)
	}
	m.invalidate()
	return nil
}

// SetParameter replaces the expression of an existing parameter, as used by
// parameter sweeps. The compiled snapshot is invalidated.
func (m *Model) SetParameter(p *Parameter) error {
	if p == nil {
		return newError("parameter", "", ErrInvalidParameter, "nil parameter")
	}
	i, ok := m.parameterIdx[p.name]
	if !ok {
		return newError("parameter", p.name, ErrUnresolvedParameter, "not registered")
	}
	m.parameters[i] = p
	m.invalidate()
	return nil
}

// Compiled returns the snapshot from the last Compile. It fails with
// ErrNotCompiled if Compile never succeeded and ErrStaleModel if the model
// changed since.
func (m *Model) Compiled() (*Compiled, error) {
	if m.compiled != nil {
		return m.compiled, nil
	}
	if !m.everCompiled {
		return nil, ErrNotCompiled
	}
	return nil, ErrStaleModel
}
