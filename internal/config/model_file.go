package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HarryCaveMan/gillespy/internal/crn"
)

// ModelFile is the YAML form of a reaction network.
type ModelFile struct {
	Name       string          `yaml:"name"`
	Volume     *float64        `yaml:"volume,omitempty"`
	Parameters []ParameterSpec `yaml:"parameters,omitempty"`
	Species    []SpeciesSpec   `yaml:"species"`
	Reactions  []ReactionSpec  `yaml:"reactions"`
}

type ParameterSpec struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

type SpeciesSpec struct {
	Name         string `yaml:"name"`
	InitialValue int64  `yaml:"initial_value"`
}

// ReactionSpec decodes stoichiometry as numbers so that fractional
// coefficients are reported by reaction name instead of as a decode error.
type ReactionSpec struct {
	Name       string             `yaml:"name"`
	Reactants  map[string]float64 `yaml:"reactants,omitempty"`
	Products   map[string]float64 `yaml:"products,omitempty"`
	Rate       string             `yaml:"rate,omitempty"`
	Propensity string             `yaml:"propensity_function,omitempty"`
}

func LoadModelFile(path string) (*ModelFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseModelFile(data)
}

func ParseModelFile(data []byte) (*ModelFile, error) {
	var mf ModelFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parse model file: %w", err)
	}
	return &mf, nil
}

func stoichiometry(reaction string, in map[string]float64) (crn.Stoichiometry, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(crn.Stoichiometry, len(in))
	for species, v := range in {
		if v != math.Trunc(v) || v <= 0 || v > math.MaxInt32 {
			return nil, &crn.ModelError{
				Kind:   "reaction",
				Name:   reaction,
				Err:    crn.ErrInvalidReaction,
				Detail: fmt.Sprintf("coefficient of %q must be a positive integer, got %v", species, v),
			}
		}
		out[species] = int(v)
	}
	return out, nil
}

// Build translates the file into a model and compiles it.
func (mf *ModelFile) Build() (*crn.Model, error) {
	volume := 1.0
	if mf.Volume != nil {
		volume = *mf.Volume
	}
	m, err := crn.NewModel(mf.Name, volume)
	if err != nil {
		return nil, err
	}

	params := make([]*crn.Parameter, 0, len(mf.Parameters))
	for _, ps := range mf.Parameters {
		p, err := crn.NewParameter(ps.Name, ps.Expression)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	if err := m.AddParameter(params...); err != nil {
		return nil, err
	}

	species := make([]*crn.Species, 0, len(mf.Species))
	for _, ss := range mf.Species {
		s, err := crn.NewSpecies(ss.Name, ss.InitialValue)
		if err != nil {
			return nil, err
		}
		species = append(species, s)
	}
	if err := m.AddSpecies(species...); err != nil {
		return nil, err
	}

	reactions := make([]*crn.Reaction, 0, len(mf.Reactions))
	for _, rs := range mf.Reactions {
		reactants, err := stoichiometry(rs.Name, rs.Reactants)
		if err != nil {
			return nil, err
		}
		products, err := stoichiometry(rs.Name, rs.Products)
		if err != nil {
			return nil, err
		}
		r, err := crn.NewReaction(crn.ReactionDef{
			Name:       rs.Name,
			Reactants:  reactants,
			Products:   products,
			Rate:       rs.Rate,
			Propensity: rs.Propensity,
		})
		if err != nil {
			return nil, err
		}
		reactions = append(reactions, r)
	}
	if err := m.AddReaction(reactions...); err != nil {
		return nil, err
	}

	if _, err := m.Compile(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromModel renders m in model file form.
func FromModel(m *crn.Model) *ModelFile {
	volume := m.Volume()
	mf := &ModelFile{Name: m.Name(), Volume: &volume}
	for _, p := range m.Parameters() {
		mf.Parameters = append(mf.Parameters, ParameterSpec{Name: p.Name(), Expression: p.Expression()})
	}
	for _, s := range m.Species() {
		mf.Species = append(mf.Species, SpeciesSpec{Name: s.Name(), InitialValue: s.InitialValue()})
	}
	for _, r := range m.Reactions() {
		mf.Reactions = append(mf.Reactions, ReactionSpec{
			Name:       r.Name(),
			Reactants:  floats(r.Reactants()),
			Products:   floats(r.Products()),
			Rate:       r.Rate(),
			Propensity: r.PropensityFunction(),
		})
	}
	return mf
}

func floats(s crn.Stoichiometry) map[string]float64 {
	if len(s) == 0 {
		return nil
	}
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = float64(v)
	}
	return out
}

func (mf *ModelFile) Marshal() ([]byte, error) {
	return yaml.Marshal(mf)
}
