package experiment

import (
	"fmt"
	"sort"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/metrics"
	"github.com/HarryCaveMan/gillespy/internal/models"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

type Registry struct {
	models  map[string]models.Builder
	methods map[string]func() sim.Stepper
}

func NewRegistry() *Registry {
	r := &Registry{
		models:  make(map[string]models.Builder),
		methods: make(map[string]func() sim.Stepper),
	}

	for _, name := range models.Names() {
		r.models[name] = func() (*crn.Model, error) { return models.Lookup(name) }
	}

	r.methods[sim.MethodDirect] = func() sim.Stepper { return sim.NewDirect() }
	r.methods[sim.MethodFirstReaction] = func() sim.Stepper { return sim.NewFirstReaction() }

	return r
}

// RegisterModel adds or replaces a named model builder.
func (r *Registry) RegisterModel(name string, b models.Builder) {
	r.models[name] = b
}

func (r *Registry) GetModel(name string) (*crn.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn()
}

func (r *Registry) GetMethod(name string) (sim.Stepper, error) {
	if name == "" {
		name = sim.MethodDirect
	}
	fn, ok := r.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", sim.ErrUnknownMethod, name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListMethods() []string {
	return sortedKeys(r.methods)
}

// DefaultMetrics is the final mean of every species plus an extinction
// probability per species and event statistics.
func (r *Registry) DefaultMetrics(c *crn.Compiled, end float64) []metrics.Metric {
	species := c.Species()
	ms := metrics.Default(species, end)
	for i, name := range species {
		ms = append(ms, metrics.NewVarianceAt(name, i, end), metrics.NewExtinction(name, i))
	}
	return ms
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
