package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/metrics"
	"github.com/HarryCaveMan/gillespy/internal/models"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

func sweepConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Trajectories = 200
	cfg.EndTime = 20
	cfg.Seed = sim.Seed(5)
	return cfg
}

func TestGridSearchBirthRate(t *testing.T) {
	m, err := models.NewBirthDeath(10, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	g := NewGridSearch([]string{"birth"}, [][]float64{{2, 5, 10}})
	points, best, err := g.Search(context.Background(), m, sweepConfig(), metrics.NewMeanAt("X", 0, 20))
	if err != nil {
		t.Fatal(err)
	}

	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if best.Params["birth"] != 2 {
		t.Errorf("expected smallest birth rate to minimize mean, got %v", best.Params)
	}
	for i := 1; i < len(points); i++ {
		if points[i].Value <= points[i-1].Value {
			t.Errorf("expected mean to grow with birth rate: %v", points)
		}
	}

	// original expression restored and recompiled
	c, err := m.Compiled()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := c.Parameter("birth"); v != 10 {
		t.Errorf("expected birth restored to 10, got %v", v)
	}
}

func TestGridSearchMaximizeTwoParameters(t *testing.T) {
	m, err := models.NewBirthDeath(10, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	g := NewGridSearch([]string{"birth", "death"}, [][]float64{{4, 8}, {0.5, 2}}).Maximize()
	points, best, err := g.Search(context.Background(), m, sweepConfig(), metrics.NewMeanAt("X", 0, 20))
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	if best.Params["birth"] != 8 || best.Params["death"] != 0.5 {
		t.Errorf("unexpected best %v", best.Params)
	}
}

func TestGridSearchUnknownParameter(t *testing.T) {
	m, err := models.NewDecay(5, 1)
	if err != nil {
		t.Fatal(err)
	}
	g := NewGridSearch([]string{"nope"}, [][]float64{{1}})
	_, _, err = g.Search(context.Background(), m, sweepConfig(), metrics.NewMeanEvents())
	if !errors.Is(err, crn.ErrUnresolvedParameter) {
		t.Errorf("expected ErrUnresolvedParameter, got %v", err)
	}
}

// The original rate refers to a parameter that does not exist, so the model
// only compiles while the sweep overrides it.
func TestGridSearchReportsRestoreFailure(t *testing.T) {
	m, err := crn.NewModel("decay", 1)
	if err != nil {
		t.Fatal(err)
	}
	x, _ := crn.NewSpecies("X", 10)
	k, err := crn.NewParameter("k", "missing")
	if err != nil {
		t.Fatal(err)
	}
	r, _ := crn.NewMassAction("decay", crn.Stoichiometry{"X": 1}, nil, "k")
	if err := m.AddSpecies(x); err != nil {
		t.Fatal(err)
	}
	if err := m.AddParameter(k); err != nil {
		t.Fatal(err)
	}
	if err := m.AddReaction(r); err != nil {
		t.Fatal(err)
	}

	g := NewGridSearch([]string{"k"}, [][]float64{{0.5, 1}})
	points, _, err := g.Search(context.Background(), m, sweepConfig(), metrics.NewMeanEvents())
	if len(points) != 2 {
		t.Fatalf("expected both points evaluated, got %d", len(points))
	}
	if !errors.Is(err, crn.ErrUnresolvedParameter) {
		t.Errorf("expected restore error wrapping ErrUnresolvedParameter, got %v", err)
	}
	if p, _ := m.LookupParameter("k"); p.Expression() != "missing" {
		t.Errorf("expected original expression restored, got %q", p.Expression())
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if Linspace(0, 1, 0) != nil {
		t.Error("expected nil for n=0")
	}
}
