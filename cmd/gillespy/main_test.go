package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/models"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

func emptyModel(t *testing.T) *crn.Compiled {
	t.Helper()
	m, err := crn.NewModel("empty", 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddParameter(crn.NewValueParameter("k", 1)); err != nil {
		t.Fatal(err)
	}
	c, err := m.Compile()
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestMetricForModelWithoutSpecies(t *testing.T) {
	c := emptyModel(t)

	for _, kind := range []string{"mean", "var", "extinct"} {
		_, err := metricFor(c, kind, "", 1)
		if !errors.Is(err, crn.ErrUnknownSymbol) {
			t.Errorf("%s: expected ErrUnknownSymbol, got %v", kind, err)
		}
	}

	// species-independent metrics still work
	if _, err := metricFor(c, "events", "", 1); err != nil {
		t.Errorf("events: %v", err)
	}
}

func TestMetricForSpecies(t *testing.T) {
	m, err := models.NewDimerization()
	if err != nil {
		t.Fatal(err)
	}
	c, _ := m.Compiled()

	tests := []struct {
		kind, species, name string
	}{
		{"mean", "", "mean_Monomer@5"},
		{"var", "Dimer", "var_Dimer@5"},
		{"extinct", "Dimer", "extinct_Dimer"},
		{"absorbed", "", "absorbed"},
	}
	for _, tt := range tests {
		metric, err := metricFor(c, tt.kind, tt.species, 5)
		if err != nil {
			t.Errorf("%s/%s: %v", tt.kind, tt.species, err)
			continue
		}
		if metric.Name() != tt.name {
			t.Errorf("expected %s, got %s", tt.name, metric.Name())
		}
	}

	if _, err := metricFor(c, "mean", "Trimer", 5); err == nil {
		t.Error("expected error for unknown species")
	}
	if _, err := metricFor(c, "median", "", 5); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestSpeciesIndex(t *testing.T) {
	if _, err := speciesIndex("run r1", nil, ""); err == nil || !strings.Contains(err.Error(), "no species") {
		t.Errorf("expected no species error, got %v", err)
	}

	i, err := speciesIndex("run r1", []string{"X", "Y"}, "Y")
	if err != nil || i != 1 {
		t.Errorf("expected index 1, got %d (%v)", i, err)
	}
	i, err = speciesIndex("run r1", []string{"X", "Y"}, "")
	if err != nil || i != 0 {
		t.Errorf("expected default index 0, got %d (%v)", i, err)
	}
}

func TestWriteAnalysis(t *testing.T) {
	m, err := models.NewTyson()
	if err != nil {
		t.Fatal(err)
	}
	cfg := sim.DefaultConfig()
	cfg.Trajectories = 2
	cfg.EndTime = 20
	cfg.Seed = sim.Seed(9)

	res, err := sim.Simulate(context.Background(), m, cfg)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeAnalysis(&buf, res.Trajectories, 1, 0.1, 0.1); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "ACF(1)") {
		t.Errorf("missing ACF column in header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0 ") || !strings.HasPrefix(lines[2], "1 ") {
		t.Errorf("unexpected rows:\n%s", buf.String())
	}
}
