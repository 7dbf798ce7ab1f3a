package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/HarryCaveMan/gillespy/internal/models"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

func sine(n int, dt, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 10 + 3*math.Sin(2*math.Pi*float64(i)*dt/period)
	}
	return out
}

func TestFFTPadsToPowerOfTwo(t *testing.T) {
	if got := len(FFT(make([]float64, 100))); got != 128 {
		t.Errorf("expected 128 bins, got %d", got)
	}
}

func TestDominantPeriod(t *testing.T) {
	data := sine(1024, 0.1, 6.4)
	period, ok := DominantPeriod(data, 0.1)
	if !ok {
		t.Fatal("expected a period")
	}
	if math.Abs(period-6.4) > 0.1 {
		t.Errorf("expected period 6.4, got %f", period)
	}
}

func TestDominantPeriodConstant(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 5
	}
	if _, ok := DominantPeriod(data, 1); ok {
		t.Error("constant series should have no period")
	}
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{100, 100, 1, 2, 3, 4}, 0.34)
	if s.Mean != 2.5 {
		t.Errorf("expected mean 2.5, got %f", s.Mean)
	}
	if s.Min != 1 || s.Max != 4 {
		t.Errorf("unexpected range %f..%f", s.Min, s.Max)
	}
	if math.Abs(s.StdDev-math.Sqrt(5.0/3)) > 1e-12 {
		t.Errorf("unexpected stddev %f", s.StdDev)
	}

	if !math.IsNaN(Describe(nil, 0).Mean) {
		t.Error("expected NaN mean for empty series")
	}
}

func TestAutocorrelation(t *testing.T) {
	acf := Autocorrelation(sine(400, 0.1, 4), 40)
	if acf[0] != 1 {
		t.Errorf("lag 0 should be 1, got %f", acf[0])
	}
	// half a period out of phase
	if acf[20] > -0.8 {
		t.Errorf("expected strong anticorrelation at half period, got %f", acf[20])
	}
	if Autocorrelation([]float64{2, 2, 2}, 2) != nil {
		t.Error("constant series should give nil")
	}
}

func TestColumnFromTrajectory(t *testing.T) {
	m, err := models.NewTyson()
	if err != nil {
		t.Fatal(err)
	}
	cfg := sim.DefaultConfig()
	cfg.EndTime = 20
	cfg.Seed = sim.Seed(1)

	res, err := sim.Simulate(context.Background(), m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	times, states := res.Trajectories[0].Grid(0.5)
	col := Column(states, 1)
	if len(col) != len(times) || len(col) != 41 {
		t.Fatalf("expected 41 samples, got %d", len(col))
	}
	if col[0] != 127 {
		t.Errorf("expected initial Y 127, got %f", col[0])
	}
}
