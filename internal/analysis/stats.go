package analysis

import (
	"math"

	"github.com/HarryCaveMan/gillespy/internal/sim"
)

// Column extracts one species from grid states as float64.
func Column(states []sim.State, species int) []float64 {
	out := make([]float64, len(states))
	for i, x := range states {
		out[i] = float64(x[species])
	}
	return out
}

type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Describe summarizes data after dropping the first burnIn fraction of
// samples.
func Describe(data []float64, burnIn float64) Summary {
	start := int(math.Floor(burnIn * float64(len(data))))
	if start >= len(data) {
		return Summary{Mean: math.NaN(), StdDev: math.NaN(), Min: math.NaN(), Max: math.NaN()}
	}
	data = data[start:]

	s := Summary{Min: data[0], Max: data[0]}
	for _, v := range data {
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean /= float64(len(data))

	for _, v := range data {
		d := v - s.Mean
		s.StdDev += d * d
	}
	if len(data) > 1 {
		s.StdDev = math.Sqrt(s.StdDev / float64(len(data)-1))
	} else {
		s.StdDev = 0
	}
	return s
}

// Autocorrelation returns the normalized autocorrelation for lags
// 0..maxLag. A constant series yields nil.
func Autocorrelation(data []float64, maxLag int) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range data {
		variance += (v - mean) * (v - mean)
	}
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		for i := 0; i+lag < n; i++ {
			sum += (data[i] - mean) * (data[i+lag] - mean)
		}
		acf[lag] = sum / variance
	}
	return acf
}
