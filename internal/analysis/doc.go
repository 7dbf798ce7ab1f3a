// Package analysis characterizes the time series of stochastic trajectories.
//
// Trajectories are step functions sampled at irregular event times, so every
// function here works on a series first resampled onto a fixed grid with
// [sim.Trajectory.Grid]:
//
//   - [PowerSpectrum]: magnitude spectrum of a zero-padded series
//   - [DominantPeriod]: period of the strongest non-constant frequency
//   - [Autocorrelation]: normalized autocorrelation by lag
//   - [Describe]: mean, standard deviation and range after a burn-in
//
// A noisy oscillator such as the Tyson model shows a clear spectral peak:
//
//	times, states := traj.Grid(0.1)
//	period, ok := analysis.DominantPeriod(analysis.Column(states, 0), 0.1)
package analysis
