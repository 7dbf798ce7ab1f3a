package sim

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Simulate runs cfg.Trajectories independent trajectories of m. The model
// must have been compiled and left unchanged since.
func Simulate(ctx context.Context, m *crn.Model, cfg Config) (*Result, error) {
	c, err := m.Compiled()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	return SimulateCompiled(ctx, c, cfg)
}

// SimulateCompiled runs an ensemble over a compiled snapshot. Trajectories
// are spread over a bounded worker pool; trajectory i always uses
// TrajectorySeed(seed, i). The first error cancels the remaining work and is
// returned together with the partial Result.
func SimulateCompiled(ctx context.Context, c *crn.Compiled, cfg Config) (*Result, error) {
	if c == nil {
		return nil, ErrInvalidModel
	}
	if cfg.Trajectories < 1 {
		return nil, configError("trajectory count must be at least 1, got %d", cfg.Trajectories)
	}
	if cfg.Workers < 0 {
		return nil, configError("workers must be non-negative, got %d", cfg.Workers)
	}
	if err := validateRun(cfg); err != nil {
		return nil, err
	}

	method, err := NewStepper(cfg.Method)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	seed := randomSeed()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	result := &Result{
		Model:        c.Name(),
		Method:       method.Name(),
		Seed:         seed,
		EndTime:      cfg.EndTime,
		Species:      c.Species(),
		Trajectories: make([]*Trajectory, cfg.Trajectories),
	}

	s := New(c, method)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < cfg.Trajectories; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			traj, err := s.Run(gctx, i, TrajectorySeed(seed, i), cfg)
			if err != nil {
				return err
			}
			result.Trajectories[i] = traj
			return nil
		})
	}

	err = g.Wait()
	result.Elapsed = time.Since(start)

	if err == nil && len(result.Completed()) < cfg.Trajectories {
		// the loop stopped launching work because ctx was canceled
		err = ctx.Err()
	}
	if err != nil {
		return result, err
	}

	logrus.WithFields(logrus.Fields{
		"model":        result.Model,
		"method":       result.Method,
		"trajectories": cfg.Trajectories,
		"events":       result.TotalEvents(),
		"seed":         seed,
	}).Infof("ensemble finished in %v", result.Elapsed)
	return result, nil
}
