package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/HarryCaveMan/gillespy/internal/sim"
)

const (
	DefaultModel        = "decay"
	DefaultTrajectories = 1
	DefaultEndTime      = 10.0
	DefaultLogLevel     = "info"
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Model          string  `yaml:"model"`
	ModelFile      string  `yaml:"model_file,omitempty"`
	Method         string  `yaml:"method"`
	Trajectories   int     `yaml:"trajectories"`
	EndTime        float64 `yaml:"end_time"`
	MaxEvents      int     `yaml:"max_events,omitempty"`
	Seed           *int64  `yaml:"seed,omitempty"`
	Workers        int     `yaml:"workers,omitempty"`
	SampleInterval float64 `yaml:"sample_interval,omitempty"`
	LogLevel       string  `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:        DefaultModel,
		Method:       sim.MethodDirect,
		Trajectories: DefaultTrajectories,
		EndTime:      DefaultEndTime,
		LogLevel:     DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that do not depend on the model.
func (c *Config) Validate() error {
	switch {
	case c.Model == "" && c.ModelFile == "":
		return fmt.Errorf("%w: one of model or model_file is required", ErrInvalidConfig)
	case c.Trajectories < 1:
		return fmt.Errorf("%w: trajectories must be at least 1, got %d", ErrInvalidConfig, c.Trajectories)
	case !(c.EndTime > 0) || math.IsInf(c.EndTime, 0):
		return fmt.Errorf("%w: end_time must be positive and finite, got %v", ErrInvalidConfig, c.EndTime)
	case c.MaxEvents < 0:
		return fmt.Errorf("%w: max_events must not be negative", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	case c.SampleInterval < 0 || math.IsNaN(c.SampleInterval):
		return fmt.Errorf("%w: sample_interval must not be negative", ErrInvalidConfig)
	}
	if _, err := sim.NewStepper(c.Method); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// SimConfig is the engine configuration described by c.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Trajectories: c.Trajectories,
		EndTime:      c.EndTime,
		MaxEvents:    c.MaxEvents,
		Seed:         c.Seed,
		Workers:      c.Workers,
		Method:       c.Method,
	}
}
