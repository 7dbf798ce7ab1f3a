package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HarryCaveMan/gillespy/internal/config"
	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/experiment"
	"github.com/HarryCaveMan/gillespy/internal/storage"
)

// resolveConfig layers defaults, the config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		if cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") {
			if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
				logrus.SetLevel(level)
			}
		}
	}

	if len(args) > 0 {
		cfg.Model = args[0]
		cfg.ModelFile = ""
	}
	flags := cmd.Flags()
	if flags.Changed("model-file") {
		cfg.ModelFile = modelFile
	}
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("trajectories") {
		cfg.Trajectories = trajectories
	}
	if flags.Changed("time") {
		cfg.EndTime = endTime
	}
	if flags.Changed("max-events") {
		cfg.MaxEvents = maxEvents
	}
	if flags.Changed("seed") {
		s := seed
		cfg.Seed = &s
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("interval") {
		cfg.SampleInterval = interval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadModel resolves a model file or a built-in name to a compiled model.
func loadModel(registry *experiment.Registry, cfg *config.Config) (*crn.Model, error) {
	if cfg.ModelFile != "" {
		mf, err := config.LoadModelFile(cfg.ModelFile)
		if err != nil {
			return nil, err
		}
		return mf.Build()
	}
	return registry.GetModel(cfg.Model)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	model, err := loadModel(registry, cfg)
	if err != nil {
		return err
	}
	compiled, err := model.Compiled()
	if err != nil {
		return err
	}

	exp := experiment.New(model, cfg.SimConfig())
	exp.Setup(registry.DefaultMetrics(compiled, cfg.EndTime)...)

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s: %d trajectories with %s\n", model.Name(), cfg.Trajectories, cfg.Method)
	result, err := exp.Run(ctx)
	if err != nil {
		if result != nil {
			fmt.Printf("%d of %d trajectories completed before failure\n", len(result.Completed()), cfg.Trajectories)
		}
		return err
	}

	fmt.Println(field("completed in", result.Elapsed))
	fmt.Println(field("seed", result.Seed))
	fmt.Println(field("events", result.TotalEvents()))

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		defer st.Close()

		reactions := make([]string, 0, compiled.NumReactions())
		for _, r := range compiled.Reactions() {
			reactions = append(reactions, r.Name())
		}
		runID, err := st.Save(ctx, result, reactions, cfg.MaxEvents)
		if err != nil {
			return err
		}
		fmt.Println(field("run id", runID))
	}

	if cfg.SampleInterval > 0 && len(result.Trajectories) > 0 {
		fmt.Println()
		fmt.Println(headerStyle.Render("trajectory 0"))
		times, states := result.Trajectories[0].Grid(cfg.SampleInterval)
		fmt.Printf("%10s  %s\n", "time", strings.Join(result.Species, "  "))
		for i, x := range states {
			cols := make([]string, len(x))
			for j, v := range x {
				cols[j] = fmt.Sprintf("%*d", len(result.Species[j]), v)
			}
			fmt.Printf("%10.4g  %s\n", times[i], strings.Join(cols, "  "))
		}
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("metrics"))
	fmt.Println(metricLines(result.Metrics))
	return nil
}
