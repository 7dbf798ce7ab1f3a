package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HarryCaveMan/gillespy/internal/experiment"
	"github.com/HarryCaveMan/gillespy/internal/metrics"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

func benchModel(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	model, err := registry.GetModel(args[0])
	if err != nil {
		return err
	}

	sizes := []int{1, 10, 100}

	fmt.Printf("benchmarking %s to t=%g\n\n", model.Name(), endTime)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tTRAJ\tEVENTS\tTIME\tEVENTS/SEC")

	for _, m := range registry.ListMethods() {
		for _, n := range sizes {
			cfg := sim.Config{
				Trajectories: n,
				EndTime:      endTime,
				Seed:         sim.Seed(42),
				Method:       m,
			}

			result, err := sim.Simulate(context.Background(), model, cfg)
			if err != nil {
				return err
			}

			events := result.TotalEvents()
			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n",
				m, n, events, result.Elapsed, float64(events)/result.Elapsed.Seconds())
		}
	}

	return w.Flush()
}

func compareMethods(cmd *cobra.Command, args []string) error {
	methods := args[1:]
	if len(methods) == 0 {
		methods = sim.Methods()
	}

	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	if cfg.Seed == nil {
		cfg.Seed = sim.Seed(42)
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
	species := compiled.Species()

	fmt.Printf("comparing methods for %s (%d trajectories, t=%g)\n\n", model.Name(), cfg.Trajectories, cfg.EndTime)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := []string{"METHOD"}
	for _, s := range species {
		header = append(header, "MEAN "+s)
	}
	header = append(header, "EVENTS", "TIME")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, m := range methods {
		if _, err := registry.GetMethod(m); err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", m, err)
			continue
		}

		sc := cfg.SimConfig()
		sc.Method = m
		exp := experiment.New(model, sc)
		means := make([]metrics.Metric, len(species))
		for i, s := range species {
			means[i] = metrics.NewMeanAt(s, i, cfg.EndTime)
		}
		exp.Setup(means...)
		exp.Setup(metrics.NewMeanEvents())

		result, err := exp.Run(context.Background())
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", m, err)
			continue
		}

		row := []string{m}
		for _, mean := range means {
			row = append(row, fmt.Sprintf("%.4f", result.Metrics[mean.Name()]))
		}
		row = append(row, fmt.Sprintf("%.1f", result.Metrics["mean_events"]), result.Elapsed.String())
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	return w.Flush()
}
