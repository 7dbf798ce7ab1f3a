package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HarryCaveMan/gillespy/internal/crn"
	"github.com/HarryCaveMan/gillespy/internal/experiment"
	"github.com/HarryCaveMan/gillespy/internal/metrics"
	"github.com/HarryCaveMan/gillespy/internal/optim"
)

// metricFor builds the metric selected by --metric and --species.
func metricFor(c *crn.Compiled, kind, species string, end float64) (metrics.Metric, error) {
	switch kind {
	case "events":
		return metrics.NewMeanEvents(), nil
	case "absorbed":
		return metrics.NewAbsorbed(), nil
	}

	names := c.Species()
	idx, err := speciesIndex("model "+c.Name(), names, species)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", crn.ErrUnknownSymbol, err)
	}
	species = names[idx]

	switch kind {
	case "mean":
		return metrics.NewMeanAt(species, idx, end), nil
	case "var":
		return metrics.NewVarianceAt(species, idx, end), nil
	case "extinct":
		return metrics.NewExtinction(species, idx), nil
	}
	return nil, fmt.Errorf("unknown metric: %s", kind)
}

func sweepParameter(cmd *cobra.Command, args []string) error {
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

	values := sweepValues
	if len(values) == 0 {
		if !cmd.Flags().Changed("from") || !cmd.Flags().Changed("to") {
			return fmt.Errorf("sweep needs --values or --from and --to")
		}
		values = optim.Linspace(sweepFrom, sweepTo, sweepSteps)
	}

	metric, err := metricFor(compiled, metricKind, metricOf, cfg.EndTime)
	if err != nil {
		return err
	}

	search := optim.NewGridSearch([]string{sweepParam}, [][]float64{values})
	if maximize {
		search.Maximize()
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("sweeping %s over %d values of %s\n\n", model.Name(), len(values), sweepParam)
	points, best, err := search.Search(ctx, model, cfg.SimConfig(), metric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", sweepParam, metric.Name())
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%.6g\n", p.Params[sweepParam], p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(field("best "+sweepParam, best.Params[sweepParam]))
	fmt.Println(field(metric.Name(), best.Value))
	return nil
}
