package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	configFile   string
	modelFile    string
	method       string
	trajectories int
	endTime      float64
	maxEvents    int
	seed         int64
	workers      int
	interval     float64
	noSave       bool

	filterModel string
	limit       int
	outPath     string

	sweepParam  string
	sweepValues []float64
	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
	metricKind  string
	metricOf    string
	maximize    bool
	burnIn      float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "gillespy",
		Short:         "stochastic simulation of chemical reaction networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			logrus.SetLevel(level)
			logrus.SetOutput(os.Stderr)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gillespy", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "simulate an ensemble of trajectories",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().Float64Var(&interval, "interval", 0, "sample interval for the summary table")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&filterModel, "model", "", "only runs of this model")
	listCmd.Flags().IntVar(&limit, "limit", 0, "maximum runs to show")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata and metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectories as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().Float64Var(&interval, "interval", 0, "resample onto a fixed time grid")
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().Float64Var(&interval, "interval", 0, "resample onto a fixed time grid")
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the run catalog from the data directory",
		Args:  cobra.NoArgs,
		RunE:  reindexRuns,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [run_id...]",
		Short: "remove stored runs",
		Args:  cobra.MinimumNArgs(1),
		RunE:  deleteRuns,
	}

	modelsCmd := &cobra.Command{
		Use:   "models [model]",
		Short: "list built-in models, or print one as a model file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listModels,
	}

	validateCmd := &cobra.Command{
		Use:   "validate [model_file]",
		Short: "compile a model file and report its resolved parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  validateModel,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "evaluate a metric across values of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepParameter,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "", "parameter to vary")
	sweepCmd.Flags().Float64SliceVar(&sweepValues, "values", nil, "explicit parameter values")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "first value of an evenly spaced range")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0, "last value of an evenly spaced range")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values in the range")
	sweepCmd.Flags().StringVar(&metricKind, "metric", "mean", "metric (mean, var, extinct, events, absorbed)")
	sweepCmd.Flags().StringVar(&metricOf, "species", "", "species for population metrics (default first)")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "prefer larger metric values")
	_ = sweepCmd.MarkFlagRequired("param")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "measure event throughput per method",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}
	benchCmd.Flags().Float64Var(&endTime, "time", 10, "end time")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [method...]",
		Short: "run the same ensemble with several methods",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	addRunFlags(compareCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "stationary statistics and dominant period per trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&metricOf, "species", "", "species to analyze (default first)")
	analyzeCmd.Flags().Float64Var(&interval, "interval", 0, "grid step (default end time / 1024)")
	analyzeCmd.Flags().Float64Var(&burnIn, "burn-in", 0.1, "fraction of samples dropped before statistics")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd, reindexCmd, deleteCmd,
		modelsCmd, validateCmd, sweepCmd, benchCmd, compareCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&modelFile, "model-file", "", "model file path (yaml)")
	cmd.Flags().StringVar(&method, "method", "direct", "ssa method (direct, first-reaction)")
	cmd.Flags().IntVarP(&trajectories, "trajectories", "n", 1, "number of trajectories")
	cmd.Flags().Float64Var(&endTime, "time", 10, "end time")
	cmd.Flags().IntVar(&maxEvents, "max-events", 0, "events per trajectory before truncation (0 = unbounded)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "run seed (drawn when unset)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent trajectories (0 = GOMAXPROCS)")
}
