package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HarryCaveMan/gillespy/internal/analysis"
	"github.com/HarryCaveMan/gillespy/internal/sim"
	"github.com/HarryCaveMan/gillespy/internal/storage"
)

// speciesIndex resolves want among names; empty selects the first species.
func speciesIndex(owner string, names []string, want string) (int, error) {
	if len(names) == 0 {
		return 0, fmt.Errorf("%s has no species", owner)
	}
	if want == "" {
		return 0, nil
	}
	for i, name := range names {
		if name == want {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s has no species %s", owner, want)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	trajs, err := st.LoadTrajectories(args[0])
	if err != nil {
		return err
	}
	if len(trajs) == 0 {
		return fmt.Errorf("no data")
	}

	species, err := speciesIndex("run "+meta.ID, meta.Species, metricOf)
	if err != nil {
		return err
	}

	dt := interval
	if dt <= 0 {
		dt = meta.EndTime / 1024
	}

	fmt.Println(titleStyle.Render("analysis: " + meta.ID))
	fmt.Println(field("species", meta.Species[species]))
	fmt.Println(field("grid step", dt))
	fmt.Println()

	return writeAnalysis(os.Stdout, trajs, species, dt, burnIn)
}

// writeAnalysis prints one row of statistics per trajectory.
func writeAnalysis(out io.Writer, trajs []*sim.Trajectory, species int, dt, burnIn float64) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRAJ\tMEAN\tSTDDEV\tMIN\tMAX\tACF(1)\tPERIOD")
	for _, t := range trajs {
		_, states := t.Grid(dt)
		col := analysis.Column(states, species)
		s := analysis.Describe(col, burnIn)

		acf1 := "-"
		if acf := analysis.Autocorrelation(col, 1); len(acf) > 1 {
			acf1 = fmt.Sprintf("%.3f", acf[1])
		}
		period := "-"
		if p, ok := analysis.DominantPeriod(col, dt); ok {
			period = fmt.Sprintf("%.3f", p)
		}
		fmt.Fprintf(w, "%d\t%.3f\t%.3f\t%g\t%g\t%s\t%s\n", t.Index, s.Mean, s.StdDev, s.Min, s.Max, acf1, period)
	}
	return w.Flush()
}
