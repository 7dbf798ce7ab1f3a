package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HarryCaveMan/gillespy/internal/storage"
)

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

// output opens --out, or stdout when unset.
func output() (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(context.Background(), storage.ListOptions{Model: filterModel, Limit: limit})
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tMETHOD\tTRAJ\tEND\tEVENTS\tSEED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%g\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Method,
			run.Trajectories,
			run.EndTime,
			run.Events,
			run.Seed,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(meta.ID))
	fmt.Fprintln(&b, field("model", meta.Model))
	fmt.Fprintln(&b, field("method", meta.Method))
	fmt.Fprintln(&b, field("created", meta.Timestamp.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintln(&b, field("seed", meta.Seed))
	fmt.Fprintln(&b, field("end time", meta.EndTime))
	if meta.MaxEvents > 0 {
		fmt.Fprintln(&b, field("max events", meta.MaxEvents))
	}
	fmt.Fprintln(&b, field("trajectories", meta.Trajectories))
	fmt.Fprintln(&b, field("events", meta.Events))
	fmt.Fprintln(&b, field("elapsed", meta.Elapsed))
	fmt.Fprintln(&b, field("species", strings.Join(meta.Species, ", ")))

	absorbed, truncated := 0, 0
	firings := make([]int64, len(meta.Reactions))
	for _, s := range meta.Summaries {
		if s.Absorbed {
			absorbed++
		}
		if s.Truncated {
			truncated++
		}
		for i := range firings {
			if i < len(s.Firings) {
				firings[i] += s.Firings[i]
			}
		}
	}
	fmt.Fprintln(&b, field("absorbed", absorbed))
	if truncated > 0 {
		fmt.Fprintln(&b, warnStyle.Render(fmt.Sprintf("%d trajectories truncated by max events", truncated)))
	}

	fmt.Println(panelStyle.Render(strings.TrimRight(b.String(), "\n")))

	if len(meta.Reactions) > 0 {
		fmt.Println(headerStyle.Render("firings"))
		for i, name := range meta.Reactions {
			fmt.Println(field("  "+name, firings[i]))
		}
	}

	fmt.Println(headerStyle.Render("metrics"))
	fmt.Println(metricLines(meta.Metrics))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("no data to export")
	}

	out, err := output()
	if err != nil {
		return err
	}
	defer out.Close()

	if interval > 0 {
		return storage.ExportGridCSV(out, meta.Species, trajs, interval)
	}
	return storage.WriteTrajectoriesCSV(out, meta.Species, trajs)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	trajs, err := st.LoadTrajectories(args[0])
	if err != nil {
		return err
	}

	out, err := output()
	if err != nil {
		return err
	}
	defer out.Close()

	return storage.ExportJSON(out, meta, trajs, interval)
}

func reindexRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	n, err := st.Reindex(ctx)
	if err != nil {
		return err
	}
	total, err := st.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("indexed %d runs, catalog holds %d", n, total)))
	return nil
}

func deleteRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	for _, id := range args {
		if err := st.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Println(okStyle.Render("deleted ") + id)
	}
	return nil
}
