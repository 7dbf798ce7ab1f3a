package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/HarryCaveMan/gillespy/internal/sim"
)

type ExportTrajectory struct {
	Index     int                `json:"index"`
	Seed      uint64             `json:"seed"`
	Events    int                `json:"events"`
	Absorbed  bool               `json:"absorbed"`
	Truncated bool               `json:"truncated,omitempty"`
	Times     []float64          `json:"times"`
	Series    map[string][]int64 `json:"series"`
}

type ExportData struct {
	Run          *RunMetadata       `json:"run"`
	Trajectories []ExportTrajectory `json:"trajectories"`
}

// ExportJSON writes a run and its trajectories as one JSON document. A
// positive interval resamples every trajectory onto a fixed grid first.
func ExportJSON(w io.Writer, meta *RunMetadata, trajs []*sim.Trajectory, interval float64) error {
	data := ExportData{
		Run:          meta,
		Trajectories: make([]ExportTrajectory, 0, len(trajs)),
	}

	for _, t := range trajs {
		times, states := t.Times, t.States
		if interval > 0 {
			times, states = t.Grid(interval)
		}
		series := make(map[string][]int64, len(t.Species))
		for j, name := range t.Species {
			col := make([]int64, len(states))
			for i, x := range states {
				col[i] = x[j]
			}
			series[name] = col
		}
		data.Trajectories = append(data.Trajectories, ExportTrajectory{
			Index:     t.Index,
			Seed:      t.Seed,
			Events:    t.Events,
			Absorbed:  t.Absorbed,
			Truncated: t.Truncated,
			Times:     times,
			Series:    series,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportGridCSV writes every trajectory resampled at a fixed interval,
// giving each trajectory the same rows.
func ExportGridCSV(out io.Writer, species []string, trajs []*sim.Trajectory, interval float64) error {
	w := csv.NewWriter(out)

	header := append([]string{"trajectory", "time"}, species...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, t := range trajs {
		times, states := t.Grid(interval)
		idx := strconv.Itoa(t.Index)
		for i, x := range states {
			row[0] = idx
			row[1] = strconv.FormatFloat(times[i], 'g', -1, 64)
			for j, v := range x {
				row[2+j] = strconv.FormatInt(v, 10)
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}
