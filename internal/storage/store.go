package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HarryCaveMan/gillespy/internal/experiment"
	"github.com/HarryCaveMan/gillespy/internal/sim"
)

const (
	metadataFile     = "metadata.json"
	trajectoriesFile = "trajectories.csv"
	catalogFile      = "catalog.db"
)

var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir, indexed by a SQLite
// catalog.
type Store struct {
	baseDir string
	catalog *Catalog
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	c, err := OpenCatalog(filepath.Join(s.baseDir, catalogFile))
	if err != nil {
		return err
	}
	s.catalog = c
	return nil
}

func (s *Store) Close() error {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Close()
}

// TrajectorySummary is the per-trajectory bookkeeping kept in metadata.
type TrajectorySummary struct {
	Index      int     `json:"index"`
	Seed       uint64  `json:"seed"`
	Events     int     `json:"events"`
	Firings    []int64 `json:"firings"`
	Absorbed   bool    `json:"absorbed"`
	AbsorbedAt float64 `json:"absorbed_at,omitempty"`
	Truncated  bool    `json:"truncated,omitempty"`
}

type RunMetadata struct {
	ID           string              `json:"id"`
	Model        string              `json:"model"`
	Method       string              `json:"method"`
	Timestamp    time.Time           `json:"timestamp"`
	Seed         int64               `json:"seed"`
	EndTime      float64             `json:"end_time"`
	MaxEvents    int                 `json:"max_events,omitempty"`
	Trajectories int                 `json:"trajectories"`
	Events       int                 `json:"events"`
	Species      []string            `json:"species"`
	Reactions    []string            `json:"reactions"`
	Elapsed      time.Duration       `json:"elapsed_ns"`
	Metrics      map[string]float64  `json:"metrics"`
	Summaries    []TrajectorySummary `json:"summaries,omitempty"`
}

func newMetadata(res *experiment.Result, maxEvents int) *RunMetadata {
	meta := &RunMetadata{
		ID:        res.Model + "_" + uuid.NewString()[:8],
		Model:     res.Model,
		Method:    res.Method,
		Timestamp: time.Now(),
		Seed:      res.Seed,
		EndTime:   res.EndTime,
		MaxEvents: maxEvents,
		Events:    res.TotalEvents(),
		Species:   res.Species,
		Elapsed:   res.Elapsed,
		Metrics:   res.Metrics,
	}
	for _, t := range res.Completed() {
		meta.Summaries = append(meta.Summaries, TrajectorySummary{
			Index:      t.Index,
			Seed:       t.Seed,
			Events:     t.Events,
			Firings:    t.Firings,
			Absorbed:   t.Absorbed,
			AbsorbedAt: t.AbsorbedAt,
			Truncated:  t.Truncated,
		})
	}
	meta.Trajectories = len(meta.Summaries)
	return meta
}

// Save writes metadata.json and trajectories.csv for a finished experiment
// and records it in the catalog. reactions names the model's reactions in
// firing-count order.
func (s *Store) Save(ctx context.Context, res *experiment.Result, reactions []string, maxEvents int) (string, error) {
	meta := newMetadata(res, maxEvents)
	meta.Reactions = reactions

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoriesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTrajectoriesCSV(csvFile, res.Species, res.Completed()); err != nil {
		return "", err
	}

	if s.catalog != nil {
		if err := s.catalog.Put(ctx, meta); err != nil {
			return "", err
		}
	}

	logrus.WithFields(logrus.Fields{"run": meta.ID, "dir": runDir}).Info("run saved")
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTrajectoriesCSV writes one row per recorded event in long format:
// trajectory, time, then one column per species.
func WriteTrajectoriesCSV(out io.Writer, species []string, trajs []*sim.Trajectory) error {
	w := csv.NewWriter(out)

	header := append([]string{"trajectory", "time"}, species...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, t := range trajs {
		idx := strconv.Itoa(t.Index)
		for i, x := range t.States {
			row[0] = idx
			row[1] = strconv.FormatFloat(t.Times[i], 'g', -1, 64)
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

// List returns stored runs newest first. With a catalog the listing comes
// from SQLite; otherwise run directories are scanned.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]RunMetadata, error) {
	if s.catalog != nil {
		return s.catalog.List(ctx, opts)
	}
	runs, err := s.scan()
	if err != nil {
		return nil, err
	}
	filtered := runs[:0]
	for _, r := range runs {
		if opts.Model == "" || r.Model == opts.Model {
			filtered = append(filtered, r)
		}
	}
	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered, nil
}

func (s *Store) scan() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			logrus.WithError(err).WithField("dir", entry.Name()).Debug("skipping run directory")
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

// Reindex rebuilds the catalog from the run directories on disk.
func (s *Store) Reindex(ctx context.Context) (int, error) {
	if s.catalog == nil {
		return 0, fmt.Errorf("reindex: store not initialised")
	}
	runs, err := s.scan()
	if err != nil {
		return 0, err
	}
	for i := range runs {
		if err := s.catalog.Put(ctx, &runs[i]); err != nil {
			return 0, err
		}
	}
	return len(runs), nil
}

// Delete removes a run directory and its catalog entry.
func (s *Store) Delete(ctx context.Context, runID string) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.baseDir, runID)); err != nil {
		return err
	}
	if s.catalog != nil {
		if err := s.catalog.Delete(ctx, runID); err != nil {
			return fmt.Errorf("catalog delete %s: %w", runID, err)
		}
	}
	logrus.WithField("run", runID).Info("run deleted")
	return nil
}

// Count is the number of runs in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.catalog == nil {
		return 0, fmt.Errorf("count: store not initialised")
	}
	return s.catalog.Count(ctx)
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectories reads a run's trajectories back, restoring the
// bookkeeping kept in its metadata.
func (s *Store) LoadTrajectories(runID string) ([]*sim.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoriesFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	trajs, err := ReadTrajectoriesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	byIndex := make(map[int]TrajectorySummary, len(meta.Summaries))
	for _, sum := range meta.Summaries {
		byIndex[sum.Index] = sum
	}
	for _, t := range trajs {
		sum, ok := byIndex[t.Index]
		if !ok {
			continue
		}
		t.Seed = sum.Seed
		t.Events = sum.Events
		t.Firings = sum.Firings
		t.Absorbed = sum.Absorbed
		t.AbsorbedAt = sum.AbsorbedAt
		t.Truncated = sum.Truncated
	}
	return trajs, nil
}

// ReadTrajectoriesCSV parses the format written by WriteTrajectoriesCSV.
func ReadTrajectoriesCSV(in io.Reader) ([]*sim.Trajectory, error) {
	r := csv.NewReader(in)

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	if len(header) < 2 || header[0] != "trajectory" || header[1] != "time" {
		return nil, fmt.Errorf("unexpected trajectories header %v", header)
	}
	species := append([]string(nil), header[2:]...)

	var (
		trajs []*sim.Trajectory
		cur   *sim.Trajectory
	)
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		idx, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: trajectory: %w", line, err)
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: time: %w", line, err)
		}
		x := make(sim.State, len(species))
		for j := range x {
			x[j], err = strconv.ParseInt(record[2+j], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, species[j], err)
			}
		}

		if cur == nil || cur.Index != idx {
			cur = &sim.Trajectory{Index: idx, Species: species}
			trajs = append(trajs, cur)
		}
		cur.Times = append(cur.Times, t)
		cur.States = append(cur.States, x)
	}
	return trajs, nil
}
