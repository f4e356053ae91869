package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Bodies    int                `json:"bodies"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Radius    float64            `json:"radius"`
	Gravity   float64            `json:"gravity"`
	FloorY    float64            `json:"floor_y"`
	Steps     int                `json:"steps"`
	Totals    sim.Totals         `json:"totals"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(preset string, cfg sim.Config, t dots.Tuning, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", preset, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: now,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Bodies:    cfg.Bodies,
		Width:     cfg.Viewport.W,
		Height:    cfg.Viewport.H,
		Radius:    t.Radius,
		Gravity:   t.Gravity,
		FloorY:    dots.BoundsFor(cfg.Viewport, t).FloorY,
		Steps:     result.StepsTaken,
		Totals:    result.Totals,
		Metrics:   result.Metrics,
	}

	metaPath := filepath.Join(runDir, "metadata.json")
	metaFile, err := os.Create(metaPath)
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvPath := filepath.Join(runDir, "frames.csv")
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"step", "time", "id", "x", "y", "vx", "vy"}); err != nil {
		return "", err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	for _, f := range result.Frames {
		for _, b := range f.Bodies {
			row := []string{
				strconv.Itoa(f.Step),
				format(f.Time),
				string(b.ID),
				format(b.Pos.X), format(b.Pos.Y),
				format(b.Vel.X), format(b.Vel.Y),
			}
			if err := w.Write(row); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return runID, nil
}

// List returns the stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
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
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads frames.csv back into frames. Bodies keep the order in
// which they were written.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	csvPath := filepath.Join(s.baseDir, runID, "frames.csv")
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 7

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	for i := 1; i < len(records); i++ {
		record := records[i]

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("frames.csv line %d: %w", i+1, err)
		}
		vals := make([]float64, 5)
		for j, field := range []string{record[1], record[3], record[4], record[5], record[6]} {
			if vals[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("frames.csv line %d: %w", i+1, err)
			}
		}

		if len(frames) == 0 || frames[len(frames)-1].Step != step {
			frames = append(frames, sim.Frame{Step: step, Time: vals[0]})
		}
		f := &frames[len(frames)-1]
		f.Bodies = append(f.Bodies, dots.Body{
			ID:     dots.ID(record[2]),
			Pos:    dots.Vec{X: vals[1], Y: vals[2]},
			Vel:    dots.Vec{X: vals[3], Y: vals[4]},
			Radius: meta.Radius,
		})
	}

	return frames, nil
}
