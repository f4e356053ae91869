package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/sim"
)

func testRun(t *testing.T) (sim.Config, *sim.Result) {
	t.Helper()
	cfg := sim.Config{
		Dt:       1.0 / 60,
		Duration: 0.5,
		Seed:     42,
		Bodies:   2,
		Viewport: dots.Size{W: 800, H: 600},
	}
	result, err := sim.New(dots.DefaultTuning()).Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	result.Metrics["energy"] = 1.5
	return cfg, result
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := testRun(t)
	runID, err := st.Save("default", cfg, dots.DefaultTuning(), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Preset != "default" {
		t.Errorf("expected preset 'default', got '%s'", meta.Preset)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Metrics["energy"] != 1.5 {
		t.Errorf("expected energy 1.5, got %f", meta.Metrics["energy"])
	}
	if meta.FloorY != 445 || meta.Radius != 45 {
		t.Errorf("unexpected geometry %f %f", meta.FloorY, meta.Radius)
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != len(result.Frames) {
		t.Fatalf("expected %d frames, got %d", len(result.Frames), len(frames))
	}

	want := result.Frames[len(result.Frames)-1]
	got := frames[len(frames)-1]
	if got.Step != want.Step || len(got.Bodies) != 2 {
		t.Fatalf("unexpected last frame %+v", got)
	}
	for i := range want.Bodies {
		w, g := want.Bodies[i], got.Bodies[i]
		if g.ID != w.ID || math.Abs(g.Pos.Y-w.Pos.Y) > 1e-5 || math.Abs(g.Vel.X-w.Vel.X) > 1e-5 {
			t.Errorf("body %d: expected %+v, got %+v", i, w, g)
		}
		if g.Radius != 45 {
			t.Errorf("expected radius from metadata, got %f", g.Radius)
		}
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, result := testRun(t)
	if _, err := st.Save("a", cfg, dots.DefaultTuning(), result); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save("b", cfg, dots.DefaultTuning(), result); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Preset != "b" {
		t.Errorf("expected newest run first, got %s", runs[0].Preset)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v %v", runs, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, result := testRun(t)
	runID, err := st.Save("test", cfg, dots.DefaultTuning(), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	metaPath := filepath.Join(runDir, "metadata.json")
	csvPath := filepath.Join(runDir, "frames.csv")

	if _, err := os.Stat(metaPath); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}

	if _, err := os.Stat(csvPath); os.IsNotExist(err) {
		t.Error("frames.csv not created")
	}
}

func TestWriteJSON(t *testing.T) {
	cfg, result := testRun(t)
	meta := RunMetadata{ID: "x", Seed: cfg.Seed}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, meta, result.Frames); err != nil {
		t.Fatal(err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatal(err)
	}
	if data.Run.ID != "x" || len(data.Frames) != len(result.Frames) {
		t.Errorf("unexpected export %+v", data.Run)
	}
	if len(data.Frames[0].Bodies) != 2 || data.Frames[0].Bodies[0].ID != "d000" {
		t.Errorf("unexpected first frame %+v", data.Frames[0])
	}
}
