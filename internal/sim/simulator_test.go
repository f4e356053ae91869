package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/stage"
)

func testConfig() Config {
	return Config{
		Dt:       1.0 / 60,
		Duration: 1.0,
		Seed:     1,
		Bodies:   3,
		Viewport: dots.Size{W: 800, H: 600},
		Zone:     stage.ZoneSpec{H: 120},
	}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(dots.DefaultTuning())

	result, err := sim.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Frames) != 60 {
		t.Errorf("expected 60 frames, got %d", len(result.Frames))
	}
	if result.StepsTaken != 60 {
		t.Errorf("expected 60 steps, got %d", result.StepsTaken)
	}
	if len(result.IDs()) != 3 {
		t.Errorf("expected 3 bodies, got %v", result.IDs())
	}

	first := result.Frames[0]
	if first.Time != 0 {
		t.Errorf("expected first frame at t=0, got %f", first.Time)
	}
	last := result.Frames[len(result.Frames)-1]
	if math.Abs(last.Time-59.0/60) > 1e-6 {
		t.Errorf("expected last frame at t=%f, got %f", 59.0/60, last.Time)
	}

	floor := dots.BoundsFor(dots.Size{W: 800, H: 600}, dots.DefaultTuning()).FloorY
	for _, b := range last.Bodies {
		if b.Pos.Y > floor+b.Radius {
			t.Errorf("body %s below floor: %s", b.ID, b.Pos)
		}
	}
}

func TestSimulatorDeterministic(t *testing.T) {
	cfg := testConfig()
	cfg.Bodies = 5
	a, err := New(dots.DefaultTuning()).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(dots.DefaultTuning()).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}

	fa, fb := a.Frames[len(a.Frames)-1], b.Frames[len(b.Frames)-1]
	for i := range fa.Bodies {
		if fa.Bodies[i] != fb.Bodies[i] {
			t.Errorf("body %d diverged: %+v vs %+v", i, fa.Bodies[i], fb.Bodies[i])
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(dots.DefaultTuning())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -0.1 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"negative bodies", func(c *Config) { c.Bodies = -1 }},
		{"empty viewport", func(c *Config) { c.Viewport = dots.Size{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := sim.Run(context.Background(), cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(time float64, bodies []dots.Body, stats dots.StepStats) {
	t.count++
	t.sum += float64(len(bodies))
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(dots.DefaultTuning())

	metric := &testMetric{}
	sim.AddMetric(metric)

	frames := 0
	sim.AddObserver(ObserverFunc(func(f Frame) { frames++ }))

	result, err := sim.Run(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if v, ok := result.Metrics["test"]; !ok || v != 3 {
		t.Errorf("expected metric 3, got %v", result.Metrics)
	}
	if metric.count != 60 || frames != 60 {
		t.Errorf("expected 60 observations, got %d and %d", metric.count, frames)
	}
}

func TestSimulatorStaggeredSpawn(t *testing.T) {
	cfg := testConfig()
	cfg.Bodies = 4
	cfg.SpawnEvery = 0.25
	cfg.RecordEvery = 10

	result, err := New(dots.DefaultTuning()).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Frames) != 6 {
		t.Errorf("expected 6 recorded frames, got %d", len(result.Frames))
	}
	if n := len(result.Frames[0].Bodies); n != 1 {
		t.Errorf("expected one body at start, got %d", n)
	}
	if len(result.IDs()) != 4 {
		t.Errorf("expected all bodies spawned, got %v", result.IDs())
	}
}

func TestSimulatorValidateState(t *testing.T) {
	tun := dots.DefaultTuning()
	tun.Gravity = math.NaN()
	cfg := testConfig()
	cfg.ValidateState = true

	result, err := New(tun).Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
	var se SimError
	if !errors.As(result.Errors[0], &se) || !errors.Is(result.Errors[0], ErrInvalidState) {
		t.Errorf("expected SimError, got %v", result.Errors[0])
	}
	if result.StepsTaken >= 60 {
		t.Error("expected run to stop early")
	}
}

func TestSimulatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(dots.DefaultTuning()).Run(ctx, testConfig())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Error("expected empty partial result")
	}
}

func TestEnsemble(t *testing.T) {
	cfg := testConfig()
	e := NewEnsemble(dots.DefaultTuning(), 4, 10, func() []Metric { return []Metric{&testMetric{}} })

	results, err := e.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Metrics["test"] != 3 {
			t.Errorf("run %d: expected metric 3, got %f", i, r.Metrics["test"])
		}
	}
	if results[0].Frames[0].Bodies[0].Pos == results[1].Frames[0].Bodies[0].Pos {
		t.Error("expected different seeds to spawn differently")
	}
}
