package sim

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"time"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/stage"
)

// Simulator runs the real engine headless: bodies are created through
// Engine.Create and frames are delivered by a Runloop pumped at a fixed
// interval, so a run goes through the same scheduler and dt clamping as
// the interactive front-ends.
type Simulator struct {
	tuning    dots.Tuning
	metrics   []Metric
	observers []Observer
	log       *log.Logger
}

func New(t dots.Tuning) *Simulator {
	return &Simulator{
		tuning:    t,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log.New(io.Discard, "", 0),
	}
}

func (s *Simulator) AddMetric(m Metric)      { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer)  { s.observers = append(s.observers, o) }
func (s *Simulator) SetLogger(l *log.Logger) { s.log = l }

func (s *Simulator) Tuning() dots.Tuning { return s.tuning }

type run struct {
	s      *Simulator
	cfg    Config
	result *Result
	pool   *SnapshotPool
	steps  int
	failed error
}

func (r *run) OnStep(t float64, bodies []*dots.Body, stats dots.StepStats) {
	snapshot := r.pool.GetAndCopy(bodies)
	step := r.steps
	r.steps++
	r.result.StepsTaken++
	r.result.Totals.add(stats)

	if r.cfg.ValidateState && r.failed == nil {
		for _, b := range snapshot {
			if !b.IsValid() {
				r.failed = SimError{Time: t, Step: step, ID: b.ID, Message: "invalid state (NaN/Inf)"}
				return
			}
		}
	}

	for _, m := range r.s.metrics {
		m.Observe(t, snapshot, stats)
	}

	f := Frame{Step: step, Time: t, Bodies: snapshot, Stats: stats}
	for _, o := range r.s.observers {
		o.OnFrame(f)
	}
	if every := r.cfg.RecordEvery; every <= 1 || step%every == 0 {
		r.result.Frames = append(r.result.Frames, f)
		return
	}
	r.pool.Put(snapshot)
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Frames:  make([]Frame, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	r := &run{s: s, cfg: cfg, result: result, pool: NewSnapshotPool()}
	loop := dots.NewRunloop()
	st := stage.New(cfg.Viewport, 2*s.tuning.Radius)
	st.SetDropZone(cfg.Zone)
	eng := dots.New(s.tuning, loop, st,
		dots.WithSeed(cfg.Seed),
		dots.WithObserver(r),
		dots.WithLogger(s.log),
	)
	defer eng.Shutdown()

	spawned := 0
	spawn := func(now float64) error {
		for spawned < cfg.Bodies {
			if cfg.SpawnEvery > 0 && float64(spawned)*cfg.SpawnEvery > now+1e-9 {
				return nil
			}
			id := dots.ID(fmt.Sprintf("d%03d", spawned))
			if _, err := eng.Create(fmt.Sprintf("dot %d", spawned), id); err != nil {
				return err
			}
			spawned++
		}
		return nil
	}

	if err := spawn(0); err != nil {
		return nil, err
	}
	s.log.Printf("run: %d bodies, %d steps of %.4fs", cfg.Bodies, steps, cfg.Dt)

	interval := time.Duration(cfg.Dt * float64(time.Second))
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := spawn(float64(i) * cfg.Dt); err != nil {
			return nil, err
		}
		loop.Advance(interval)

		if r.failed != nil {
			result.Errors = append(result.Errors, r.failed)
			break
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Bodies < 0 {
		return fmt.Errorf("body count must not be negative, got %d", cfg.Bodies)
	}
	if cfg.Viewport.W <= 0 || cfg.Viewport.H <= 0 {
		return fmt.Errorf("viewport must be positive, got %gx%g", cfg.Viewport.W, cfg.Viewport.H)
	}
	return s.tuning.Validate()
}
