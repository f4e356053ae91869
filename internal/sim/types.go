package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/stage"
)

var ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

type Metric interface {
	Name() string
	Observe(t float64, bodies []dots.Body, stats dots.StepStats)
	Value() float64
	Reset()
}

// Observer sees every frame. Bodies of frames dropped by RecordEvery are
// recycled once OnFrame returns, so observers copy what they keep.
type Observer interface {
	OnFrame(f Frame)
}

type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64
	Bodies   int
	Viewport dots.Size
	Zone     stage.ZoneSpec

	// SpawnEvery staggers creation: body k is created at k*SpawnEvery
	// seconds. Zero creates every body before the first frame.
	SpawnEvery float64

	// RecordEvery keeps one frame in n. Zero or one keeps all of them.
	RecordEvery int

	ValidateState bool
}

// Frame is a snapshot taken after one engine step.
type Frame struct {
	Step   int
	Time   float64
	Bodies []dots.Body
	Stats  dots.StepStats
}

// Find returns the state of one body in the frame.
func (f Frame) Find(id dots.ID) (dots.Body, bool) {
	for _, b := range f.Bodies {
		if b.ID == id {
			return b, true
		}
	}
	return dots.Body{}, false
}

type Totals struct {
	WallHits  int
	FloorHits int
	Contacts  int
	MaxImpact float64
}

func (t *Totals) add(s dots.StepStats) {
	t.WallHits += s.WallHits
	t.FloorHits += s.FloorHits
	t.Contacts += s.Contacts
	if s.MaxImpact > t.MaxImpact {
		t.MaxImpact = s.MaxImpact
	}
}

type Result struct {
	Frames     []Frame
	Metrics    map[string]float64
	Totals     Totals
	StepsTaken int
	Errors     []error
}

// IDs lists the bodies of the last recorded frame in registry order.
func (r *Result) IDs() []dots.ID {
	if len(r.Frames) == 0 {
		return nil
	}
	last := r.Frames[len(r.Frames)-1]
	ids := make([]dots.ID, len(last.Bodies))
	for i, b := range last.Bodies {
		ids[i] = b.ID
	}
	return ids
}

// SimError reports an invalid body state found during validation.
type SimError struct {
	Time    float64
	Step    int
	ID      dots.ID
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("sim error at t=%.4f (step %d, body %s): %s", e.Time, e.Step, e.ID, e.Message)
}

func (e SimError) Unwrap() error { return ErrInvalidState }
