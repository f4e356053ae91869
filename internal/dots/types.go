package dots

import (
	"fmt"
	"math"
	"time"
)

type ID string

type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(f float64) Vec { return Vec{v.X * f, v.Y * f} }
func (v Vec) Dot(o Vec) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) IsValid() bool       { return isFinite(v.X) && isFinite(v.Y) }
func (v Vec) String() string      { return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y) }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle. Contains is inclusive on every edge.
type Rect struct {
	Min, Max Vec
}

func RectFromSize(topLeft Vec, w, h float64) Rect {
	return Rect{Min: topLeft, Max: Vec{topLeft.X + w, topLeft.Y + h}}
}

func (r Rect) Contains(p Vec) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func (r Rect) Empty() bool { return r.Max.X <= r.Min.X || r.Max.Y <= r.Min.Y }

type Body struct {
	ID     ID
	Label  string
	Pos    Vec
	Vel    Vec
	Radius float64
}

func (b *Body) IsValid() bool { return b.Pos.IsValid() && b.Vel.IsValid() }

func (b *Body) TopLeft() Vec { return b.Pos.Sub(Vec{b.Radius, b.Radius}) }

// Bounds are the center-space limits of the simulation for one frame.
type Bounds struct {
	MinX, MaxX float64
	FloorY     float64
}

func BoundsFor(vp Size, t Tuning) Bounds {
	return Bounds{
		MinX:   t.Radius,
		MaxX:   vp.W - t.Radius,
		FloorY: vp.H - t.FloorMargin - t.Radius,
	}
}

// Fit moves bounds built for radius from so they hold a body of radius to.
func (b Bounds) Fit(from, to float64) Bounds {
	d := to - from
	return Bounds{MinX: b.MinX + d, MaxX: b.MaxX - d, FloorY: b.FloorY - d}
}

// Flag is a presentation toggle on a body's visual element.
type Flag uint8

const (
	FlagDescribed Flag = 1 << iota
)

type Tuning struct {
	Gravity        float64
	Damping        float64
	Friction       float64
	Restitution    float64
	Radius         float64
	FloorMargin    float64
	MaxStep        float64
	SpawnJitterY   float64
	SpawnSpeedX    float64
	LongPress      time.Duration
	CancelDistance float64
}

func DefaultTuning() Tuning {
	return Tuning{
		Gravity:        1800,
		Damping:        0.55,
		Friction:       0.98,
		Restitution:    0.5,
		Radius:         45,
		FloorMargin:    110,
		MaxStep:        0.033,
		SpawnJitterY:   60,
		SpawnSpeedX:    60,
		LongPress:      300 * time.Millisecond,
		CancelDistance: 10,
	}
}

func (t Tuning) Validate() error {
	switch {
	case t.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive, got %f", ErrParameterBounds, t.Radius)
	case t.Damping < 0 || t.Damping > 1:
		return fmt.Errorf("%w: damping must be in [0, 1], got %f", ErrParameterBounds, t.Damping)
	case t.Friction < 0 || t.Friction > 1:
		return fmt.Errorf("%w: friction must be in [0, 1], got %f", ErrParameterBounds, t.Friction)
	case t.Restitution < 0 || t.Restitution > 1:
		return fmt.Errorf("%w: restitution must be in [0, 1], got %f", ErrParameterBounds, t.Restitution)
	case t.MaxStep <= 0:
		return fmt.Errorf("%w: max step must be positive, got %f", ErrParameterBounds, t.MaxStep)
	case t.LongPress <= 0:
		return fmt.Errorf("%w: long press must be positive, got %s", ErrParameterBounds, t.LongPress)
	case t.FloorMargin < 0 || t.SpawnJitterY < 0 || t.SpawnSpeedX < 0 || t.CancelDistance < 0:
		return fmt.Errorf("%w: margins, jitter and distances must not be negative", ErrParameterBounds)
	}
	return nil
}

// Surface is the visual layer: one element per body plus the drop-zone and
// the create control. Implementations read live geometry on every call.
type Surface interface {
	Viewport() Size
	DropZone() (Rect, bool)

	Spawn(id ID, label string)
	Destroy(id ID)
	Place(id ID, topLeft Vec)
	Bounds(id ID) (Rect, bool)
	Detach(id ID)
	Attach(id ID)
	SetFlag(id ID, f Flag, on bool)

	ShowDropZone(visible bool)
	ShowCreateControl(visible bool)
}

type Listener interface {
	BodyClicked(id ID, label string)
	BodyRemoved(id ID)
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Clicked func(id ID, label string)
	Removed func(id ID)
}

func (l ListenerFuncs) BodyClicked(id ID, label string) {
	if l.Clicked != nil {
		l.Clicked(id, label)
	}
}

func (l ListenerFuncs) BodyRemoved(id ID) {
	if l.Removed != nil {
		l.Removed(id)
	}
}

type Observer interface {
	OnStep(t float64, bodies []*Body, stats StepStats)
}
