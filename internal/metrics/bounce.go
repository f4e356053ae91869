package metrics

import (
	"github.com/san-kum/dotdrop/internal/dots"
)

// Apexes records, per body, the height above the floor at every turning
// point from rising to falling. Turning points lower than MinHeight are
// treated as resting jitter and ignored.
type Apexes struct {
	name      string
	floorY    float64
	MinHeight float64

	prevY   map[dots.ID]float64
	falling map[dots.ID]bool
	heights map[dots.ID][]float64
}

func NewApexes(vp dots.Size, t dots.Tuning) *Apexes {
	a := &Apexes{
		name:      "bounces",
		floorY:    dots.BoundsFor(vp, t).FloorY,
		MinHeight: 1,
	}
	a.Reset()
	return a
}

func (a *Apexes) Name() string { return a.name }

func (a *Apexes) Observe(t float64, bodies []dots.Body, stats dots.StepStats) {
	for _, b := range bodies {
		prev, seen := a.prevY[b.ID]
		a.prevY[b.ID] = b.Pos.Y
		if !seen {
			continue
		}
		switch {
		case b.Pos.Y > prev && !a.falling[b.ID]:
			a.falling[b.ID] = true
			if h := a.floorY - prev; h > a.MinHeight {
				a.heights[b.ID] = append(a.heights[b.ID], h)
			}
		case b.Pos.Y < prev:
			a.falling[b.ID] = false
		}
	}
}

// Heights returns the recorded apex heights of one body in order.
func (a *Apexes) Heights(id dots.ID) []float64 { return a.heights[id] }

// Value is the number of bounces, counting each apex after a body's first.
func (a *Apexes) Value() float64 {
	n := 0
	for _, h := range a.heights {
		if len(h) > 1 {
			n += len(h) - 1
		}
	}
	return float64(n)
}

func (a *Apexes) Reset() {
	a.prevY = make(map[dots.ID]float64)
	a.falling = make(map[dots.ID]bool)
	a.heights = make(map[dots.ID][]float64)
}
