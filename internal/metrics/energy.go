package metrics

import (
	"math"

	"github.com/san-kum/dotdrop/internal/dots"
)

// Mechanical returns the total kinetic plus potential energy per unit mass
// of the bodies, with the floor rest position as zero potential.
func Mechanical(bodies []dots.Body, floorY, gravity float64) float64 {
	total := 0.0
	for _, b := range bodies {
		ke := 0.5 * b.Vel.Dot(b.Vel)
		pe := gravity * (floorY - b.Pos.Y)
		total += ke + pe
	}
	return total
}

// Energy reports the mean mechanical energy over the observed frames.
type Energy struct {
	name        string
	floorY      float64
	gravity     float64
	samples     int
	totalEnergy float64
	last        float64
}

func NewEnergy(vp dots.Size, t dots.Tuning) *Energy {
	return &Energy{
		name:    "energy",
		floorY:  dots.BoundsFor(vp, t).FloorY,
		gravity: t.Gravity,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(t float64, bodies []dots.Body, stats dots.StepStats) {
	e.last = Mechanical(bodies, e.floorY, e.gravity)
	e.totalEnergy += e.last
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

// Last is the energy of the most recent frame.
func (e *Energy) Last() float64 { return e.last }

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
	e.last = 0
}

// EnergyLoss reports the fraction of the peak energy that has been
// dissipated by the latest frame. The peak grows when bodies spawn mid-run.
type EnergyLoss struct {
	name    string
	floorY  float64
	gravity float64
	peak    float64
	current float64
}

func NewEnergyLoss(vp dots.Size, t dots.Tuning) *EnergyLoss {
	return &EnergyLoss{
		name:    "energy_loss",
		floorY:  dots.BoundsFor(vp, t).FloorY,
		gravity: t.Gravity,
	}
}

func (e *EnergyLoss) Name() string { return e.name }

func (e *EnergyLoss) Observe(t float64, bodies []dots.Body, stats dots.StepStats) {
	e.current = Mechanical(bodies, e.floorY, e.gravity)
	e.peak = math.Max(e.peak, e.current)
}

func (e *EnergyLoss) Value() float64 {
	if e.peak == 0 {
		return 0
	}
	return (e.peak - e.current) / e.peak
}

func (e *EnergyLoss) Reset() {
	e.peak = 0
	e.current = 0
}
