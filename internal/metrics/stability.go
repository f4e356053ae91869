package metrics

import (
	"github.com/san-kum/dotdrop/internal/dots"
)

// RestTime reports the time of the last frame in which any body moved
// faster than threshold. A pile that settles early has a small value.
type RestTime struct {
	name      string
	threshold float64
	last      float64
}

func NewRestTime(threshold float64) *RestTime {
	return &RestTime{
		name:      "rest_time",
		threshold: threshold,
	}
}

func (r *RestTime) Name() string {
	return r.name
}

func (r *RestTime) Observe(t float64, bodies []dots.Body, stats dots.StepStats) {
	for _, b := range bodies {
		if b.Vel.Len() > r.threshold {
			r.last = t
			return
		}
	}
}

func (r *RestTime) Value() float64 {
	return r.last
}

func (r *RestTime) Reset() {
	r.last = 0
}

// Impacts reports the mean of the per-frame peak impact speed over frames
// that had at least one contact.
type Impacts struct {
	name   string
	sum    float64
	frames int
}

func NewImpacts() *Impacts {
	return &Impacts{
		name: "impact",
	}
}

func (i *Impacts) Name() string {
	return i.name
}

func (i *Impacts) Observe(t float64, bodies []dots.Body, stats dots.StepStats) {
	if stats.Contacts == 0 {
		return
	}
	i.sum += stats.MaxImpact
	i.frames++
}

func (i *Impacts) Value() float64 {
	if i.frames == 0 {
		return 0
	}
	return i.sum / float64(i.frames)
}

func (i *Impacts) Reset() {
	i.sum = 0
	i.frames = 0
}
