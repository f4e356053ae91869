package dots

import "math"

// StepStats summarises the contacts produced by one integration step.
type StepStats struct {
	WallHits   int
	FloorHits  int
	Contacts   int
	MaxImpact  float64
	Integrated int
}

// Integrate advances every body by dt seconds, then resolves overlapping
// pairs. Bodies under manual control must not be passed in. bounds is
// built for t.Radius; bodies of another radius are clamped to their own.
func Integrate(bodies []*Body, dt float64, bounds Bounds, t Tuning) StepStats {
	stats := StepStats{Integrated: len(bodies)}

	for _, body := range bodies {
		b := bounds
		if body.Radius != t.Radius {
			b = bounds.Fit(t.Radius, body.Radius)
		}
		body.Vel.Y += t.Gravity * dt
		body.Pos.X += body.Vel.X * dt
		body.Pos.Y += body.Vel.Y * dt

		if body.Pos.X < b.MinX {
			stats.hit(&stats.WallHits, body.Vel.X)
			body.Pos.X = b.MinX
			body.Vel.X *= -t.Damping
		}
		if body.Pos.X > b.MaxX {
			stats.hit(&stats.WallHits, body.Vel.X)
			body.Pos.X = b.MaxX
			body.Vel.X *= -t.Damping
		}
		if body.Pos.Y > b.FloorY {
			stats.hit(&stats.FloorHits, body.Vel.Y)
			body.Pos.Y = b.FloorY
			body.Vel.Y *= -t.Damping
			body.Vel.X *= t.Friction
		}
	}

	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			if impact, ok := Collide(bodies[i], bodies[j], t.Restitution); ok {
				stats.hit(&stats.Contacts, impact)
			}
		}
	}

	return stats
}

// Collide separates two overlapping bodies along their contact normal and
// applies a symmetric impulse on the relative normal velocity. Coincident
// centers are skipped. It reports the relative normal speed before the
// impulse and whether the pair was in contact.
func Collide(a, c *Body, restitution float64) (float64, bool) {
	d := c.Pos.Sub(a.Pos)
	dist2 := d.Dot(d)
	minDist := a.Radius + c.Radius
	if dist2 <= 0 || dist2 >= minDist*minDist {
		return 0, false
	}

	dist := math.Sqrt(dist2)
	n := d.Scale(1 / dist)
	overlap := (minDist - dist) * 0.5

	a.Pos = a.Pos.Sub(n.Scale(overlap))
	c.Pos = c.Pos.Add(n.Scale(overlap))

	diff := c.Vel.Dot(n) - a.Vel.Dot(n)
	impulse := diff * restitution
	a.Vel = a.Vel.Add(n.Scale(impulse))
	c.Vel = c.Vel.Sub(n.Scale(impulse))

	return math.Abs(diff), true
}

func (s *StepStats) hit(counter *int, speed float64) {
	*counter++
	if v := math.Abs(speed); v > s.MaxImpact {
		s.MaxImpact = v
	}
}
