package dots

import "math/rand"

// Registry owns the live bodies. Iteration order is insertion order and is
// the only order collision pairing depends on.
type Registry struct {
	bodies []*Body
	rng    *rand.Rand
}

func NewRegistry(rng *rand.Rand) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Registry{bodies: make([]*Body, 0, 16), rng: rng}
}

// Create spawns a body above the visible area at a random x inside the
// walls, with zero vertical and a random horizontal velocity.
func (r *Registry) Create(label string, id ID, vp Size, t Tuning) (*Body, error) {
	if id == "" {
		return nil, ErrEmptyID
	}
	if _, ok := r.Get(id); ok {
		return nil, &BodyError{ID: id, Wrapped: ErrDuplicateID}
	}

	b := BoundsFor(vp, t)
	x := r.rng.Float64() * vp.W
	if b.MaxX >= b.MinX {
		x = clamp(x, b.MinX, b.MaxX)
	} else {
		x = vp.W / 2
	}

	body := &Body{
		ID:     id,
		Label:  label,
		Pos:    Vec{x, -t.Radius - r.rng.Float64()*t.SpawnJitterY},
		Vel:    Vec{(r.rng.Float64() - 0.5) * 2 * t.SpawnSpeedX, 0},
		Radius: t.Radius,
	}
	r.bodies = append(r.bodies, body)
	return body, nil
}

// Insert adds a body with an explicit kinematic state.
func (r *Registry) Insert(b *Body) error {
	if b.ID == "" {
		return ErrEmptyID
	}
	if _, ok := r.Get(b.ID); ok {
		return &BodyError{ID: b.ID, Wrapped: ErrDuplicateID}
	}
	r.bodies = append(r.bodies, b)
	return nil
}

func (r *Registry) Remove(id ID) bool {
	for i, b := range r.bodies {
		if b.ID == id {
			copy(r.bodies[i:], r.bodies[i+1:])
			r.bodies[len(r.bodies)-1] = nil
			r.bodies = r.bodies[:len(r.bodies)-1]
			return true
		}
	}
	return false
}

func (r *Registry) Get(id ID) (*Body, bool) {
	for _, b := range r.bodies {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// All returns the live slice. Callers must not append to or reorder it.
func (r *Registry) All() []*Body { return r.bodies }

func (r *Registry) Len() int { return len(r.bodies) }

// HitTest returns the topmost body whose circle contains p. Later bodies
// are drawn above earlier ones.
func (r *Registry) HitTest(p Vec) (*Body, bool) {
	for i := len(r.bodies) - 1; i >= 0; i-- {
		b := r.bodies[i]
		if p.Sub(b.Pos).Len() <= b.Radius {
			return b, true
		}
	}
	return nil, false
}

func (r *Registry) Clear() {
	for i := range r.bodies {
		r.bodies[i] = nil
	}
	r.bodies = r.bodies[:0]
}
