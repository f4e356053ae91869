package dots

import (
	"io"
	"log"
	"math/rand"
)

// Engine is the simulation context. It owns the registry, the frame
// scheduler and the drag controller, and keeps registry entries and surface
// elements in one-to-one correspondence.
type Engine struct {
	tuning    Tuning
	host      Host
	surface   Surface
	listener  Listener
	log       *log.Logger
	reg       *Registry
	sched     *Scheduler
	drag      *DragController
	observers []Observer
	elapsed   float64
	closed    bool
}

type Option func(*Engine)

func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithSeed(seed int64) Option {
	return func(e *Engine) { e.reg = NewRegistry(rand.New(rand.NewSource(seed))) }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func New(t Tuning, host Host, surface Surface, opts ...Option) *Engine {
	e := &Engine{
		tuning:   t,
		host:     host,
		surface:  surface,
		listener: ListenerFuncs{},
		log:      log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reg == nil {
		e.reg = NewRegistry(nil)
	}
	e.sched = NewScheduler(host, t.MaxStep, e.Step)
	e.drag = newDragController(e)
	return e
}

// Create spawns a body with its element and starts the frame loop.
func (e *Engine) Create(label string, id ID) (*Body, error) {
	if e.closed {
		return nil, ErrClosed
	}
	b, err := e.reg.Create(label, id, e.surface.Viewport(), e.tuning)
	if err != nil {
		return nil, err
	}
	e.surface.Spawn(b.ID, b.Label)
	e.surface.Place(b.ID, b.TopLeft())
	e.log.Printf("create: %s %q at %s", b.ID, b.Label, b.Pos)
	e.sched.EnsureRunning()
	return b, nil
}

// Remove deletes a body and its element. Unknown ids are ignored. An active
// gesture on the body is abandoned.
func (e *Engine) Remove(id ID) bool {
	if _, ok := e.reg.Get(id); !ok {
		return false
	}
	e.drag.forget(id)
	e.destroy(id)
	return true
}

func (e *Engine) destroy(id ID) {
	e.reg.Remove(id)
	e.surface.Destroy(id)
	e.log.Printf("remove: %s", id)
}

// Body returns a copy of the body's kinematic state.
func (e *Engine) Body(id ID) (Body, bool) {
	b, ok := e.reg.Get(id)
	if !ok {
		return Body{}, false
	}
	return *b, true
}

func (e *Engine) Bodies() []Body {
	out := make([]Body, 0, e.reg.Len())
	for _, b := range e.reg.All() {
		out = append(out, *b)
	}
	return out
}

func (e *Engine) Len() int { return e.reg.Len() }

// Step runs one frame: integrate every body not under manual control, then
// sync the elements. The scheduler calls it; tests may call it directly.
func (e *Engine) Step(dt float64) {
	held, _ := e.drag.Held()
	all := e.reg.All()
	active := all
	if held != "" {
		active = make([]*Body, 0, len(all))
		for _, b := range all {
			if b.ID != held {
				active = append(active, b)
			}
		}
	}

	stats := Integrate(active, dt, BoundsFor(e.surface.Viewport(), e.tuning), e.tuning)
	RenderSync(all, e.surface, held)

	e.elapsed += dt
	for _, o := range e.observers {
		o.OnStep(e.elapsed, all, stats)
	}
}

func (e *Engine) PointerDown(p Vec) bool { return e.drag.PointerDown(p) }
func (e *Engine) PointerMove(p Vec)      { e.drag.PointerMove(p) }
func (e *Engine) PointerUp(p Vec)        { e.drag.PointerUp(p) }
func (e *Engine) PointerLeave()          { e.drag.PointerLeave() }

func (e *Engine) DragPhase() DragPhase { return e.drag.Phase() }
func (e *Engine) Held() (ID, bool)     { return e.drag.Held() }

// SetFlag toggles a presentation flag on a body's element. Unknown ids are
// ignored.
func (e *Engine) SetFlag(id ID, f Flag, on bool) bool {
	if _, ok := e.reg.Get(id); !ok {
		return false
	}
	e.surface.SetFlag(id, f, on)
	return true
}

func (e *Engine) Tuning() Tuning { return e.tuning }

// SetTuning replaces the physics and gesture constants. Live bodies keep
// their radius; only bodies created afterwards use a new one.
func (e *Engine) SetTuning(t Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.tuning = t
	e.sched.SetMaxStep(t.MaxStep)
	return nil
}

func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Running() bool { return e.sched.Running() }

// Elapsed is the simulated time in seconds.
func (e *Engine) Elapsed() float64 { return e.elapsed }

// Shutdown stops the frame loop, abandons any gesture and destroys every
// body. Further Create calls fail with ErrClosed.
func (e *Engine) Shutdown() {
	if e.closed {
		return
	}
	e.closed = true
	e.sched.Stop()
	if _, ok := e.drag.Target(); ok {
		e.restoreChrome()
	}
	e.drag.reset()
	for _, b := range e.reg.All() {
		e.surface.Destroy(b.ID)
	}
	e.reg.Clear()
	e.log.Printf("shutdown")
}

func (e *Engine) restoreChrome() {
	e.surface.ShowDropZone(false)
	e.surface.ShowCreateControl(true)
}
