package dots

type DragPhase int

const (
	PhaseIdle DragPhase = iota
	PhasePending
	PhaseDragging
)

func (p DragPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseDragging:
		return "dragging"
	}
	return "unknown"
}

type dragState interface {
	phase() DragPhase
}

type idleState struct{}

type pendingState struct {
	target ID
	label  string
	start  Vec
	offset Vec
	timer  Timer
}

type draggingState struct {
	target  ID
	offset  Vec
	topLeft Vec
}

func (idleState) phase() DragPhase      { return PhaseIdle }
func (*pendingState) phase() DragPhase  { return PhasePending }
func (*draggingState) phase() DragPhase { return PhaseDragging }

// DragController is the long-press and drag state machine:
//
//	Idle -> PendingLongPress -> Dragging -> Idle
//
// A release before the long-press fires is a click. While Dragging the
// controller is the only writer of the target's placement and the engine
// keeps the target out of the integrator.
type DragController struct {
	eng   *Engine
	state dragState
}

func newDragController(e *Engine) *DragController {
	return &DragController{eng: e, state: idleState{}}
}

func (d *DragController) Phase() DragPhase { return d.state.phase() }

// Target returns the body of a pending or active drag.
func (d *DragController) Target() (ID, bool) {
	switch st := d.state.(type) {
	case *pendingState:
		return st.target, true
	case *draggingState:
		return st.target, true
	}
	return "", false
}

// Held returns the body under manual control, if any.
func (d *DragController) Held() (ID, bool) {
	if st, ok := d.state.(*draggingState); ok {
		return st.target, true
	}
	return "", false
}

// PointerDown starts a long-press on the topmost body under p. It reports
// whether a body was hit.
func (d *DragController) PointerDown(p Vec) bool {
	if _, ok := d.state.(idleState); !ok {
		return false
	}
	e := d.eng
	body, ok := e.reg.HitTest(p)
	if !ok {
		return false
	}

	topLeft := body.TopLeft()
	if r, ok := e.surface.Bounds(body.ID); ok {
		topLeft = r.Min
	}

	st := &pendingState{
		target: body.ID,
		label:  body.Label,
		start:  p,
		offset: p.Sub(topLeft),
	}
	st.timer = e.host.AfterFunc(e.tuning.LongPress, func() { d.longPress(st) })
	d.transition(st)
	return true
}

func (d *DragController) PointerMove(p Vec) {
	switch st := d.state.(type) {
	case *pendingState:
		limit := d.eng.tuning.CancelDistance
		if limit > 0 && p.Sub(st.start).Len() > limit {
			st.timer.Stop()
			d.transition(idleState{})
		}
	case *draggingState:
		st.topLeft = p.Sub(st.offset)
		d.eng.surface.Place(st.target, st.topLeft)
	}
}

func (d *DragController) PointerUp(p Vec) {
	switch st := d.state.(type) {
	case *pendingState:
		st.timer.Stop()
		d.transition(idleState{})
		d.eng.restoreChrome()
		d.eng.listener.BodyClicked(st.target, st.label)
	case *draggingState:
		d.transition(idleState{})
		d.release(st, p)
		d.eng.restoreChrome()
	}
}

// PointerLeave aborts the gesture. A held body is handed back to the
// integrator at the position and velocity it had when it was picked up.
func (d *DragController) PointerLeave() {
	switch st := d.state.(type) {
	case *pendingState:
		st.timer.Stop()
		d.transition(idleState{})
		d.eng.restoreChrome()
	case *draggingState:
		d.transition(idleState{})
		d.eng.surface.Attach(st.target)
		if b, ok := d.eng.reg.Get(st.target); ok {
			d.eng.surface.Place(b.ID, b.TopLeft())
		}
		d.eng.restoreChrome()
	}
}

func (d *DragController) longPress(st *pendingState) {
	if d.state != dragState(st) {
		return
	}
	e := d.eng
	if _, ok := e.reg.Get(st.target); !ok {
		d.transition(idleState{})
		return
	}

	drag := &draggingState{
		target:  st.target,
		offset:  st.offset,
		topLeft: st.start.Sub(st.offset),
	}
	d.transition(drag)

	e.surface.ShowDropZone(true)
	e.surface.ShowCreateControl(false)
	e.surface.Detach(drag.target)
	e.surface.Place(drag.target, drag.topLeft)
}

func (d *DragController) release(st *draggingState, p Vec) {
	e := d.eng
	if zone, ok := e.surface.DropZone(); ok && !zone.Empty() && zone.Contains(p) {
		e.log.Printf("drag: %s dropped in zone at %s", st.target, p)
		e.destroy(st.target)
		e.listener.BodyRemoved(st.target)
		return
	}

	body, ok := e.reg.Get(st.target)
	if !ok {
		return
	}
	topLeft := st.topLeft
	if r, ok := e.surface.Bounds(st.target); ok {
		topLeft = r.Min
	}
	body.Pos = topLeft.Add(Vec{body.Radius, body.Radius})
	body.Vel = Vec{}
	e.log.Printf("drag: %s released at %s", st.target, body.Pos)

	e.surface.Attach(st.target)
	e.surface.Place(body.ID, body.TopLeft())
	e.sched.EnsureRunning()
}

// forget drops any session that targets id without touching the surface.
func (d *DragController) forget(id ID) {
	if target, ok := d.Target(); !ok || target != id {
		return
	}
	if st, ok := d.state.(*pendingState); ok {
		st.timer.Stop()
	}
	d.transition(idleState{})
	d.eng.restoreChrome()
}

func (d *DragController) reset() {
	if st, ok := d.state.(*pendingState); ok {
		st.timer.Stop()
	}
	d.state = idleState{}
}

func (d *DragController) transition(next dragState) {
	if prev := d.state.phase(); prev != next.phase() {
		d.eng.log.Printf("drag: %s -> %s", prev, next.phase())
	}
	d.state = next
}
