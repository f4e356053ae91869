package dots

import (
	"sort"
	"time"
)

// FrameFunc receives the host timestamp of the frame, measured from an
// arbitrary origin.
type FrameFunc func(ts time.Duration)

type FrameID uint64

type Timer interface {
	Stop() bool
}

// Host supplies display-frame callbacks and one-shot timers. Both must be
// delivered on the engine's execution context.
type Host interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
	AfterFunc(d time.Duration, fn func()) Timer
}

// Runloop is a Host driven by explicit Pump calls. Frame callbacks requested
// while a pump is running are delivered on the next pump.
type Runloop struct {
	now    time.Duration
	nextID uint64
	frames []frameReq
	timers []*loopTimer
}

type frameReq struct {
	id FrameID
	fn FrameFunc
}

type loopTimer struct {
	loop     *Runloop
	seq      uint64
	deadline time.Duration
	fn       func()
	stopped  bool
	fired    bool
}

func (t *loopTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.loop.dropTimer(t)
	return true
}

func NewRunloop() *Runloop {
	return &Runloop{}
}

func (l *Runloop) Now() time.Duration { return l.now }

func (l *Runloop) RequestFrame(fn FrameFunc) FrameID {
	l.nextID++
	id := FrameID(l.nextID)
	l.frames = append(l.frames, frameReq{id: id, fn: fn})
	return id
}

func (l *Runloop) CancelFrame(id FrameID) {
	for i, f := range l.frames {
		if f.id == id {
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
}

func (l *Runloop) AfterFunc(d time.Duration, fn func()) Timer {
	l.nextID++
	t := &loopTimer{loop: l, seq: l.nextID, deadline: l.now + d, fn: fn}
	l.timers = append(l.timers, t)
	return t
}

// PendingFrames reports the number of outstanding frame requests.
func (l *Runloop) PendingFrames() int { return len(l.frames) }

func (l *Runloop) PendingTimers() int { return len(l.timers) }

// Pump advances the clock to now, fires every due timer in deadline order,
// then delivers the frame callbacks that were outstanding before the pump.
// A clock that goes backwards is held at its previous value.
func (l *Runloop) Pump(now time.Duration) {
	if now > l.now {
		l.now = now
	}

	for {
		t := l.nextDue()
		if t == nil {
			break
		}
		l.dropTimer(t)
		t.fired = true
		t.fn()
	}

	frames := l.frames
	l.frames = nil
	for _, f := range frames {
		f.fn(l.now)
	}
}

// Advance pumps the loop at now+d.
func (l *Runloop) Advance(d time.Duration) {
	l.Pump(l.now + d)
}

func (l *Runloop) nextDue() *loopTimer {
	sort.SliceStable(l.timers, func(i, j int) bool {
		if l.timers[i].deadline == l.timers[j].deadline {
			return l.timers[i].seq < l.timers[j].seq
		}
		return l.timers[i].deadline < l.timers[j].deadline
	})
	if len(l.timers) == 0 || l.timers[0].deadline > l.now {
		return nil
	}
	return l.timers[0]
}

func (l *Runloop) dropTimer(t *loopTimer) {
	for i, x := range l.timers {
		if x == t {
			l.timers = append(l.timers[:i], l.timers[i+1:]...)
			return
		}
	}
}
