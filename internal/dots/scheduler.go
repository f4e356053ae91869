package dots

import "time"

// Scheduler runs a tick once per host frame with dt in seconds, capped at
// maxStep so that a long pause does not produce one huge step.
type Scheduler struct {
	host     Host
	tick     func(dt float64)
	maxStep  float64
	frame    FrameID
	pending  bool
	running  bool
	last     time.Duration
	haveLast bool
	frames   uint64
}

func NewScheduler(host Host, maxStep float64, tick func(dt float64)) *Scheduler {
	return &Scheduler{host: host, tick: tick, maxStep: maxStep}
}

// EnsureRunning requests a frame unless one is already outstanding.
func (s *Scheduler) EnsureRunning() {
	s.running = true
	s.request()
}

func (s *Scheduler) request() {
	if s.pending {
		return
	}
	s.pending = true
	var id FrameID
	id = s.host.RequestFrame(func(ts time.Duration) { s.onFrame(id, ts) })
	s.frame = id
}

// Stop cancels the outstanding frame. The next EnsureRunning starts a new
// timestamp baseline so the first frame after a restart has dt = 0.
func (s *Scheduler) Stop() {
	if s.pending {
		s.host.CancelFrame(s.frame)
		s.pending = false
	}
	s.running = false
	s.haveLast = false
}

func (s *Scheduler) Running() bool { return s.running }

// Frames reports how many frames have been delivered.
func (s *Scheduler) Frames() uint64 { return s.frames }

func (s *Scheduler) SetMaxStep(maxStep float64) { s.maxStep = maxStep }

// onFrame ignores callbacks for a request that was cancelled after the
// host had already taken it for delivery.
func (s *Scheduler) onFrame(id FrameID, ts time.Duration) {
	if !s.pending || id != s.frame {
		return
	}
	s.pending = false
	if !s.running {
		return
	}
	if !s.haveLast {
		s.last, s.haveLast = ts, true
	}
	dt := (ts - s.last).Seconds()
	s.last = ts
	if dt < 0 {
		dt = 0
	}
	if dt > s.maxStep {
		dt = s.maxStep
	}

	s.frames++
	s.tick(dt)

	if s.running {
		s.request()
	}
}
