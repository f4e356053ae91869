package dots

import (
	"math"
	"testing"
	"time"
)

func TestSchedulerEnsureRunningIsIdempotent(t *testing.T) {
	loop := NewRunloop()
	ticks := 0
	s := NewScheduler(loop, 0.033, func(dt float64) { ticks++ })

	s.EnsureRunning()
	s.EnsureRunning()
	if loop.PendingFrames() != 1 {
		t.Fatalf("expected 1 pending frame, got %d", loop.PendingFrames())
	}

	loop.Advance(16 * time.Millisecond)
	s.EnsureRunning()
	if loop.PendingFrames() != 1 {
		t.Errorf("expected 1 pending frame after a tick, got %d", loop.PendingFrames())
	}
	if ticks != 1 {
		t.Errorf("expected 1 tick, got %d", ticks)
	}
}

func TestSchedulerClampsDt(t *testing.T) {
	loop := NewRunloop()
	var dts []float64
	s := NewScheduler(loop, 0.033, func(dt float64) { dts = append(dts, dt) })
	s.EnsureRunning()

	loop.Pump(1 * time.Second)
	loop.Pump(1*time.Second + 10*time.Millisecond)
	loop.Pump(5 * time.Second)

	want := []float64{0, 0.01, 0.033}
	if len(dts) != len(want) {
		t.Fatalf("expected %d ticks, got %d", len(want), len(dts))
	}
	for i := range want {
		if math.Abs(dts[i]-want[i]) > 1e-9 {
			t.Errorf("tick %d: expected dt %f, got %f", i, want[i], dts[i])
		}
	}
}

func TestSchedulerStop(t *testing.T) {
	loop := NewRunloop()
	ticks := 0
	s := NewScheduler(loop, 0.033, func(dt float64) { ticks++ })

	s.EnsureRunning()
	s.Stop()
	if loop.PendingFrames() != 0 {
		t.Fatalf("expected no pending frames, got %d", loop.PendingFrames())
	}
	loop.Advance(time.Second)
	if ticks != 0 {
		t.Errorf("expected no ticks after stop, got %d", ticks)
	}

	var first float64 = -1
	s = NewScheduler(loop, 0.033, func(dt float64) {
		if first < 0 {
			first = dt
		}
	})
	s.EnsureRunning()
	loop.Advance(time.Second)
	s.Stop()
	s.EnsureRunning()
	loop.Advance(time.Second)
	if first != 0 {
		t.Errorf("expected first dt 0, got %f", first)
	}
}

func TestSchedulerStopFromTick(t *testing.T) {
	loop := NewRunloop()
	var s *Scheduler
	s = NewScheduler(loop, 0.033, func(dt float64) {
		s.Stop()
		s.EnsureRunning()
	})
	s.EnsureRunning()
	loop.Advance(time.Millisecond)
	if loop.PendingFrames() != 1 {
		t.Errorf("expected exactly 1 pending frame, got %d", loop.PendingFrames())
	}
}

func TestRunloopTimers(t *testing.T) {
	loop := NewRunloop()
	var fired []string

	loop.AfterFunc(30*time.Millisecond, func() { fired = append(fired, "b") })
	loop.AfterFunc(10*time.Millisecond, func() { fired = append(fired, "a") })
	c := loop.AfterFunc(20*time.Millisecond, func() { fired = append(fired, "c") })

	if !c.Stop() {
		t.Error("expected stop to report a pending timer")
	}
	if c.Stop() {
		t.Error("expected second stop to report false")
	}

	loop.Advance(15 * time.Millisecond)
	if len(fired) != 1 || fired[0] != "a" {
		t.Fatalf("expected [a], got %v", fired)
	}

	loop.Advance(100 * time.Millisecond)
	if len(fired) != 2 || fired[1] != "b" {
		t.Fatalf("expected [a b], got %v", fired)
	}
	if loop.PendingTimers() != 0 {
		t.Errorf("expected no pending timers, got %d", loop.PendingTimers())
	}
}

func TestRunloopDefersFramesRequestedDuringPump(t *testing.T) {
	loop := NewRunloop()
	calls := 0
	var fn FrameFunc
	fn = func(ts time.Duration) {
		calls++
		loop.RequestFrame(fn)
	}
	loop.RequestFrame(fn)

	loop.Advance(time.Millisecond)
	loop.Advance(time.Millisecond)
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestSchedulerIgnoresCancelledFrameInSamePump(t *testing.T) {
	loop := NewRunloop()
	ticks := 0
	var s *Scheduler
	s = NewScheduler(loop, 0.033, func(dt float64) { ticks++ })

	restarted := false
	loop.RequestFrame(func(time.Duration) {
		s.Stop()
		s.EnsureRunning()
		restarted = true
	})
	s.EnsureRunning()

	loop.Advance(16 * time.Millisecond)
	if !restarted {
		t.Fatal("expected the restart callback to run")
	}
	if ticks != 0 {
		t.Errorf("expected the cancelled frame to be ignored, got %d ticks", ticks)
	}
	if loop.PendingFrames() != 1 {
		t.Fatalf("expected one frame chain, got %d pending", loop.PendingFrames())
	}

	loop.Advance(16 * time.Millisecond)
	loop.Advance(16 * time.Millisecond)
	if ticks != 2 || loop.PendingFrames() != 1 {
		t.Errorf("expected 2 ticks on one chain, got %d ticks and %d pending", ticks, loop.PendingFrames())
	}
}
