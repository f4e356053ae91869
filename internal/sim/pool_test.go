package sim

import (
	"context"
	"testing"

	"github.com/san-kum/dotdrop/internal/dots"
)

func TestSnapshotPool(t *testing.T) {
	p := NewSnapshotPool()
	bodies := []*dots.Body{
		{ID: "a", Pos: dots.Vec{X: 1, Y: 2}},
		{ID: "b", Pos: dots.Vec{X: 3, Y: 4}},
	}

	s := p.GetAndCopy(bodies)
	if len(s) != 2 || s[1].ID != "b" || s[0].Pos != (dots.Vec{X: 1, Y: 2}) {
		t.Fatalf("unexpected snapshot %+v", s)
	}
	bodies[0].Pos.X = 99
	if s[0].Pos.X != 1 {
		t.Error("expected snapshot to be a copy")
	}

	p.Put(s)
	again := p.GetAndCopy(bodies[:1])
	if len(again) != 1 || again[0].Pos.X != 99 {
		t.Errorf("unexpected reused snapshot %+v", again)
	}
}

func TestRecordEveryKeepsFramesIntact(t *testing.T) {
	cfg := testConfig()
	cfg.Bodies = 3
	cfg.RecordEvery = 2

	var seen []Frame
	s := New(dots.DefaultTuning())
	s.AddObserver(ObserverFunc(func(f Frame) {
		if f.Step%2 == 0 {
			seen = append(seen, f)
		}
	}))
	result, err := s.Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Frames) != len(seen) {
		t.Fatalf("expected %d kept frames, got %d", len(seen), len(result.Frames))
	}
	for i, f := range result.Frames {
		if f.Step != seen[i].Step || f.Bodies[0] != seen[i].Bodies[0] {
			t.Errorf("frame %d changed after recording", i)
		}
	}
}
