package stage

import (
	"testing"

	"github.com/san-kum/dotdrop/internal/dots"
)

func TestDropZone(t *testing.T) {
	s := New(dots.Size{W: 800, H: 600}, 90)
	if _, ok := s.DropZone(); ok {
		t.Fatal("expected no zone before SetDropZone")
	}

	s.SetDropZone(ZoneSpec{X: 100, H: 120})
	r, ok := s.DropZone()
	if !ok {
		t.Fatal("expected zone")
	}
	if r.Min != (dots.Vec{X: 100}) || r.Max != (dots.Vec{X: 800, Y: 120}) {
		t.Errorf("unexpected zone %+v", r)
	}

	s.Resize(dots.Size{W: 1000, H: 600})
	if r, _ := s.DropZone(); r.Max.X != 1000 {
		t.Errorf("expected zone to follow viewport, got %+v", r)
	}

	s.SetDropZone(ZoneSpec{H: 0})
	if _, ok := s.DropZone(); ok {
		t.Error("expected zero height to disable the zone")
	}
}

func TestBoundsNeedPlacement(t *testing.T) {
	s := New(dots.Size{W: 800, H: 600}, 90)
	s.Spawn("a", "rain")
	if _, ok := s.Bounds("a"); ok {
		t.Error("expected no bounds before Place")
	}
	s.Place("a", dots.Vec{X: 10, Y: 20})
	r, ok := s.Bounds("a")
	if !ok || r.Max != (dots.Vec{X: 100, Y: 110}) {
		t.Errorf("unexpected bounds %+v", r)
	}
	if _, ok := s.Bounds("zz"); ok {
		t.Error("expected no bounds for unknown id")
	}
}

func TestPaintOrder(t *testing.T) {
	s := New(dots.Size{W: 800, H: 600}, 90)
	for _, id := range []dots.ID{"a", "b", "c"} {
		s.Spawn(id, string(id))
		s.Place(id, dots.Vec{X: 100, Y: 100})
	}
	s.Detach("a")

	els := s.Elements()
	got := []dots.ID{els[0].ID, els[1].ID, els[2].ID}
	want := []dots.ID{"b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("paint order = %v, want %v", got, want)
		}
	}

	el, ok := s.ElementAt(dots.Vec{X: 145, Y: 145})
	if !ok || el.ID != "a" {
		t.Errorf("expected detached dot on top, got %v", el.ID)
	}

	s.Attach("a")
	if el, _ := s.ElementAt(dots.Vec{X: 145, Y: 145}); el.ID != "c" {
		t.Errorf("expected newest dot on top after attach, got %v", el.ID)
	}
	if _, ok := s.ElementAt(dots.Vec{X: 700, Y: 500}); ok {
		t.Error("expected miss outside every dot")
	}
}

func TestFlagsAndControls(t *testing.T) {
	s := New(dots.Size{W: 800, H: 600}, 90)
	s.Spawn("a", "rain")
	s.SetFlag("a", dots.FlagDescribed, true)
	if el, _ := s.Element("a"); !el.Has(dots.FlagDescribed) {
		t.Error("expected flag set")
	}
	s.SetFlag("a", dots.FlagDescribed, false)
	if el, _ := s.Element("a"); el.Has(dots.FlagDescribed) {
		t.Error("expected flag cleared")
	}
	s.SetFlag("zz", dots.FlagDescribed, true)

	if !s.CreateControlVisible() || s.DropZoneVisible() {
		t.Error("expected create shown and zone hidden initially")
	}
	s.ShowCreateControl(false)
	s.ShowDropZone(true)
	if s.CreateControlVisible() || !s.DropZoneVisible() {
		t.Error("expected visibility to toggle")
	}

	s.Destroy("a")
	if s.Len() != 0 {
		t.Errorf("expected empty stage, got %d", s.Len())
	}
}
