package input

import (
	"testing"
	"time"

	"github.com/san-kum/dotdrop/internal/config"
	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/session"
)

type rig struct {
	c   *Controller
	now time.Duration
	at  dots.Vec
}

func newRig(t *testing.T) *rig {
	sess := session.New(config.DefaultConfig(), dots.Size{W: 800, H: 600})
	t.Cleanup(func() { sess.Close() })
	return &rig{c: NewController(sess, 3)}
}

func (r *rig) tick(p Pointer, k Keys) {
	r.now += 16 * time.Millisecond
	r.c.Update(p, k, r.now)
}

func (r *rig) idle(n int) {
	for i := 0; i < n; i++ {
		r.tick(Pointer{Pos: r.at, Inside: true}, Keys{})
	}
}

func (r *rig) press(p dots.Vec) {
	r.at = p
	r.tick(Pointer{Pos: p, Inside: true, Pressed: true}, Keys{})
}

func (r *rig) moveTo(p dots.Vec) {
	r.at = p
	r.tick(Pointer{Pos: p, Inside: true}, Keys{})
}

func (r *rig) release() {
	r.tick(Pointer{Pos: r.at, Inside: true, Released: true}, Keys{})
}

func (r *rig) typeWord(s string) {
	r.tick(Pointer{Pos: r.at, Inside: true}, Keys{Chars: []rune(s)})
}

func (r *rig) drop(word string) dots.Body {
	r.typeWord("n")
	r.typeWord(word)
	r.tick(Pointer{Pos: r.at, Inside: true}, Keys{Enter: true})
	r.idle(200)
	e := r.c.Sess.Archive.Entries()[0]
	b, _ := r.c.Sess.Engine.Body(e.ID)
	return b
}

func TestCreateButtonOpensPrompt(t *testing.T) {
	r := newRig(t)
	b := r.c.CreateButton()
	r.press(dots.Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2})
	if !r.c.Sess.Overlay.Open() {
		t.Fatal("expected create prompt")
	}

	r.typeWord("ra")
	r.typeWord("in")
	r.tick(Pointer{Inside: true}, Keys{Enter: true, Shift: true})
	r.tick(Pointer{Inside: true}, Keys{Enter: true})
	if r.c.Err() != nil {
		t.Fatal(r.c.Err())
	}
	if r.c.Sess.Engine.Len() != 1 {
		t.Fatal("expected one dot")
	}
	if got := r.c.Sess.Archive.Entries()[0].Word; got != "rain" {
		t.Errorf("expected word rain, got %q", got)
	}
}

func TestDescribeWithShiftEnter(t *testing.T) {
	r := newRig(t)
	b := r.drop("rain")

	r.press(b.Pos)
	r.release()
	if r.c.Sess.Overlay.Target() != b.ID {
		t.Fatal("expected click to open describe prompt")
	}
	r.typeWord("wet")
	r.tick(Pointer{Pos: r.at, Inside: true}, Keys{Enter: true, Shift: true})
	r.typeWord("cold")
	r.tick(Pointer{Pos: r.at, Inside: true}, Keys{Enter: true})

	e, _ := r.c.Sess.Archive.Get(b.ID)
	if e.Line != "wet\ncold" {
		t.Errorf("expected two-line description, got %q", e.Line)
	}
}

func TestDragReleaseOutsideZone(t *testing.T) {
	r := newRig(t)
	b := r.drop("rain")

	r.press(b.Pos)
	r.idle(25)
	if r.c.Sess.Engine.DragPhase() != dots.PhaseDragging {
		t.Fatalf("expected dragging, got %s", r.c.Sess.Engine.DragPhase())
	}
	target := dots.Vec{X: 200, Y: 300}
	r.moveTo(target)
	r.release()

	got, _ := r.c.Sess.Engine.Body(b.ID)
	// one frame of gravity has run since the release
	if got.Vel.X != 0 || got.Vel.Y > 1800*0.033 {
		t.Errorf("expected velocity reset on release, got %s", got.Vel)
	}
	if got.Pos.Sub(target).Len() > 1 {
		t.Errorf("expected dot centred under the pointer at %s, got %s", target, got.Pos)
	}
}

func TestLeavingWindowAbortsDrag(t *testing.T) {
	r := newRig(t)
	b := r.drop("rain")

	r.press(b.Pos)
	r.idle(25)
	r.moveTo(dots.Vec{X: 300, Y: 50})
	r.tick(Pointer{Pos: dots.Vec{X: -5, Y: 50}}, Keys{})

	if r.c.Sess.Engine.DragPhase() != dots.PhaseIdle {
		t.Error("expected the drag to end")
	}
	if r.c.Sess.Engine.Len() != 1 {
		t.Error("expected the dot to survive")
	}
}

func TestTabEndsGesture(t *testing.T) {
	tests := []struct {
		name string
		hold int
	}{
		{"dragging", 25},
		{"pending", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			b := r.drop("rain")

			r.press(b.Pos)
			r.idle(tt.hold)
			r.tick(Pointer{Pos: r.at, Inside: true}, Keys{Tab: true})
			r.moveTo(dots.Vec{X: 300, Y: 50})
			r.release()
			r.idle(60)

			st := r.c.Sess.Stage
			el, _ := st.Element(b.ID)
			if r.c.Page != PageArchive {
				t.Fatalf("expected archive page, got %d", r.c.Page)
			}
			if r.c.Sess.Engine.DragPhase() != dots.PhaseIdle || el.Detached {
				t.Errorf("expected gesture ended, phase %s detached %v", r.c.Sess.Engine.DragPhase(), el.Detached)
			}
			if st.DropZoneVisible() || !st.CreateControlVisible() {
				t.Error("expected chrome restored")
			}
			if r.c.Sess.Engine.Len() != 1 {
				t.Error("expected the dot to survive")
			}
		})
	}
}

func TestImpactsAreCollected(t *testing.T) {
	r := newRig(t)
	r.drop("rain")
	if r.c.TakeImpact() <= 0 {
		t.Error("expected a floor impact")
	}
	if r.c.TakeImpact() != 0 {
		t.Error("expected impact cleared")
	}
}

func TestArchiveChipsAndPalette(t *testing.T) {
	r := newRig(t)
	r.tick(Pointer{Inside: true}, Keys{Tab: true, Chars: []rune("t")})
	if r.c.Page != PageArchive || r.c.Palette != 1 {
		t.Fatalf("expected archive page and palette 1, got %d %d", r.c.Page, r.c.Palette)
	}

	chip := r.c.Chip(3)
	r.press(chip.Min.Add(dots.Vec{X: 2, Y: 2}))
	if r.c.MonthFilter() != "Mar" {
		t.Errorf("expected Mar filter, got %s", r.c.MonthFilter())
	}
}
