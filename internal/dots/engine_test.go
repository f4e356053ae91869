package dots_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/stage"
)

const frame = 16 * time.Millisecond

type recorder struct {
	clicked []dots.ID
	labels  []string
	removed []dots.ID
}

func (r *recorder) BodyClicked(id dots.ID, label string) {
	r.clicked = append(r.clicked, id)
	r.labels = append(r.labels, label)
}

func (r *recorder) BodyRemoved(id dots.ID) { r.removed = append(r.removed, id) }

var _ = Describe("Engine", func() {
	var (
		loop   *dots.Runloop
		st     *stage.Stage
		rec    *recorder
		eng    *dots.Engine
		tuning dots.Tuning
		bounds dots.Bounds
	)

	pump := func(n int) {
		for i := 0; i < n; i++ {
			loop.Advance(frame)
		}
	}

	BeforeEach(func() {
		tuning = dots.DefaultTuning()
		loop = dots.NewRunloop()
		st = stage.New(dots.Size{W: 800, H: 600}, 2*tuning.Radius)
		st.SetDropZone(stage.ZoneSpec{H: 120})
		rec = &recorder{}
		eng = dots.New(tuning, loop, st, dots.WithListener(rec), dots.WithSeed(7))
		bounds = dots.BoundsFor(st.Viewport(), tuning)
	})

	Describe("creating bodies", func() {
		It("spawns above the viewport inside the walls and starts the loop", func() {
			Expect(eng.Running()).To(BeFalse())

			b, err := eng.Create("hello", "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Pos.X).To(BeNumerically(">=", bounds.MinX))
			Expect(b.Pos.X).To(BeNumerically("<=", bounds.MaxX))
			Expect(b.Pos.Y).To(BeNumerically("<=", -tuning.Radius))
			Expect(b.Pos.Y).To(BeNumerically(">=", -tuning.Radius-tuning.SpawnJitterY))
			Expect(b.Vel.Y).To(BeZero())
			Expect(b.Vel.X).To(BeNumerically("~", 0, tuning.SpawnSpeedX))

			Expect(eng.Running()).To(BeTrue())
			Expect(loop.PendingFrames()).To(Equal(1))
			Expect(st.Len()).To(Equal(1))
		})

		It("rejects empty and duplicate ids", func() {
			_, err := eng.Create("x", "")
			Expect(err).To(MatchError(dots.ErrEmptyID))

			_, err = eng.Create("x", "a")
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Create("y", "a")
			Expect(err).To(MatchError(dots.ErrDuplicateID))
			Expect(eng.Len()).To(Equal(1))
			Expect(st.Len()).To(Equal(1))
		})

		It("keeps one frame request however often the loop is started", func() {
			for _, id := range []dots.ID{"a", "b", "c"} {
				_, err := eng.Create("dot", id)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(loop.PendingFrames()).To(Equal(1))
			pump(3)
			Expect(loop.PendingFrames()).To(Equal(1))
		})
	})

	Describe("the simulation", func() {
		It("keeps a lone body inside the walls and above the floor", func() {
			_, err := eng.Create("solo", "a")
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 600; i++ {
				pump(1)
				b, ok := eng.Body("a")
				Expect(ok).To(BeTrue())
				Expect(b.Pos.X).To(BeNumerically(">=", bounds.MinX))
				Expect(b.Pos.X).To(BeNumerically("<=", bounds.MaxX))
				Expect(b.Pos.Y).To(BeNumerically("<=", bounds.FloorY))
			}
		})

		It("clamps live bodies by their own radius after the radius changes", func() {
			_, err := eng.Create("old", "a")
			Expect(err).NotTo(HaveOccurred())

			small := tuning
			small.Radius = 24
			Expect(eng.SetTuning(small)).To(Succeed())

			floorLine := 600 - tuning.FloorMargin
			for i := 0; i < 600; i++ {
				pump(1)
				for _, b := range eng.Bodies() {
					Expect(b.Pos.Y + b.Radius).To(BeNumerically("<=", floorLine+1e-9))
					Expect(b.Pos.X - b.Radius).To(BeNumerically(">=", -1e-9))
					Expect(b.Pos.X + b.Radius).To(BeNumerically("<=", 800+1e-9))
				}
			}
			old, _ := eng.Body("a")
			Expect(old.Radius).To(Equal(tuning.Radius))
			Expect(old.Pos.Y + old.Radius).To(BeNumerically("~", floorLine, 1))
		})

		It("lets a crowd settle on the floor without leaving the viewport", func() {
			for _, id := range []dots.ID{"a", "b", "c", "d", "e", "f"} {
				_, err := eng.Create("dot", id)
				Expect(err).NotTo(HaveOccurred())
			}
			pump(600)

			for _, b := range eng.Bodies() {
				Expect(b.IsValid()).To(BeTrue())
				Expect(b.Pos.X).To(BeNumerically(">=", 0))
				Expect(b.Pos.X).To(BeNumerically("<=", 800))
				Expect(b.Pos.Y).To(BeNumerically("<=", bounds.FloorY+tuning.Radius))
			}
		})

		It("loses height on every bounce", func() {
			reg := dots.NewRegistry(nil)
			b := &dots.Body{ID: "a", Pos: dots.Vec{X: 400, Y: 0}, Radius: tuning.Radius}
			Expect(reg.Insert(b)).To(Succeed())

			var apexes []float64
			prev, falling := b.Pos.Y, false
			for i := 0; i < 600; i++ {
				dots.Integrate(reg.All(), 1.0/60, bounds, tuning)
				if b.Pos.Y > prev && !falling {
					if h := bounds.FloorY - prev; h > 1 {
						apexes = append(apexes, h)
					}
				}
				falling = b.Pos.Y > prev
				prev = b.Pos.Y
			}

			Expect(len(apexes)).To(BeNumerically(">=", 3))
			for i := 1; i < len(apexes); i++ {
				Expect(apexes[i]).To(BeNumerically("<=", apexes[i-1]))
			}
		})

		It("separates stacked bodies and averages their normal velocity", func() {
			upper := &dots.Body{ID: "u", Pos: dots.Vec{X: 300, Y: 200}, Vel: dots.Vec{Y: 200}, Radius: tuning.Radius}
			lower := &dots.Body{ID: "l", Pos: dots.Vec{X: 300, Y: 260}, Vel: dots.Vec{Y: -100}, Radius: tuning.Radius}

			dots.Integrate([]*dots.Body{upper, lower}, 0, bounds, tuning)

			Expect(lower.Pos.Sub(upper.Pos).Len()).To(BeNumerically("~", 2*tuning.Radius, 1e-9))
			Expect(upper.Pos.X).To(Equal(300.0))
			Expect(lower.Pos.X).To(Equal(300.0))

			diff := -100.0 - 200.0
			Expect(upper.Vel.Y).To(BeNumerically("~", 200+0.5*diff, 1e-9))
			Expect(lower.Vel.Y).To(BeNumerically("~", -100-0.5*diff, 1e-9))
		})

		It("stops on shutdown and refuses new bodies", func() {
			_, err := eng.Create("dot", "a")
			Expect(err).NotTo(HaveOccurred())

			eng.Shutdown()
			Expect(eng.Running()).To(BeFalse())
			Expect(loop.PendingFrames()).To(BeZero())
			Expect(eng.Len()).To(BeZero())
			Expect(st.Len()).To(BeZero())

			_, err = eng.Create("dot", "b")
			Expect(err).To(MatchError(dots.ErrClosed))
		})
	})

	Describe("gestures", func() {
		var center dots.Vec

		BeforeEach(func() {
			_, err := eng.Create("word", "a")
			Expect(err).NotTo(HaveOccurred())
			pump(300)
			b, _ := eng.Body("a")
			center = b.Pos
		})

		grab := func() {
			Expect(eng.PointerDown(center)).To(BeTrue())
			Expect(eng.DragPhase()).To(Equal(dots.PhasePending))
			loop.Advance(tuning.LongPress)
			Expect(eng.DragPhase()).To(Equal(dots.PhaseDragging))
		}

		It("treats a short press as a click", func() {
			Expect(eng.PointerDown(center)).To(BeTrue())
			loop.Advance(100 * time.Millisecond)
			eng.PointerUp(center)

			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))
			Expect(rec.clicked).To(Equal([]dots.ID{"a"}))
			Expect(rec.labels).To(Equal([]string{"word"}))
			Expect(loop.PendingTimers()).To(BeZero())

			loop.Advance(time.Second)
			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))
		})

		It("ignores presses that miss every body", func() {
			Expect(eng.PointerDown(dots.Vec{X: 5, Y: 5})).To(BeFalse())
			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))
		})

		It("cancels the long press when the pointer wanders", func() {
			Expect(eng.PointerDown(center)).To(BeTrue())
			eng.PointerMove(center.Add(dots.Vec{X: 50}))
			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))

			loop.Advance(tuning.LongPress)
			eng.PointerUp(center)
			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))
			Expect(rec.clicked).To(BeEmpty())
		})

		It("shows the drop-zone and detaches the element while dragging", func() {
			grab()
			Expect(st.DropZoneVisible()).To(BeTrue())
			Expect(st.CreateControlVisible()).To(BeFalse())
			el, ok := st.Element("a")
			Expect(ok).To(BeTrue())
			Expect(el.Detached).To(BeTrue())
			held, ok := eng.Held()
			Expect(ok).To(BeTrue())
			Expect(held).To(Equal(dots.ID("a")))
		})

		It("leaves the held body untouched by the integrator", func() {
			grab()
			before, _ := eng.Body("a")

			p := dots.Vec{X: 200, Y: 250}
			eng.PointerMove(p)
			pump(60)

			after, _ := eng.Body("a")
			Expect(after).To(Equal(before))

			el, _ := st.Element("a")
			Expect(el.Center().X).To(BeNumerically("~", p.X, 1e-9))
			Expect(el.Center().Y).To(BeNumerically("~", p.Y, 1e-9))
		})

		It("deletes a body dropped in the drop-zone", func() {
			grab()
			p := dots.Vec{X: 400, Y: 60}
			eng.PointerMove(p)
			eng.PointerUp(p)

			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))
			_, ok := eng.Body("a")
			Expect(ok).To(BeFalse())
			_, ok = st.Element("a")
			Expect(ok).To(BeFalse())
			Expect(rec.removed).To(Equal([]dots.ID{"a"}))
			Expect(st.DropZoneVisible()).To(BeFalse())
			Expect(st.CreateControlVisible()).To(BeTrue())
		})

		It("resumes a body dropped elsewhere at rest where it was released", func() {
			grab()
			p := dots.Vec{X: 300, Y: 300}
			eng.PointerMove(p)
			eng.PointerUp(p)

			b, ok := eng.Body("a")
			Expect(ok).To(BeTrue())
			Expect(b.Pos.X).To(BeNumerically("~", 300, 1e-9))
			Expect(b.Pos.Y).To(BeNumerically("~", 300, 1e-9))
			Expect(b.Vel).To(Equal(dots.Vec{}))

			el, _ := st.Element("a")
			Expect(el.Detached).To(BeFalse())
			Expect(eng.Running()).To(BeTrue())
			Expect(loop.PendingFrames()).To(Equal(1))
			Expect(rec.removed).To(BeEmpty())

			pump(1)
			b, _ = eng.Body("a")
			Expect(b.Pos.Y).To(BeNumerically(">", 300))
		})

		It("treats a missing drop-zone as outside", func() {
			st.ClearDropZone()
			grab()
			p := dots.Vec{X: 400, Y: 60}
			eng.PointerMove(p)
			eng.PointerUp(p)

			_, ok := eng.Body("a")
			Expect(ok).To(BeTrue())
			Expect(rec.removed).To(BeEmpty())
		})

		It("hands an aborted drag back with its pre-drag state", func() {
			grab()
			before, _ := eng.Body("a")

			eng.PointerMove(dots.Vec{X: 100, Y: 100})
			eng.PointerLeave()

			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))
			after, _ := eng.Body("a")
			Expect(after).To(Equal(before))

			el, _ := st.Element("a")
			Expect(el.Detached).To(BeFalse())
			Expect(el.TopLeft).To(Equal(after.TopLeft()))
			Expect(st.DropZoneVisible()).To(BeFalse())
		})

		It("abandons the gesture when its body is removed", func() {
			Expect(eng.PointerDown(center)).To(BeTrue())
			Expect(eng.Remove("a")).To(BeTrue())
			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))

			loop.Advance(tuning.LongPress)
			Expect(eng.DragPhase()).To(Equal(dots.PhaseIdle))
			Expect(eng.Remove("a")).To(BeFalse())
		})

		It("ignores flags for unknown bodies", func() {
			Expect(eng.SetFlag("a", dots.FlagDescribed, true)).To(BeTrue())
			el, _ := st.Element("a")
			Expect(el.Has(dots.FlagDescribed)).To(BeTrue())

			Expect(eng.SetFlag("missing", dots.FlagDescribed, true)).To(BeFalse())
		})
	})
})
