// Package stage keeps the visual state of the dots page in memory: one
// element per body, the drop-zone and the create control. Front-ends draw
// from a Stage; the engine writes to it through dots.Surface.
package stage

import (
	"sort"

	"github.com/san-kum/dotdrop/internal/dots"
)

// Element is the visual handle of one body.
type Element struct {
	ID       dots.ID
	Label    string
	TopLeft  dots.Vec
	Size     float64
	Detached bool
	Flags    dots.Flag
	Placed   bool
	seq      uint64
}

func (el Element) Has(f dots.Flag) bool { return el.Flags&f != 0 }

func (el Element) Center() dots.Vec {
	return dots.Vec{X: el.TopLeft.X + el.Size/2, Y: el.TopLeft.Y + el.Size/2}
}

// ZoneSpec places the drop-zone relative to the viewport. A zero width
// spans the full viewport width.
type ZoneSpec struct {
	X, Y, W, H float64
}

type Stage struct {
	viewport        dots.Size
	zone            ZoneSpec
	zoneEnabled     bool
	elements        map[dots.ID]*Element
	seq             uint64
	size            float64
	dropZoneVisible bool
	createVisible   bool
}

func New(viewport dots.Size, elementSize float64) *Stage {
	return &Stage{
		viewport:      viewport,
		elements:      make(map[dots.ID]*Element),
		size:          elementSize,
		createVisible: true,
	}
}

// Resize updates the viewport. The engine reads it on the next frame.
func (s *Stage) Resize(vp dots.Size) { s.viewport = vp }

func (s *Stage) SetDropZone(z ZoneSpec) {
	s.zone = z
	s.zoneEnabled = z.H > 0
}

func (s *Stage) ClearDropZone() { s.zoneEnabled = false }

func (s *Stage) SetElementSize(size float64) { s.size = size }

func (s *Stage) Viewport() dots.Size { return s.viewport }

func (s *Stage) DropZone() (dots.Rect, bool) {
	if !s.zoneEnabled {
		return dots.Rect{}, false
	}
	w := s.zone.W
	if w <= 0 {
		w = s.viewport.W - s.zone.X
	}
	return dots.RectFromSize(dots.Vec{X: s.zone.X, Y: s.zone.Y}, w, s.zone.H), true
}

func (s *Stage) Spawn(id dots.ID, label string) {
	s.seq++
	s.elements[id] = &Element{ID: id, Label: label, Size: s.size, seq: s.seq}
}

func (s *Stage) Destroy(id dots.ID) { delete(s.elements, id) }

func (s *Stage) Place(id dots.ID, topLeft dots.Vec) {
	if el, ok := s.elements[id]; ok {
		el.TopLeft = topLeft
		el.Placed = true
	}
}

func (s *Stage) Bounds(id dots.ID) (dots.Rect, bool) {
	el, ok := s.elements[id]
	if !ok || !el.Placed {
		return dots.Rect{}, false
	}
	return dots.RectFromSize(el.TopLeft, el.Size, el.Size), true
}

func (s *Stage) Detach(id dots.ID) {
	if el, ok := s.elements[id]; ok {
		el.Detached = true
	}
}

func (s *Stage) Attach(id dots.ID) {
	if el, ok := s.elements[id]; ok {
		el.Detached = false
	}
}

func (s *Stage) SetFlag(id dots.ID, f dots.Flag, on bool) {
	el, ok := s.elements[id]
	if !ok {
		return
	}
	if on {
		el.Flags |= f
	} else {
		el.Flags &^= f
	}
}

func (s *Stage) ShowDropZone(visible bool)      { s.dropZoneVisible = visible }
func (s *Stage) ShowCreateControl(visible bool) { s.createVisible = visible }

func (s *Stage) DropZoneVisible() bool      { return s.dropZoneVisible }
func (s *Stage) CreateControlVisible() bool { return s.createVisible }

func (s *Stage) Element(id dots.ID) (Element, bool) {
	el, ok := s.elements[id]
	if !ok {
		return Element{}, false
	}
	return *el, true
}

func (s *Stage) Len() int { return len(s.elements) }

// Elements returns the elements in paint order: creation order, with
// detached elements last so the dragged dot is drawn on top.
func (s *Stage) Elements() []Element {
	out := make([]Element, 0, len(s.elements))
	for _, el := range s.elements {
		out = append(out, *el)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Detached != out[j].Detached {
			return !out[i].Detached
		}
		return out[i].seq < out[j].seq
	})
	return out
}

// ElementAt returns the topmost element containing p.
func (s *Stage) ElementAt(p dots.Vec) (Element, bool) {
	els := s.Elements()
	for i := len(els) - 1; i >= 0; i-- {
		el := els[i]
		if el.Placed && p.Sub(el.Center()).Len() <= el.Size/2 {
			return el, true
		}
	}
	return Element{}, false
}
