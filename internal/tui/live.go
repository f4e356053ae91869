package tui

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/sim"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer prints headless run frames as plain text, throttled to
// frameRate. It is a sim.Observer.
type LiveRenderer struct {
	out       io.Writer
	viewport  dots.Size
	floorY    float64
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	trails    map[dots.ID][]struct{ x, y int }
}

func NewLiveRenderer(vp dots.Size, t dots.Tuning, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		out:       os.Stdout,
		viewport:  vp,
		floorY:    dots.BoundsFor(vp, t).FloorY + t.Radius,
		frameRate: frameRate,
		canvas:    canvas,
		trails:    make(map[dots.ID][]struct{ x, y int }),
	}
}

func (r *LiveRenderer) OnFrame(f sim.Frame) {
	elapsed := time.Since(r.lastFrame)
	if elapsed < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = time.Now()

	r.clear()
	r.drawFloor()
	for _, b := range f.Bodies {
		r.drawBody(b)
	}
	r.render(f)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) project(p dots.Vec) (int, int) {
	x := int(math.Round(p.X / r.viewport.W * float64(width-1)))
	y := int(math.Round(p.Y / r.viewport.H * float64(height-1)))
	return x, y
}

func (r *LiveRenderer) drawFloor() {
	_, fy := r.project(dots.Vec{Y: r.floorY})
	for i := 0; i < width; i++ {
		r.set(i, fy, '=')
	}
}

func (r *LiveRenderer) drawBody(b dots.Body) {
	bx, by := r.project(b.Pos)

	trail := append(r.trails[b.ID], struct{ x, y int }{bx, by})
	if len(trail) > 12 {
		trail = trail[1:]
	}
	r.trails[b.ID] = trail
	for _, pt := range trail {
		r.set(pt.x, pt.y, '.')
	}

	rx := int(math.Max(1, math.Round(b.Radius/r.viewport.W*float64(width-1))))
	r.set(bx-rx, by, '(')
	r.set(bx+rx, by, ')')
	mark := 'O'
	if id := []rune(string(b.ID)); len(id) > 0 {
		mark = id[len(id)-1]
	}
	r.set(bx, by, mark)
}

func (r *LiveRenderer) render(f sim.Frame) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  dotdrop  t=%.2fs  bodies=%d\n", f.Time, len(f.Bodies)))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  contacts=%d floor=%d walls=%d impact=%.1f\n",
		f.Stats.Contacts, f.Stats.FloorHits, f.Stats.WallHits, f.Stats.MaxImpact))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
