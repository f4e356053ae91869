// Package input turns per-tick pointer and keyboard state into engine and
// overlay calls for the window front-end. It has no ebiten dependency so it
// runs under plain tests.
package input

import (
	"math"
	"time"

	"github.com/san-kum/dotdrop/internal/archive"
	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/session"
)

// Pointer is one tick of mouse or touch input in viewport pixels.
type Pointer struct {
	Pos      dots.Vec
	Inside   bool // over the window and the window has focus
	Pressed  bool
	Released bool
}

// Keys is one tick of keyboard input.
type Keys struct {
	Chars     []rune
	Enter     bool
	Shift     bool
	Backspace bool
	Escape    bool
	Tab       bool
}

type Page int

const (
	PageDots Page = iota
	PageArchive
)

const (
	ButtonSize = 44
	ChipWidth  = 52
	ChipHeight = 26
	Margin     = 16
)

type Controller struct {
	Sess    *session.Session
	Page    Page
	Month   int
	Palette int

	palettes int
	last     dots.Vec
	inside   bool
	impact   float64
	lastErr  error
}

// NewController cycles Palette through [0, palettes) on the t key.
func NewController(sess *session.Session, palettes int) *Controller {
	c := &Controller{Sess: sess, palettes: max(palettes, 1)}
	sess.Engine.AddObserver(c)
	return c
}

// OnStep records the hardest impact since the last TakeImpact.
func (c *Controller) OnStep(t float64, bodies []*dots.Body, stats dots.StepStats) {
	c.impact = math.Max(c.impact, stats.MaxImpact)
}

// TakeImpact returns and clears the hardest impact speed seen.
func (c *Controller) TakeImpact() float64 {
	v := c.impact
	c.impact = 0
	return v
}

// Err returns the last submit or reload error, if any.
func (c *Controller) Err() error { return c.lastErr }

// CreateButton is the create control in the top right corner.
func (c *Controller) CreateButton() dots.Rect {
	vp := c.Sess.Stage.Viewport()
	return dots.RectFromSize(dots.Vec{X: vp.W - Margin - ButtonSize, Y: Margin}, ButtonSize, ButtonSize)
}

// Chip is the month filter chip i on the archive page.
func (c *Controller) Chip(i int) dots.Rect {
	return dots.RectFromSize(dots.Vec{X: Margin + float64(i)*(ChipWidth+4), Y: Margin}, ChipWidth, ChipHeight)
}

func (c *Controller) MonthFilter() string { return archive.MonthChips[c.Month] }

func (c *Controller) Update(p Pointer, k Keys, now time.Duration) {
	if c.Sess.Overlay.Open() {
		c.promptKeys(k)
	} else {
		c.keys(k)
		switch c.Page {
		case PageDots:
			c.pointer(p)
		case PageArchive:
			c.chips(p)
		}
	}
	c.inside = p.Inside
	c.last = p.Pos

	if err := c.Sess.Pump(now); err != nil {
		c.lastErr = err
	}
}

func (c *Controller) keys(k Keys) {
	if k.Tab {
		if c.Page == PageDots {
			// The archive page never sees the release.
			c.Sess.Engine.PointerLeave()
			c.Page = PageArchive
		} else {
			c.Page = PageDots
		}
	}
	for _, r := range k.Chars {
		switch r {
		case 'n', '+':
			if c.Sess.Stage.CreateControlVisible() {
				c.Page = PageDots
				c.Sess.Overlay.OpenCreate()
				return
			}
		case 't':
			c.Palette = (c.Palette + 1) % c.palettes
		}
	}
}

func (c *Controller) promptKeys(k Keys) {
	ov := c.Sess.Overlay
	for _, r := range k.Chars {
		if r == '\n' || r == '\r' {
			continue
		}
		ov.Type(string(r))
	}
	switch {
	case k.Escape:
		ov.Close()
	case k.Enter && k.Shift:
		ov.Newline()
	case k.Enter:
		c.lastErr = ov.Submit()
	case k.Backspace:
		ov.Backspace()
	}
}

func (c *Controller) pointer(p Pointer) {
	eng := c.Sess.Engine
	if !p.Inside {
		if c.inside {
			eng.PointerLeave()
		}
		return
	}

	if p.Pressed {
		if c.Sess.Stage.CreateControlVisible() && c.CreateButton().Contains(p.Pos) {
			c.Sess.Overlay.OpenCreate()
			return
		}
		eng.PointerDown(p.Pos)
	}
	if p.Pos != c.last {
		eng.PointerMove(p.Pos)
	}
	if p.Released {
		eng.PointerUp(p.Pos)
	}
}

func (c *Controller) chips(p Pointer) {
	if !p.Inside || !p.Pressed {
		return
	}
	for i := range archive.MonthChips {
		if c.Chip(i).Contains(p.Pos) {
			c.Month = i
			return
		}
	}
}
