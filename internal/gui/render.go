package gui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/san-kum/dotdrop/internal/archive"
	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/gui/input"
	"github.com/san-kum/dotdrop/internal/overlay"
)

type Palette struct {
	Name      string
	Bg        color.Color
	Dot       color.Color
	Described color.Color
	Held      color.Color
	Zone      color.Color
	Floor     color.Color
	Text      color.Color
	Dim       color.Color
}

var Palettes = []Palette{
	{
		Name:      "ink",
		Bg:        color.RGBA{10, 10, 10, 255},
		Dot:       colornames.Whitesmoke,
		Described: colornames.Orange,
		Held:      colornames.Deepskyblue,
		Zone:      color.NRGBA{255, 71, 87, 90},
		Floor:     colornames.Dimgray,
		Text:      colornames.White,
		Dim:       colornames.Gray,
	},
	{
		Name:      "paper",
		Bg:        colornames.Floralwhite,
		Dot:       colornames.Darkslategray,
		Described: colornames.Teal,
		Held:      colornames.Royalblue,
		Zone:      color.NRGBA{220, 20, 60, 70},
		Floor:     colornames.Silver,
		Text:      colornames.Black,
		Dim:       colornames.Darkgray,
	},
	{
		Name:      "sunset",
		Bg:        colornames.Midnightblue,
		Dot:       colornames.Lightcoral,
		Described: colornames.Gold,
		Held:      colornames.Violet,
		Zone:      color.NRGBA{255, 99, 71, 90},
		Floor:     colornames.Slateblue,
		Text:      colornames.Seashell,
		Dim:       colornames.Lightsteelblue,
	},
}

func (a *App) palette() Palette { return Palettes[a.Ctrl.Palette] }

func (a *App) Draw(screen *ebiten.Image) {
	pal := a.palette()
	screen.Fill(pal.Bg)

	switch a.Ctrl.Page {
	case input.PageDots:
		a.drawField(screen)
	case input.PageArchive:
		a.drawArchive(screen)
	}
	a.DrawHUD(screen)
	a.drawPrompt(screen)
}

func (a *App) drawField(screen *ebiten.Image) {
	pal := a.palette()
	st := a.Ctrl.Sess.Stage
	vp := st.Viewport()

	if zone, ok := st.DropZone(); ok && st.DropZoneVisible() {
		w, h := zone.Max.X-zone.Min.X, zone.Max.Y-zone.Min.Y
		vector.FillRect(screen, float32(zone.Min.X), float32(zone.Min.Y), float32(w), float32(h), pal.Zone, false)
		a.drawText(screen, "drop here to delete", zone.Min.X+w/2, zone.Min.Y+h/2, 16, pal.Text, true)
	}

	floor := float32(a.Ctrl.Sess.FloorLine())
	vector.StrokeLine(screen, 0, floor, float32(vp.W), floor, 1, pal.Floor, true)

	for _, el := range st.Elements() {
		if !el.Placed {
			continue
		}
		c := el.Center()
		r := float32(el.Size / 2)
		clr := pal.Dot
		if el.Has(dots.FlagDescribed) {
			clr = pal.Described
		}
		if el.Detached {
			clr = pal.Held
			r *= 1.08
		}
		vector.FillCircle(screen, float32(c.X), float32(c.Y), r, clr, true)
		vector.StrokeCircle(screen, float32(c.X), float32(c.Y), r, 2, pal.Floor, true)
		a.drawText(screen, el.Label, c.X, c.Y, 14, pal.Bg, true)
	}

	if st.CreateControlVisible() {
		b := a.Ctrl.CreateButton()
		cx, cy := (b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2
		vector.StrokeCircle(screen, float32(cx), float32(cy), input.ButtonSize/2, 2, pal.Text, true)
		vector.StrokeLine(screen, float32(cx-10), float32(cy), float32(cx+10), float32(cy), 2, pal.Text, true)
		vector.StrokeLine(screen, float32(cx), float32(cy-10), float32(cx), float32(cy+10), 2, pal.Text, true)
	}
}

func (a *App) drawArchive(screen *ebiten.Image) {
	pal := a.palette()
	for i, m := range archive.MonthChips {
		r := a.Ctrl.Chip(i)
		clr := pal.Dim
		if i == a.Ctrl.Month {
			vector.FillRect(screen, float32(r.Min.X), float32(r.Min.Y), input.ChipWidth, input.ChipHeight, pal.Held, false)
			clr = pal.Bg
		}
		a.drawText(screen, m, (r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2, 13, clr, true)
	}

	y := float64(input.Margin + input.ChipHeight + 24)
	groups := a.Ctrl.Sess.Archive.List(a.Ctrl.MonthFilter())
	if len(groups) == 0 {
		a.drawText(screen, "nothing dropped yet", input.Margin, y, 14, pal.Dim, false)
	}
	for _, g := range groups {
		a.drawText(screen, g.Label, input.Margin, y, 13, pal.Dim, false)
		y += 22
		for _, e := range g.Entries {
			a.drawText(screen, e.Word, input.Margin+12, y, 18, pal.Text, false)
			meta := fmt.Sprintf("%s | %d", e.Date.Format(archive.DateLabel), e.Count)
			a.drawText(screen, meta, input.Margin+220, y+3, 13, pal.Dim, false)
			y += 24
			for _, l := range strings.Split(e.Line, "\n") {
				if l == "" {
					continue
				}
				a.drawText(screen, l, input.Margin+24, y, 14, pal.Described, false)
				y += 20
			}
		}
		y += 10
	}
}

// DrawHUD shows the page tabs, the dot count and the last error.
func (a *App) DrawHUD(screen *ebiten.Image) {
	pal := a.palette()
	h := float64(screen.Bounds().Dy())

	tabs := "[dots]  archive"
	if a.Ctrl.Page == input.PageArchive {
		tabs = " dots  [archive]"
	}
	status := fmt.Sprintf("%s   dots %d   %s   %.0f fps", tabs,
		a.Ctrl.Sess.Engine.Len(), a.Ctrl.Sess.Engine.DragPhase(), ebiten.ActualFPS())
	if err := a.Ctrl.Err(); err != nil {
		status += "   " + err.Error()
	}
	a.drawText(screen, status, input.Margin, h-28, 13, pal.Dim, false)
	a.drawText(screen, "n new   hold to drag   tab archive   t theme", input.Margin, h-12, 12, pal.Dim, false)
}

func (a *App) drawPrompt(screen *ebiten.Image) {
	ov := a.Ctrl.Sess.Overlay
	if !ov.Open() {
		return
	}
	pal := a.palette()
	w, h := float64(screen.Bounds().Dx()), float64(screen.Bounds().Dy())

	vector.FillRect(screen, 0, 0, float32(w), float32(h), color.RGBA{0, 0, 0, 140}, false)
	pw, ph := w*0.6, 160.0
	px, py := (w-pw)/2, (h-ph)/2
	vector.FillRect(screen, float32(px), float32(py), float32(pw), float32(ph), pal.Bg, false)
	vector.StrokeRect(screen, float32(px), float32(py), float32(pw), float32(ph), 1, pal.Floor, false)

	title, hint := "new word", "enter to drop   esc to cancel"
	if ov.Mode() == overlay.ModeDescribe {
		title = "describe " + ov.Word()
		hint = "enter to save   shift+enter newline   esc to cancel"
	}
	a.drawText(screen, title, px+20, py+24, 14, pal.Dim, false)
	a.drawText(screen, ov.Text()+"_", px+20, py+60, 20, pal.Text, false)
	a.drawText(screen, hint, px+20, py+ph-20, 12, pal.Dim, false)
}

func (a *App) drawText(screen *ebiten.Image, s string, x, y, size float64, clr color.Color, centered bool) {
	face := &text.GoTextFace{Source: a.Font, Size: size}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = size * 1.3
	op.SecondaryAlign = text.AlignCenter
	if centered {
		op.PrimaryAlign = text.AlignCenter
	}
	text.Draw(screen, s, face, op)
}
