package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/stage"
)

// Pens used by Field when drawing into the canvas.
const (
	InkNone uint8 = iota
	InkDot
	InkDescribed
	InkHeld
	InkZone
	InkFloor
	InkText
)

// Field projects a stage onto a braille canvas. CellW and CellH are the
// viewport pixels covered by one terminal cell.
type Field struct {
	Canvas       *Canvas
	CellW, CellH float64
}

func NewField(cols, rows int, cellW, cellH float64) *Field {
	return &Field{Canvas: NewCanvas(cols, rows), CellW: cellW, CellH: cellH}
}

// Viewport is the pixel size the canvas stands for.
func (f *Field) Viewport() dots.Size {
	return dots.Size{W: float64(f.Canvas.Width) * f.CellW, H: float64(f.Canvas.Height) * f.CellH}
}

func (f *Field) Resize(cols, rows int) { f.Canvas.Resize(cols, rows) }

// ToSub maps a viewport point to canvas sub-pixels.
func (f *Field) ToSub(p dots.Vec) (int, int) {
	return int(math.Floor(p.X * 2 / f.CellW)), int(math.Floor(p.Y * 4 / f.CellH))
}

// ToViewport maps the centre of a terminal cell to viewport pixels.
func (f *Field) ToViewport(col, row int) dots.Vec {
	return dots.Vec{X: (float64(col) + 0.5) * f.CellW, Y: (float64(row) + 0.5) * f.CellH}
}

// Draw paints the floor line, the drop zone when it is shown, and every
// element with its label.
func (f *Field) Draw(st *stage.Stage, floorY float64) {
	c := f.Canvas
	c.Clear()

	c.Pen = InkFloor
	_, fy := f.ToSub(dots.Vec{Y: floorY})
	for x := 0; x < c.SubWidth(); x += 2 {
		c.Set(x, fy)
	}

	if zone, ok := st.DropZone(); ok && st.DropZoneVisible() {
		c.Pen = InkZone
		x0, y0 := f.ToSub(zone.Min)
		x1, y1 := f.ToSub(zone.Max)
		c.DrawRect(x0, y0, x1-1, y1-1, true)
		col := (x0 + x1) / 4
		f.putCentered(col, (y0+y1)/8, "drop here to delete")
	}

	for _, el := range st.Elements() {
		center := el.Center()
		cx, cy := f.ToSub(center)
		rx := int(math.Round(el.Size / 2 * 2 / f.CellW))
		ry := int(math.Round(el.Size / 2 * 4 / f.CellH))

		switch {
		case el.Detached:
			c.Pen = InkHeld
		case el.Has(dots.FlagDescribed):
			c.Pen = InkDescribed
		default:
			c.Pen = InkDot
		}
		if el.Has(dots.FlagDescribed) {
			c.FillCircle(cx, cy, rx, ry)
		} else {
			c.DrawCircle(cx, cy, rx, ry)
		}

		c.Pen = InkText
		label := el.Label
		if w := rx - 1; w > 0 && len([]rune(label)) > w {
			label = string([]rune(label)[:w])
		}
		f.putCentered(cx/2, cy/4, label)
	}
}

func (f *Field) putCentered(col, row int, s string) {
	n := len([]rune(s))
	f.Canvas.PutText(col-n/2, row, s)
}

// Render returns the canvas as styled lines, one lipgloss style per run of
// cells drawn with the same pen.
func (f *Field) Render(t Theme) string {
	styles := map[uint8]lipgloss.Style{
		InkNone:      lipgloss.NewStyle(),
		InkDot:       lipgloss.NewStyle().Foreground(t.Dot),
		InkDescribed: lipgloss.NewStyle().Foreground(t.Described),
		InkHeld:      lipgloss.NewStyle().Foreground(t.Held),
		InkZone:      lipgloss.NewStyle().Foreground(t.Zone),
		InkFloor:     lipgloss.NewStyle().Foreground(t.Floor),
		InkText:      lipgloss.NewStyle().Foreground(t.Text).Bold(true),
	}

	c := f.Canvas
	var b strings.Builder
	for row := range c.Grid {
		start := 0
		for col := 1; col <= c.Width; col++ {
			if col < c.Width && c.Ink[row][col] == c.Ink[row][start] {
				continue
			}
			b.WriteString(styles[c.Ink[row][start]].Render(string(c.Grid[row][start:col])))
			start = col
		}
		if row < len(c.Grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
