package export

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/sim"
	"github.com/san-kum/dotdrop/internal/storage"
	"github.com/san-kum/dotdrop/internal/viz"
)

const background = "#0a0a0a"

// Trail colors, one per body in id order.
var palette = []color.RGBA{
	colornames.Deepskyblue,
	colornames.Orange,
	colornames.Mediumseagreen,
	colornames.Hotpink,
	colornames.Gold,
	colornames.Mediumpurple,
	colornames.Tomato,
	colornames.Turquoise,
}

var inkColors = map[uint8]color.RGBA{
	viz.InkDot:       colornames.Whitesmoke,
	viz.InkDescribed: colornames.Orange,
	viz.InkHeld:      colornames.Deepskyblue,
	viz.InkZone:      colornames.Crimson,
	viz.InkFloor:     colornames.Slategray,
	viz.InkText:      colornames.White,
}

func hex(c color.RGBA) string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

func header(sb *strings.Builder, w, h float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, w, h, w, h, background))
}

// CanvasToSVG converts a braille canvas to SVG, one circle per lit
// sub-pixel colored by the pen that drew its cell. Text cells are skipped.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	header(&sb, width, height)

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r < 0x2800 || r > 0x28FF {
				continue
			}
			pattern := int(r - 0x2800)
			if pattern == 0 {
				continue
			}
			fill, ok := inkColors[canvas.Ink[row][col]]
			if !ok {
				fill = colornames.Lime
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, hex(fill)))
					}
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SceneToSVG draws one recorded frame at viewport scale: the floor line and
// every dot with its id.
func SceneToSVG(meta storage.RunMetadata, f sim.Frame) string {
	var sb strings.Builder
	header(&sb, meta.Width, meta.Height)

	floor := meta.FloorY + meta.Radius
	sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%.0f" y2="%.1f" stroke="%s" stroke-dasharray="4 4"/>
`, floor, meta.Width, floor, hex(colornames.Slategray)))

	colors := colorByID(f.Bodies)
	for _, b := range f.Bodies {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, b.Pos.X, b.Pos.Y, b.Radius, hex(colors[b.ID])))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-family="sans-serif" font-size="14" text-anchor="middle" dominant-baseline="middle" fill="%s">%s</text>
`, b.Pos.X, b.Pos.Y, background, escape(string(b.ID))))
	}

	sb.WriteString(fmt.Sprintf(`<text x="8" y="%.0f" font-family="monospace" font-size="12" fill="%s">%s t=%.2fs</text>
`, meta.Height-8, hex(colornames.Gray), escape(meta.ID), f.Time))
	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws the path of every body across the recorded
// frames, in viewport coordinates.
func TrajectoriesToSVG(meta storage.RunMetadata, frames []sim.Frame) string {
	paths := make(map[dots.ID][]dots.Vec)
	var ids []dots.ID
	for _, f := range frames {
		for _, b := range f.Bodies {
			if _, ok := paths[b.ID]; !ok {
				ids = append(ids, b.ID)
			}
			paths[b.ID] = append(paths[b.ID], b.Pos)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sb strings.Builder
	header(&sb, meta.Width, meta.Height)

	floor := meta.FloorY + meta.Radius
	sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%.0f" y2="%.1f" stroke="%s"/>
`, floor, meta.Width, floor, hex(colornames.Slategray)))

	for i, id := range ids {
		pts := paths[id]
		stroke := hex(palette[i%len(palette)])
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
		for j, p := range pts {
			if j == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
			}
		}
		sb.WriteString("\"/>\n")
		last := pts[len(pts)-1]
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s"/>
`, last.X, last.Y, meta.Radius, stroke))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func colorByID(bodies []dots.Body) map[dots.ID]color.RGBA {
	ids := make([]dots.ID, len(bodies))
	for i, b := range bodies {
		ids[i] = b.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make(map[dots.ID]color.RGBA, len(ids))
	for i, id := range ids {
		out[id] = palette[i%len(palette)]
	}
	return out
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
