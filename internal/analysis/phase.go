package analysis

import (
	"strings"

	"github.com/san-kum/dotdrop/internal/dots"
	"github.com/san-kum/dotdrop/internal/sim"
)

// Point is one sample in a phase portrait.
type Point struct{ X, Y float64 }

// PhasePortrait2D holds height above the floor (X) against vertical
// speed (Y, positive up) for one dot.
type PhasePortrait2D struct {
	ID     dots.ID
	Points []Point
}

// HeightSeries returns the height above floorY of id in every frame that
// contains it.
func HeightSeries(frames []sim.Frame, id dots.ID, floorY float64) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if b, ok := f.Find(id); ok {
			out = append(out, floorY-b.Pos.Y)
		}
	}
	return out
}

// GeneratePhasePortrait reads the portrait of id from recorded frames. It
// returns nil when the dot never appears.
func GeneratePhasePortrait(frames []sim.Frame, id dots.ID, floorY float64) *PhasePortrait2D {
	portrait := &PhasePortrait2D{ID: id}
	for _, f := range frames {
		b, ok := f.Find(id)
		if !ok {
			continue
		}
		portrait.Points = append(portrait.Points, Point{X: floorY - b.Pos.Y, Y: -b.Vel.Y})
	}
	if len(portrait.Points) == 0 {
		return nil
	}
	return portrait
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y

	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	// Speed zero is the apex and floor line.
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			canvas[row][col] = '─'
		}
	}

	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(strings.TrimRight(string(row), " "))
		sb.WriteRune('\n')
	}
	return sb.String()
}
