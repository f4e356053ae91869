package viz

import (
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const (
	brailleBase = 0x2800
	brailleLast = 0x28FF
)

// Canvas is a grid of terminal cells. Each cell is either a braille
// pattern addressed in sub-pixels or a plain text rune placed by PutText.
// Ink records the Pen that last drew into each cell.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Ink           [][]uint8
	Pen           uint8
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize reallocates the grid and clears it.
func (c *Canvas) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c.Width, c.Height = w, h
	c.Grid = make([][]rune, h)
	c.Ink = make([][]uint8, h)
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Ink[i] = make([]uint8, w)
	}
	c.Clear()
}

// SubWidth and SubHeight give the canvas size in sub-pixels.
func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

func (c *Canvas) cell(x, y int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, false
	}
	r := c.Grid[row][col]
	return row, col, r >= brailleBase && r <= brailleLast
}

// Set lights the sub-pixel (x, y). Cells holding text are left alone.
func (c *Canvas) Set(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Ink[row][col] = c.Pen
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	row, col, ok := c.cell(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= rune(pixelMap[y%4][x%2])
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
			c.Ink[i][j] = 0
		}
	}
}

// PutText writes s into the cell grid starting at (col, row), clipping at
// the right edge.
func (c *Canvas) PutText(col, row int, s string) {
	if row < 0 || row >= c.Height {
		return
	}
	for _, r := range s {
		if col >= c.Width {
			return
		}
		if col >= 0 {
			c.Grid[row][col] = r
			c.Ink[row][col] = c.Pen
		}
		col++
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws an outline with the midpoint algorithm. Radii in x and y
// differ because terminal sub-pixels are not square.
func (c *Canvas) DrawCircle(cx, cy, rx, ry int) {
	if rx <= 0 || ry <= 0 {
		c.Set(cx, cy)
		return
	}
	// Plot on a circle of radius rx and stretch y.
	x, y := rx, 0
	err := 1 - rx
	for x >= y {
		for _, p := range [][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			c.Set(cx+p[0], cy+p[1]*ry/rx)
		}
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

// FillCircle lights every sub-pixel inside the ellipse.
func (c *Canvas) FillCircle(cx, cy, rx, ry int) {
	if rx <= 0 || ry <= 0 {
		c.Set(cx, cy)
		return
	}
	for dy := -ry; dy <= ry; dy++ {
		for dx := -rx; dx <= rx; dx++ {
			if dx*dx*ry*ry+dy*dy*rx*rx <= rx*rx*ry*ry {
				c.Set(cx+dx, cy+dy)
			}
		}
	}
}

// DrawRect draws a rectangle outline. Dashed outlines skip every other
// pair of sub-pixels.
func (c *Canvas) DrawRect(x0, y0, x1, y1 int, dashed bool) {
	on := func(i int) bool { return !dashed || (i/2)%2 == 0 }
	for x := x0; x <= x1; x++ {
		if on(x - x0) {
			c.Set(x, y0)
			c.Set(x, y1)
		}
	}
	for y := y0; y <= y1; y++ {
		if on(y - y0) {
			c.Set(x0, y)
			c.Set(x1, y)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Lines returns one string per row, without trailing newlines.
func (c *Canvas) Lines() []string {
	out := make([]string, len(c.Grid))
	for i, row := range c.Grid {
		out[i] = string(row)
	}
	return out
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
