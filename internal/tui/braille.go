package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// canvas is a grid of terminal cells. Every cell holds 2x4 braille dots
// drawn in one foreground colour over one background colour, so the
// drawing surface is (2*w) x (4*h) micro-pixels.
type canvas struct {
	w, h int // in cells
	mask [][]uint8
	fg   [][]string
	bg   [][]string
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h}
	c.mask = make([][]uint8, h)
	c.fg = make([][]string, h)
	c.bg = make([][]string, h)
	for i := 0; i < h; i++ {
		c.mask[i] = make([]uint8, w)
		c.fg[i] = make([]string, w)
		c.bg[i] = make([]string, w)
	}
	return c
}

// dot bits of a braille cell, indexed [column][row]
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel and colours its cell.
func (c *canvas) setPixel(mx, my int, color string) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= c.w || cy >= c.h {
		return
	}
	c.mask[cy][cx] |= dotBits[mx%2][my%4]
	c.fg[cy][cx] = color
}

// fillCell paints the background of a cell.
func (c *canvas) fillCell(cx, cy int, color string) {
	if cx < 0 || cy < 0 || cx >= c.w || cy >= c.h {
		return
	}
	c.bg[cy][cx] = color
}

// drawLine draws a line on the microgrid using Bresenham.
func (c *canvas) drawLine(x0, y0, x1, y1 int, color string) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.setPixel(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// runes returns the bare braille glyphs, one string per row.
func (c *canvas) runes() []string {
	out := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		row := make([]rune, c.w)
		for x := 0; x < c.w; x++ {
			row[x] = glyph(c.mask[y][x])
		}
		out[y] = string(row)
	}
	return out
}

// render styles runs of cells that share colours.
func (c *canvas) render(background string) string {
	lines := make([]string, c.h)
	for y := 0; y < c.h; y++ {
		var b strings.Builder
		start := 0
		for x := 1; x <= c.w; x++ {
			if x < c.w && c.fg[y][x] == c.fg[y][start] && c.bg[y][x] == c.bg[y][start] {
				continue
			}
			run := make([]rune, 0, x-start)
			for i := start; i < x; i++ {
				run = append(run, glyph(c.mask[y][i]))
			}
			st := lipgloss.NewStyle()
			if fg := c.fg[y][start]; fg != "" {
				st = st.Foreground(lipgloss.Color(fg))
			}
			bg := c.bg[y][start]
			if bg == "" {
				bg = background
			}
			if bg != "" {
				st = st.Background(lipgloss.Color(bg))
			}
			b.WriteString(st.Render(string(run)))
			start = x
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func glyph(mask uint8) rune {
	if mask == 0 {
		return ' '
	}
	return rune(0x2800 + int(mask))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
