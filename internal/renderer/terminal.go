package renderer

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/scrollscene/internal/effects"
)

// Terminal paints an ASCII grid onto a tcell screen, one screen cell per
// sample. The bottom row is kept for the status line.
type Terminal struct {
	Screen tcell.Screen
}

func NewTerminal(s tcell.Screen) *Terminal {
	return &Terminal{Screen: s}
}

// Viewport is the drawable area in terminal cells
func (t *Terminal) Viewport() (cols, rows int) {
	w, h := t.Screen.Size()
	if h > 1 {
		h--
	}
	return w, h
}

// Draw maps every screen cell to the grid cell under it. Large ASCII cells
// cover several screen cells and repeat their glyph.
func (t *Terminal) Draw(grid *effects.Grid) {
	cols, rows := t.Viewport()
	if grid == nil || grid.Cols == 0 || grid.Rows == 0 || cols == 0 || rows == 0 {
		return
	}

	for ty := 0; ty < rows; ty++ {
		gy := ty * grid.Rows / rows
		for tx := 0; tx < cols; tx++ {
			gx := tx * grid.Cols / cols
			cell := grid.At(gx, gy)

			glyph := cell.Glyph
			if glyph == 0 {
				glyph = ' '
			}
			fg := tcell.NewRGBColor(int32(cell.Color.R), int32(cell.Color.G), int32(cell.Color.B))
			t.Screen.SetContent(tx, ty, glyph, nil, tcell.StyleDefault.Foreground(fg).Background(tcell.ColorBlack))
		}
	}
}

// Status writes a line at the bottom row, padded to the screen width
func (t *Terminal) Status(format string, args ...interface{}) {
	w, h := t.Screen.Size()
	if h == 0 {
		return
	}
	line := []rune(fmt.Sprintf(format, args...))
	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	for x := 0; x < w; x++ {
		r := ' '
		if x < len(line) {
			r = line[x]
		}
		t.Screen.SetContent(x, h-1, r, nil, style)
	}
}

// Show flushes pending changes to the terminal
func (t *Terminal) Show() {
	t.Screen.Show()
}
