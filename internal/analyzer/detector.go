package analyzer

import "image"

// EdgeDirection is the dominant orientation of an edge inside a cell
type EdgeDirection int

const (
	EdgeNone EdgeDirection = iota
	EdgeVertical
	EdgeHorizontal
	EdgeDiagonal     // bottom-left to top-right
	EdgeAntiDiagonal // top-left to bottom-right
)

// Glyph is the ASCII character drawn for the direction, 0 for none
func (d EdgeDirection) Glyph() rune {
	switch d {
	case EdgeVertical:
		return '|'
	case EdgeHorizontal:
		return '-'
	case EdgeDiagonal:
		return '/'
	case EdgeAntiDiagonal:
		return '\\'
	}
	return 0
}

// EdgeMap holds one direction per cell, row-major
type EdgeMap struct {
	Cols, Rows int
	Dirs       []EdgeDirection
}

// At returns EdgeNone outside the grid
func (m *EdgeMap) At(col, row int) EdgeDirection {
	if m == nil || col < 0 || row < 0 || col >= m.Cols || row >= m.Rows {
		return EdgeNone
	}
	return m.Dirs[row*m.Cols+col]
}

// Detector finds cell edges in a rendered frame
type Detector interface {
	Detect(img image.Image, cellSize int) (*EdgeMap, error)
}
