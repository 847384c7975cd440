package geom

import (
	"math"
)

// CellKey is the integer coordinate of a single cell in an unbounded 2D grid.
type CellKey struct {
	I, J int
}

// Offset returns the key of the cell di cells along x and dj cells along y
// from k.
func (k CellKey) Offset(di, dj int) CellKey {
	return CellKey{k.I + di, k.J + dj}
}

// CellGrid provides an interface for reasoning over the plane as if it were
// tiled by square cells of a fixed width. Cell (0, 0) has its lowermost corner
// at the origin and there is no upper or lower bound on cell indices.
type CellGrid struct {
	CellWidth float64
}

// NewCellGrid returns a new CellGrid instance.
func NewCellGrid(cellWidth float64) *CellGrid {
	g := &CellGrid{}
	g.Init(cellWidth)
	return g
}

// Init initializes a CellGrid instance.
func (g *CellGrid) Init(cellWidth float64) {
	g.CellWidth = cellWidth
}

// Key returns the key of the cell containing the point (x, y). Points on a
// cell's lower edges belong to that cell.
func (g *CellGrid) Key(x, y float64) CellKey {
	return CellKey{
		int(math.Floor(x / g.CellWidth)),
		int(math.Floor(y / g.CellWidth)),
	}
}

// Neighborhood writes the 3x3 block of cells centered on k into out, in
// row-major order starting from the lowermost corner.
func (g *CellGrid) Neighborhood(k CellKey, out *[9]CellKey) {
	n := 0
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			out[n] = k.Offset(di, dj)
			n++
		}
	}
}

// Bounds returns the rectangle covered by the cell k.
func (g *CellGrid) Bounds(k CellKey) Rect {
	return Rect{
		float64(k.I) * g.CellWidth, float64(k.J) * g.CellWidth,
		g.CellWidth, g.CellWidth,
	}
}
