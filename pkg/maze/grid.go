// Package maze generates grid mazes and answers lattice queries about them.
//
// A Grid is a rectangular matrix of Open and Wall cells addressed by
// (row, column). Grids are immutable once built; a new maze replaces the old
// one wholesale.
package maze

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidSize is returned when a maze is requested with a dimension
	// too small to hold a lattice cell.
	ErrInvalidSize = errors.New("maze: invalid size")
	// ErrNoOpenCell is returned when a grid has no open cell to spawn in.
	ErrNoOpenCell = errors.New("maze: no open cell")
	// ErrMalformedMaze is returned when decoded data is not a rectangular
	// matrix of 0/1 values.
	ErrMalformedMaze = errors.New("maze: malformed maze")
)

// Cell is the content of one grid position. The numeric values are the
// persistence encoding.
type Cell uint8

const (
	Open Cell = 0
	Wall Cell = 1
)

// Point addresses a grid cell by row I and column J.
type Point struct {
	I, J int
}

// Add returns the point offset by d.
func (p Point) Add(d Point) Point {
	return Point{p.I + d.I, p.J + d.J}
}

// orthogonal lists the four axis neighbours in a fixed order.
var orthogonal = [4]Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Grid is an immutable rows x cols matrix of cells stored row-major.
type Grid struct {
	rows, cols int
	cells      []Cell
}

// newGrid allocates a grid with every cell set to fill.
func newGrid(rows, cols int, fill Cell) *Grid {
	g := &Grid{rows: rows, cols: cols, cells: make([]Cell, rows*cols)}
	if fill != Open {
		for i := range g.cells {
			g.cells[i] = fill
		}
	}
	return g
}

// FromCells builds a grid from a rectangular matrix of cells.
// The input is copied.
func FromCells(rows [][]Cell) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrMalformedMaze)
	}
	cols := len(rows[0])
	g := newGrid(len(rows), cols, Open)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrMalformedMaze, i, len(row), cols)
		}
		for j, c := range row {
			if c != Open && c != Wall {
				return nil, fmt.Errorf("%w: cell (%d,%d) = %d", ErrMalformedMaze, i, j, c)
			}
			g.cells[i*cols+j] = c
		}
	}
	return g, nil
}

// Parse builds a grid from text rows where '#' is a wall and anything else is
// open. It is mostly useful for fixtures.
func Parse(text string) (*Grid, error) {
	lines := strings.Fields(text)
	rows := make([][]Cell, len(lines))
	for i, line := range lines {
		rows[i] = make([]Cell, len(line))
		for j, ch := range line {
			if ch == '#' {
				rows[i][j] = Wall
			}
		}
	}
	return FromCells(rows)
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether (i, j) addresses a cell of the grid.
func (g *Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.rows && j >= 0 && j < g.cols
}

// At returns the cell at (i, j). Out-of-range positions read as Open.
func (g *Grid) At(i, j int) Cell {
	if !g.InBounds(i, j) {
		return Open
	}
	return g.cells[i*g.cols+j]
}

func (g *Grid) set(p Point, c Cell) {
	g.cells[p.I*g.cols+p.J] = c
}

// OpenCount returns the number of open cells.
func (g *Grid) OpenCount() int {
	n := 0
	for _, c := range g.cells {
		if c == Open {
			n++
		}
	}
	return n
}

// Matrix returns a copy of the grid as rows of cells.
func (g *Grid) Matrix() [][]Cell {
	out := make([][]Cell, g.rows)
	for i := range out {
		out[i] = make([]Cell, g.cols)
		copy(out[i], g.cells[i*g.cols:(i+1)*g.cols])
	}
	return out
}

// Equal reports whether two grids have the same shape and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.rows != o.rows || g.cols != o.cols {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// String renders the grid with '#' for walls and '.' for open cells.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.rows * (g.cols + 1))
	for i := range g.rows {
		for j := range g.cols {
			if g.At(i, j) == Wall {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
