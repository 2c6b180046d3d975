package maze

import (
	"fmt"
	"math"

	"github.com/taigrr/labyrinth/pkg/math3d"
)

// DefaultCellSize is the world-space edge length of one grid cell.
const DefaultCellSize = 10.0

// Rect is an axis-aligned rectangle on the world XZ plane.
type Rect struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
}

// Center returns the midpoint of the rectangle on the floor plane.
func (r Rect) Center() math3d.Vec3 {
	return math3d.V3((r.MinX+r.MaxX)/2, 0, (r.MinZ+r.MaxZ)/2)
}

// Inflate grows the rectangle by m on every side.
func (r Rect) Inflate(m float64) Rect {
	return Rect{r.MinX - m, r.MinZ - m, r.MaxX + m, r.MaxZ + m}
}

// Overlap returns the penetration of r and o along X and Z. Both are
// positive only when the rectangles interpenetrate.
func (r Rect) Overlap(o Rect) (x, z float64) {
	x = math.Min(r.MaxX, o.MaxX) - math.Max(r.MinX, o.MinX)
	z = math.Min(r.MaxZ, o.MaxZ) - math.Max(r.MinZ, o.MinZ)
	return x, z
}

// Topology wraps a Grid with the world-space lattice mapping used for
// spawning, collision lookups and rendering. Row index i maps to world X and
// column index j to world Z.
type Topology struct {
	grid     *Grid
	cellSize float64
	spawn    Point
}

// NewTopology validates that g has somewhere to stand and binds it to a
// cell size. A non-positive cellSize selects DefaultCellSize.
func NewTopology(g *Grid, cellSize float64) (*Topology, error) {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	t := &Topology{grid: g, cellSize: cellSize}
	i, j, err := t.FirstOpenCell()
	if err != nil {
		return nil, err
	}
	t.spawn = Point{i, j}
	return t, nil
}

// Grid returns the wrapped grid.
func (t *Topology) Grid() *Grid { return t.grid }

// CellSize returns the world-space edge length of a cell.
func (t *Topology) CellSize() float64 { return t.cellSize }

// Spawn returns the cell found by FirstOpenCell at construction.
func (t *Topology) Spawn() Point { return t.spawn }

// IsWall reports whether (i, j) is a wall. Out-of-range cells are open:
// the resolver only ever probes the neighbourhood of the player, and walking
// off a loaded maze is not a collision.
func (t *Topology) IsWall(i, j int) bool {
	return t.grid != nil && t.grid.At(i, j) == Wall
}

// FirstOpenCell scans row-major and returns the first open cell.
func (t *Topology) FirstOpenCell() (i, j int, err error) {
	if t.grid == nil {
		return 0, 0, fmt.Errorf("%w: nil grid", ErrNoOpenCell)
	}
	for i := range t.grid.rows {
		for j := range t.grid.cols {
			if t.grid.At(i, j) == Open {
				return i, j, nil
			}
		}
	}
	return 0, 0, ErrNoOpenCell
}

// CellToWorld returns the floor-level centre of cell (i, j).
func (t *Topology) CellToWorld(i, j int) math3d.Vec3 {
	return math3d.V3(
		float64(i)*t.cellSize+t.cellSize/2,
		0,
		float64(j)*t.cellSize+t.cellSize/2,
	)
}

// WorldToCell returns the cell containing the world position p.
func (t *Topology) WorldToCell(p math3d.Vec3) (i, j int) {
	return int(math.Floor(p.X / t.cellSize)), int(math.Floor(p.Z / t.cellSize))
}

// CellBox returns the floor footprint of cell (i, j).
func (t *Topology) CellBox(i, j int) Rect {
	return Rect{
		MinX: float64(i) * t.cellSize,
		MinZ: float64(j) * t.cellSize,
		MaxX: float64(i+1) * t.cellSize,
		MaxZ: float64(j+1) * t.cellSize,
	}
}

// Walls lists every wall cell row-major. Renderers draw one box per entry.
func (t *Topology) Walls() []Point {
	walls := make([]Point, 0, t.grid.rows*t.grid.cols-t.grid.OpenCount())
	for i := range t.grid.rows {
		for j := range t.grid.cols {
			if t.grid.At(i, j) == Wall {
				walls = append(walls, Point{i, j})
			}
		}
	}
	return walls
}

// Entrance returns the first open cell of the top row, falling back to the
// spawn cell when the top row is closed.
func (t *Topology) Entrance() Point {
	for j := range t.grid.cols {
		if t.grid.At(0, j) == Open {
			return Point{0, j}
		}
	}
	return t.spawn
}

// Exit returns the last open cell of the bottom row, falling back to the
// last open cell of the grid.
func (t *Topology) Exit() Point {
	last := t.grid.rows - 1
	for j := t.grid.cols - 1; j >= 0; j-- {
		if t.grid.At(last, j) == Open {
			return Point{last, j}
		}
	}
	for i := last; i >= 0; i-- {
		for j := t.grid.cols - 1; j >= 0; j-- {
			if t.grid.At(i, j) == Open {
				return Point{i, j}
			}
		}
	}
	return t.spawn
}
