package physics

import (
	"fmt"
	"math"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
)

// Resolver corrects a proposed player position against the maze walls and
// returns the corrected position and velocity. Y is never touched.
type Resolver interface {
	Resolve(t *maze.Topology, old, proposed, velocity math3d.Vec3, radius float64) (math3d.Vec3, math3d.Vec3)
}

// Contact is one wall penetration found by the narrow phase.
type Contact struct {
	Cell   maze.Point
	Normal math3d.Vec3 // unit, on the X or Z axis, pointing away from the wall
	Depth  float64
}

const (
	// tieEpsilon decides when X and Z penetration count as equal; X wins.
	tieEpsilon = 1e-9

	// separationSkin is added to every push-out so a resolved footprint
	// ends strictly outside the wall instead of touching it.
	separationSkin = 1e-9

	maxSubsteps = 256
)

var (
	orthogonalWindow = [...]maze.Point{{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	diagonalWindow   = [...]maze.Point{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// GridResolver is an axis-aligned box resolver over the maze lattice. It
// checks the player's cell and its orthogonal neighbours one after another,
// each against the position corrected by the previous one.
type GridResolver struct {
	// Margin is added to the player radius to form the footprint half-extent.
	Margin float64

	// Diagonals extends the window with the four diagonal cells, which
	// catches corner pillars the orthogonal window only sees late.
	Diagonals bool
}

// NewGridResolver returns the resolver configured by p.
func NewGridResolver(p Params) GridResolver {
	return GridResolver{Margin: p.CollisionMargin}
}

// Resolve implements Resolver. It panics if radius is negative or not
// finite.
func (r GridResolver) Resolve(t *maze.Topology, old, proposed, velocity math3d.Vec3, radius float64) (math3d.Vec3, math3d.Vec3) {
	half := r.halfExtent(radius)
	if t == nil || !proposed.IsFinite() || !old.IsFinite() {
		return proposed, velocity
	}

	move := proposed.Sub(old)
	steps := 1
	if d := move.PlanarLen(); half > 0 && d > half {
		steps = min(int(math.Ceil(d/half)), maxSubsteps)
	}

	pos, vel := old, velocity
	touched := false
	step := move.Scale(1 / float64(steps))
	for n := range steps {
		if n == steps-1 && !touched {
			pos = proposed
		} else {
			pos = pos.Add(step)
		}
		var hit bool
		pos, vel, hit = r.separate(t, pos, vel, half)
		touched = touched || hit
	}
	if !touched {
		return proposed, velocity
	}
	pos.Y = proposed.Y
	return pos, vel
}

// Contacts returns every wall in the window around p that the player's
// footprint currently overlaps, without resolving any of them.
func (r GridResolver) Contacts(t *maze.Topology, p math3d.Vec3, radius float64) []Contact {
	half := r.halfExtent(radius)
	var out []Contact
	ci, cj := t.WorldToCell(p)
	for _, cell := range r.window(maze.Point{I: ci, J: cj}) {
		if !t.IsWall(cell.I, cell.J) {
			continue
		}
		if c, ok := penetration(t, cell, p, half); ok {
			out = append(out, c)
		}
	}
	return out
}

func (r GridResolver) halfExtent(radius float64) float64 {
	checkRadius(radius)
	return radius + r.Margin
}

func checkRadius(radius float64) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		panic(fmt.Sprintf("physics: invalid player radius %v", radius))
	}
}

func (r GridResolver) window(center maze.Point) []maze.Point {
	cells := make([]maze.Point, 0, len(orthogonalWindow)+len(diagonalWindow))
	for _, d := range orthogonalWindow {
		cells = append(cells, center.Add(d))
	}
	if r.Diagonals {
		for _, d := range diagonalWindow {
			cells = append(cells, center.Add(d))
		}
	}
	return cells
}

// separate resolves one sub-step position against the window around it.
func (r GridResolver) separate(t *maze.Topology, pos, vel math3d.Vec3, half float64) (math3d.Vec3, math3d.Vec3, bool) {
	hit := false
	ci, cj := t.WorldToCell(pos)
	for _, cell := range r.window(maze.Point{I: ci, J: cj}) {
		if !t.IsWall(cell.I, cell.J) {
			continue
		}
		c, ok := penetration(t, cell, pos, half)
		if !ok {
			continue
		}
		hit = true
		pos = pos.Add(c.Normal.Scale(c.Depth + separationSkin))
		if vn := vel.Dot(c.Normal); vn < 0 {
			vel = vel.Sub(c.Normal.Scale(vn))
		}
	}
	return pos, vel, hit
}

// penetration tests the footprint square centred on p against the wall in
// cell. The depth is the distance to the nearer face on the chosen axis,
// which equals the overlap for shallow contacts.
func penetration(t *maze.Topology, cell maze.Point, p math3d.Vec3, half float64) (Contact, bool) {
	wall := t.CellBox(cell.I, cell.J)
	body := maze.Rect{MinX: p.X - half, MinZ: p.Z - half, MaxX: p.X + half, MaxZ: p.Z + half}
	ox, oz := body.Overlap(wall)
	if ox <= 0 || oz <= 0 {
		return Contact{}, false
	}

	c := wall.Center()
	var dx, dz float64
	var nx, nz float64
	if p.X >= c.X {
		dx, nx = wall.MaxX-body.MinX, 1
	} else {
		dx, nx = body.MaxX-wall.MinX, -1
	}
	if p.Z >= c.Z {
		dz, nz = wall.MaxZ-body.MinZ, 1
	} else {
		dz, nz = body.MaxZ-wall.MinZ, -1
	}

	if dx <= dz+tieEpsilon {
		return Contact{Cell: cell, Normal: math3d.V3(nx, 0, 0), Depth: dx}, true
	}
	return Contact{Cell: cell, Normal: math3d.V3(0, 0, nz), Depth: dz}, true
}
