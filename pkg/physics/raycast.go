package physics

import (
	"github.com/jakecoffman/cp"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
)

// DefaultCollisionDistance is how far ahead of the player RaycastResolver
// looks for walls.
const DefaultCollisionDistance = 1.5

// RaycastResolver casts a short swept segment from the proposed position
// along the direction of travel and removes the movement component into
// every wall face it hits. All hits are summed and applied once.
//
// Wall boxes live in a static chipmunk space that is rebuilt whenever a
// different topology is passed in. A RaycastResolver must not be shared
// between goroutines.
type RaycastResolver struct {
	Distance float64

	topo  *maze.Topology
	space *cp.Space
}

// NewRaycastResolver creates a resolver that probes distance units ahead.
// A non-positive distance selects DefaultCollisionDistance.
func NewRaycastResolver(distance float64) *RaycastResolver {
	if distance <= 0 {
		distance = DefaultCollisionDistance
	}
	return &RaycastResolver{Distance: distance}
}

// Resolve implements Resolver. It panics if radius is negative or not
// finite.
func (r *RaycastResolver) Resolve(t *maze.Topology, old, proposed, velocity math3d.Vec3, radius float64) (math3d.Vec3, math3d.Vec3) {
	checkRadius(radius)
	if t == nil {
		return proposed, velocity
	}
	move := proposed.Sub(old).Planar()
	if move.PlanarLen() == 0 || !move.IsFinite() {
		return proposed, velocity
	}
	r.bind(t)

	dir := move.Normalize()
	start := cp.Vector{X: proposed.X, Y: proposed.Z}
	end := cp.Vector{X: proposed.X + dir.X*r.Distance, Y: proposed.Z + dir.Z*r.Distance}

	var rejection math3d.Vec3
	hit := false
	r.space.SegmentQuery(start, end, radius, cp.SHAPE_FILTER_ALL, func(_ *cp.Shape, _, normal cp.Vector, _ float64, _ interface{}) {
		n := math3d.V3(normal.X, 0, normal.Y)
		if d := move.Dot(n); d < 0 {
			rejection = rejection.Add(n.Scale(d))
			hit = true
		}
	}, nil)
	if !hit {
		return proposed, velocity
	}

	pos := proposed.Sub(rejection)
	if n := rejection.Normalize(); n != (math3d.Vec3{}) {
		velocity = velocity.Reject(n)
	}
	return pos, velocity
}

// bind rebuilds the static wall space when t differs from the last
// topology seen.
func (r *RaycastResolver) bind(t *maze.Topology) {
	if r.topo == t && r.space != nil {
		return
	}
	space := cp.NewSpace()
	for _, w := range t.Walls() {
		box := t.CellBox(w.I, w.J)
		shape := cp.NewBox2(space.StaticBody, cp.BB{L: box.MinX, B: box.MinZ, R: box.MaxX, T: box.MaxZ}, 0)
		space.AddShape(shape)
	}
	r.topo, r.space = t, space
}
