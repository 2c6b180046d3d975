package models

import (
	"fmt"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
)

// DefaultWallHeight is the height of a wall box in world units.
const DefaultWallHeight = 5.0

// Material slots of a maze mesh.
const (
	MaterialWall  = 0
	MaterialFloor = 1
)

// wallSide is one vertical face of a wall box and the neighbour it faces.
type wallSide struct {
	neighbour maze.Point
	normal    math3d.Vec3
}

var wallSides = [4]wallSide{
	{maze.Point{I: -1}, math3d.V3(-1, 0, 0)},
	{maze.Point{I: 1}, math3d.V3(1, 0, 0)},
	{maze.Point{J: -1}, math3d.V3(0, 0, -1)},
	{maze.Point{J: 1}, math3d.V3(0, 0, 1)},
}

// BuildMaze converts a topology into a renderable mesh. Every wall cell
// becomes a box of height wallHeight; only its top and the sides that face
// open or out-of-range cells are emitted. Every open cell gets a floor tile.
// Each cell's faces form one group so the renderer can cull them together.
// A non-positive wallHeight selects DefaultWallHeight.
func BuildMaze(t *maze.Topology, wallHeight float64) *Mesh {
	if wallHeight <= 0 {
		wallHeight = DefaultWallHeight
	}

	m := NewMesh("labyrinth")
	m.Materials = []Material{
		{Name: "wall", BaseColor: [4]float64{0.55, 0.35, 0.25, 1}},
		{Name: "floor", BaseColor: [4]float64{0.45, 0.45, 0.42, 1}},
	}

	g := t.Grid()
	for i := range g.Rows() {
		for j := range g.Cols() {
			box := t.CellBox(i, j)
			m.beginGroup(fmt.Sprintf("cell %d,%d", i, j))
			if t.IsWall(i, j) {
				m.addWallBox(t, maze.Point{I: i, J: j}, box, wallHeight)
			} else {
				m.addHorizontal(box, 0, MaterialFloor)
			}
			m.endGroup()
		}
	}

	m.CalculateBounds()
	return m
}

// addWallBox emits the top and the exposed sides of one wall cell.
func (m *Mesh) addWallBox(t *maze.Topology, p maze.Point, box maze.Rect, h float64) {
	m.addHorizontal(box, h, MaterialWall)

	// Side textures keep the same texel density as the top.
	v := h / t.CellSize()
	uvs := [4]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: v}, {X: 0, Y: v}}

	for _, side := range wallSides {
		n := p.Add(side.neighbour)
		if t.IsWall(n.I, n.J) {
			continue
		}
		m.addQuad(sideCorners(box, h, side.normal), uvs, side.normal, MaterialWall)
	}
}

// addHorizontal emits an upward-facing quad covering box at height y.
func (m *Mesh) addHorizontal(box maze.Rect, y float64, material int) {
	corners := [4]math3d.Vec3{
		math3d.V3(box.MinX, y, box.MinZ),
		math3d.V3(box.MinX, y, box.MaxZ),
		math3d.V3(box.MaxX, y, box.MaxZ),
		math3d.V3(box.MaxX, y, box.MinZ),
	}
	uvs := [4]math3d.Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	m.addQuad(corners, uvs, math3d.Up(), material)
}

// sideCorners returns the corners of the vertical face of box whose
// outward normal is n, counter-clockwise seen from outside.
func sideCorners(box maze.Rect, h float64, n math3d.Vec3) [4]math3d.Vec3 {
	x0, x1, z0, z1 := box.MinX, box.MaxX, box.MinZ, box.MaxZ
	switch {
	case n.X < 0:
		return [4]math3d.Vec3{{X: x0, Z: z0}, {X: x0, Z: z1}, {X: x0, Y: h, Z: z1}, {X: x0, Y: h, Z: z0}}
	case n.X > 0:
		return [4]math3d.Vec3{{X: x1, Z: z1}, {X: x1, Z: z0}, {X: x1, Y: h, Z: z0}, {X: x1, Y: h, Z: z1}}
	case n.Z < 0:
		return [4]math3d.Vec3{{X: x1, Z: z0}, {X: x0, Z: z0}, {X: x0, Y: h, Z: z0}, {X: x1, Y: h, Z: z0}}
	default:
		return [4]math3d.Vec3{{X: x0, Z: z1}, {X: x1, Z: z1}, {X: x1, Y: h, Z: z1}, {X: x0, Y: h, Z: z1}}
	}
}
