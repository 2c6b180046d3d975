// Package models provides triangle meshes for the renderer: the maze
// geometry built from a topology, and glTF import and export.
package models

import (
	"github.com/taigrr/labyrinth/pkg/math3d"
)

// Mesh represents a 3D mesh with vertices, faces, and materials.
//
// Faces are wound clockwise when seen from the side their normal points to,
// which is what the rasterizer treats as front-facing.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Groups partition Faces into contiguous runs that are culled together.
	Groups []Group

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face represents a triangle face with vertex indices and material reference.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is a named surface with a base color.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
}

// Group is a run of faces, Faces[First:First+Count], with its own bounds.
type Group struct {
	Name      string
	First     int
	Count     int
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box of the mesh and of
// every group.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}

	for gi := range m.Groups {
		g := &m.Groups[gi]
		first := true
		for _, f := range m.Faces[g.First : g.First+g.Count] {
			for _, vi := range f.V {
				p := m.Vertices[vi].Position
				if first {
					g.BoundsMin, g.BoundsMax = p, p
					first = false
					continue
				}
				g.BoundsMin = g.BoundsMin.Min(p)
				g.BoundsMax = g.BoundsMax.Max(p)
			}
		}
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// CalculateNormals computes flat face normals and assigns them to vertices.
func (m *Mesh) CalculateNormals() {
	for i := range m.Faces {
		f := &m.Faces[i]
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position

		// Clockwise winding: the front side is e2 x e1.
		normal := v2.Sub(v0).Cross(v1.Sub(v0)).Normalize()

		m.Vertices[f.V[0]].Normal = normal
		m.Vertices[f.V[1]].Normal = normal
		m.Vertices[f.V[2]].Normal = normal
	}
}

// GetVertex returns the position, normal, and UV for vertex i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.Vertices[i]
	return v.Position, v.Normal, v.UV
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}

// GetFaceMaterial returns the material index for face i.
// Returns -1 if no material assigned.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// MaterialCount returns the number of materials.
func (m *Mesh) MaterialCount() int {
	return len(m.Materials)
}

// MaterialIndex returns the index of the named material, or -1.
func (m *Mesh) MaterialIndex(name string) int {
	for i, mat := range m.Materials {
		if mat.Name == name {
			return i
		}
	}
	return -1
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// GroupCount returns the number of face groups. A mesh without groups
// reports one group spanning every face.
// Implements render.GroupedMesh interface.
func (m *Mesh) GroupCount() int {
	if len(m.Groups) == 0 {
		return 1
	}
	return len(m.Groups)
}

// GetGroup returns the face range and bounds of group i.
// Implements render.GroupedMesh interface.
func (m *Mesh) GetGroup(i int) (first, count int, min, max math3d.Vec3) {
	if len(m.Groups) == 0 {
		return 0, len(m.Faces), m.BoundsMin, m.BoundsMax
	}
	g := m.Groups[i]
	return g.First, g.Count, g.BoundsMin, g.BoundsMax
}

// beginGroup opens a new group at the current end of Faces.
func (m *Mesh) beginGroup(name string) {
	m.Groups = append(m.Groups, Group{Name: name, First: len(m.Faces)})
}

// endGroup closes the last group, dropping it when it stayed empty.
func (m *Mesh) endGroup() {
	g := &m.Groups[len(m.Groups)-1]
	g.Count = len(m.Faces) - g.First
	if g.Count == 0 {
		m.Groups = m.Groups[:len(m.Groups)-1]
	}
}

// addQuad appends a planar quad. corners are listed counter-clockwise as
// seen from the front: bottom-left, bottom-right, top-right, top-left.
func (m *Mesh) addQuad(corners [4]math3d.Vec3, uvs [4]math3d.Vec2, normal math3d.Vec3, material int) {
	base := len(m.Vertices)
	for k := range corners {
		m.Vertices = append(m.Vertices, MeshVertex{Position: corners[k], Normal: normal, UV: uvs[k]})
	}
	m.Faces = append(m.Faces,
		Face{V: [3]int{base, base + 2, base + 1}, Material: material},
		Face{V: [3]int{base, base + 3, base + 2}, Material: material},
	)
}
