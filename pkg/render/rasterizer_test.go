package render

import (
	"math"
	"testing"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
	"github.com/taigrr/labyrinth/pkg/models"
)

var _ GroupedMesh = (*models.Mesh)(nil)

// mockMesh implements GroupedMesh for testing.
type mockMesh struct {
	vertices []struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}
	faces     [][3]int
	materials []int
	groups    [][2]int // first, count
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2) {
	v := m.vertices[i]
	return v.pos, v.normal, v.uv
}
func (m *mockMesh) GetFaceMaterial(i int) int { return m.materials[i] }
func (m *mockMesh) GroupCount() int           { return len(m.groups) }
func (m *mockMesh) GetGroup(i int) (first, count int, min, max math3d.Vec3) {
	first, count = m.groups[i][0], m.groups[i][1]
	min = m.vertices[m.faces[first][0]].pos
	max = min
	for _, f := range m.faces[first : first+count] {
		for _, vi := range f {
			min = min.Min(m.vertices[vi].pos)
			max = max.Max(m.vertices[vi].pos)
		}
	}
	return first, count, min, max
}

// addTriangle appends a triangle with a shared normal and material.
func (m *mockMesh) addTriangle(a, b, c, n math3d.Vec3, material int) {
	base := len(m.vertices)
	for _, p := range []math3d.Vec3{a, b, c} {
		m.vertices = append(m.vertices, struct {
			pos    math3d.Vec3
			normal math3d.Vec3
			uv     math3d.Vec2
		}{pos: p, normal: n})
	}
	m.faces = append(m.faces, [3]int{base, base + 1, base + 2})
	m.materials = append(m.materials, material)
}

// createTestRasterizer creates a rasterizer looking down -Z at the origin
// from z=10, with flat full-bright lighting.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPose(math3d.V3(0, 0, 10), 0, 0)
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(math.Pi / 3)
	rasterizer := NewRasterizer(camera, fb)
	rasterizer.Light = Light{Ambient: 1}
	rasterizer.BeginFrame(ColorSky)
	return rasterizer, fb
}

// frontTriangle faces +Z, wound clockwise as seen from the camera.
func frontTriangle(z float64, color Color) Triangle {
	n := math3d.V3(0, 0, 1)
	return Triangle{
		V: [3]Vertex{
			{Position: math3d.V3(-5, -5, z), Normal: n, Color: color},
			{Position: math3d.V3(0, 5, z), Normal: n, Color: color},
			{Position: math3d.V3(5, -5, z), Normal: n, Color: color},
		},
	}
}

func colorNear(a, b Color, tol int) bool {
	return absInt(int(a.R)-int(b.R)) <= tol &&
		absInt(int(a.G)-int(b.G)) <= tol &&
		absInt(int(a.B)-int(b.B)) <= tol
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestDrawTriangleLighting(t *testing.T) {
	tests := []struct {
		name   string
		light  Light
		normal math3d.Vec3
		want   Color
	}{
		{"facing light", Light{Dir: math3d.V3(0, 0, 1), Ambient: 0.5}, math3d.V3(0, 0, 1), RGB(200, 200, 200)},
		{"perpendicular", Light{Dir: math3d.V3(0, 0, 1), Ambient: 0.5}, math3d.V3(1, 0, 0), RGB(100, 100, 100)},
		{"away from light", Light{Dir: math3d.V3(0, 0, 1), Ambient: 0.25}, math3d.V3(0, 0, -1), RGB(50, 50, 50)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			r.Light = tc.light

			tri := frontTriangle(0, RGB(200, 200, 200))
			for i := range tri.V {
				tri.V[i].Normal = tc.normal
			}
			r.DrawTriangle(tri, nil)

			if got := fb.GetPixel(50, 50); !colorNear(got, tc.want, 1) {
				t.Errorf("center pixel = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDrawTriangleBackfaceCulling(t *testing.T) {
	back := frontTriangle(0, ColorYellow)
	back.V[1], back.V[2] = back.V[2], back.V[1]

	r, fb := createTestRasterizer(100, 100)
	r.DrawTriangle(back, nil)
	if got := fb.GetPixel(50, 50); got != ColorSky {
		t.Errorf("back face drawn: center pixel = %v", got)
	}

	r.DisableBackfaceCulling = true
	r.DrawTriangle(back, nil)
	if got := fb.GetPixel(50, 50); !colorNear(got, ColorYellow, 1) {
		t.Errorf("two-sided back face: center pixel = %v, want %v", got, ColorYellow)
	}
}

func TestDrawTriangleDepthTest(t *testing.T) {
	near := frontTriangle(0, ColorGreen)
	far := frontTriangle(-5, ColorCyan)

	for _, order := range [][2]Triangle{{near, far}, {far, near}} {
		r, fb := createTestRasterizer(100, 100)
		r.DrawTriangle(order[0], nil)
		r.DrawTriangle(order[1], nil)
		if got := fb.GetPixel(50, 50); !colorNear(got, ColorGreen, 1) {
			t.Errorf("center pixel = %v, want the nearer triangle", got)
		}
	}
}

func TestDrawTriangleTextured(t *testing.T) {
	red := NewTexture(2, 2)
	for i := range red.Pixels {
		red.Pixels[i] = RGB(255, 0, 0)
	}

	tests := []struct {
		name  string
		color Color
		want  Color
	}{
		{"white vertices", ColorWhite, RGB(255, 0, 0)},
		{"gray vertices", RGB(128, 128, 128), RGB(128, 0, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, fb := createTestRasterizer(100, 100)
			r.DrawTriangle(frontTriangle(0, tc.color), red)
			if got := fb.GetPixel(50, 50); !colorNear(got, tc.want, 1) {
				t.Errorf("center pixel = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDrawTriangleFog(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.Fog = Fog{Color: RGB(10, 20, 30), Near: 1, Far: 5}

	r.DrawTriangle(frontTriangle(0, ColorWhite), nil)
	if got := fb.GetPixel(50, 50); !colorNear(got, r.Fog.Color, 1) {
		t.Errorf("center pixel = %v, want fog color %v", got, r.Fog.Color)
	}

	if f := r.Fog.factor(3); math.Abs(f-0.5) > 1e-12 {
		t.Errorf("factor(3) = %v, want 0.5", f)
	}
	if f := (Fog{}).factor(100); f != 0 {
		t.Errorf("disabled fog factor = %v", f)
	}
}

func TestNearPlaneClipping(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.camera.SetPose(math3d.V3(0, 2, 0), 0, 0)
	floor := RGB(100, 150, 200)

	// A floor that extends far behind the eye.
	up := math3d.Up()
	p := [4]math3d.Vec3{
		math3d.V3(-50, 0, -50), math3d.V3(-50, 0, 50),
		math3d.V3(50, 0, 50), math3d.V3(50, 0, -50),
	}
	for _, tri := range [][3]int{{0, 2, 1}, {0, 3, 2}} {
		r.DrawTriangle(Triangle{V: [3]Vertex{
			{Position: p[tri[0]], Normal: up, Color: floor},
			{Position: p[tri[1]], Normal: up, Color: floor},
			{Position: p[tri[2]], Normal: up, Color: floor},
		}}, nil)
	}

	if r.Stats.TrianglesClipped == 0 {
		t.Error("expected the floor to be clipped by the near plane")
	}
	if got := fb.GetPixel(50, 99); !colorNear(got, floor, 1) {
		t.Errorf("bottom pixel = %v, want floor %v", got, floor)
	}
	if got := fb.GetPixel(50, 0); got != ColorSky {
		t.Errorf("top pixel = %v, want sky", got)
	}
}

func TestClipNear(t *testing.T) {
	in := func(z ...float64) [3]clipVertex {
		var cv [3]clipVertex
		for i := range cv {
			// w = 1, so the vertex is in front of the near plane when z >= -1.
			cv[i].pos = math3d.V4(float64(i), 0, z[i], 1)
		}
		return cv
	}

	tests := []struct {
		name string
		tri  [3]clipVertex
		want int
	}{
		{"all in front", in(0, 0, 0), 3},
		{"one behind", in(0, 0, -3), 4},
		{"two behind", in(0, -3, -3), 3},
		{"all behind", in(-3, -3, -3), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, n := clipNear(tc.tri)
			if n != tc.want {
				t.Fatalf("clipNear returned %d vertices, want %d", n, tc.want)
			}
			for i := range n {
				if d := out[i].nearDistance(); d < -1e-12 {
					t.Errorf("vertex %d is behind the near plane (d=%v)", i, d)
				}
			}
		})
	}
}

func TestDrawMeshCullsGroups(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	n := math3d.V3(0, 0, 1)

	mesh := &mockMesh{}
	// Group 0: facing the camera
	mesh.addTriangle(math3d.V3(-5, -5, 0), math3d.V3(0, 5, 0), math3d.V3(5, -5, 0), n, 0)
	// Group 1: behind the camera
	mesh.addTriangle(math3d.V3(-5, -5, 20), math3d.V3(0, 5, 20), math3d.V3(5, -5, 20), n, 1)
	mesh.groups = [][2]int{{0, 1}, {1, 1}}

	r.DrawMesh(mesh, []Surface{{Color: ColorGreen}, {Color: ColorCyan}})

	if r.Stats.GroupsTested != 2 || r.Stats.GroupsCulled != 1 {
		t.Errorf("stats = %+v, want 2 tested and 1 culled", r.Stats)
	}
	if got := fb.GetPixel(50, 50); !colorNear(got, ColorGreen, 1) {
		t.Errorf("center pixel = %v, want %v", got, ColorGreen)
	}
}

func TestDrawMeshMissingSurface(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	mesh := &mockMesh{}
	mesh.addTriangle(math3d.V3(-5, -5, 0), math3d.V3(0, 5, 0), math3d.V3(5, -5, 0), math3d.V3(0, 0, 1), 3)
	mesh.groups = [][2]int{{0, 1}}

	r.DrawMesh(mesh, nil)
	if got := fb.GetPixel(50, 50); !colorNear(got, ColorWhite, 1) {
		t.Errorf("center pixel = %v, want white", got)
	}
}

func TestDrawMazeMesh(t *testing.T) {
	g, err := maze.Parse("###\n#.#\n###")
	if err != nil {
		t.Fatal(err)
	}
	topo, err := maze.NewTopology(g, maze.DefaultCellSize)
	if err != nil {
		t.Fatal(err)
	}
	mesh := models.BuildMaze(topo, models.DefaultWallHeight)

	r, fb := createTestRasterizer(80, 60)
	eye := topo.CellToWorld(1, 1).WithY(2)
	r.camera.SetPose(eye, 0, 0)

	wall := RGB(180, 90, 60)
	r.DrawMesh(mesh, []Surface{{Color: wall}, {Color: RGB(60, 60, 60)}})

	// Standing in a closed room: every direction ends at a wall or the floor.
	for _, px := range [][2]int{{40, 10}, {40, 30}, {5, 30}, {75, 30}} {
		if got := fb.GetPixel(px[0], px[1]); !colorNear(got, wall, 1) {
			t.Errorf("pixel %v = %v, want wall", px, got)
		}
	}
	if got := fb.GetPixel(40, 59); !colorNear(got, RGB(60, 60, 60), 1) {
		t.Errorf("bottom pixel = %v, want floor", got)
	}
}

func TestDrawCube(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawCube(math3d.Zero3(), 4, ColorYellow)

	if got := fb.GetPixel(50, 50); !colorNear(got, ColorYellow, 1) {
		t.Errorf("center pixel = %v, want cube", got)
	}
	if got := fb.GetPixel(2, 2); got != ColorSky {
		t.Errorf("corner pixel = %v, want sky", got)
	}
}

func TestDrawLine3DDepth(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawTriangle(frontTriangle(0, ColorGreen), nil)

	// Behind the triangle: hidden.
	r.DrawLine3D(math3d.V3(-1, 0, -5), math3d.V3(1, 0, -5), ColorYellow)
	if got := fb.GetPixel(50, 50); !colorNear(got, ColorGreen, 1) {
		t.Errorf("occluded line drawn: center pixel = %v", got)
	}

	// In front of it: visible.
	r.DrawPath([]math3d.Vec3{math3d.V3(-1, 0, 1), math3d.V3(0, 0, 1), math3d.V3(1, 0, 1)}, ColorYellow)
	if got := fb.GetPixel(50, 50); !colorNear(got, ColorYellow, 1) {
		t.Errorf("center pixel = %v, want line", got)
	}
}

func TestDrawLine3DBehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)
	r.DrawLine3D(math3d.V3(-1, 0, 20), math3d.V3(1, 0, 30), ColorYellow)

	for i, c := range fb.Pixels {
		if c != ColorSky {
			t.Fatalf("pixel %d drawn for a line behind the camera", i)
		}
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	for i := range r.zbuffer {
		r.zbuffer[i] = 0.5
	}
	r.ClearDepth()

	for i, z := range r.zbuffer {
		if z != math.MaxFloat64 {
			t.Fatalf("zbuffer[%d] = %v after clear", i, z)
		}
	}
}

func TestRasterizerDepthBoundsCheck(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	if d := r.getDepth(-1, 0); d != math.MaxFloat64 {
		t.Errorf("getDepth(-1,0) = %v", d)
	}
	if d := r.getDepth(0, 10); d != math.MaxFloat64 {
		t.Errorf("getDepth(0,10) = %v", d)
	}
}

func TestSetFramebuffer(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)
	r.SetFramebuffer(NewFramebuffer(20, 8))

	if r.Width() != 20 || r.Height() != 8 || len(r.zbuffer) != 160 {
		t.Errorf("size = %dx%d (%d depth), want 20x8", r.Width(), r.Height(), len(r.zbuffer))
	}
}

func TestIsSphereVisible(t *testing.T) {
	r, fb := createTestRasterizer(10, 10)
	if r.Framebuffer() != fb {
		t.Fatal("Framebuffer() is not the target passed in")
	}

	tests := []struct {
		name   string
		center math3d.Vec3
		want   bool
	}{
		{"ahead", math3d.V3(0, 0, 0), true},
		{"behind", math3d.V3(0, 0, 20), false},
		{"straddles near plane", math3d.V3(0, 0, 10.5), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.IsSphereVisible(tc.center, 1); got != tc.want {
				t.Errorf("IsSphereVisible(%v) = %v, want %v", tc.center, got, tc.want)
			}
		})
	}
}

func BenchmarkDrawTriangle(b *testing.B) {
	r, _ := createTestRasterizer(200, 100)
	tri := frontTriangle(0, ColorWhite)

	for b.Loop() {
		r.ClearDepth()
		r.DrawTriangle(tri, nil)
	}
}

func BenchmarkDrawMaze(b *testing.B) {
	g, err := maze.Generate(21, maze.Seed(1))
	if err != nil {
		b.Fatal(err)
	}
	topo, err := maze.NewTopology(g, maze.DefaultCellSize)
	if err != nil {
		b.Fatal(err)
	}
	mesh := models.BuildMaze(topo, models.DefaultWallHeight)
	brick := NewBrickTexture(32, 32, 8, 4, RGB(160, 80, 60), RGB(200, 200, 190))

	r, _ := createTestRasterizer(200, 100)
	s := topo.Spawn()
	r.camera.SetPose(topo.CellToWorld(s.I, s.J).WithY(2), math.Pi, 0)
	surfaces := []Surface{{Color: ColorWhite, Texture: brick}, {Color: RGB(90, 90, 90)}}

	for b.Loop() {
		r.BeginFrame(ColorSky)
		r.DrawMesh(mesh, surfaces)
	}
}
