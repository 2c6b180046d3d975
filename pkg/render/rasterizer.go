package render

import (
	"math"

	"github.com/taigrr/labyrinth/pkg/math3d"
)

// Vertex represents a vertex with all attributes needed for rasterization.
type Vertex struct {
	Position math3d.Vec3 // World position
	Normal   math3d.Vec3 // Normal vector (for lighting)
	UV       math3d.Vec2 // Texture coordinates
	Color    Color       // Vertex color
}

// Triangle represents a triangle to be rasterized. Front faces are wound
// clockwise as seen by the viewer.
type Triangle struct {
	V [3]Vertex
}

// Light is a directional light over an ambient floor.
type Light struct {
	Dir     math3d.Vec3 // Direction towards the light
	Ambient float64     // Intensity of faces turned away, 0-1
}

// DefaultLight lights from high above and slightly off-axis so every wall
// orientation gets a distinct shade.
func DefaultLight() Light {
	return Light{Dir: math3d.V3(0.4, 1, 0.25).Normalize(), Ambient: 0.35}
}

func (l Light) intensity(n math3d.Vec3) float64 {
	return l.Ambient + (1-l.Ambient)*math.Max(0, n.Dot(l.Dir))
}

// Fog blends fragments towards Color with view distance.
// Far <= Near disables fog.
type Fog struct {
	Color Color
	Near  float64
	Far   float64
}

func (f Fog) factor(dist float64) float64 {
	if f.Far <= f.Near || dist <= f.Near {
		return 0
	}
	return math.Min(1, (dist-f.Near)/(f.Far-f.Near))
}

// Surface is how faces of one material are painted. A nil Texture paints
// the flat Color.
type Surface struct {
	Color   Color
	Texture *Texture
}

// Stats counts work done since the last BeginFrame.
type Stats struct {
	GroupsTested     int // Face groups tested against the frustum
	GroupsCulled     int // Groups skipped entirely
	TrianglesClipped int // Triangles cut by the near plane
	TrianglesDrawn   int // Triangles that reached the scan loop
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera       *Camera
	fb           *Framebuffer
	zbuffer      []float64 // Depth buffer (1D array, row-major)
	frustum      Frustum   // Cached frustum planes
	frustumDirty bool      // Whether frustum needs recalculation

	Light Light
	Fog   Fog

	Stats                  Stats
	DisableBackfaceCulling bool // If true, render both sides of triangles
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera:       camera,
		fb:           fb,
		frustumDirty: true,
		Light:        DefaultLight(),
	}
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
	r.ClearDepth()
}

// SetFramebuffer switches the render target, e.g. after a terminal resize.
func (r *Rasterizer) SetFramebuffer(fb *Framebuffer) {
	r.fb = fb
	r.Resize()
}

// Framebuffer returns the current render target.
func (r *Rasterizer) Framebuffer() *Framebuffer { return r.fb }

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// BeginFrame clears color and depth, picks up the current camera pose and
// resets Stats.
func (r *Rasterizer) BeginFrame(clear Color) {
	r.fb.Clear(clear)
	r.ClearDepth()
	r.frustumDirty = true
	r.Stats = Stats{}
}

// ClearDepth clears the Z-buffer.
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// updateFrustum recalculates the frustum planes from the camera.
func (r *Rasterizer) updateFrustum() {
	if r.frustumDirty {
		r.frustum = r.camera.Frustum()
		r.frustumDirty = false
	}
}

// IsVisible tests if a world-space AABB is visible in the frustum.
func (r *Rasterizer) IsVisible(box AABB) bool {
	r.updateFrustum()
	return r.frustum.IntersectAABB(box)
}

// IsSphereVisible tests if a world-space sphere is visible in the frustum.
func (r *Rasterizer) IsSphereVisible(center math3d.Vec3, radius float64) bool {
	r.updateFrustum()
	return r.frustum.IntersectsSphere(center, radius)
}

// getDepth returns the depth at (x, y).
func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// clipVertex is a lit vertex in homogeneous clip space.
type clipVertex struct {
	pos math3d.Vec4
	uv  math3d.Vec2
	rgb [3]float64
}

func (a clipVertex) lerp(b clipVertex, t float64) clipVertex {
	return clipVertex{
		pos: a.pos.Lerp(b.pos, t),
		uv:  a.uv.Lerp(b.uv, t),
		rgb: [3]float64{
			a.rgb[0] + (b.rgb[0]-a.rgb[0])*t,
			a.rgb[1] + (b.rgb[1]-a.rgb[1])*t,
			a.rgb[2] + (b.rgb[2]-a.rgb[2])*t,
		},
	}
}

// nearDistance is positive in front of the near plane.
func (a clipVertex) nearDistance() float64 {
	return a.pos.Z + a.pos.W
}

// screenVertex holds a vertex transformed to screen space. Attributes that
// need perspective correction are stored pre-divided by W.
type screenVertex struct {
	X, Y   float64 // Screen coordinates
	Z      float64 // NDC depth (for Z-buffer)
	InvW   float64
	UOverW float64
	VOverW float64
	RGB    [3]float64
}

// DrawTriangle lights, clips and rasterizes a single triangle. tex may be
// nil; otherwise it is modulated by the lit vertex colors.
func (r *Rasterizer) DrawTriangle(tri Triangle, tex *Texture) {
	viewProj := r.camera.ViewProjectionMatrix()

	var cv [3]clipVertex
	for i, v := range tri.V {
		shade := r.Light.intensity(v.Normal)
		cv[i] = clipVertex{
			pos: viewProj.MulVec4(math3d.V4FromV3(v.Position, 1)),
			uv:  v.UV,
			rgb: [3]float64{
				float64(v.Color.R) * shade,
				float64(v.Color.G) * shade,
				float64(v.Color.B) * shade,
			},
		}
	}
	r.drawClipped(cv, tex)
}

func (r *Rasterizer) drawClipped(cv [3]clipVertex, tex *Texture) {
	if outsideFrustum(cv) {
		return
	}

	poly, n := clipNear(cv)
	if n < 3 {
		return
	}
	if n != 3 || poly[0] != cv[0] || poly[1] != cv[1] || poly[2] != cv[2] {
		r.Stats.TrianglesClipped++
	}

	var sv [4]screenVertex
	for i := range n {
		sv[i] = r.toScreen(poly[i])
	}
	// The clipped polygon is convex and keeps the winding of the input.
	for i := 1; i+1 < n; i++ {
		r.rasterize(sv[0], sv[i], sv[i+1], tex)
	}
}

// outsideFrustum reports whether all three vertices lie beyond the same
// side or far plane. The near plane is handled by clipping.
func outsideFrustum(cv [3]clipVertex) bool {
	var left, right, bottom, top, far int
	for _, v := range cv {
		p := v.pos
		if p.X < -p.W {
			left++
		}
		if p.X > p.W {
			right++
		}
		if p.Y < -p.W {
			bottom++
		}
		if p.Y > p.W {
			top++
		}
		if p.Z > p.W {
			far++
		}
	}
	return left == 3 || right == 3 || bottom == 3 || top == 3 || far == 3
}

// clipNear clips a triangle against the near plane (z = -w), returning a
// polygon of zero, three or four vertices.
func clipNear(in [3]clipVertex) (out [4]clipVertex, n int) {
	for i := range 3 {
		a, b := in[i], in[(i+1)%3]
		da, db := a.nearDistance(), b.nearDistance()
		if da >= 0 {
			out[n] = a
			n++
		}
		if (da >= 0) != (db >= 0) {
			out[n] = a.lerp(b, da/(da-db))
			n++
		}
	}
	return out, n
}

func (r *Rasterizer) toScreen(v clipVertex) screenVertex {
	invW := 1 / v.pos.W
	x, y := ndcToScreen(v.pos.X*invW, v.pos.Y*invW, r.Width(), r.Height())
	return screenVertex{
		X:      x,
		Y:      y,
		Z:      v.pos.Z * invW,
		InvW:   invW,
		UOverW: v.uv.X * invW,
		VOverW: v.uv.Y * invW,
		RGB:    v.rgb,
	}
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C, which is
// positive to the right of x0,y0 -> x1,y1 in screen space.
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// rasterize fills a screen-space triangle using edge functions with
// incremental updates. UVs are interpolated perspective-correct; lighting
// is interpolated linearly in screen space.
func (r *Rasterizer) rasterize(v0, v1, v2 screenVertex, tex *Texture) {
	// Backface culling
	cross := (v1.X-v0.X)*(v2.Y-v0.Y) - (v1.Y-v0.Y)*(v2.X-v0.X)
	if cross == 0 {
		return
	}
	if cross < 0 {
		if !r.DisableBackfaceCulling {
			return
		}
		v1, v2 = v2, v1
		cross = -cross
	}

	// Bounding box (clamped to screen)
	minX := int(math.Max(0, math.Floor(min(v0.X, v1.X, v2.X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max(v0.X, v1.X, v2.X))))
	minY := int(math.Max(0, math.Floor(min(v0.Y, v1.Y, v2.Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max(v0.Y, v1.Y, v2.Y))))
	if minX > maxX || minY > maxY {
		return
	}
	r.Stats.TrianglesDrawn++

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(v1.X, v1.Y, v2.X, v2.Y)
	A1, B1, C1 := edgeCoeffs(v2.X, v2.Y, v0.X, v0.Y)
	A2, B2, C2 := edgeCoeffs(v0.X, v0.Y, v1.X, v1.Y)
	invArea := 1.0 / cross

	// Evaluate edge functions at the centre of the top-left pixel
	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := A0*px + B0*py + C0
	w1Row := A1*px + B1*py + C1
	w2Row := A2*px + B2*py + C2

	width := r.Width()
	fog := r.Fog
	fogRGB := [3]float64{float64(fog.Color.R), float64(fog.Color.G), float64(fog.Color.B)}

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		rowOffset := y * width

		for x := minX; x <= maxX; x++ {
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				b0, b1, b2 := w0*invArea, w1*invArea, w2*invArea
				z := b0*v0.Z + b1*v1.Z + b2*v2.Z

				idx := rowOffset + x
				if z < r.zbuffer[idx] {
					r.zbuffer[idx] = z

					var c [3]float64
					for k := range 3 {
						c[k] = b0*v0.RGB[k] + b1*v1.RGB[k] + b2*v2.RGB[k]
					}

					iw := b0*v0.InvW + b1*v1.InvW + b2*v2.InvW
					if tex != nil {
						u := (b0*v0.UOverW + b1*v1.UOverW + b2*v2.UOverW) / iw
						v := (b0*v0.VOverW + b1*v1.VOverW + b2*v2.VOverW) / iw
						t := tex.Sample(u, v)
						c[0] *= float64(t.R) / 255
						c[1] *= float64(t.G) / 255
						c[2] *= float64(t.B) / 255
					}

					if f := fog.factor(1 / iw); f > 0 {
						for k := range 3 {
							c[k] += (fogRGB[k] - c[k]) * f
						}
					}

					r.fb.Pixels[idx] = RGB(channel(c[0]), channel(c[1]), channel(c[2]))
				}
			}

			// Step in X direction
			w0 += A0
			w1 += A1
			w2 += A2
		}

		// Step in Y direction
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
}

func channel(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, v)))
}

// MeshRenderer is the vertex and face access the rasterizer needs.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3, uv math3d.Vec2)
	GetFace(i int) [3]int
}

// GroupedMesh is a world-space mesh whose faces come in runs that share a
// bounding box, each face naming a material slot.
type GroupedMesh interface {
	MeshRenderer
	GetFaceMaterial(i int) int
	GroupCount() int
	GetGroup(i int) (first, count int, min, max math3d.Vec3)
}

// DrawMesh renders a world-space mesh, skipping groups outside the view
// frustum. Face material k is painted with surfaces[k]; faces without a
// matching surface are painted white.
func (r *Rasterizer) DrawMesh(mesh GroupedMesh, surfaces []Surface) {
	r.updateFrustum()
	untextured := Surface{Color: ColorWhite}

	for g := range mesh.GroupCount() {
		first, count, bmin, bmax := mesh.GetGroup(g)
		r.Stats.GroupsTested++
		if !r.frustum.IntersectAABB(NewAABB(bmin, bmax)) {
			r.Stats.GroupsCulled++
			continue
		}

		for i := first; i < first+count; i++ {
			surf := untextured
			if k := mesh.GetFaceMaterial(i); k >= 0 && k < len(surfaces) {
				surf = surfaces[k]
			}

			face := mesh.GetFace(i)
			var tri Triangle
			for j, vi := range face {
				p, n, uv := mesh.GetVertex(vi)
				tri.V[j] = Vertex{Position: p, Normal: n, UV: uv, Color: surf.Color}
			}
			r.DrawTriangle(tri, surf.Texture)
		}
	}
}

// cubeFaces lists each cube face as corner indices and its outward normal.
var cubeFaces = [6]struct {
	corners [4]int
	normal  math3d.Vec3
}{
	{[4]int{0, 1, 2, 3}, math3d.Vec3{Z: -1}}, // Back
	{[4]int{5, 4, 7, 6}, math3d.Vec3{Z: 1}},  // Front
	{[4]int{4, 0, 3, 7}, math3d.Vec3{X: -1}}, // Left
	{[4]int{1, 5, 6, 2}, math3d.Vec3{X: 1}},  // Right
	{[4]int{3, 2, 6, 7}, math3d.Vec3{Y: 1}},  // Top
	{[4]int{4, 5, 1, 0}, math3d.Vec3{Y: -1}}, // Bottom
}

// DrawCube draws a solid axis-aligned cube.
func (r *Rasterizer) DrawCube(center math3d.Vec3, size float64, color Color) {
	h := size / 2
	if !r.IsVisible(NewAABB(center.Sub(math3d.V3(h, h, h)), center.Add(math3d.V3(h, h, h)))) {
		return
	}

	v := [8]math3d.Vec3{
		{X: center.X - h, Y: center.Y - h, Z: center.Z - h}, // 0: left-bottom-back
		{X: center.X + h, Y: center.Y - h, Z: center.Z - h}, // 1: right-bottom-back
		{X: center.X + h, Y: center.Y + h, Z: center.Z - h}, // 2: right-top-back
		{X: center.X - h, Y: center.Y + h, Z: center.Z - h}, // 3: left-top-back
		{X: center.X - h, Y: center.Y - h, Z: center.Z + h}, // 4: left-bottom-front
		{X: center.X + h, Y: center.Y - h, Z: center.Z + h}, // 5: right-bottom-front
		{X: center.X + h, Y: center.Y + h, Z: center.Z + h}, // 6: right-top-front
		{X: center.X - h, Y: center.Y + h, Z: center.Z + h}, // 7: left-top-front
	}

	for _, f := range cubeFaces {
		c := f.corners
		a := Vertex{Position: v[c[0]], Normal: f.normal, Color: color}
		b := Vertex{Position: v[c[1]], Normal: f.normal, Color: color}
		d := Vertex{Position: v[c[2]], Normal: f.normal, Color: color}
		e := Vertex{Position: v[c[3]], Normal: f.normal, Color: color}
		r.DrawTriangle(Triangle{V: [3]Vertex{a, b, d}}, nil)
		r.DrawTriangle(Triangle{V: [3]Vertex{a, d, e}}, nil)
	}
}
