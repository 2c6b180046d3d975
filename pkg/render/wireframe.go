package render

import (
	"math"

	"github.com/taigrr/labyrinth/pkg/math3d"
)

// lineDepthBias lets lines lying on a surface win the depth test against it.
const lineDepthBias = 1e-4

// DrawLine3D draws a depth-tested line between two world points. The part
// of the line behind the near plane is cut away.
func (r *Rasterizer) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	viewProj := r.camera.ViewProjectionMatrix()
	a := viewProj.MulVec4(math3d.V4FromV3(p1, 1))
	b := viewProj.MulVec4(math3d.V4FromV3(p2, 1))

	da, db := a.Z+a.W, b.Z+b.W
	switch {
	case da < 0 && db < 0:
		return
	case da < 0:
		a = a.Lerp(b, da/(da-db))
	case db < 0:
		b = a.Lerp(b, da/(da-db))
	}

	x0, y0 := ndcToScreen(a.X/a.W, a.Y/a.W, r.Width(), r.Height())
	x1, y1 := ndcToScreen(b.X/b.W, b.Y/b.W, r.Width(), r.Height())
	z0, z1 := a.Z/a.W, b.Z/b.W

	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	// Lines that project far off screen are not worth walking.
	if steps > 4*(r.Width()+r.Height()) {
		return
	}
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		x := int(math.Floor(x0 + (x1-x0)*t))
		y := int(math.Floor(y0 + (y1-y0)*t))
		z := z0 + (z1-z0)*t
		if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
			continue
		}
		if z-lineDepthBias <= r.getDepth(x, y) {
			r.fb.SetPixel(x, y, color)
		}
	}
}

// DrawPath draws a polyline through world points.
func (r *Rasterizer) DrawPath(points []math3d.Vec3, color Color) {
	for i := 1; i < len(points); i++ {
		r.DrawLine3D(points[i-1], points[i], color)
	}
}
