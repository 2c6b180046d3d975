package render

import (
	"math"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
)

// Minimap draws a top-down view of the maze in a corner of the framebuffer.
// Rows run down the map and columns across, the same way the maze prints.
type Minimap struct {
	Scale   int     // Pixels per cell; shrunk when the map does not fit
	Margin  int     // Gap to the framebuffer edge
	MaxFrac float64 // Largest share of either framebuffer side the map may cover
	Opacity float64 // Opacity of open cells over the 3D view

	WallColor   Color
	OpenColor   Color
	PlayerColor Color
	ExitColor   Color
	PathColor   Color
}

// DefaultMinimap returns a map that covers at most a third of the screen.
func DefaultMinimap() Minimap {
	return Minimap{
		Scale:       3,
		Margin:      1,
		MaxFrac:     1.0 / 3,
		Opacity:     0.6,
		WallColor:   RGB(90, 60, 45),
		OpenColor:   RGB(20, 20, 24),
		PlayerColor: ColorYellow,
		ExitColor:   ColorGreen,
		PathColor:   ColorCyan,
	}
}

// Draw renders the map at the top-right corner. The view is a window of
// cells centred on the player when the whole maze does not fit. path, if
// set, is highlighted on the open cells.
func (m Minimap) Draw(fb *Framebuffer, t *maze.Topology, player math3d.Vec3, yaw float64, path []maze.Point) {
	g := t.Grid()
	maxW := int(float64(fb.Width) * m.MaxFrac)
	maxH := int(float64(fb.Height) * m.MaxFrac)

	scale := m.Scale
	for scale > 1 && (g.Cols()*scale > maxW || g.Rows()*scale > maxH) {
		scale--
	}
	cols := min(g.Cols(), maxW/scale)
	rows := min(g.Rows(), maxH/scale)
	if cols < 3 || rows < 3 {
		return
	}

	pi, pj := t.WorldToCell(player)
	i0 := windowStart(pi, rows, g.Rows())
	j0 := windowStart(pj, cols, g.Cols())

	ox := fb.Width - m.Margin - cols*scale
	oy := m.Margin

	onPath := make(map[maze.Point]bool, len(path))
	for _, p := range path {
		onPath[p] = true
	}
	exit := t.Exit()

	for i := i0; i < i0+rows; i++ {
		for j := j0; j < j0+cols; j++ {
			x, y := ox+(j-j0)*scale, oy+(i-i0)*scale
			p := maze.Point{I: i, J: j}
			switch {
			case t.IsWall(i, j):
				fb.DrawRect(x, y, scale, scale, m.WallColor)
			case p == exit:
				fb.DrawRect(x, y, scale, scale, m.ExitColor)
			case onPath[p]:
				m.blendRect(fb, x, y, scale, m.PathColor)
			default:
				m.blendRect(fb, x, y, scale, m.OpenColor)
			}
		}
	}

	// Player marker with a heading tick.
	cell := t.CellSize()
	px := float64(ox) + (player.Z/cell-float64(j0))*float64(scale)
	py := float64(oy) + (player.X/cell-float64(i0))*float64(scale)
	fwd := math3d.V3(0, 0, -1).RotateY(yaw)
	tick := 1.5 * float64(scale)
	fb.DrawLine(int(px), int(py), int(px+fwd.Z*tick), int(py+fwd.X*tick), m.PlayerColor)
	fb.SetPixel(int(math.Floor(px)), int(math.Floor(py)), ColorWhite)
}

func (m Minimap) blendRect(fb *Framebuffer, x, y, size int, c Color) {
	for py := y; py < y+size; py++ {
		for px := x; px < x+size; px++ {
			fb.Blend(px, py, c, m.Opacity)
		}
	}
}

// windowStart returns the first index of a span of n out of total entries
// that keeps center in the middle where possible.
func windowStart(center, n, total int) int {
	return max(0, min(center-n/2, total-n))
}
