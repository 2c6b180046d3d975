package render

import (
	"testing"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
)

func TestMinimapDraw(t *testing.T) {
	g, err := maze.Parse("#####\n#...#\n#.#.#\n#...#\n###.#")
	if err != nil {
		t.Fatal(err)
	}
	topo, err := maze.NewTopology(g, maze.DefaultCellSize)
	if err != nil {
		t.Fatal(err)
	}

	fb := NewFramebuffer(63, 48)
	fb.Clear(ColorBlack)
	m := DefaultMinimap()
	path := []maze.Point{{I: 1, J: 1}, {I: 2, J: 1}, {I: 3, J: 1}}
	m.Draw(fb, topo, topo.CellToWorld(1, 1), 0, path)

	// 5 cells at 3 pixels each, one pixel in from the top-right corner.
	ox, oy := fb.Width-1-15, 1
	at := func(i, j int) Color { return fb.GetPixel(ox+j*3+2, oy+i*3+2) }

	if got := at(0, 0); got != m.WallColor {
		t.Errorf("wall cell = %v, want %v", got, m.WallColor)
	}
	if got := at(4, 3); got != m.ExitColor {
		t.Errorf("exit cell = %v, want %v", got, m.ExitColor)
	}
	if got, want := at(2, 1), lerpColor(ColorBlack, m.PathColor, m.Opacity); got != want {
		t.Errorf("path cell = %v, want %v", got, want)
	}
	if got, want := at(1, 3), lerpColor(ColorBlack, m.OpenColor, m.Opacity); got != want {
		t.Errorf("open cell = %v, want %v", got, want)
	}
	if got := fb.GetPixel(ox+4, oy+4); got != ColorWhite {
		t.Errorf("player pixel = %v, want white", got)
	}
	// Outside the map the view is untouched.
	if got := fb.GetPixel(ox-1, oy+4); got != ColorBlack {
		t.Errorf("pixel left of map = %v", got)
	}
}

func TestMinimapWindowFollowsPlayer(t *testing.T) {
	g, err := maze.Generate(41, maze.Seed(2))
	if err != nil {
		t.Fatal(err)
	}
	topo, err := maze.NewTopology(g, maze.DefaultCellSize)
	if err != nil {
		t.Fatal(err)
	}

	// Too small for the whole maze even at one pixel per cell.
	fb := NewFramebuffer(60, 30)
	m := DefaultMinimap()
	m.Draw(fb, topo, math3d.V3(405, 2, 405), 0, nil)

	if got := windowStart(40, 10, 41); got != 31 {
		t.Errorf("windowStart at edge = %d, want 31", got)
	}
	if got := windowStart(2, 10, 41); got != 0 {
		t.Errorf("windowStart near origin = %d, want 0", got)
	}
	if got := windowStart(20, 10, 41); got != 15 {
		t.Errorf("windowStart centred = %d, want 15", got)
	}
}
