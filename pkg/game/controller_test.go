package game

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
	"github.com/taigrr/labyrinth/pkg/physics"
)

const fixture = `
#.###
#...#
###.#
#...#
###.#
`

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Maze.Size = 9
	cfg.Maze.Seed = maze.Seed(1)
	return cfg
}

func mustController(t *testing.T, cfg Config) *Controller {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func mustGrid(t *testing.T, text string) *maze.Grid {
	t.Helper()
	g, err := maze.Parse(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return g
}

// withFixture returns a controller whose player stands in the fixture's
// spawn cell (0, 1), centred at (5, 2, 15).
func withFixture(t *testing.T) *Controller {
	t.Helper()
	c := mustController(t, testConfig())
	if err := c.LoadGrid(mustGrid(t, fixture)); err != nil {
		t.Fatalf("LoadGrid: %v", err)
	}
	c.Tick(physics.InputState{}, 0)
	return c
}

func TestNewSpawnsAtFirstOpenCell(t *testing.T) {
	c := mustController(t, testConfig())
	s := c.State()

	want := s.Topology.CellToWorld(0, 1).WithY(2)
	if s.Player.Position != want {
		t.Errorf("spawn = %v, want %v", s.Player.Position, want)
	}
	if s.Player.Velocity != (math3d.Vec3{}) || !s.Player.Grounded {
		t.Errorf("spawned moving: %+v", s.Player)
	}
	if s.Generation == 0 {
		t.Error("generation not set")
	}
	if s.Topology.Grid().Rows() != 9 {
		t.Errorf("rows = %d, want 9", s.Topology.Grid().Rows())
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Maze.Size = 2
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.json")
	if err := os.WriteFile(path, []byte("[[1,0,1],[1,0,1],[1,0,1]]"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.Maze.File = path

	c := mustController(t, cfg)
	if got := c.Topology().Spawn(); got != (maze.Point{I: 0, J: 1}) {
		t.Errorf("spawn = %v", got)
	}
	if c.Topology().Grid().Cols() != 3 {
		t.Errorf("loaded grid = %v", c.Topology().Grid())
	}
}

func TestTickStandingStill(t *testing.T) {
	c := withFixture(t)
	var pose Pose
	for range 30 {
		pose = c.Tick(physics.InputState{Collision: true}, 1.0/30)
	}
	if pose.Position != math3d.V3(5, 2, 15) {
		t.Errorf("position = %v, want (5, 2, 15)", pose.Position)
	}
	if pose.Cell != (maze.Point{I: 0, J: 1}) || !pose.Grounded {
		t.Errorf("pose = %+v", pose)
	}
}

func TestTickWallStopsPlayer(t *testing.T) {
	// Heading π turns forward from -Z to +Z, straight at wall (0, 2).
	in := physics.InputState{Forward: true, Sprint: true, Heading: math.Pi}

	t.Run("collision on", func(t *testing.T) {
		c := withFixture(t)
		var pose Pose
		for range 120 {
			pose = c.Tick(in, 1.0/30)
		}
		if pose.Position.Z > 19.2 {
			t.Errorf("z = %v, want stopped before 19.2", pose.Position.Z)
		}
		if pose.Cell != (maze.Point{I: 0, J: 1}) {
			t.Errorf("cell = %v, want (0, 1)", pose.Cell)
		}
	})

	t.Run("collision off", func(t *testing.T) {
		c := withFixture(t)
		c.SetCollision(false)
		var pose Pose
		for range 120 {
			pose = c.Tick(in, 1.0/30)
		}
		if pose.Position.Z < 20 {
			t.Errorf("z = %v, want through the wall", pose.Position.Z)
		}
	})

	t.Run("input flag overrides", func(t *testing.T) {
		c := withFixture(t)
		c.SetCollision(false)
		in := in
		in.Collision = true
		var pose Pose
		for range 120 {
			pose = c.Tick(in, 1.0/30)
		}
		if pose.Position.Z > 19.2 {
			t.Errorf("z = %v, want stopped", pose.Position.Z)
		}
	})
}

func TestTickLongStallDoesNotTunnel(t *testing.T) {
	c := withFixture(t)
	in := physics.InputState{Forward: true, Sprint: true, Heading: math.Pi}
	for range 10 {
		c.Tick(in, 5)
	}
	pose := c.Pose()
	if pose.Position.Z > 19.2 {
		t.Errorf("z = %v after long stalls", pose.Position.Z)
	}
}

func TestRegenerate(t *testing.T) {
	c := mustController(t, testConfig())
	before := c.State()

	if err := c.Regenerate(maze.Seed(99)); err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if c.State().Generation != before.Generation {
		t.Error("state changed before the next tick")
	}

	c.Tick(physics.InputState{}, 0)
	after := c.State()
	if after.Generation <= before.Generation {
		t.Errorf("generation %d -> %d", before.Generation, after.Generation)
	}
	want, _ := maze.Generate(9, maze.Seed(99))
	if !after.Topology.Grid().Equal(want) {
		t.Error("regenerated maze does not match its seed")
	}
	sp := after.Topology.Spawn()
	if after.Player.Position != after.Topology.CellToWorld(sp.I, sp.J).WithY(2) {
		t.Errorf("player not respawned: %v", after.Player.Position)
	}
}

func TestReplacementFailureKeepsMaze(t *testing.T) {
	tests := []struct {
		name    string
		replace func(*Controller) error
		want    error
	}{
		{"malformed json", func(c *Controller) error { return c.Load(strings.NewReader("[[0,2]]")) }, maze.ErrMalformedMaze},
		{"all walls", func(c *Controller) error { return c.LoadGrid(mustGrid(t, "###\n###")) }, maze.ErrNoOpenCell},
		{"nil grid", func(c *Controller) error { return c.LoadGrid(nil) }, maze.ErrMalformedMaze},
		{"missing file", func(c *Controller) error { return c.LoadFile(filepath.Join(t.TempDir(), "nope.json")) }, os.ErrNotExist},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := mustController(t, testConfig())
			topo := c.Topology()
			if err := tc.replace(c); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
			if c.Topology() != topo {
				t.Error("maze replaced despite error")
			}
		})
	}
}

func TestRegenerateInvalidSize(t *testing.T) {
	cfg := testConfig()
	c := mustController(t, cfg)
	topo := c.Topology()

	c.cfg.Maze.Size = 1
	if err := c.Regenerate(nil); !errors.Is(err, maze.ErrInvalidSize) {
		t.Errorf("err = %v, want ErrInvalidSize", err)
	}
	if c.Topology() != topo {
		t.Error("maze replaced despite error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	c := mustController(t, testConfig())
	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other := mustController(t, testConfig())
	if err := other.Regenerate(maze.Seed(7)); err != nil {
		t.Fatal(err)
	}
	if err := other.Load(&buf); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !other.Topology().Grid().Equal(c.Topology().Grid()) {
		t.Error("round trip changed the maze")
	}
}

func TestCollisionToggle(t *testing.T) {
	c := mustController(t, testConfig())
	if !c.Collision() {
		t.Fatal("collision should start enabled")
	}
	if c.ToggleCollision() || c.Collision() {
		t.Error("toggle did not disable")
	}
	if !c.ToggleCollision() || !c.Collision() {
		t.Error("toggle did not re-enable")
	}
}

func TestRespawn(t *testing.T) {
	c := withFixture(t)
	for range 10 {
		c.Tick(physics.InputState{Right: true}, 1.0/30)
	}
	if c.Pose().Position == math3d.V3(5, 2, 15) {
		t.Fatal("player did not move")
	}

	c.Respawn()
	pose := c.Tick(physics.InputState{}, 0)
	if pose.Position != math3d.V3(5, 2, 15) || pose.Velocity != (math3d.Vec3{}) {
		t.Errorf("after respawn: %+v", pose)
	}
}

func TestPoseAtExit(t *testing.T) {
	topo, err := maze.NewTopology(mustGrid(t, fixture), maze.DefaultCellSize)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		cell maze.Point
		want bool
	}{
		{maze.Point{I: 4, J: 3}, true},
		{maze.Point{I: 3, J: 3}, false},
		{maze.Point{I: 0, J: 1}, false},
	}
	for _, tc := range tests {
		p := physics.PlayerState{Position: topo.CellToWorld(tc.cell.I, tc.cell.J)}
		if got := poseOf(topo, p); got.AtExit != tc.want || got.Cell != tc.cell {
			t.Errorf("pose at %v = %+v, want AtExit %v", tc.cell, got, tc.want)
		}
	}
}

func TestConcurrentRegenerate(t *testing.T) {
	c := mustController(t, testConfig())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 20 {
			_ = c.Regenerate(maze.Seed(uint64(i)))
			c.Respawn()
		}
	}()

	for range 200 {
		c.Tick(physics.InputState{Forward: true, Heading: 1}, 1.0/60)
	}
	wg.Wait()

	pose := c.Tick(physics.InputState{}, 0)
	s := c.State()
	if s.Topology != c.Topology() {
		t.Error("tick did not pick up the last published maze")
	}
	if s.Topology.Grid().At(pose.Cell.I, pose.Cell.J) == maze.Wall {
		t.Errorf("player inside a wall at %v", pose.Cell)
	}
}

func BenchmarkTick(b *testing.B) {
	c, err := New(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	in := physics.InputState{Forward: true, Right: true, Heading: 0.7}

	for b.Loop() {
		c.Tick(in, 1.0/60)
	}
}
