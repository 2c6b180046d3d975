package main

import (
	"math"
	"time"

	"github.com/taigrr/labyrinth/pkg/game"
	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
	"github.com/taigrr/labyrinth/pkg/models"
	"github.com/taigrr/labyrinth/pkg/render"
)

var (
	colorBrick  = render.RGB(150, 82, 60)
	colorMortar = render.RGB(190, 180, 165)
	colorWood   = render.RGB(156, 120, 80)
	colorSeam   = render.RGB(90, 64, 40)
	colorBeacon = render.RGB(80, 255, 120)
	colorHint   = render.RGB(255, 220, 60)
)

// Scene owns everything drawn for one maze generation: the mesh rebuilt
// when the controller publishes a new maze, the wall and floor surfaces,
// and the overlays toggled from the keyboard.
type Scene struct {
	Camera     *render.Camera
	Rasterizer *render.Rasterizer
	Minimap    render.Minimap

	ShowMinimap bool
	ShowPath    bool

	wallHeight float64
	surfaces   []render.Surface

	generation uint64
	topo       *maze.Topology
	mesh       *models.Mesh
	path       []maze.Point
	pathFrom   maze.Point
}

// NewScene prepares the camera and textures. wallTex replaces the brick
// texture when non-nil.
func NewScene(cfg game.Config, fb *render.Framebuffer, wallTex *render.Texture) *Scene {
	cam := render.NewCamera()
	cam.SetFOV(cfg.View.FOV * math.Pi / 180)
	cam.SetAspectRatio(float64(fb.Width) / float64(fb.Height))

	if wallTex == nil {
		wallTex = render.NewBrickTexture(64, 32, 16, 8, colorBrick, colorMortar)
	}
	floorTex := render.NewPlankTexture(64, 64, 16, colorWood, colorSeam)

	rast := render.NewRasterizer(cam, fb)
	rast.Fog = render.Fog{
		Color: render.ColorSky,
		Near:  cfg.Maze.CellSize * 2,
		Far:   cfg.Maze.CellSize * 8,
	}
	// Nothing past full fog can be seen.
	cam.SetClipPlanes(0.1, rast.Fog.Far+cfg.Maze.CellSize)

	surfaces := make([]render.Surface, 2)
	surfaces[models.MaterialWall] = render.Surface{Color: render.ColorWhite, Texture: wallTex}
	surfaces[models.MaterialFloor] = render.Surface{Color: render.ColorWhite, Texture: floorTex}

	return &Scene{
		Camera:      cam,
		Rasterizer:  rast,
		Minimap:     render.DefaultMinimap(),
		ShowMinimap: cfg.View.Minimap,
		wallHeight:  cfg.Maze.WallHeight,
		surfaces:    surfaces,
	}
}

// Sync rebuilds the mesh when st belongs to a new maze generation. It
// reports whether a rebuild happened.
func (s *Scene) Sync(st game.GameState) bool {
	if s.mesh != nil && st.Generation == s.generation {
		return false
	}
	s.generation = st.Generation
	s.topo = st.Topology
	s.mesh = models.BuildMaze(st.Topology, s.wallHeight)
	s.path = nil
	return true
}

// Resize points the scene at a new framebuffer.
func (s *Scene) Resize(fb *render.Framebuffer) {
	s.Rasterizer.SetFramebuffer(fb)
	s.Camera.SetAspectRatio(float64(fb.Width) / float64(fb.Height))
}

// Steps returns the length of the shortest walk from cell to the exit, or
// -1 if there is none. The path is cached until the player changes cell.
func (s *Scene) Steps(cell maze.Point) int {
	if s.path == nil || cell != s.pathFrom {
		s.pathFrom = cell
		s.path = maze.Solve(s.topo.Grid(), cell, s.topo.Exit())
		if s.path == nil {
			s.path = []maze.Point{}
		}
	}
	return len(s.path) - 1
}

// Draw renders the maze from the pose and view angles.
func (s *Scene) Draw(pose game.Pose, yaw, pitch float64, now time.Time) {
	s.Camera.SetPose(pose.Position, yaw, pitch)

	r := s.Rasterizer
	r.BeginFrame(render.ColorSky)
	r.DrawMesh(s.mesh, s.surfaces)

	exit := s.topo.Exit()
	beacon := s.topo.CellToWorld(exit.I, exit.J)
	bob := 1.5 + 0.4*math.Sin(float64(now.UnixMilli())/400)
	center := beacon.WithY(bob)
	size := s.topo.CellSize() / 5
	if r.IsSphereVisible(center, size) {
		r.DrawCube(center, size, colorBeacon)
	}

	if s.ShowPath && len(s.path) > 1 {
		pts := make([]math3d.Vec3, len(s.path))
		for k, p := range s.path {
			pts[k] = s.topo.CellToWorld(p.I, p.J).WithY(0.05)
		}
		r.DrawPath(pts, colorHint)
	}

	if s.ShowMinimap {
		var path []maze.Point
		if s.ShowPath {
			path = s.path
		}
		s.Minimap.Draw(r.Framebuffer(), s.topo, pose.Position, yaw, path)
	}
}
