package game

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/maze"
	"github.com/taigrr/labyrinth/pkg/physics"
)

// GameState is everything one session mutates: the maze being walked, the
// player in it and which published maze generation that player belongs to.
type GameState struct {
	Topology   *maze.Topology
	Player     physics.PlayerState
	Generation uint64
}

// Pose is the per-frame result handed to the renderer.
type Pose struct {
	Position math3d.Vec3
	Velocity math3d.Vec3
	Grounded bool
	Cell     maze.Point
	AtExit   bool
}

// world is an immutable published maze.
type world struct {
	topo       *maze.Topology
	generation uint64
}

// Controller runs the frame update. Tick must be called from one goroutine;
// Regenerate, Load, Respawn and the collision toggle are safe from any
// goroutine and take effect at the next Tick.
type Controller struct {
	cfg        Config
	integrator physics.Integrator
	resolver   physics.Resolver
	logger     *log.Logger

	pubMu     sync.Mutex // orders generation numbers with stores
	world     atomic.Pointer[world]
	gen       atomic.Uint64
	collision atomic.Bool
	respawn   atomic.Bool

	mu    sync.RWMutex
	state GameState
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger for maze replacement and respawn messages.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithResolver replaces the resolver chosen by the config.
func WithResolver(r physics.Resolver) Option {
	return func(c *Controller) {
		if r != nil {
			c.resolver = r
		}
	}
}

// New validates cfg, builds the first maze (loaded from cfg.Maze.File when
// set, generated otherwise) and spawns the player in it.
func New(cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:        cfg,
		integrator: physics.NewIntegrator(cfg.Physics),
		resolver:   cfg.Resolver(),
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.collision.Store(cfg.Collision.Enabled)

	var err error
	if cfg.Maze.File != "" {
		err = c.LoadFile(cfg.Maze.File)
	} else {
		err = c.Regenerate(cfg.Maze.Seed)
	}
	if err != nil {
		return nil, err
	}

	w := c.world.Load()
	c.state = GameState{
		Topology:   w.topo,
		Player:     c.spawn(w.topo),
		Generation: w.generation,
	}
	return c, nil
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() Config { return c.cfg }

// Tick advances the session by dt seconds and returns the committed pose.
func (c *Controller) Tick(in physics.InputState, dt float64) Pose {
	w := c.world.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	if w.generation != c.state.Generation {
		c.state.Topology = w.topo
		c.state.Generation = w.generation
		c.state.Player = c.spawn(w.topo)
		c.respawn.Store(false)
	} else if c.respawn.Swap(false) {
		c.state.Player = c.spawn(w.topo)
		c.logger.Printf("respawned at %v", w.topo.Spawn())
	}

	prev := c.state.Player
	next := c.integrator.Integrate(prev, in, dt)
	if in.Collision || c.collision.Load() {
		next.Position, next.Velocity = c.resolver.Resolve(w.topo, prev.Position, next.Position, next.Velocity, next.Radius)
	}
	next = c.integrator.ClampToGround(next)
	c.state.Player = next

	return poseOf(w.topo, next)
}

// State returns a copy of the state committed by the last Tick.
func (c *Controller) State() GameState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Pose returns the pose committed by the last Tick.
func (c *Controller) Pose() Pose {
	s := c.State()
	return poseOf(s.Topology, s.Player)
}

// Topology returns the most recently published maze. It may be newer than
// State().Topology until the next Tick.
func (c *Controller) Topology() *maze.Topology {
	return c.world.Load().topo
}

// Regenerate publishes a freshly generated maze. A nil seed draws one from
// the runtime entropy source. On error the current maze stays.
func (c *Controller) Regenerate(seed *uint64) error {
	g, err := maze.GenerateWith(maze.Config{Size: c.cfg.Maze.Size, Seed: seed})
	if err != nil {
		return fmt.Errorf("regenerate maze: %w", err)
	}
	return c.publish(g, "generated")
}

// Load publishes a maze decoded from JSON. On error the current maze stays.
func (c *Controller) Load(r io.Reader) error {
	g, err := maze.Decode(r)
	if err != nil {
		return fmt.Errorf("load maze: %w", err)
	}
	return c.publish(g, "loaded")
}

// LoadFile is Load on the named file.
func (c *Controller) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load maze: %w", err)
	}
	defer f.Close()
	return c.Load(f)
}

// LoadGrid publishes an already decoded grid. On error the current maze
// stays.
func (c *Controller) LoadGrid(g *maze.Grid) error {
	if g == nil {
		return fmt.Errorf("load maze: %w", maze.ErrMalformedMaze)
	}
	return c.publish(g, "loaded")
}

// Save writes the current maze as JSON.
func (c *Controller) Save(w io.Writer) error {
	if err := maze.Encode(w, c.Topology().Grid()); err != nil {
		return fmt.Errorf("save maze: %w", err)
	}
	return nil
}

// Respawn moves the player back to the spawn cell at the next Tick.
func (c *Controller) Respawn() {
	c.respawn.Store(true)
}

// SetCollision enables or disables wall resolution.
func (c *Controller) SetCollision(on bool) {
	c.collision.Store(on)
}

// ToggleCollision flips wall resolution and returns the new setting.
func (c *Controller) ToggleCollision() bool {
	for {
		old := c.collision.Load()
		if c.collision.CompareAndSwap(old, !old) {
			c.logger.Printf("collision %s", onOff(!old))
			return !old
		}
	}
}

// Collision reports whether wall resolution is enabled.
func (c *Controller) Collision() bool {
	return c.collision.Load()
}

func (c *Controller) publish(g *maze.Grid, how string) error {
	topo, err := maze.NewTopology(g, c.cfg.Maze.CellSize)
	if err != nil {
		return fmt.Errorf("%s maze: %w", how, err)
	}
	c.pubMu.Lock()
	w := &world{topo: topo, generation: c.gen.Add(1)}
	c.world.Store(w)
	c.pubMu.Unlock()
	c.logger.Printf("%s %dx%d maze, generation %d", how, g.Rows(), g.Cols(), w.generation)
	return nil
}

func (c *Controller) spawn(topo *maze.Topology) physics.PlayerState {
	s := topo.Spawn()
	return physics.NewPlayer(c.cfg.Physics, topo.CellToWorld(s.I, s.J))
}

func poseOf(topo *maze.Topology, p physics.PlayerState) Pose {
	i, j := topo.WorldToCell(p.Position)
	cell := maze.Point{I: i, J: j}
	return Pose{
		Position: p.Position,
		Velocity: p.Velocity,
		Grounded: p.Grounded,
		Cell:     cell,
		AtExit:   cell == topo.Exit(),
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
