package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"golang.org/x/term"

	"github.com/taigrr/labyrinth/pkg/game"
	"github.com/taigrr/labyrinth/pkg/maze"
	"github.com/taigrr/labyrinth/pkg/render"
)

var errNotTerminal = errors.New("play needs an interactive terminal (try `labyrinth print`)")

// play runs the first-person view until the user quits.
func play(ctrl *game.Controller, logger *log.Logger) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}
	cfg := ctrl.Config()

	var wallTex *render.Texture
	if cfg.View.WallTexture != "" {
		var err error
		if wallTex, err = render.LoadTexture(cfg.View.WallTexture); err != nil {
			return err
		}
	}

	var watcher *game.Watcher
	if *watchFile {
		var err error
		if watcher, err = game.Watch(ctrl, cfg.Maze.File); err != nil {
			return err
		}
		defer watcher.Close()
	}

	// Create terminal
	t := uv.DefaultTerminal()

	width, height, err := t.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	if err := t.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	t.EnterAltScreen()
	t.HideCursor()
	t.Resize(width, height)

	// The framebuffer packs two pixel rows into each terminal row.
	var mu sync.Mutex
	fb := render.NewFramebuffer(width, height*2)
	scene := NewScene(cfg, fb, wallTex)
	look := NewLook(cfg.View.FPS, 0)
	hud := NewHUD()
	keys := &KeyLatch{}
	var respawned atomic.Bool

	// Context for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Event handler
	go func() {
		for ev := range t.Events() {
			now := time.Now()
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				mu.Lock()
				width, height = ev.Width, ev.Height
				t.Erase()
				t.Resize(width, height)
				fb = render.NewFramebuffer(width, height*2)
				scene.Resize(fb)
				mu.Unlock()

			case uv.KeyPressEvent:
				for _, c := range matchControls(ev) {
					keys.Press(c, now)
				}
				switch {
				case ev.MatchString("escape", "ctrl+c"):
					cancel()
					return
				case ev.MatchString("space"):
					keys.Jump()
				case ev.MatchString("g"):
					if err := ctrl.Regenerate(nil); err != nil {
						logger.Printf("regenerate: %v", err)
					}
				case ev.MatchString("c"):
					ctrl.ToggleCollision()
				case ev.MatchString("r"):
					ctrl.Respawn()
					respawned.Store(true)
				case ev.MatchString("p"):
					mu.Lock()
					scene.ShowPath = !scene.ShowPath
					mu.Unlock()
				case ev.MatchString("m"):
					mu.Lock()
					scene.ShowMinimap = !scene.ShowMinimap
					mu.Unlock()
				case ev.MatchString("o"):
					msg := "saved maze.json"
					if err := saveMaze(ctrl, "maze.json"); err != nil {
						logger.Printf("save: %v", err)
						msg = "save failed"
					}
					mu.Lock()
					hud.Flash(msg)
					mu.Unlock()
				case ev.MatchString("f2"):
					mu.Lock()
					name := fmt.Sprintf("labyrinth-%s.png", now.Format("20060102-150405"))
					msg := "saved " + name
					if err := fb.SavePNG(name); err != nil {
						logger.Printf("screenshot: %v", err)
						msg = "screenshot failed"
					}
					hud.Flash(msg)
					mu.Unlock()
				case ev.MatchString("?", "shift+/"):
					mu.Lock()
					hud.Show = !hud.Show
					mu.Unlock()
				}

			case uv.KeyReleaseEvent:
				for _, c := range matchControls(ev) {
					keys.Release(c)
				}
			}
		}
	}()

	if watcher != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case path := <-watcher.Reloaded:
					mu.Lock()
					hud.Flash("reloaded " + path)
					mu.Unlock()
				case err := <-watcher.Errors:
					logger.Printf("watch: %v", err)
					mu.Lock()
					hud.Flash("reload failed, see log")
					mu.Unlock()
				}
			}
		}()
	}

	// Main loop
	targetDuration := time.Second / time.Duration(cfg.View.FPS)
	lastFrame := time.Now()

	cleanup := func() {
		t.ExitAltScreen()
		t.ShowCursor()
		t.Shutdown(context.Background())
	}

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()
		dt := cfg.Physics.ClampDT(now.Sub(lastFrame).Seconds())
		lastFrame = now

		yawRate, pitchRate := keys.LookRates(now, cfg.View.LookSpeed)
		look.Update(yawRate, pitchRate, dt)
		pose := ctrl.Tick(keys.Input(now, look.Yaw.Angle), dt)
		st := ctrl.State()

		mu.Lock()
		if scene.Sync(st) {
			look.Reset(spawnHeading(st))
			keys.Clear()
		} else if respawned.Swap(false) {
			look.Reset(spawnHeading(st))
		}
		steps := scene.Steps(pose.Cell)
		scene.Draw(pose, look.Yaw.Angle, look.Pitch.Angle, now)

		// Display
		fb.Draw(t, uv.Rect(0, 0, width, height))
		hud.UpdateFPS()
		g := st.Topology.Grid()
		hud.Draw(t, width, height, HUDState{
			Pose:       pose,
			Size:       [2]int{g.Rows(), g.Cols()},
			Generation: st.Generation,
			Collision:  ctrl.Collision(),
			Strategy:   cfg.Collision.Strategy,
			Steps:      steps,
		})
		err := t.Display()
		mu.Unlock()
		if err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// spawnHeading looks from the spawn cell along the first step toward the
// exit, or down the maze when the exit cannot be reached.
func spawnHeading(st game.GameState) float64 {
	topo := st.Topology
	from := topo.Spawn()
	next := topo.Exit()
	if path := maze.Solve(topo.Grid(), from, next); len(path) > 1 {
		next = path[1]
	}
	return headingTowards(topo.CellToWorld(from.I, from.J), topo.CellToWorld(next.I, next.J))
}
