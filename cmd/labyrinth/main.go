// Command labyrinth walks a generated maze in first person in the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/taigrr/labyrinth/pkg/game"
	"github.com/taigrr/labyrinth/pkg/maze"
)

var (
	mazeSize    = flag.Int("size", 0, "Maze size in cells (odd sizes are kept, even ones grow by one)")
	mazeSeed    = flag.Int64("seed", -1, "Generator seed (-1 picks a random one)")
	configPath  = flag.String("config", "", "Path to a YAML config file")
	loadPath    = flag.String("load", "", "Load a maze JSON file instead of generating one")
	watchFile   = flag.Bool("watch", false, "Reload the -load file when it changes")
	logPath     = flag.String("log", "", "Write log messages to this file")
	targetFPS   = flag.Int("fps", 0, "Target FPS")
	wallTexture = flag.String("wall-texture", "", "Path to wall texture image (PNG/JPG)")
	noCollision = flag.Bool("no-collision", false, "Start with wall collision disabled")
	outPath     = flag.String("o", "", "Output file for export (default maze.glb, or maze.json with -json)")
	exportJSON  = flag.Bool("json", false, "Export the maze grid as JSON instead of a glTF mesh")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: labyrinth [options] [play|print|export]\n\n")
		fmt.Fprintf(os.Stderr, "Walk a randomly generated maze in your terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  play     Explore the maze in first person (default)\n")
		fmt.Fprintf(os.Stderr, "  print    Print the maze as coloured text\n")
		fmt.Fprintf(os.Stderr, "  export   Write the maze mesh as .glb (or grid as .json)\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  WASD           Move\n")
		fmt.Fprintf(os.Stderr, "  Arrow keys     Look around\n")
		fmt.Fprintf(os.Stderr, "  Shift          Sprint (hold with a move key)\n")
		fmt.Fprintf(os.Stderr, "  Space          Jump\n")
		fmt.Fprintf(os.Stderr, "  G              Generate a new maze\n")
		fmt.Fprintf(os.Stderr, "  C              Toggle wall collision\n")
		fmt.Fprintf(os.Stderr, "  R              Back to the start\n")
		fmt.Fprintf(os.Stderr, "  P              Toggle path to exit\n")
		fmt.Fprintf(os.Stderr, "  M              Toggle minimap\n")
		fmt.Fprintf(os.Stderr, "  O              Save maze to maze.json\n")
		fmt.Fprintf(os.Stderr, "  F2             Save screenshot\n")
		fmt.Fprintf(os.Stderr, "  ?              Toggle HUD\n")
		fmt.Fprintf(os.Stderr, "  Esc / Ctrl+C   Quit\n")
	}
	flag.Parse()

	cmd := "play"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	if err := run(cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := openLog(*logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	ctrl, err := game.New(cfg, game.WithLogger(logger))
	if err != nil {
		return err
	}

	switch cmd {
	case "play":
		return play(ctrl, logger)
	case "print":
		return printMaze(os.Stdout, ctrl.Topology(), ctrl.Topology().Spawn())
	case "export":
		return export(ctrl, *outPath, *exportJSON)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// buildConfig layers the config file and then the flags that were set over
// game.DefaultConfig.
func buildConfig() (game.Config, error) {
	cfg := game.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = game.LoadConfig(*configPath); err != nil {
			return cfg, err
		}
	}

	if *mazeSize > 0 {
		cfg.Maze.Size = *mazeSize
	}
	if *mazeSeed >= 0 {
		cfg.Maze.Seed = maze.Seed(uint64(*mazeSeed))
	}
	if *loadPath != "" {
		cfg.Maze.File = *loadPath
	}
	if *targetFPS > 0 {
		cfg.View.FPS = *targetFPS
	}
	if *wallTexture != "" {
		cfg.View.WallTexture = *wallTexture
	}
	if *noCollision {
		cfg.Collision.Enabled = false
	}
	if *watchFile && cfg.Maze.File == "" {
		return cfg, fmt.Errorf("-watch needs a maze file (-load or maze.file)")
	}
	return cfg, cfg.Validate()
}

func openLog(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return log.New(f, "labyrinth: ", log.LstdFlags|log.Lmicroseconds), func() { f.Close() }, nil
}
