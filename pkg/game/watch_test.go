package game

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/taigrr/labyrinth/pkg/maze"
)

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maze.json")
	if err := os.WriteFile(path, []byte("[[1,0,1],[1,0,1],[1,0,1]]"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := testConfig()
	cfg.Maze.File = path
	c := mustController(t, cfg)

	w, err := Watch(c, path)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("junk"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("[[1,1,1],[0,0,0],[1,1,1]]"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case got := <-w.Reloaded:
		if got != w.path {
			t.Errorf("reloaded %q", got)
		}
	case err := <-w.Errors:
		t.Fatalf("reload error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}
	if sp := c.Topology().Spawn(); sp != (maze.Point{I: 1, J: 0}) {
		t.Errorf("spawn after reload = %v, want (1, 0)", sp)
	}

	// A broken write reports an error and keeps the reloaded maze.
	topo := c.Topology()
	if err := os.WriteFile(path, []byte("[[0,"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-w.Errors:
	case <-w.Reloaded:
		t.Fatal("malformed file reported as reloaded")
	case <-time.After(5 * time.Second):
		t.Fatal("no error for malformed file")
	}
	if c.Topology() != topo {
		t.Error("malformed file replaced the maze")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.json")
	if err := os.WriteFile(path, []byte("[[0]]"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Watch(mustController(t, testConfig()), path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
