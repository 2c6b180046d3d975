package main

import (
	"fmt"
	"os"

	"github.com/taigrr/labyrinth/pkg/game"
	"github.com/taigrr/labyrinth/pkg/models"
)

// export writes the current maze either as a JSON grid or as a binary glTF
// mesh. The mesh is read back so a broken file fails the command.
func export(ctrl *game.Controller, path string, asJSON bool) error {
	if asJSON {
		if path == "" {
			path = "maze.json"
		}
		return saveMaze(ctrl, path)
	}

	if path == "" {
		path = "maze.glb"
	}
	mesh := models.BuildMaze(ctrl.Topology(), ctrl.Config().Maze.WallHeight)
	mesh.Name = "labyrinth"
	if err := models.SaveGLB(path, mesh); err != nil {
		return err
	}

	back, err := models.LoadGLB(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if back.TriangleCount() != mesh.TriangleCount() {
		return fmt.Errorf("verify %s: wrote %d triangles, read %d", path, mesh.TriangleCount(), back.TriangleCount())
	}
	size := back.Size()
	fmt.Printf("wrote %s: %d triangles, %d materials, %.0fx%.0fx%.0f\n",
		path, back.TriangleCount(), back.MaterialCount(), size.X, size.Y, size.Z)
	return nil
}

func saveMaze(ctrl *game.Controller, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save maze: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return ctrl.Save(f)
}
