package models

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"github.com/taigrr/labyrinth/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if !loader.CalculateNormals {
		t.Error("CalculateNormals should default to true")
	}
}

func TestExportEmptyMesh(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportGLB(&buf, NewMesh("empty")); err == nil {
		t.Error("expected error exporting a mesh without faces")
	}
}

func TestExportRoundTrip(t *testing.T) {
	orig := BuildMaze(mustTopology(t, roomFixture), 5)

	var buf bytes.Buffer
	if err := ExportGLB(&buf, orig); err != nil {
		t.Fatalf("ExportGLB: %v", err)
	}

	got, err := NewGLTFLoader().Decode(&buf, "room.glb")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.VertexCount() != orig.VertexCount() {
		t.Errorf("VertexCount = %d, want %d", got.VertexCount(), orig.VertexCount())
	}
	if got.TriangleCount() != orig.TriangleCount() {
		t.Errorf("TriangleCount = %d, want %d", got.TriangleCount(), orig.TriangleCount())
	}
	if got.MaterialIndex("wall") != MaterialWall || got.MaterialIndex("floor") != MaterialFloor {
		t.Errorf("materials = %+v", got.Materials)
	}
	if got.Materials[MaterialWall].BaseColor != orig.Materials[MaterialWall].BaseColor {
		t.Errorf("wall color = %v, want %v", got.Materials[MaterialWall].BaseColor, orig.Materials[MaterialWall].BaseColor)
	}

	for i, v := range orig.Vertices {
		w := got.Vertices[i]
		if !w.Position.ApproxEqual(v.Position, 1e-6) || !w.Normal.ApproxEqual(v.Normal, 1e-6) {
			t.Fatalf("vertex %d = %+v, want %+v", i, w, v)
		}
		if math.Abs(w.UV.X-v.UV.X) > 1e-6 || math.Abs(w.UV.Y-v.UV.Y) > 1e-6 {
			t.Fatalf("vertex %d uv = %v, want %v", i, w.UV, v.UV)
		}
	}

	// Faces come back grouped by material, but each keeps its winding.
	want := faceSet(orig)
	for i, f := range got.Faces {
		if !want[f] {
			t.Fatalf("face %d = %+v not in exported mesh", i, f)
		}
	}

	if gmin, gmax := got.GetBounds(); gmin != orig.BoundsMin || gmax != orig.BoundsMax {
		t.Errorf("bounds = %v..%v, want %v..%v", gmin, gmax, orig.BoundsMin, orig.BoundsMax)
	}
}

func TestSaveGLB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maze.glb")
	m := BuildMaze(mustTopology(t, roomFixture), 0)

	if err := SaveGLB(path, m); err != nil {
		t.Fatalf("SaveGLB: %v", err)
	}
	got, err := LoadGLB(path)
	if err != nil {
		t.Fatalf("LoadGLB: %v", err)
	}
	if got.Name != "maze.glb" {
		t.Errorf("Name = %q", got.Name)
	}
	if got.Size() != math3d.V3(30, DefaultWallHeight, 30) {
		t.Errorf("Size = %v", got.Size())
	}
}

func faceSet(m *Mesh) map[Face]bool {
	set := make(map[Face]bool, len(m.Faces))
	for _, f := range m.Faces {
		set[f] = true
	}
	return set
}
