package maze

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestEncodeFormat(t *testing.T) {
	g, err := Parse("#.#\n...")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, g); err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(buf.String()), "[[1,0,1],[0,0,0]]"; got != want {
		t.Errorf("Encode = %s, want %s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	for _, size := range []int{3, 8, 21} {
		g, err := Generate(size, Seed(uint64(size)))
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := Encode(&buf, g); err != nil {
			t.Fatal(err)
		}
		back, err := Decode(&buf)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !back.Equal(g) {
			t.Errorf("round trip changed the %d maze:\n%s\nvs\n%s", size, g, back)
		}
	}
}

func TestDecodeRectangular(t *testing.T) {
	g, err := Decode(strings.NewReader(`[[0,1,1,1],[1,0,0,1]]`))
	if err != nil {
		t.Fatal(err)
	}
	if g.Rows() != 2 || g.Cols() != 4 {
		t.Errorf("size = %dx%d, want 2x4", g.Rows(), g.Cols())
	}
	if g.At(0, 0) != Open || g.At(1, 3) != Wall {
		t.Errorf("cells decoded wrong:\n%s", g)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ``},
		{"not json", `maze`},
		{"object", `{"rows":[[0]]}`},
		{"flat array", `[0,1,0]`},
		{"empty matrix", `[]`},
		{"empty row", `[[]]`},
		{"null", `null`},
		{"ragged", `[[0,1],[0]]`},
		{"null row", `[[0,1],null]`},
		{"null cell", `[[0,null]]`},
		{"value two", `[[0,2]]`},
		{"negative", `[[0,-1]]`},
		{"fraction", `[[0,0.5]]`},
		{"string cell", `[["0",1]]`},
		{"bool cell", `[[true,0]]`},
		{"trailing data", `[[0]] [[1]]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.input))
			if !errors.Is(err, ErrMalformedMaze) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformedMaze", tc.input, err)
			}
		})
	}
}

func TestFromCellsCopies(t *testing.T) {
	rows := [][]Cell{{Open, Wall}, {Wall, Open}}
	g, err := FromCells(rows)
	if err != nil {
		t.Fatal(err)
	}
	rows[0][0] = Wall
	if g.At(0, 0) != Open {
		t.Error("grid aliases caller's matrix")
	}

	m := g.Matrix()
	m[1][1] = Wall
	if g.At(1, 1) != Open {
		t.Error("Matrix aliases grid storage")
	}
}
