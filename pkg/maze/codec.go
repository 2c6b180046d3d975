package maze

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// Encode writes g as a JSON array of rows of 0/1 integers.
func Encode(w io.Writer, g *Grid) error {
	return json.NewEncoder(w).Encode(g)
}

// Decode reads a grid written by Encode. Anything other than a non-empty
// rectangular matrix of 0/1 numbers fails with ErrMalformedMaze.
func Decode(r io.Reader) (*Grid, error) {
	dec := json.NewDecoder(r)

	var g Grid
	if err := dec.Decode(&g); err != nil {
		if errors.Is(err, ErrMalformedMaze) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedMaze, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after matrix", ErrMalformedMaze)
	}
	return &g, nil
}

// MarshalJSON implements json.Marshaler.
func (g *Grid) MarshalJSON() ([]byte, error) {
	rows := make([][]int, g.rows)
	for i := range rows {
		rows[i] = make([]int, g.cols)
		for j := range rows[i] {
			rows[i][j] = int(g.At(i, j))
		}
	}
	return json.Marshal(rows)
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Grid) UnmarshalJSON(data []byte) error {
	// Pointers let null entries be told apart from zeros.
	var raw [][]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMaze, err)
	}

	rows := make([][]Cell, len(raw))
	for i, row := range raw {
		rows[i] = make([]Cell, len(row))
		for j, v := range row {
			if v == nil {
				return fmt.Errorf("%w: cell (%d,%d) is null", ErrMalformedMaze, i, j)
			}
			switch *v {
			case 0:
				rows[i][j] = Open
			case 1:
				rows[i][j] = Wall
			default:
				if math.Trunc(*v) != *v {
					return fmt.Errorf("%w: cell (%d,%d) = %v is not an integer", ErrMalformedMaze, i, j, *v)
				}
				return fmt.Errorf("%w: cell (%d,%d) = %v is not 0 or 1", ErrMalformedMaze, i, j, *v)
			}
		}
	}

	parsed, err := FromCells(rows)
	if err != nil {
		return err
	}
	*g = *parsed
	return nil
}
