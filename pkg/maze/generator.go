package maze

import (
	"fmt"
	"math/rand/v2"

	"github.com/zyedidia/generic/stack"
)

// MinSize is the smallest size Generate accepts.
const MinSize = 3

// pcgStream is the fixed second PCG word; the caller's seed picks the first.
const pcgStream = 0x9e3779b97f4a7c15

// Config describes a maze to generate.
type Config struct {
	// Size is the requested side length. Even sizes round up to the next odd
	// number so the carve lattice lines up with the border.
	Size int

	// Seed makes generation reproducible. Nil draws from system entropy.
	Seed *uint64
}

// Seed returns a pointer to s, for filling Config.Seed inline.
func Seed(s uint64) *uint64 { return &s }

// WorkingSize returns the odd side length used for a requested size.
func WorkingSize(size int) int {
	return size - size%2 + 1
}

// Generate carves a size x size maze (after odd rounding) with a randomized
// depth-first backtracker. The entrance is (0, 1) and the exit is
// (n-1, n-2).
func Generate(size int, seed *uint64) (*Grid, error) {
	return GenerateWith(Config{Size: size, Seed: seed})
}

// GenerateWith is Generate driven by a Config.
func GenerateWith(cfg Config) (*Grid, error) {
	if cfg.Size < MinSize {
		return nil, fmt.Errorf("%w: %d (minimum %d)", ErrInvalidSize, cfg.Size, MinSize)
	}

	n := WorkingSize(cfg.Size)
	g := newGrid(n, n, Wall)

	var seed uint64
	if cfg.Seed != nil {
		seed = *cfg.Seed
	} else {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, pcgStream))

	carve(g, randomLatticePoint(n, rng), rng)

	g.set(Entrance(n), Open)
	exit := Exit(n)
	g.set(exit, Open)
	g.set(Point{exit.I - 1, exit.J}, Open)

	return g, nil
}

// Entrance returns the entrance position of a generated maze of side n.
func Entrance(n int) Point { return Point{0, 1} }

// Exit returns the exit position of a generated maze of side n.
func Exit(n int) Point { return Point{n - 1, n - 2} }

// randomLatticePoint picks a cell with two odd coordinates.
func randomLatticePoint(n int, rng *rand.Rand) Point {
	half := (n - 1) / 2
	return Point{1 + 2*rng.IntN(half), 1 + 2*rng.IntN(half)}
}

var latticeSteps = [4]Point{{-2, 0}, {2, 0}, {0, -2}, {0, 2}}

// carve runs the recursive backtracker from start with an explicit stack.
// Every lattice cell ends up open and connected through exactly one carved
// connector per tree edge.
func carve(g *Grid, start Point, rng *rand.Rand) {
	s := stack.New[Point]()
	g.set(start, Open)
	s.Push(start)

	candidates := make([]Point, 0, len(latticeSteps))
	for s.Size() > 0 {
		cur := s.Peek()

		candidates = candidates[:0]
		for _, d := range latticeSteps {
			next := cur.Add(d)
			if next.I > 0 && next.I < g.rows-1 && next.J > 0 && next.J < g.cols-1 &&
				g.At(next.I, next.J) == Wall {
				candidates = append(candidates, next)
			}
		}

		if len(candidates) == 0 {
			s.Pop()
			continue
		}

		next := candidates[rng.IntN(len(candidates))]
		g.set(Point{(cur.I + next.I) / 2, (cur.J + next.J) / 2}, Open)
		g.set(next, Open)
		s.Push(next)
	}
}
