package maze

import (
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"
)

// Reachable flood-fills open cells from start through orthogonal steps and
// returns the visited set. A closed or out-of-range start yields an empty set.
func Reachable(g *Grid, start Point) mapset.Set[Point] {
	visited := mapset.New[Point]()
	if !g.InBounds(start.I, start.J) || g.At(start.I, start.J) != Open {
		return visited
	}

	q := queue.New[Point]()
	q.Enqueue(start)
	visited.Put(start)

	for !q.Empty() {
		cur := q.Dequeue()
		for _, d := range orthogonal {
			next := cur.Add(d)
			if !g.InBounds(next.I, next.J) || g.At(next.I, next.J) != Open || visited.Has(next) {
				continue
			}
			visited.Put(next)
			q.Enqueue(next)
		}
	}
	return visited
}

// Connected reports whether every open cell of g is reachable from start.
func Connected(g *Grid, start Point) bool {
	return Reachable(g, start).Size() == g.OpenCount()
}

// Solve returns the shortest orthogonal path of open cells from start to end,
// both included, or nil when end cannot be reached.
func Solve(g *Grid, start, end Point) []Point {
	if !g.InBounds(start.I, start.J) || !g.InBounds(end.I, end.J) {
		return nil
	}
	if g.At(start.I, start.J) != Open || g.At(end.I, end.J) != Open {
		return nil
	}

	cameFrom := map[Point]Point{start: start}
	q := queue.New[Point]()
	q.Enqueue(start)

	for !q.Empty() {
		cur := q.Dequeue()
		if cur == end {
			var path []Point
			for p := end; p != start; p = cameFrom[p] {
				path = append(path, p)
			}
			path = append(path, start)
			for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
				path[l], path[r] = path[r], path[l]
			}
			return path
		}

		for _, d := range orthogonal {
			next := cur.Add(d)
			if !g.InBounds(next.I, next.J) || g.At(next.I, next.J) != Open {
				continue
			}
			if _, seen := cameFrom[next]; seen {
				continue
			}
			cameFrom[next] = cur
			q.Enqueue(next)
		}
	}
	return nil
}
