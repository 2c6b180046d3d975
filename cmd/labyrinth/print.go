package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/zyedidia/generic/mapset"

	"github.com/taigrr/labyrinth/pkg/maze"
)

var (
	styleWall  = color.Style{color.FgGray}
	styleOpen  = color.Style{color.FgDefault}
	stylePath  = color.Style{color.FgYellow}
	stylePlay  = color.Style{color.FgGreen, color.OpBold}
	styleExit  = color.Style{color.FgCyan, color.OpBold}
	styleLabel = color.Style{color.FgMagenta}
)

// printMaze writes the grid two characters per cell with the shortest path
// from `from` to the exit traced through it.
func printMaze(w io.Writer, t *maze.Topology, from maze.Point) error {
	g := t.Grid()
	exit := t.Exit()

	onPath := mapset.New[maze.Point]()
	path := maze.Solve(g, from, exit)
	for _, p := range path {
		onPath.Put(p)
	}

	bw := bufio.NewWriter(w)
	for i := range g.Rows() {
		for j := range g.Cols() {
			p := maze.Point{I: i, J: j}
			switch {
			case p == from:
				bw.WriteString(stylePlay.Sprint("@@"))
			case p == exit:
				bw.WriteString(styleExit.Sprint("><"))
			case g.At(i, j) == maze.Wall:
				bw.WriteString(styleWall.Sprint("██"))
			case onPath.Has(p):
				bw.WriteString(stylePath.Sprint("··"))
			default:
				bw.WriteString(styleOpen.Sprint("  "))
			}
		}
		bw.WriteByte('\n')
	}

	steps := "unreachable"
	if len(path) > 0 {
		steps = fmt.Sprintf("%d steps", len(path)-1)
	}
	fmt.Fprintf(bw, "%s %dx%d, %d open cells, exit %s\n",
		styleLabel.Sprint("maze"), g.Rows(), g.Cols(), g.OpenCount(), steps)
	return bw.Flush()
}
