package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/labyrinth/pkg/game"
	"github.com/taigrr/labyrinth/pkg/render"
)

var (
	hudBg     = render.RGB(0, 0, 0)
	hudText   = render.RGB(235, 235, 235)
	hudFPS    = render.RGB(90, 230, 90)
	hudWarn   = render.RGB(250, 210, 60)
	hudAccent = render.RGB(90, 220, 230)
)

// HUD renders the status lines over the 3D view.
type HUD struct {
	Show bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time

	message     string
	messageTill time.Time
}

// NewHUD creates a visible HUD.
func NewHUD() *HUD {
	return &HUD{Show: true, fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Flash shows msg on the bottom line for a few seconds.
func (h *HUD) Flash(msg string) {
	h.message = msg
	h.messageTill = time.Now().Add(3 * time.Second)
}

// HUDState is what one frame reports.
type HUDState struct {
	Pose       game.Pose
	Size       [2]int
	Generation uint64
	Collision  bool
	Strategy   string
	Steps      int // -1 when the exit cannot be reached
}

// Draw writes the HUD rows onto the screen.
func (h *HUD) Draw(scr uv.Screen, width, height int, s HUDState) {
	if h.Show {
		drawText(scr, 0, 0, fmt.Sprintf(" %.0f FPS ", h.fps), hudFPS, hudBg)

		title := fmt.Sprintf(" labyrinth %dx%d #%d ", s.Size[0], s.Size[1], s.Generation)
		drawText(scr, max((width-len(title))/2, 0), 0, title, hudText, hudBg)

		cell := fmt.Sprintf(" cell %d,%d ", s.Pose.Cell.I, s.Pose.Cell.J)
		drawText(scr, max(width-len(cell), 0), 0, cell, hudAccent, hudBg)

		coll := fmt.Sprintf(" collision %s (%s) ", onOff(s.Collision), s.Strategy)
		fg := hudText
		if !s.Collision {
			fg = hudWarn
		}
		drawText(scr, 0, height-1, coll, fg, hudBg)

		steps := " exit unreachable "
		if s.Steps >= 0 {
			steps = fmt.Sprintf(" %d steps to exit ", s.Steps)
		}
		drawText(scr, max(width-len(steps), 0), height-1, steps, hudAccent, hudBg)
	}

	switch {
	case s.Pose.AtExit:
		msg := " You found the exit! Press G for a new maze "
		drawText(scr, max((width-len(msg))/2, 0), height/2, msg, hudWarn, hudBg)
	case time.Now().Before(h.messageTill):
		drawText(scr, max((width-len(h.message)-2)/2, 0), height-1, " "+h.message+" ", hudWarn, hudBg)
	}
}

// drawText writes single-width text starting at (x, y), clipped to the
// screen bounds.
func drawText(scr uv.Screen, x, y int, s string, fg, bg color.Color) {
	b := scr.Bounds()
	if y < b.Min.Y || y >= b.Max.Y {
		return
	}
	for _, r := range s {
		if x >= b.Max.X {
			return
		}
		if x >= b.Min.X {
			scr.SetCell(x, y, &uv.Cell{
				Content: string(r),
				Width:   1,
				Style:   uv.Style{Fg: fg, Bg: bg},
			})
		}
		x++
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
