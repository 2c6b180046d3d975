package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/labyrinth/pkg/math3d"
	"github.com/taigrr/labyrinth/pkg/render"
)

// LookAxis is one camera angle whose turn rate is eased toward the rate the
// arrow keys ask for, so looking starts and stops smoothly.
type LookAxis struct {
	Angle   float64 // radians
	Rate    float64 // radians per second
	rateVel float64 // spring velocity of Rate
	spring  harmonica.Spring
}

// NewLookAxis creates an axis at angle. Frequency 6 reaches full turn speed
// in well under half a second; damping 1 is critically damped.
func NewLookAxis(fps int, angle float64) LookAxis {
	return LookAxis{
		Angle:  angle,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Update eases Rate toward target and advances Angle by dt seconds.
func (a *LookAxis) Update(target, dt float64) {
	a.Rate, a.rateVel = a.spring.Update(a.Rate, a.rateVel, target)
	a.Angle += a.Rate * dt
}

// Look holds the player's view direction.
type Look struct {
	Yaw, Pitch LookAxis
	fps        int
}

func NewLook(fps int, yaw float64) *Look {
	return &Look{
		Yaw:   NewLookAxis(fps, yaw),
		Pitch: NewLookAxis(fps, 0),
		fps:   fps,
	}
}

// Update turns by the requested rates. Pitch stops dead at the camera limit.
func (l *Look) Update(yawRate, pitchRate, dt float64) {
	l.Yaw.Update(yawRate, dt)
	l.Yaw.Angle = math.Remainder(l.Yaw.Angle, 2*math.Pi)

	l.Pitch.Update(pitchRate, dt)
	if l.Pitch.Angle > render.MaxPitch || l.Pitch.Angle < -render.MaxPitch {
		l.Pitch.Angle = math.Max(-render.MaxPitch, math.Min(render.MaxPitch, l.Pitch.Angle))
		l.Pitch.Rate, l.Pitch.rateVel = 0, 0
	}
}

// Reset faces yaw with a level view and no turn in progress.
func (l *Look) Reset(yaw float64) {
	l.Yaw = NewLookAxis(l.fps, yaw)
	l.Pitch = NewLookAxis(l.fps, 0)
}

// headingTowards returns the yaw that looks from `from` to `to` on the
// floor plane. Yaw 0 looks down -Z and positive yaw turns toward -X.
func headingTowards(from, to math3d.Vec3) float64 {
	d := to.Sub(from)
	if d.PlanarLen() == 0 {
		return 0
	}
	return math.Atan2(-d.X, -d.Z)
}
