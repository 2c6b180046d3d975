package physics

import (
	"math"

	"github.com/taigrr/labyrinth/pkg/math3d"
)

// Integrator advances a PlayerState by one tick of explicit Euler
// integration.
type Integrator struct {
	Params Params
}

// NewIntegrator creates an integrator with the given constants.
func NewIntegrator(p Params) Integrator {
	return Integrator{Params: p}
}

// Integrate applies damping, gravity, jump and movement intent to s and
// returns the proposed state, already clamped to the floor. dt is sanitized
// with Params.ClampDT first. Walls are not considered here.
func (it Integrator) Integrate(s PlayerState, in InputState, dt float64) PlayerState {
	p := it.Params
	dt = p.ClampDT(dt)

	v := s.Velocity
	damp := math.Max(0, 1-p.Damping*dt)
	v.X *= damp
	v.Z *= damp

	v.Y -= p.Gravity * dt

	if in.Jump && s.Grounded {
		v.Y = p.JumpHeight
		s.Grounded = false
	}

	if dir := WorldIntent(in); dir != (math3d.Vec3{}) {
		speed := p.WalkSpeed
		if in.Sprint {
			speed = p.RunSpeed
		}
		v = v.Add(dir.Scale(speed * dt))
	}

	s.Velocity = v
	s.Position = s.Position.Add(v.Scale(dt))
	return it.ClampToGround(s)
}

// ClampToGround keeps the eye at or above standing height. Calling it on a
// state that is already standing leaves that state unchanged.
func (it Integrator) ClampToGround(s PlayerState) PlayerState {
	h := s.Height
	if h == 0 {
		h = it.Params.PlayerHeight
	}
	if s.Position.Y < h {
		s.Position.Y = h
		s.Velocity.Y = 0
		s.Grounded = true
	}
	return s
}
