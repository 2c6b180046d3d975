// Package physics advances the player under input and gravity and resolves
// its footprint against maze walls.
package physics

import "math"

// Params holds the kinematic and collision constants. The zero value is not
// useful; start from DefaultParams.
type Params struct {
	WalkSpeed  float64 `yaml:"walk_speed"`
	RunSpeed   float64 `yaml:"run_speed"`
	JumpHeight float64 `yaml:"jump_height"` // vertical impulse, units/s
	Gravity    float64 `yaml:"gravity"`
	Damping    float64 `yaml:"damping"` // horizontal decay rate, 1/s

	PlayerHeight    float64 `yaml:"player_height"` // eye height when standing
	PlayerRadius    float64 `yaml:"player_radius"`
	CollisionMargin float64 `yaml:"collision_margin"`

	// MaxDT bounds a single tick so a stall cannot move the player further
	// than the collision window can follow.
	MaxDT float64 `yaml:"max_dt"`
}

// DefaultParams returns the stock movement and collision tuning.
func DefaultParams() Params {
	return Params{
		WalkSpeed:       150,
		RunSpeed:        300,
		JumpHeight:      20,
		Gravity:         30,
		Damping:         10,
		PlayerHeight:    2,
		PlayerRadius:    0.5,
		CollisionMargin: 0.3,
		MaxDT:           0.1,
	}
}

// ClampDT sanitizes a frame delta: negative and non-finite values become 0
// and anything above MaxDT is clamped to it.
func (p Params) ClampDT(dt float64) float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0
	}
	if p.MaxDT > 0 && dt > p.MaxDT {
		return p.MaxDT
	}
	return dt
}
