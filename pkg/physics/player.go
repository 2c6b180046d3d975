package physics

import "github.com/taigrr/labyrinth/pkg/math3d"

// PlayerState is the kinematic state of the player. Position is the eye
// point; Y equals Height when standing on the floor.
type PlayerState struct {
	Position math3d.Vec3
	Velocity math3d.Vec3
	Grounded bool
	Radius   float64
	Height   float64
}

// NewPlayer returns a player standing still at the floor position p.
func NewPlayer(params Params, p math3d.Vec3) PlayerState {
	return PlayerState{
		Position: p.WithY(params.PlayerHeight),
		Grounded: true,
		Radius:   params.PlayerRadius,
		Height:   params.PlayerHeight,
	}
}

// InputState is one frame of player intent as read from the input device.
type InputState struct {
	Forward, Back, Left, Right bool
	Sprint                     bool
	Jump                       bool

	// Collision enables wall resolution for this tick.
	Collision bool

	// Heading is the camera yaw in radians; 0 looks down -Z.
	Heading float64
}

// Intent is one directional movement intent.
type Intent uint8

const (
	IntentForward Intent = iota
	IntentBack
	IntentLeft
	IntentRight
)

// intentAxes maps each intent to its direction in the player's local frame
// (forward is -Z, right is +X).
var intentAxes = [...]math3d.Vec3{
	IntentForward: {X: 0, Y: 0, Z: -1},
	IntentBack:    {X: 0, Y: 0, Z: 1},
	IntentLeft:    {X: -1, Y: 0, Z: 0},
	IntentRight:   {X: 1, Y: 0, Z: 0},
}

// Axis returns the local-frame unit vector of the intent.
func (i Intent) Axis() math3d.Vec3 {
	if int(i) >= len(intentAxes) {
		return math3d.Vec3{}
	}
	return intentAxes[i]
}

// Intents returns the directional intents set in s.
func (s InputState) Intents() []Intent {
	var out []Intent
	for intent, on := range [...]bool{
		IntentForward: s.Forward,
		IntentBack:    s.Back,
		IntentLeft:    s.Left,
		IntentRight:   s.Right,
	} {
		if on {
			out = append(out, Intent(intent))
		}
	}
	return out
}

// IntentVector returns the local-frame planar unit direction of the
// directional intents, or the zero vector when none are set or opposing
// intents cancel.
func IntentVector(s InputState) math3d.Vec3 {
	var sum math3d.Vec3
	for _, intent := range s.Intents() {
		sum = sum.Add(intent.Axis())
	}
	return sum.Normalize()
}

// WorldIntent is IntentVector rotated into the world frame by the heading.
func WorldIntent(s InputState) math3d.Vec3 {
	return IntentVector(s).RotateY(s.Heading)
}
