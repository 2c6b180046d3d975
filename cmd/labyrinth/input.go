package main

import (
	"sync"
	"time"

	"github.com/taigrr/labyrinth/pkg/physics"
)

// Control is a held input the frame loop polls.
type Control int

const (
	CtlForward Control = iota
	CtlBack
	CtlLeft
	CtlRight
	CtlSprint
	CtlLookLeft
	CtlLookRight
	CtlLookUp
	CtlLookDown
	numControls
)

// Most terminals never report key releases, only auto-repeated presses. A
// first press holds for longer than the typical repeat delay; each repeat
// then only needs to bridge the gap to the next one.
const (
	firstPressHold = 550 * time.Millisecond
	repeatHold     = 120 * time.Millisecond
)

// keyMatcher is satisfied by uv.KeyPressEvent and uv.KeyReleaseEvent.
type keyMatcher interface {
	MatchString(s ...string) bool
}

// controlKeys maps each control to the key strings that drive it.
var controlKeys = [numControls][]string{
	CtlForward:   {"w", "shift+w", "W"},
	CtlBack:      {"s", "shift+s", "S"},
	CtlLeft:      {"a", "shift+a", "A"},
	CtlRight:     {"d", "shift+d", "D"},
	CtlSprint:    {"shift+w", "shift+s", "shift+a", "shift+d", "W", "S", "A", "D"},
	CtlLookLeft:  {"left"},
	CtlLookRight: {"right"},
	CtlLookUp:    {"up"},
	CtlLookDown:  {"down"},
}

// KeyLatch turns the press/release stream from the event goroutine into
// held states the frame loop can poll.
type KeyLatch struct {
	mu    sync.Mutex
	until [numControls]time.Time
	jump  bool
}

// Press latches c as held from now.
func (k *KeyLatch) Press(c Control, now time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	hold := firstPressHold
	if now.Before(k.until[c]) {
		hold = repeatHold
	}
	k.until[c] = latest(k.until[c], now.Add(hold))
}

// Release drops c immediately.
func (k *KeyLatch) Release(c Control) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.until[c] = time.Time{}
}

// Held reports whether c is still latched at now.
func (k *KeyLatch) Held(c Control, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return now.Before(k.until[c])
}

// Jump queues one jump for the next Input call.
func (k *KeyLatch) Jump() {
	k.mu.Lock()
	k.jump = true
	k.mu.Unlock()
}

// Clear drops every latch and any queued jump.
func (k *KeyLatch) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.until = [numControls]time.Time{}
	k.jump = false
}

// Input samples the movement latches into a physics.InputState and consumes
// the queued jump.
func (k *KeyLatch) Input(now time.Time, heading float64) physics.InputState {
	k.mu.Lock()
	defer k.mu.Unlock()
	held := func(c Control) bool { return now.Before(k.until[c]) }
	in := physics.InputState{
		Forward: held(CtlForward),
		Back:    held(CtlBack),
		Left:    held(CtlLeft),
		Right:   held(CtlRight),
		Sprint:  held(CtlSprint),
		Jump:    k.jump,
		Heading: heading,
	}
	k.jump = false
	return in
}

// LookRates returns the yaw and pitch rates asked for by the look keys.
// Positive yaw turns left and positive pitch looks up.
func (k *KeyLatch) LookRates(now time.Time, speed float64) (yaw, pitch float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	axis := func(pos, neg Control) float64 {
		var v float64
		if now.Before(k.until[pos]) {
			v++
		}
		if now.Before(k.until[neg]) {
			v--
		}
		return v * speed
	}
	return axis(CtlLookLeft, CtlLookRight), axis(CtlLookUp, CtlLookDown)
}

// matchControls returns every control a key event drives.
func matchControls(ev keyMatcher) []Control {
	var out []Control
	for c, keys := range controlKeys {
		if ev.MatchString(keys...) {
			out = append(out, Control(c))
		}
	}
	return out
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
