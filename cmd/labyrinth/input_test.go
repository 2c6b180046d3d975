package main

import (
	"testing"
	"time"
)

type fakeKey []string

func (k fakeKey) MatchString(s ...string) bool {
	for _, want := range s {
		for _, got := range k {
			if got == want {
				return true
			}
		}
	}
	return false
}

func TestKeyLatchHold(t *testing.T) {
	var k KeyLatch
	t0 := time.Unix(1000, 0)

	k.Press(CtlForward, t0)
	if !k.Held(CtlForward, t0.Add(400*time.Millisecond)) {
		t.Error("first press should bridge the repeat delay")
	}
	if k.Held(CtlForward, t0.Add(firstPressHold)) {
		t.Error("first press held past firstPressHold")
	}

	// Auto-repeat keeps the key down.
	now := t0
	for range 20 {
		now = now.Add(50 * time.Millisecond)
		k.Press(CtlForward, now)
	}
	if !k.Held(CtlForward, now.Add(repeatHold/2)) {
		t.Error("repeated presses should keep the key held")
	}
	if k.Held(CtlForward, now.Add(repeatHold)) {
		t.Error("key held after repeats stopped")
	}
}

func TestKeyLatchRelease(t *testing.T) {
	var k KeyLatch
	now := time.Unix(1000, 0)

	k.Press(CtlLeft, now)
	k.Release(CtlLeft)
	if k.Held(CtlLeft, now) {
		t.Error("released key still held")
	}
}

func TestKeyLatchInput(t *testing.T) {
	var k KeyLatch
	now := time.Unix(1000, 0)

	k.Press(CtlForward, now)
	k.Press(CtlSprint, now)
	k.Jump()

	in := k.Input(now, 1.25)
	if !in.Forward || !in.Sprint || !in.Jump || in.Back || in.Left || in.Right {
		t.Errorf("Input = %+v", in)
	}
	if in.Heading != 1.25 {
		t.Errorf("Heading = %v, want 1.25", in.Heading)
	}
	if k.Input(now, 0).Jump {
		t.Error("jump should be consumed by the first Input")
	}

	k.Clear()
	if in := k.Input(now, 0); in.Forward || in.Sprint {
		t.Errorf("Input after Clear = %+v", in)
	}
}

func TestKeyLatchLookRates(t *testing.T) {
	var k KeyLatch
	now := time.Unix(1000, 0)

	tests := []struct {
		name       string
		press      []Control
		yaw, pitch float64
	}{
		{"idle", nil, 0, 0},
		{"left", []Control{CtlLookLeft}, 2, 0},
		{"right and down", []Control{CtlLookRight, CtlLookDown}, -2, -2},
		{"opposed", []Control{CtlLookUp, CtlLookDown}, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			k.Clear()
			for _, c := range tc.press {
				k.Press(c, now)
			}
			yaw, pitch := k.LookRates(now, 2)
			if yaw != tc.yaw || pitch != tc.pitch {
				t.Errorf("LookRates = (%v, %v), want (%v, %v)", yaw, pitch, tc.yaw, tc.pitch)
			}
		})
	}
}

func TestMatchControls(t *testing.T) {
	tests := []struct {
		name string
		key  fakeKey
		want []Control
	}{
		{"walk", fakeKey{"w"}, []Control{CtlForward}},
		{"sprint", fakeKey{"shift+d"}, []Control{CtlRight, CtlSprint}},
		{"look", fakeKey{"up"}, []Control{CtlLookUp}},
		{"unbound", fakeKey{"g"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := matchControls(tc.key)
			if len(got) != len(tc.want) {
				t.Fatalf("matchControls = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("matchControls = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
