package core

import (
	"testing"
	"time"
)

func TestInputFrame(t *testing.T) {
	f := NewInputFrame()
	if f.Has(ActionUp) {
		t.Error("New frame should be empty")
	}

	f.Set(ActionUp)
	f.Set(ActionLeft)
	if !f.Has(ActionUp) || !f.Has(ActionLeft) {
		t.Error("Set actions should be reported by Has")
	}

	var zero InputFrame
	if zero.Has(ActionUp) {
		t.Error("Zero frame should report no actions")
	}
	zero.Set(ActionDown)
	if !zero.Has(ActionDown) {
		t.Error("Set() on zero frame should allocate")
	}
}

func TestHeldKeysWindow(t *testing.T) {
	start := time.Unix(0, 0)
	h := NewHeldKeys(100 * time.Millisecond)

	h.Press(ActionLeft, start)
	if !h.Frame(start.Add(50 * time.Millisecond)).Has(ActionLeft) {
		t.Error("Direction should be held inside the window")
	}
	if h.Frame(start.Add(150 * time.Millisecond)).Has(ActionLeft) {
		t.Error("Direction should be released after the window")
	}

	// Autorepeat extends the hold
	h.Press(ActionUp, start)
	h.Press(ActionUp, start.Add(90*time.Millisecond))
	if !h.Frame(start.Add(150 * time.Millisecond)).Has(ActionUp) {
		t.Error("Repeat press should extend the hold")
	}
}

func TestHeldKeysOpposite(t *testing.T) {
	now := time.Unix(0, 0)
	h := NewHeldKeys(time.Second)

	h.Press(ActionLeft, now)
	h.Press(ActionUp, now)
	h.Press(ActionRight, now)

	f := h.Frame(now)
	if f.Has(ActionLeft) {
		t.Error("Pressing Right should release Left")
	}
	if !f.Has(ActionRight) || !f.Has(ActionUp) {
		t.Error("Right and Up should both be held")
	}

	h.Press(ActionStart, now)
	if h.Frame(now).Has(ActionStart) {
		t.Error("Non-direction actions are never held")
	}

	h.Release()
	if len(h.Frame(now).Actions) != 0 {
		t.Error("Release() should drop every direction")
	}
}

func TestActionString(t *testing.T) {
	if ActionConsole.String() != "Console" {
		t.Errorf("ActionConsole.String() = %q", ActionConsole.String())
	}
	if Action(99).String() != "Unknown" {
		t.Errorf("Action(99).String() = %q", Action(99).String())
	}
}
