package core

import "time"

// Action represents a semantic game action, abstracted from physical key presses.
// This allows the game to work with high-level intents rather than raw input.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, Up arrow
	ActionDown           // S, Down arrow
	ActionLeft           // A, Left arrow
	ActionRight          // D, Right arrow
	ActionStart          // Enter, Space - start button
	ActionReset          // R - reset button (also clears best score)
	ActionConsole        // ':' - developer console
	ActionQuit           // Q, Ctrl+C - exit game/session
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionStart:
		return "Start"
	case ActionReset:
		return "Reset"
	case ActionConsole:
		return "Console"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// IsDirection reports whether the action moves the player.
func (a Action) IsDirection() bool {
	return a == ActionUp || a == ActionDown || a == ActionLeft || a == ActionRight
}

// InputFrame represents the input state during one simulation tick.
type InputFrame struct {
	// Actions maps action types to whether they are active this frame.
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as active for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action is active this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// HeldKeys approximates key-down/key-up tracking on terminals, which only
// report presses. A direction counts as held until the hold window passes
// without a repeat press.
type HeldKeys struct {
	window   time.Duration
	deadline map[Action]time.Time
}

// DefaultHoldWindow covers the gap between the first press and the first
// autorepeat on common terminals.
const DefaultHoldWindow = 180 * time.Millisecond

// NewHeldKeys creates a tracker with the given hold window.
func NewHeldKeys(window time.Duration) *HeldKeys {
	if window <= 0 {
		window = DefaultHoldWindow
	}
	return &HeldKeys{
		window:   window,
		deadline: make(map[Action]time.Time),
	}
}

// Press marks a direction as held from now.
// Pressing the opposite direction releases the current one.
func (h *HeldKeys) Press(a Action, now time.Time) {
	if !a.IsDirection() {
		return
	}
	delete(h.deadline, opposite(a))
	h.deadline[a] = now.Add(h.window)
}

// Release drops every held direction.
func (h *HeldKeys) Release() {
	for k := range h.deadline {
		delete(h.deadline, k)
	}
}

// Frame returns the directions still held at now.
func (h *HeldKeys) Frame(now time.Time) InputFrame {
	frame := NewInputFrame()
	for a, until := range h.deadline {
		if now.Before(until) {
			frame.Set(a)
		} else {
			delete(h.deadline, a)
		}
	}
	return frame
}

func opposite(a Action) Action {
	switch a {
	case ActionUp:
		return ActionDown
	case ActionDown:
		return ActionUp
	case ActionLeft:
		return ActionRight
	case ActionRight:
		return ActionLeft
	default:
		return ActionNone
	}
}
