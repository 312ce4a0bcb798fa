package sentinel

import (
	"strings"
	"sync"
)

func init() {
	Register(ProbeInfo{
		Name:     "shortcuts",
		Title:    "Developer shortcuts (F12, Ctrl+Shift+I/J/C, Meta+Alt+I)",
		Severity: "90",
		Order:    30,
	}, func() Probe { return &shortcutsProbe{} })
	Register(ProbeInfo{
		Name:     "contextmenu",
		Title:    "Context menu requests",
		Severity: "20/40",
		Order:    40,
	}, func() Probe { return &contextMenuProbe{} })
}

type shortcutsProbe struct {
	m *Monitor
}

func (p *shortcutsProbe) Arm(m *Monitor) error {
	p.m = m
	return nil
}

func (p *shortcutsProbe) observeKey(ev KeyEvent) bool {
	if !isDevShortcut(ev) {
		return false
	}
	p.m.RecordSuspicion("Blocked developer shortcut", 90, map[string]any{
		"key":   ev.Key,
		"ctrl":  ev.Ctrl,
		"shift": ev.Shift,
		"meta":  ev.Meta,
	})
	return true
}

func isDevShortcut(ev KeyEvent) bool {
	key := strings.ToLower(ev.Key)
	switch {
	case key == "f12":
		return true
	case ev.Ctrl && ev.Shift:
		return key == "i" || key == "j" || key == "c"
	case ev.Meta && ev.Alt:
		return key == "i"
	}
	return false
}

type contextMenuProbe struct {
	m *Monitor

	mu       sync.Mutex
	attempts int
}

func (p *contextMenuProbe) Arm(m *Monitor) error {
	p.m = m
	return nil
}

// observeContextMenu scores the first attempt lightly, lets the second and
// third pass, and scores every attempt after that.
func (p *contextMenuProbe) observeContextMenu() {
	p.mu.Lock()
	p.attempts++
	attempts := p.attempts
	p.mu.Unlock()

	switch {
	case attempts == 1:
		p.m.RecordSuspicion("Context menu blocked", 20, nil)
	case attempts > 3:
		p.m.RecordSuspicion("Repeated context menu access", 40, map[string]any{
			"attempts": attempts,
		})
	}
}
