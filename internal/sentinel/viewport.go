package sentinel

import (
	"sync"
	"time"
)

const (
	viewportGap      = 140
	viewportStreak   = 3
	viewportInterval = 350 * time.Millisecond
	viewportSeverity = 130
)

func init() {
	Register(ProbeInfo{
		Name:     "viewport",
		Title:    "Inspection surface (outer/inner size gap)",
		Severity: "130",
		Order:    10,
	}, func() Probe { return &viewportProbe{} })
}

type viewportProbe struct {
	m  *Monitor
	vp Viewport

	mu     sync.Mutex
	streak int
}

func (p *viewportProbe) Arm(m *Monitor) error {
	if m.host.Viewport == nil {
		return unavailable("viewport")
	}
	p.m = m
	p.vp = m.host.Viewport
	m.every(viewportInterval, p.sample)
	return nil
}

func (p *viewportProbe) observeResize() {
	p.sample()
}

// sample counts consecutive samples where the outer surface is more than
// viewportGap larger than the inner one on either axis.
func (p *viewportProbe) sample() {
	innerW, innerH := p.vp.InnerSize()
	outerW, outerH := p.vp.OuterSize()
	if outerW <= 0 {
		outerW = innerW
	}
	if outerH <= 0 {
		outerH = innerH
	}
	widthDiff := abs(outerW - innerW)
	heightDiff := abs(outerH - innerH)
	open := outerW > 0 && outerH > 0 && (widthDiff > viewportGap || heightDiff > viewportGap)

	p.mu.Lock()
	report := false
	if open {
		p.streak++
		if p.streak >= viewportStreak {
			p.streak = 0
			report = true
		}
	} else {
		p.streak = 0
	}
	p.mu.Unlock()

	if report {
		p.m.RecordSuspicion("Developer tools interface detected", viewportSeverity, map[string]any{
			"widthDiff":  widthDiff,
			"heightDiff": heightDiff,
		})
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
