package sentinel

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf16"
)

var (
	remoteScheme = regexp.MustCompile(`(?i)^(?:data|blob|javascript):`)
	bookmarklet  = regexp.MustCompile(`(?i)bookmarklet`)
	tamper       = regexp.MustCompile(`(?i)tamper`)
	voidZero     = regexp.MustCompile(`void\s*0`)
)

const (
	snippetLen     = 120
	shortScriptLen = 160
)

func init() {
	Register(ProbeInfo{
		Name:     "scripts",
		Title:    "Inserted scripts",
		Severity: "125/95",
		Extended: true,
		Order:    70,
	}, func() Probe { return &scriptsProbe{} })
}

type scriptsProbe struct {
	m *Monitor

	mu     sync.Mutex
	cancel func()
}

func (p *scriptsProbe) Arm(m *Monitor) error {
	if m.host.Scripts == nil {
		return unavailable("scripts")
	}
	p.m = m
	cancel := m.host.Scripts.Subscribe(p.evaluate)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()
	return nil
}

func (p *scriptsProbe) stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (p *scriptsProbe) evaluate(s Script) {
	if s.Ignore {
		return
	}
	if s.Src != "" {
		if remoteScheme.MatchString(s.Src) || bookmarklet.MatchString(s.Src) || tamper.MatchString(s.Src) {
			p.m.RecordSuspicion("Injected script URL detected", 125, map[string]any{
				"source": s.Src,
			})
		}
		return
	}

	trimmed := strings.TrimSpace(s.Text)
	if trimmed == "" {
		return
	}
	snippet := truncate(trimmed, snippetLen)
	switch {
	case bookmarklet.MatchString(trimmed) || voidZero.MatchString(trimmed) || strings.Contains(trimmed, "GM_"):
		p.m.RecordSuspicion("Inline runtime script injection", 125, map[string]any{
			"snippet": snippet,
		})
	case utf16Len(trimmed) < shortScriptLen:
		p.m.RecordSuspicion("Short inline script appended", 95, map[string]any{
			"snippet": snippet,
		})
	}
}

// Script lengths are counted in UTF-16 code units, as the page measures them.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// truncate cuts s to at most n UTF-16 code units without splitting a rune.
func truncate(s string, n int) string {
	used := 0
	for i, r := range s {
		used += utf16.RuneLen(r)
		if used > n {
			return s[:i]
		}
	}
	return s
}
