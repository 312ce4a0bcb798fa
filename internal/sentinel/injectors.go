package sentinel

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const injectorsInterval = 3500 * time.Millisecond

var preloadVars = []string{"LD_PRELOAD", "DYLD_INSERT_LIBRARIES"}

func init() {
	Register(ProbeInfo{
		Name:     "injectors",
		Title:    "Injection tooling (preload, tracer, bridge)",
		Severity: "135/120",
		Extended: true,
		Order:    60,
	}, func() Probe { return &injectorsProbe{} })
}

type injectorsProbe struct {
	m *Monitor

	mu      sync.Mutex
	flagged bool
}

func (p *injectorsProbe) Arm(m *Monitor) error {
	p.m = m
	p.check()
	m.every(injectorsInterval, p.check)
	return nil
}

// check flags the first injection tool it finds and then stays quiet.
func (p *injectorsProbe) check() {
	p.mu.Lock()
	if p.flagged {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	env := envMap(p.m.host.Environ())

	for _, name := range preloadVars {
		if value := env[name]; value != "" {
			p.flag("Injection tool detected", 135, map[string]any{
				"handler": name,
				"script":  firstLibrary(value),
			})
			return
		}
	}

	if pid := tracerPid(p.m.host.ProcStatus); pid != "" {
		p.flag("Injection tool detected", 135, map[string]any{
			"handler": "ptrace",
			"script":  "pid " + pid,
		})
		return
	}

	for name, value := range env {
		if strings.HasPrefix(name, "FRIDA") || strings.Contains(strings.ToLower(value), "frida-gadget") {
			p.flag("Injection bridge exposed", 120, map[string]any{
				"handler": "frida",
			})
			return
		}
	}
}

func (p *injectorsProbe) flag(reason string, severity int, metadata map[string]any) {
	p.mu.Lock()
	if p.flagged {
		p.mu.Unlock()
		return
	}
	p.flagged = true
	p.mu.Unlock()
	p.m.RecordSuspicion(reason, severity, metadata)
}

func envMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if ok {
			env[name] = value
		}
	}
	return env
}

func firstLibrary(value string) string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ':' || r == ' '
	})
	if len(fields) == 0 {
		return "unknown"
	}
	return filepath.Base(fields[0])
}

// tracerPid returns the non-zero TracerPid from a /proc status file.
func tracerPid(read func() ([]byte, error)) string {
	data, err := read()
	if err != nil {
		return ""
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		value, ok := strings.CutPrefix(sc.Text(), "TracerPid:")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "0" {
			return ""
		}
		return value
	}
	return ""
}
