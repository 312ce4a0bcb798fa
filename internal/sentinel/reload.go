package sentinel

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/hako/durafmt"

	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

const reloadWindow = 1500 * time.Millisecond

func init() {
	Register(ProbeInfo{
		Name:     "reload",
		Title:    "Rapid restart",
		Severity: "65",
		Order:    0,
	}, func() Probe { return &reloadProbe{} })
}

type reloadProbe struct {
	m  *Monitor
	kv storage.KV
}

// Arm compares the stored exit time of the previous session with now.
func (p *reloadProbe) Arm(m *Monitor) error {
	if m.host.Store == nil {
		return unavailable("store")
	}
	p.m = m
	p.kv = m.host.Store

	raw, err := p.kv.Get(storage.KeyLastExit)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn("failed to read exit timestamp", "error", err)
		return nil
	}
	last, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || last <= 0 {
		return nil
	}

	elapsed := m.now().UnixMilli() - last
	if elapsed < reloadWindow.Milliseconds() {
		m.logger.Info("rapid restart", "elapsed", durafmt.Parse(time.Duration(elapsed)*time.Millisecond).String())
		m.RecordSuspicion("Rapid refresh detected", 65, map[string]any{
			"elapsedMs": elapsed,
		})
	}
	return nil
}

func (p *reloadProbe) exit() {
	now := strconv.FormatInt(p.m.now().UnixMilli(), 10)
	if err := p.kv.Set(storage.KeyLastExit, now); err != nil {
		p.m.logger.Warn("failed to store exit timestamp", "error", err)
	}
}
