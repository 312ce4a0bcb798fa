package sentinel

import (
	"expvar"
	"sync"
)

// BaitVar is the expvar name of the tripwire. Formatting it, e.g. by
// serving /debug/vars or walking expvar.Do, trips every armed bait.
const BaitVar = "reflex_dodger_telemetry"

var (
	baitOnce  sync.Once
	baitMu    sync.Mutex
	baitArmed = make(map[*baitProbe]struct{})
)

type tripwire struct{}

func (tripwire) String() string {
	baitMu.Lock()
	armed := make([]*baitProbe, 0, len(baitArmed))
	for p := range baitArmed {
		armed = append(armed, p)
	}
	baitMu.Unlock()

	for _, p := range armed {
		p.m.RecordSuspicion("Console inspection bait accessed", 90, map[string]any{
			"source": "expvar-getter",
		})
	}
	return `"forbidden"`
}

func init() {
	Register(ProbeInfo{
		Name:     "bait",
		Title:    "Inspection bait (expvar tripwire)",
		Severity: "90",
		Order:    20,
	}, func() Probe { return &baitProbe{} })
}

type baitProbe struct {
	m *Monitor
}

func (p *baitProbe) Arm(m *Monitor) error {
	p.m = m
	baitOnce.Do(func() {
		expvar.Publish(BaitVar, tripwire{})
	})
	baitMu.Lock()
	baitArmed[p] = struct{}{}
	baitMu.Unlock()
	return nil
}

func (p *baitProbe) stop() {
	baitMu.Lock()
	delete(baitArmed, p)
	baitMu.Unlock()
}
