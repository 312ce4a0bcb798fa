package sentinel

import "sync/atomic"

const previewLen = 80

func init() {
	Register(ProbeInfo{
		Name:     "evaluators",
		Title:    "Dynamic evaluation (developer console)",
		Severity: "105",
		Extended: true,
		Order:    80,
	}, func() Probe { return &evaluatorsProbe{} })
}

// evaluatorsProbe flags the first call through any evaluator it wrapped.
type evaluatorsProbe struct {
	m       *Monitor
	flagged atomic.Bool
}

func (p *evaluatorsProbe) Arm(m *Monitor) error {
	p.m = m
	return nil
}

func (p *evaluatorsProbe) wrapEvaluator(ev Evaluator, label string) Evaluator {
	if ev == nil {
		return nil
	}
	if t, ok := ev.(*trappedEvaluator); ok && t.probe == p {
		return ev
	}
	return &trappedEvaluator{probe: p, inner: ev, label: label}
}

type trappedEvaluator struct {
	probe *evaluatorsProbe
	inner Evaluator
	label string
}

func (t *trappedEvaluator) Eval(input string) (string, error) {
	if t.probe.flagged.CompareAndSwap(false, true) {
		t.probe.m.RecordSuspicion("Dynamic evaluation invoked", 105, map[string]any{
			"label":   t.label,
			"preview": truncate(input, previewLen),
		})
	}
	return t.inner.Eval(input)
}
