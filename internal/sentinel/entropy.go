package sentinel

import "time"

func init() {
	Register(ProbeInfo{
		Name:     "entropy",
		Title:    "Entropy source replacement",
		Severity: "140",
		Order:    50,
	}, func() Probe { return &entropyProbe{} })
}

type entropyProbe struct{}

// Arm freezes the shared RNG and checks every second that the source in
// use is still the one captured here.
func (p *entropyProbe) Arm(m *Monitor) error {
	src := m.host.Entropy
	if src == nil {
		return unavailable("entropy")
	}
	generation := src.Generation()
	if err := src.Freeze(); err != nil {
		m.logger.Warn("unable to lock entropy source", "error", err)
	}
	m.every(time.Second, func() {
		if src.Generation() != generation {
			m.RecordSuspicion("Entropy source replaced", 140, nil)
		}
	})
	return nil
}
