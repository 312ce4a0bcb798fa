package sentinel

import (
	"fmt"
	"sort"
	"sync"
)

// Probe is one tamper signal source. Arm installs its checks on the
// monitor; it runs once per Start.
type Probe interface {
	Arm(m *Monitor) error
}

// ProbeInfo describes a registered probe.
type ProbeInfo struct {
	Name  string
	Title string
	// Severity is the documented score contribution, e.g. "130" or "20/40".
	Severity string
	// Extended probes only arm when the monitor runs the extended set.
	Extended bool
	// Order fixes the arming sequence. Lower arms first.
	Order int
}

// Factory creates a fresh probe for one monitor.
type Factory func() Probe

type registration struct {
	info    ProbeInfo
	factory Factory
}

var (
	probes = make(map[string]registration)
	mu     sync.RWMutex
)

// Register adds a probe factory. Probes register themselves from init.
// Panics if a probe with the same name is already registered.
func Register(info ProbeInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := probes[info.Name]; exists {
		panic(fmt.Sprintf("sentinel: probe %q already registered", info.Name))
	}
	probes[info.Name] = registration{info: info, factory: f}
}

// Probes returns every registered probe in arming order.
func Probes() []ProbeInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]ProbeInfo, 0, len(probes))
	for _, r := range probes {
		result = append(result, r.info)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Create instantiates a probe by name.
func Create(name string) (Probe, error) {
	mu.RLock()
	defer mu.RUnlock()

	r, ok := probes[name]
	if !ok {
		return nil, fmt.Errorf("sentinel: unknown probe %q", name)
	}
	return r.factory(), nil
}
