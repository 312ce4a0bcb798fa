// Package sentinel runs the fair-play probes and keeps a decaying
// suspicion score. Crossing the threshold, or any single signal at ban
// severity, bans the session.
package sentinel

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/reflex-dodger/internal/ban"
	"github.com/vovakirdan/reflex-dodger/internal/status"
)

const (
	DefaultThreshold = 140
	MaxScore         = 240
	// BanSeverity bans on its own, whatever the score.
	BanSeverity   = 120
	DecayAmount   = 4
	DecayInterval = 8 * time.Second
)

// Banner is the part of the ban manager the monitor drives.
type Banner interface {
	IsBanned() bool
	IssueBan(reason string, entries []ban.Entry)
}

// StatusSink receives security state changes.
type StatusSink interface {
	SetSecurity(message string, tone status.Tone)
}

type wording struct {
	armed   string
	clean   string
	anomaly string
	breach  string
}

var (
	plainWording = wording{
		armed:   "Monitoring for tampering…",
		clean:   "Monitoring clean",
		anomaly: "Suspicious behaviour observed",
		breach:  "Security breach detected — banning session…",
	}
	maskedWording = wording{
		armed:   "Monitoring channel armed",
		clean:   "Channel clear",
		anomaly: "Anomaly observed",
		breach:  "Irregular activity locked the session…",
	}
)

// Monitor owns the suspicion score, the log and every probe task.
type Monitor struct {
	bans     Banner
	status   StatusSink
	host     Host
	sched    Scheduler
	logger   *log.Logger
	now      func() time.Time
	extended bool
	masked   bool
	text     wording

	mu         sync.Mutex
	score      int
	entries    []ban.Entry
	monitoring bool
	stopped    bool
	tasks      []Task
	armed      []Probe
	stopOnce   sync.Once
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithScheduler sets the scheduler for periodic probes and decay.
func WithScheduler(s Scheduler) Option {
	return func(m *Monitor) {
		m.sched = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Monitor) {
		m.logger = l
	}
}

// WithClock overrides the time source for entry timestamps and the
// reload probe.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// WithExtended arms the extended probe set as well.
func WithExtended(extended bool) Option {
	return func(m *Monitor) {
		m.extended = extended
	}
}

// WithMasking records opaque markers instead of plain reasons.
func WithMasking(masked bool) Option {
	return func(m *Monitor) {
		m.masked = masked
		m.text = plainWording
		if masked {
			m.text = maskedWording
		}
	}
}

// New creates an idle monitor. Call Start to arm the probes.
func New(bans Banner, sink StatusSink, host Host, opts ...Option) *Monitor {
	m := &Monitor{
		bans:   bans,
		status: sink,
		host:   host.withDefaults(),
		sched:  TickerScheduler{},
		logger: log.WithPrefix("sentinel"),
		now:    time.Now,
		text:   plainWording,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start arms every probe, the reload probe first, then the decay task.
// It does nothing if the session is banned or already monitored.
func (m *Monitor) Start() {
	if m.bans.IsBanned() {
		return
	}
	m.mu.Lock()
	if m.monitoring {
		m.mu.Unlock()
		return
	}
	m.monitoring = true
	m.mu.Unlock()

	m.setSecurity(m.text.armed, status.ToneOK)

	for _, info := range Probes() {
		if info.Extended && !m.extended {
			continue
		}
		if m.bans.IsBanned() {
			break
		}
		p, err := Create(info.Name)
		if err != nil {
			m.logger.Warn("probe lookup failed", "probe", info.Name, "error", err)
			continue
		}
		if err := p.Arm(m); err != nil {
			if errors.Is(err, ErrUnavailable) {
				m.logger.Debug("probe skipped", "probe", info.Name, "error", err)
			} else {
				m.logger.Warn("probe failed to arm", "probe", info.Name, "error", err)
			}
			continue
		}
		m.adopt(p)
	}

	m.every(DecayInterval, m.decay)
	m.logger.Info("security monitors active", "extended", m.extended, "masked", m.masked)
}

// adopt keeps p for event dispatch. A probe armed after the monitor
// stopped is stopped straight away.
func (m *Monitor) adopt(p Probe) {
	m.mu.Lock()
	m.armed = append(m.armed, p)
	stopped := m.stopped
	m.mu.Unlock()
	if s, ok := p.(stopper); ok && stopped {
		s.stop()
	}
}

// every schedules fn until the monitor stops. Each run first checks the
// ban, so no task outlives it.
func (m *Monitor) every(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.tasks = append(m.tasks, m.sched.Every(d, func() {
		if m.bans.IsBanned() {
			m.stop()
			return
		}
		fn()
	}))
}

// RecordSuspicion logs a signal, raises the score and bans when the signal
// is severe enough or the score reaches the threshold.
func (m *Monitor) RecordSuspicion(reason string, severity int, metadata map[string]any) {
	if m.bans.IsBanned() {
		return
	}
	entry := m.entry(reason, severity, metadata)

	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.score = min(MaxScore, max(0, m.score+severity))
	score := m.score
	snapshot := append([]ban.Entry(nil), m.entries...)
	m.mu.Unlock()

	m.logger.Debug("suspicion recorded", "event", entry.Label(), "severity", severity, "score", score)

	if score >= DefaultThreshold {
		m.setSecurity(m.text.breach, status.ToneAlert)
	} else {
		m.setSecurity(m.text.anomaly, status.ToneWarning)
	}

	if severity >= BanSeverity || score >= DefaultThreshold {
		m.bans.IssueBan(entry.Label(), snapshot)
		m.stop()
	}
}

func (m *Monitor) entry(reason string, severity int, metadata map[string]any) ban.Entry {
	e := ban.Entry{
		Severity:  severity,
		Timestamp: ban.Timestamp(m.now()),
	}
	if !m.masked {
		e.Reason = reason
		if len(metadata) > 0 {
			e.Metadata = make(map[string]any, len(metadata))
			for k, v := range metadata {
				e.Metadata[k] = v
			}
		}
		return e
	}

	e.Marker = maskEvent(reason)
	if len(metadata) > 0 {
		if data, err := json.Marshal(metadata); err == nil {
			e.Detail = maskEvent(string(data))
		}
	}
	return e
}

func (m *Monitor) decay() {
	m.mu.Lock()
	if m.score == 0 {
		m.mu.Unlock()
		return
	}
	m.score = max(0, m.score-DecayAmount)
	clean := m.score == 0
	m.mu.Unlock()

	if clean {
		m.setSecurity(m.text.clean, status.ToneOK)
	}
}

// stop cancels every task and releases probe resources, exactly once.
func (m *Monitor) stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.stopped = true
		tasks := m.tasks
		m.tasks = nil
		armed := append([]Probe(nil), m.armed...)
		m.mu.Unlock()

		for _, t := range tasks {
			t.Stop()
		}
		for _, p := range armed {
			if s, ok := p.(stopper); ok {
				s.stop()
			}
		}
		m.logger.Debug("monitor stopped", "tasks", len(tasks))
	})
}

func (m *Monitor) setSecurity(msg string, tone status.Tone) {
	if m.status != nil {
		m.status.SetSecurity(msg, tone)
	}
}

func (m *Monitor) probes() []Probe {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Probe(nil), m.armed...)
}

// HandleKey shows a key press to the probes. It reports whether the host
// should swallow the key.
func (m *Monitor) HandleKey(ev KeyEvent) bool {
	blocked := false
	for _, p := range m.probes() {
		if o, ok := p.(keyObserver); ok && o.observeKey(ev) {
			blocked = true
		}
	}
	return blocked
}

// HandleContextMenu reports a context-menu request. The host never opens one.
func (m *Monitor) HandleContextMenu() {
	for _, p := range m.probes() {
		if o, ok := p.(contextMenuObserver); ok {
			o.observeContextMenu()
		}
	}
}

// HandleResize reports that the host surface changed size.
func (m *Monitor) HandleResize() {
	for _, p := range m.probes() {
		if o, ok := p.(resizeObserver); ok {
			o.observeResize()
		}
	}
}

// WrapEvaluator returns ev wrapped by any armed evaluator trap, or ev itself.
func (m *Monitor) WrapEvaluator(ev Evaluator, label string) Evaluator {
	for _, p := range m.probes() {
		if w, ok := p.(evaluatorWrapper); ok {
			ev = w.wrapEvaluator(ev, label)
		}
	}
	return ev
}

// Close records the exit for the next start and stops all tasks.
func (m *Monitor) Close() {
	for _, p := range m.probes() {
		if e, ok := p.(exiter); ok {
			e.exit()
		}
	}
	m.stop()
}

// Score returns the current suspicion score.
func (m *Monitor) Score() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score
}

// Log returns a copy of the suspicion log.
func (m *Monitor) Log() []ban.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ban.Entry(nil), m.entries...)
}

// Monitoring reports whether Start armed the probes.
func (m *Monitor) Monitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitoring
}
