package ban

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/reflex-dodger/internal/status"
	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

// StatusSink receives the security state change issued with a ban.
type StatusSink interface {
	SetSecurity(message string, tone status.Tone)
}

// Manager loads, issues and persists the ban for one storage scope.
type Manager struct {
	mu        sync.RWMutex
	kv        storage.KV
	status    StatusSink
	record    *Record
	banned    chan struct{}
	closeOnce sync.Once
	masked    bool
	logger    *log.Logger
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for storage warnings.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithMasking switches the lockout wording to the masked variant.
func WithMasking(masked bool) Option {
	return func(m *Manager) {
		m.masked = masked
	}
}

// NewManager creates a manager and loads any persisted ban.
// Unreadable or malformed data is treated as no ban.
func NewManager(kv storage.KV, sink StatusSink, opts ...Option) *Manager {
	m := &Manager{
		kv:     kv,
		status: sink,
		banned: make(chan struct{}),
		logger: log.WithPrefix("ban"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.record = m.load()
	if m.record != nil {
		m.closeOnce.Do(func() { close(m.banned) })
	}
	return m
}

func (m *Manager) load() *Record {
	if m.kv == nil {
		return nil
	}
	raw, err := m.kv.Get(storage.KeyBan)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && raw == "") {
		return nil
	}
	if err != nil {
		m.logger.Warn("failed to read ban info", "error", err)
		return nil
	}

	var rec *Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		m.logger.Warn("failed to parse ban info", "error", err)
		return nil
	}
	return rec
}

// IsBanned reports whether a ban is in effect.
func (m *Manager) IsBanned() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.record != nil
}

// Record returns a copy of the ban, if any.
func (m *Manager) Record() (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.record == nil {
		return Record{}, false
	}
	return m.record.clone(), true
}

// Banned returns a channel closed once the session is banned.
func (m *Manager) Banned() <-chan struct{} {
	return m.banned
}

// IssueBan bans the scope. Only the first call has any effect.
// A failed write is logged; the ban still holds for this process.
func (m *Manager) IssueBan(reason string, entries []Entry) {
	m.mu.Lock()
	if m.record != nil {
		m.mu.Unlock()
		return
	}
	rec := &Record{
		Reason:    reason,
		Timestamp: Timestamp(m.now()),
		Log:       append([]Entry(nil), entries...),
	}
	m.record = rec
	m.persist(rec)
	m.mu.Unlock()

	m.logger.Warn("session banned", "reason", reason, "entries", len(entries))

	if m.status != nil {
		msg := "Security lockout in place"
		if m.masked {
			msg = "Lockout enforced"
		}
		m.status.SetSecurity(msg, status.ToneAlert)
	}
	m.closeOnce.Do(func() { close(m.banned) })
}

func (m *Manager) persist(rec *Record) {
	if m.kv == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		m.logger.Warn("unable to encode ban information", "error", err)
		return
	}
	if err := m.kv.Set(storage.KeyBan, string(data)); err != nil {
		m.logger.Warn("unable to persist ban information", "error", err)
	}
}
