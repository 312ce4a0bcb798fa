package storage

import (
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned by KV.Get for missing keys.
var ErrNotFound = errors.New("storage: key not found")

// Well-known keys.
const (
	KeyBan       = "reflex-dodger:ban"
	KeyLastExit  = "reflex-dodger:last-exit"
	KeyBestScore = "reflex-dodger:best-score"
)

// KV is a synchronous string-keyed, string-valued store.
type KV interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Scoped prefixes every key, giving each user or session its own
// storage scope inside one backing store.
type Scoped struct {
	kv     KV
	prefix string
}

// Scope returns a view of kv whose keys are prefixed with prefix.
func Scope(kv KV, prefix string) *Scoped {
	return &Scoped{kv: kv, prefix: prefix}
}

// UserScope returns the storage prefix for an SSH user.
func UserScope(user string) string {
	if user == "" {
		user = "anonymous"
	}
	return "user/" + user + "/"
}

// Prefix returns the scope prefix.
func (s *Scoped) Prefix() string {
	return s.prefix
}

// Get implements KV.
func (s *Scoped) Get(key string) (string, error) {
	return s.kv.Get(s.prefix + key)
}

// Set implements KV.
func (s *Scoped) Set(key, value string) error {
	return s.kv.Set(s.prefix+key, value)
}

// Delete implements KV.
func (s *Scoped) Delete(key string) error {
	return s.kv.Delete(s.prefix + key)
}

// KeyLister enumerates stored keys.
type KeyLister interface {
	Keys(prefix string) ([]string, error)
}

// ScopesWith returns every scope that holds key, in key order. The local
// scope is reported as "".
func ScopesWith(kv KeyLister, key string) ([]string, error) {
	keys, err := kv.Keys("")
	if err != nil {
		return nil, err
	}
	var scopes []string
	for _, k := range keys {
		scope, ok := strings.CutSuffix(k, key)
		if !ok || (scope != "" && !strings.HasSuffix(scope, "/")) {
			continue
		}
		scopes = append(scopes, scope)
	}
	return scopes, nil
}

// Memory is an in-process KV used when the database is unavailable.
// Nothing survives a restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get implements KV.
func (m *Memory) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements KV.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Delete implements KV.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var (
	_ KV = (*Store)(nil)
	_ KV = (*Scoped)(nil)
	_ KV = (*Memory)(nil)

	_ KeyLister = (*Store)(nil)
)
