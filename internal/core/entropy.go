package core

import (
	"errors"
	"math/rand"
	"sync"
)

// Entropy is a source of uniform floats in [0, 1).
type Entropy interface {
	Float64() float64
}

// ErrEntropyFrozen is returned when replacing a frozen entropy reference.
var ErrEntropyFrozen = errors.New("core: entropy source is frozen")

// EntropyRef is the shared random-number primitive used by the game.
// Every replacement bumps the generation, so a holder can detect that the
// source it captured is no longer the one in use.
type EntropyRef struct {
	mu         sync.RWMutex
	src        Entropy
	generation uint64
	frozen     bool
}

// NewEntropyRef creates a reference seeded with a math/rand source.
func NewEntropyRef(seed int64) *EntropyRef {
	return &EntropyRef{src: rand.New(rand.NewSource(seed))}
}

// Float64 draws from the current source.
func (r *EntropyRef) Float64() float64 {
	r.mu.RLock()
	src := r.src
	r.mu.RUnlock()
	return src.Float64()
}

// Replace swaps the underlying source unless the reference is frozen.
func (r *EntropyRef) Replace(src Entropy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrEntropyFrozen
	}
	r.src = src
	r.generation++
	return nil
}

// Reseed replaces the source with a fresh math/rand source.
func (r *EntropyRef) Reseed(seed int64) error {
	return r.Replace(rand.New(rand.NewSource(seed)))
}

// Freeze makes further replacements fail.
func (r *EntropyRef) Freeze() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrEntropyFrozen
	}
	r.frozen = true
	return nil
}

// Generation returns how many times the source has been replaced.
func (r *EntropyRef) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}
