package core

import (
	"errors"
	"testing"
)

type constEntropy float64

func (c constEntropy) Float64() float64 { return float64(c) }

func TestEntropyRefDeterminism(t *testing.T) {
	a := NewEntropyRef(7)
	b := NewEntropyRef(7)

	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			t.Fatal("Same seed should produce the same sequence")
		}
	}
}

func TestEntropyRefReplace(t *testing.T) {
	r := NewEntropyRef(1)
	if r.Generation() != 0 {
		t.Fatalf("Generation() = %d, expected 0", r.Generation())
	}

	if err := r.Replace(constEntropy(0.5)); err != nil {
		t.Fatalf("Replace() failed: %v", err)
	}
	if r.Generation() != 1 {
		t.Errorf("Generation() = %d, expected 1", r.Generation())
	}
	if r.Float64() != 0.5 {
		t.Errorf("Float64() = %v, expected 0.5", r.Float64())
	}
}

func TestEntropyRefFreeze(t *testing.T) {
	r := NewEntropyRef(1)
	if err := r.Freeze(); err != nil {
		t.Fatalf("Freeze() failed: %v", err)
	}
	if err := r.Freeze(); !errors.Is(err, ErrEntropyFrozen) {
		t.Errorf("second Freeze() = %v, expected ErrEntropyFrozen", err)
	}
	if err := r.Replace(constEntropy(0.1)); !errors.Is(err, ErrEntropyFrozen) {
		t.Errorf("Replace() after freeze = %v, expected ErrEntropyFrozen", err)
	}
	if err := r.Reseed(3); !errors.Is(err, ErrEntropyFrozen) {
		t.Errorf("Reseed() after freeze = %v, expected ErrEntropyFrozen", err)
	}
	if r.Generation() != 0 {
		t.Errorf("Generation() = %d, expected 0 after rejected replacements", r.Generation())
	}
}
