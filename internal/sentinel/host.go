package sentinel

import (
	"errors"
	"fmt"
	"os"

	"github.com/vovakirdan/reflex-dodger/internal/storage"
)

// ErrUnavailable is returned by Arm when the host lacks a capability the
// probe needs. The monitor skips such probes.
var ErrUnavailable = errors.New("sentinel: capability unavailable")

func unavailable(capability string) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, capability)
}

// Viewport reports the outer size of the host surface and the inner size
// the game was given, both in the same units.
type Viewport interface {
	OuterSize() (width, height int)
	InnerSize() (width, height int)
}

// EntropySource is the shared RNG reference the game draws from.
type EntropySource interface {
	Generation() uint64
	Freeze() error
}

// Script is one inserted script as seen by a ScriptSource.
type Script struct {
	Name   string
	Src    string
	Text   string
	Ignore bool
}

// ScriptSource notifies about inserted scripts until cancelled.
type ScriptSource interface {
	Subscribe(fn func(Script)) (cancel func())
}

// Evaluator is a dynamic-evaluation capability exposed by the host.
type Evaluator interface {
	Eval(input string) (string, error)
}

// EvaluatorFunc adapts a function to Evaluator.
type EvaluatorFunc func(input string) (string, error)

// Eval calls f.
func (f EvaluatorFunc) Eval(input string) (string, error) {
	return f(input)
}

// KeyEvent is a key press as seen by the host.
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// Host lists the capabilities probes may observe. Nil fields disable the
// probes that depend on them.
type Host struct {
	Viewport Viewport
	Store    storage.KV
	Entropy  EntropySource
	Scripts  ScriptSource
	// Environ defaults to os.Environ.
	Environ func() []string
	// ProcStatus returns the contents of /proc/self/status.
	ProcStatus func() ([]byte, error)
}

func (h Host) withDefaults() Host {
	if h.Environ == nil {
		h.Environ = os.Environ
	}
	if h.ProcStatus == nil {
		h.ProcStatus = func() ([]byte, error) {
			return os.ReadFile("/proc/self/status")
		}
	}
	return h
}

// Optional behaviours a probe may implement besides Arm.
type (
	keyObserver interface {
		observeKey(ev KeyEvent) bool
	}
	contextMenuObserver interface {
		observeContextMenu()
	}
	resizeObserver interface {
		observeResize()
	}
	evaluatorWrapper interface {
		wrapEvaluator(ev Evaluator, label string) Evaluator
	}
	exiter interface {
		exit()
	}
	stopper interface {
		stop()
	}
)
