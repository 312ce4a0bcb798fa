package tui

import (
	"os"
	"sync"

	"golang.org/x/term"
)

// SizeFunc reports a terminal size in cells.
type SizeFunc func() (cols, rows int, ok bool)

// TermSize reads the size of the controlling terminal on stdout.
func TermSize() (cols, rows int, ok bool) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}

// cellViewport reports terminal sizes to the fair-play viewport probe in
// canvas pixels. Outer is what the terminal itself reports; inner is what
// the renderer was last given.
type cellViewport struct {
	outer        SizeFunc
	cellW, cellH float64

	mu             sync.Mutex
	innerW, innerH int
}

func newCellViewport(outer SizeFunc, cellW, cellH float64) *cellViewport {
	return &cellViewport{outer: outer, cellW: cellW, cellH: cellH}
}

func (v *cellViewport) setInner(cols, rows int) {
	v.mu.Lock()
	v.innerW, v.innerH = cols, rows
	v.mu.Unlock()
}

// OuterSize returns zero when the outer size is unknown.
func (v *cellViewport) OuterSize() (int, int) {
	if v.outer == nil {
		return 0, 0
	}
	cols, rows, ok := v.outer()
	if !ok {
		return 0, 0
	}
	return v.pixels(cols, rows)
}

func (v *cellViewport) InnerSize() (int, int) {
	v.mu.Lock()
	cols, rows := v.innerW, v.innerH
	v.mu.Unlock()
	return v.pixels(cols, rows)
}

func (v *cellViewport) pixels(cols, rows int) (int, int) {
	return int(float64(cols) * v.cellW), int(float64(rows) * v.cellH)
}
