package core

import "testing"

func TestBoxOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected bool
	}{
		{
			name:     "single pixel overlap",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 9, Y: 9, W: 10, H: 10},
			expected: true,
		},
		{
			name:     "separated horizontally",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 11, Y: 0, W: 10, H: 10},
			expected: false,
		},
		{
			name:     "separated vertically",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 0, Y: 10.5, W: 10, H: 10},
			expected: false,
		},
		{
			name:     "touching edges",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 10, Y: 0, W: 10, H: 10},
			expected: true,
		},
		{
			name:     "touching corners",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 10, Y: 10, W: 5, H: 5},
			expected: true,
		},
		{
			name:     "contained box",
			a:        Box{X: 0, Y: 0, W: 20, H: 20},
			b:        Box{X: 5, Y: 5, W: 5, H: 5},
			expected: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := tc.a.Overlaps(tc.b)
			if result != tc.expected {
				t.Errorf("Overlaps() = %v, expected %v", result, tc.expected)
			}
			// Also test symmetry
			resultReverse := tc.b.Overlaps(tc.a)
			if resultReverse != tc.expected {
				t.Errorf("Overlaps() (reversed) = %v, expected %v", resultReverse, tc.expected)
			}
		})
	}
}

func TestBoxCells(t *testing.T) {
	b := Box{X: 12, Y: 20, W: 36, H: 36}
	r := b.Cells(8, 16)

	if r.X != 1 || r.Y != 1 {
		t.Errorf("Cells() origin = (%d, %d), expected (1, 1)", r.X, r.Y)
	}
	if r.Right() != 6 {
		t.Errorf("Cells() right = %d, expected 6", r.Right())
	}
	if r.Bottom() != 4 {
		t.Errorf("Cells() bottom = %d, expected 4", r.Bottom())
	}

	tiny := Box{X: 0, Y: 0, W: 0, H: 0}.Cells(8, 16)
	if tiny.W != 1 || tiny.H != 1 {
		t.Errorf("Cells() of empty box = %dx%d, expected 1x1", tiny.W, tiny.H)
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(5, 10, 20, 15)

	if r.Right() != 25 {
		t.Errorf("Right() = %d, expected 25", r.Right())
	}
	if r.Bottom() != 25 {
		t.Errorf("Bottom() = %d, expected 25", r.Bottom())
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{5.5, 0.0, 10.0, 5.5},
		{-5.5, 0.0, 10.0, 0.0},
		{15.5, 0.0, 10.0, 10.0},
	}

	for _, tc := range tests {
		result := ClampF(tc.val, tc.min, tc.max)
		if result != tc.expected {
			t.Errorf("ClampF(%f, %f, %f) = %f, expected %f", tc.val, tc.min, tc.max, result, tc.expected)
		}
	}
}

func TestColorFromHue(t *testing.T) {
	tests := []struct {
		hue      float64
		expected Color
	}{
		{180, ColorCyan},
		{200, ColorBrightCyan},
		{240, ColorBrightBlue},
		{299.9, ColorBrightMagenta},
		{-60, ColorBrightMagenta},
		{720, ColorRed},
	}

	for _, tc := range tests {
		if got := ColorFromHue(tc.hue); got != tc.expected {
			t.Errorf("ColorFromHue(%v) = %d, expected %d", tc.hue, got, tc.expected)
		}
	}
}
