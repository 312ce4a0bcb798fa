package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/reflex-dodger/internal/core"
)

// palette is the ANSI 256 code of every core.Color. ColorDefault keeps the
// terminal's own foreground.
var palette = [...]string{
	core.ColorDefault:       "",
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
	core.ColorNavy:          "24",
	core.ColorSlate:         "60",
}

var cellStyles = func() []lipgloss.Style {
	styles := make([]lipgloss.Style, len(palette))
	for c, code := range palette {
		styles[c] = lipgloss.NewStyle()
		if code != "" {
			styles[c] = styles[c].Foreground(lipgloss.Color(code))
		}
	}
	return styles
}()

// paintRun renders runes in color c. Unknown colors and the default color
// are written unstyled.
func paintRun(sb *strings.Builder, c core.Color, runes []rune) {
	if len(runes) == 0 {
		return
	}
	if int(c) >= len(palette) || palette[c] == "" {
		sb.WriteString(string(runes))
		return
	}
	sb.WriteString(cellStyles[c].Render(string(runes)))
}

// RenderScreen turns the cell buffer into terminal text, one styled run per
// stretch of same-colored cells.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	run := make([]rune, 0, s.Width())
	for y := range s.Height() {
		if y > 0 {
			sb.WriteByte('\n')
		}
		run = run[:0]
		color := s.GetCell(0, y).Color
		for x := range s.Width() {
			cell := s.GetCell(x, y)
			if cell.Color != color {
				paintRun(&sb, color, run)
				run, color = run[:0], cell.Color
			}
			run = append(run, cell.Rune)
		}
		paintRun(&sb, color, run)
	}
	return sb.String()
}
