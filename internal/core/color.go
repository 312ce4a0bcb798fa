package core

// Color represents a foreground color for a screen cell.
// Uses ANSI 256-color codes for terminal compatibility.
type Color uint8

// Predefined colors for game elements.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
	ColorNavy
	ColorSlate
)

// hueBands splits the color wheel into the terminal colors closest to it.
var hueBands = []struct {
	upTo  float64
	color Color
}{
	{30, ColorRed},
	{60, ColorOrange},
	{90, ColorYellow},
	{150, ColorGreen},
	{195, ColorCyan},
	{225, ColorBrightCyan},
	{255, ColorBrightBlue},
	{285, ColorMagenta},
	{330, ColorBrightMagenta},
	{360, ColorRed},
}

// ColorFromHue returns the terminal color closest to an HSL hue in degrees.
func ColorFromHue(hue float64) Color {
	for hue < 0 {
		hue += 360
	}
	for hue >= 360 {
		hue -= 360
	}
	for _, band := range hueBands {
		if hue < band.upTo {
			return band.color
		}
	}
	return ColorRed
}
