package sentinel

import (
	"strconv"
	"strings"
	"unicode/utf16"
)

// maskEvent turns text into an opaque marker: a 32-bit rolling hash over
// UTF-16 code units, base 36, zero padded to six digits.
func maskEvent(input string) string {
	var h int32
	for _, c := range utf16.Encode([]rune(input)) {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	s := strconv.FormatInt(v, 36)
	if len(s) < 6 {
		s = strings.Repeat("0", 6-len(s)) + s
	}
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return "sig-" + s
}
