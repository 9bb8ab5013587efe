// Package text draws the table as terminal text and runs the console loop.
package text

import "fmt"

// ANSI escape codes used by the renderer.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"

	Reverse = "\033[7m"
)

// Palette applies ANSI styles, or leaves text untouched when colour is off.
type Palette struct {
	enabled bool
}

// NewPalette returns a Palette that colours output iff color is set.
func NewPalette(color bool) Palette { return Palette{enabled: color} }

// Enabled reports whether the palette emits escape codes.
func (p Palette) Enabled() bool { return p.enabled }

// Paint wraps text in style and a reset suffix.
func (p Palette) Paint(style, text string) string {
	if !p.enabled || style == "" {
		return text
	}
	return style + text + Reset
}

// Paintf formats and paints.
func (p Palette) Paintf(style, format string, args ...any) string {
	return p.Paint(style, fmt.Sprintf(format, args...))
}

// StripANSI removes every \033[...m sequence from s.
func StripANSI(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			if j < len(s) {
				i = j
				continue
			}
		}
		out = append(out, s[i])
	}
	return string(out)
}
