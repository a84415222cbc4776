package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Step states (no cursor)
	StepOff      rune // · inactive step
	StepOn       rune // ● active step
	StepPlayhead rune // ▶ current playing
	StepBeyond   rune // - past sequence length

	// Step states (with cursor)
	CursorOff      rune // ○ cursor on inactive
	CursorOn       rune // ◉ cursor on active
	CursorPlayhead rune // ▷ cursor on playhead

	// Step flags
	Slide  rune // ╱ slides into this step
	Accent rune // ! accented
	NoFlag rune

	// Value bars, lowest to highest
	Bars []rune
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			StepOff:      '·',
			StepOn:       '●',
			StepPlayhead: '▶',
			StepBeyond:   '-',

			CursorOff:      '○',
			CursorOn:       '◉',
			CursorPlayhead: '▷',

			Slide:  '╱',
			Accent: '!',
			NoFlag: ' ',

			Bars: []rune("▁▂▃▄▅▆▇█"),
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // deep purple
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Bar returns the value bar for a normalized value 0-1
func (t *Theme) Bar(norm float64) rune {
	bars := t.Symbols.Bars
	i := int(norm * float64(len(bars)-1))
	return bars[min(max(i, 0), len(bars)-1)]
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
