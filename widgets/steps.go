package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-stepseq/theme"
)

// StepCell is what the grid needs to draw one step
type StepCell struct {
	Active    bool
	Slide     bool
	Accent    bool
	Value     float64 // normalized 0-1 for the bar
	LengthPct float64
	Playing   bool
	Cursor    bool
	Beyond    bool // past the sequence length
}

// RenderSteps draws one column per step: state, value bar, flags, gate
// length and index, with the playhead and cursor highlighted
func RenderSteps(cells []StepCell, th *theme.Theme) string {
	var state, bar, flags, length, index strings.Builder

	for i, c := range cells {
		if i > 0 {
			for _, b := range []*strings.Builder{&state, &bar, &flags, &length, &index} {
				b.WriteString(" ")
			}
		}
		style := cellStyle(c, th)

		state.WriteString(style.Render(fmt.Sprintf("%3c", stateSymbol(c, th.Symbols))))

		if c.Beyond {
			bar.WriteString("   ")
			flags.WriteString("   ")
			length.WriteString("   ")
		} else {
			barStyle := lipgloss.NewStyle().Foreground(th.Color(c.Value))
			bar.WriteString(barStyle.Render(fmt.Sprintf("%3c", th.Bar(c.Value))))
			flags.WriteString(style.Render(" " + string(flagSymbol(c.Slide, th.Symbols.Slide, th.Symbols)) + string(flagSymbol(c.Accent, th.Symbols.Accent, th.Symbols))))
			length.WriteString(style.Render(fmt.Sprintf("%3.0f", c.LengthPct)))
		}
		index.WriteString(style.Render(fmt.Sprintf("%3d", i+1)))
	}

	return strings.Join([]string{
		state.String(),
		bar.String(),
		flags.String(),
		length.String(),
		index.String(),
	}, "\n")
}

func cellStyle(c StepCell, th *theme.Theme) lipgloss.Style {
	style := lipgloss.NewStyle().Foreground(th.FG())
	switch {
	case c.Cursor:
		style = style.Foreground(th.Cursor()).Bold(true)
	case c.Playing:
		style = style.Foreground(th.Success())
	case c.Beyond:
		style = style.Foreground(th.Muted())
	case c.Active:
		style = style.Foreground(th.Active())
	}
	return style
}

func stateSymbol(c StepCell, sym theme.Symbols) rune {
	switch {
	case c.Beyond:
		return sym.StepBeyond
	case c.Cursor && c.Playing:
		return sym.CursorPlayhead
	case c.Cursor && c.Active:
		return sym.CursorOn
	case c.Cursor:
		return sym.CursorOff
	case c.Playing:
		return sym.StepPlayhead
	case c.Active:
		return sym.StepOn
	}
	return sym.StepOff
}

func flagSymbol(on bool, r rune, sym theme.Symbols) rune {
	if on {
		return r
	}
	return sym.NoFlag
}
