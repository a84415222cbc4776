package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"go-stepseq/theme"
)

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "Steps", Keys: []KeyBinding{{"space", "toggle"}, {"s", "slide"}}},
	})
	lines := strings.Split(out, "\n")
	require.Equal(t, "Steps", lines[0])
	require.Equal(t, "  space        toggle", lines[1])
	require.Len(t, lines, 3)
}

func TestRenderKeyLine(t *testing.T) {
	require.Equal(t, "p:play  q:quit", RenderKeyLine([]KeyBinding{{"p", "play"}, {"q", "quit"}}))
}

func TestRenderStepsLayout(t *testing.T) {
	th := theme.New(theme.Plasma())
	cells := []StepCell{
		{Active: true, Slide: true, Value: 1, LengthPct: 80, Playing: true},
		{Cursor: true, LengthPct: 50},
		{Beyond: true},
	}
	out := RenderSteps(cells, th)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		require.Equal(t, 3*3+2, lipgloss.Width(l), "every row has the same width")
	}
	require.Contains(t, out, string(th.Symbols.StepPlayhead))
	require.Contains(t, out, string(th.Symbols.CursorOff))
	require.Contains(t, out, string(th.Symbols.StepBeyond))
	require.Contains(t, out, string(th.Symbols.Slide))
	require.Contains(t, out, " 80")
}

func TestStateSymbol(t *testing.T) {
	sym := theme.New(theme.Plasma()).Symbols
	require.Equal(t, sym.StepOff, stateSymbol(StepCell{}, sym))
	require.Equal(t, sym.StepOn, stateSymbol(StepCell{Active: true}, sym))
	require.Equal(t, sym.CursorOn, stateSymbol(StepCell{Active: true, Cursor: true}, sym))
	require.Equal(t, sym.CursorPlayhead, stateSymbol(StepCell{Playing: true, Cursor: true}, sym))
}
