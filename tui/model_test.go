package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"go-stepseq/sequencer"
	"go-stepseq/theme"
)

type stubTransport struct {
	playing bool
	tempo   float64
}

func (s *stubTransport) Start()               { s.playing = true }
func (s *stubTransport) Stop()                { s.playing = false }
func (s *stubTransport) SetTempo(bpm float64) { s.tempo = bpm }
func (s *stubTransport) Tempo() float64       { return s.tempo }
func (s *stubTransport) Playing() bool        { return s.playing }

func newTestModel(t *testing.T) (Model, *stubTransport) {
	t.Helper()
	e, err := sequencer.NewEngine(48000, 64, 0)
	require.NoError(t, err)
	tr := &stubTransport{tempo: 120}
	mgr := sequencer.NewManager(e, tr, sequencer.NewSequence(4))
	return NewModel(mgr, nil, nil, theme.New(theme.Plasma())), tr
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestCursorWraps(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "h")
	require.Equal(t, 3, m.Cursor())
	m = press(m, "l", "l")
	require.Equal(t, 1, m.Cursor())
}

func TestKeysEditStepUnderCursor(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "l", " ", "s", "a", "k", "k", "J")

	st := m.Manager.Sequence().Steps[1]
	require.True(t, st.Active)
	require.True(t, st.Slide)
	require.True(t, st.Accent)
	require.InDelta(t, 2.0/12, st.Value, 1e-9)
	require.Equal(t, 70.0, st.LengthPct)
}

func TestKeysEditSequence(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "]", "]", "D", "W", "W")

	seq := m.Manager.Sequence()
	require.Equal(t, 6, seq.Length)
	require.Equal(t, 1, seq.Division)
	require.Equal(t, 10.0, seq.Swing)
}

func TestShrinkingKeepsCursorInRange(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "h", "[")
	require.Equal(t, 3, m.Manager.Sequence().Length)
	require.Equal(t, 2, m.Cursor())
}

func TestTransportKeys(t *testing.T) {
	m, tr := newTestModel(t)
	m = press(m, "p", "+", "+")
	require.True(t, tr.playing)
	require.Equal(t, 130.0, tr.tempo)

	m = press(m, "p")
	require.False(t, tr.playing)
}

func TestViewShowsState(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, " ")
	out := m.View()
	require.Contains(t, out, "go-stepseq")
	require.Contains(t, out, "STOP")
	require.Contains(t, out, "steps:4")
	require.Contains(t, out, "div:1/16")

	m = press(m, "?")
	require.Contains(t, m.View(), "toggle slide")
}

func TestQuitStopsTransport(t *testing.T) {
	m, tr := newTestModel(t)
	m = press(m, "p")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.False(t, tr.playing)
	require.Empty(t, next.(Model).View())
}

func TestSnapshotKeys(t *testing.T) {
	m, _ := newTestModel(t)
	require.Contains(t, press(m, "S").View(), "snapshots disabled")

	m.PatternDir = t.TempDir()
	m = press(m, " ", "S")
	require.Contains(t, m.View(), "saved ")

	m = press(m, " ")
	require.False(t, m.Manager.Sequence().Steps[0].Active)
	m = press(m, "L")
	require.True(t, m.Manager.Sequence().Steps[0].Active)
	require.Contains(t, m.View(), "loaded newest snapshot")
}
