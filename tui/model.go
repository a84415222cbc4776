package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-stepseq/debug"
	"go-stepseq/midi"
	"go-stepseq/sequencer"
	"go-stepseq/theme"
	"go-stepseq/widgets"
)

// Edit increments
const (
	valueStep  = 1.0 / 12 // one semitone at 1V/oct
	lengthStep = 10.0
	swingStep  = 5.0
	tempoStep  = 5.0
)

var keySections = []widgets.KeySection{
	{Title: "Steps", Keys: []widgets.KeyBinding{
		{Key: "h/l", Desc: "move cursor"},
		{Key: "space", Desc: "toggle step"},
		{Key: "s", Desc: "toggle slide"},
		{Key: "a", Desc: "toggle accent"},
		{Key: "j/k", Desc: "value down/up"},
		{Key: "J/K", Desc: "gate length down/up"},
	}},
	{Title: "Sequence", Keys: []widgets.KeyBinding{
		{Key: "[/]", Desc: "fewer/more steps"},
		{Key: "d/D", Desc: "division down/up"},
		{Key: "w/W", Desc: "swing down/up"},
		{Key: "S", Desc: "save snapshot"},
		{Key: "L", Desc: "load newest snapshot"},
	}},
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "play/stop"},
		{Key: "r", Desc: "reset to step 1"},
		{Key: "+/-", Desc: "tempo"},
		{Key: "?", Desc: "toggle help"},
		{Key: "q", Desc: "quit"},
	}},
}

var keyLine = []widgets.KeyBinding{
	{Key: "hl", Desc: "cursor"},
	{Key: "space", Desc: "toggle"},
	{Key: "s/a", Desc: "slide/accent"},
	{Key: "jk/JK", Desc: "value/len"},
	{Key: "p", Desc: "play"},
	{Key: "r", Desc: "reset"},
	{Key: "?", Desc: "help"},
	{Key: "q", Desc: "quit"},
}

type Model struct {
	Manager    *sequencer.Manager
	Watcher    *midi.OutWatcher // may be nil
	Bridge     *midi.Bridge     // may be nil
	Theme      *theme.Theme
	PatternDir string // snapshot directory, empty disables S/L
	cursor     int
	showHelp   bool
	quitting   bool
	midiPort   string
	status     string
}

type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

func NewModel(manager *sequencer.Manager, watcher *midi.OutWatcher, bridge *midi.Bridge, th *theme.Theme) Model {
	return Model{
		Manager: manager,
		Watcher: watcher,
		Bridge:  bridge,
		Theme:   th,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForPorts(watcher *midi.OutWatcher) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-watcher.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.Watcher != nil {
		cmds = append(cmds, ListenForPorts(m.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case PortEventMsg:
		event := midi.PortEvent(msg)
		switch event.Type {
		case midi.PortConnected:
			m.midiPort = event.Name
			if m.Bridge != nil {
				m.Bridge.SetSender(event.Sender)
			}
		case midi.PortDisconnected:
			m.midiPort = ""
			if m.Bridge != nil {
				m.Bridge.SetSender(nil)
			}
		}
		debug.Log(debug.CatUI, "port event %d: %s", event.Type, event.Name)
		return m, ListenForPorts(m.Watcher)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	mgr := m.Manager
	length := mgr.Sequence().Length

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		mgr.Stop()
		return m, tea.Quit

	case "h", "left":
		m.cursor = (m.cursor - 1 + length) % length
	case "l", "right":
		m.cursor = (m.cursor + 1) % length

	case " ":
		mgr.ToggleActive(m.cursor)
	case "s":
		mgr.ToggleSlide(m.cursor)
	case "a":
		mgr.ToggleAccent(m.cursor)
	case "k", "up":
		mgr.NudgeValue(m.cursor, valueStep)
	case "j", "down":
		mgr.NudgeValue(m.cursor, -valueStep)
	case "K":
		mgr.NudgeLength(m.cursor, lengthStep)
	case "J":
		mgr.NudgeLength(m.cursor, -lengthStep)

	case "]":
		mgr.SetLength(length + 1)
	case "[":
		mgr.SetLength(length - 1)
		m.cursor = min(m.cursor, mgr.Sequence().Length-1)
	case "D":
		mgr.CycleDivision(1)
	case "d":
		mgr.CycleDivision(-1)
	case "W":
		mgr.NudgeSwing(swingStep)
	case "w":
		mgr.NudgeSwing(-swingStep)

	case "p":
		mgr.TogglePlay()
	case "r":
		mgr.Reset()
	case "+", "=":
		_, _, tempo := mgr.GetState()
		mgr.SetTempo(tempo + tempoStep)
	case "-", "_":
		_, _, tempo := mgr.GetState()
		mgr.SetTempo(tempo - tempoStep)

	case "S":
		m.status = m.saveSnapshot()
	case "L":
		m.status = m.loadSnapshot()
		m.cursor = min(m.cursor, mgr.Sequence().Length-1)

	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) saveSnapshot() string {
	if m.PatternDir == "" {
		return "snapshots disabled"
	}
	name, err := m.Manager.SaveSnapshot(m.PatternDir, "")
	if err != nil {
		debug.Log(debug.CatUI, "save snapshot: %v", err)
		return "save failed: " + err.Error()
	}
	return "saved " + name
}

func (m Model) loadSnapshot() string {
	if m.PatternDir == "" {
		return "snapshots disabled"
	}
	if err := m.Manager.LoadSnapshot(m.PatternDir); err != nil {
		debug.Log(debug.CatUI, "load snapshot: %v", err)
		return "load failed: " + err.Error()
	}
	return "loaded newest snapshot"
}

// Cursor returns the selected step
func (m Model) Cursor() int {
	return m.cursor
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	step, playing, tempo := m.Manager.GetState()
	seq := m.Manager.Sequence()

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	infoStyle := lipgloss.NewStyle().Foreground(m.Theme.FG())

	playState := "STOP"
	if playing {
		playState = "PLAY"
	}
	portStatus := ""
	if m.midiPort != "" {
		portStatus = "  midi:" + m.midiPort
	}
	header := headerStyle.Render(fmt.Sprintf("go-stepseq  %s  %3.0fbpm  step:%02d%s", playState, tempo, step+1, portStatus))

	info := infoStyle.Render(fmt.Sprintf("steps:%d  div:1/%d  swing:%+.0f%%  slide:%.0fms", seq.Length, seq.Division, seq.Swing, seq.SlideTime*1000))

	cur := seq.Steps[min(m.cursor, seq.Length-1)]
	detail := dimStyle.Render(fmt.Sprintf("step %d: value %.3f  gate %.0f%%", m.cursor+1, cur.Value, cur.LengthPct))

	grid := widgets.RenderSteps(m.cells(seq, step, playing), m.Theme)

	help := dimStyle.Render(widgets.RenderKeyLine(keyLine))
	if m.showHelp {
		help = dimStyle.Render(widgets.RenderKeyHelp(keySections))
	}

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n")
	out.WriteString(info)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(detail)
	if m.status != "" {
		out.WriteString("  ")
		out.WriteString(infoStyle.Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(help)

	return out.String()
}

// cells builds the grid model, scaling values to the largest one shown
func (m Model) cells(seq sequencer.Sequence, step int, playing bool) []widgets.StepCell {
	scale := 1.0
	for i := 0; i < seq.Length; i++ {
		scale = max(scale, math.Abs(seq.Steps[i].Value))
	}

	cells := make([]widgets.StepCell, seq.Length)
	for i := range cells {
		st := seq.Steps[i]
		cells[i] = widgets.StepCell{
			Active:    st.Active,
			Slide:     st.Slide,
			Accent:    st.Accent,
			Value:     max(st.Value, 0) / scale,
			LengthPct: st.LengthPct,
			Playing:   playing && i == step,
			Cursor:    i == m.cursor,
		}
	}
	return cells
}
