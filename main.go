package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	tea "github.com/charmbracelet/bubbletea"

	"go-stepseq/audio"
	"go-stepseq/config"
	"go-stepseq/debug"
	"go-stepseq/midi"
	"go-stepseq/sequencer"
	"go-stepseq/theme"
	"go-stepseq/tui"
)

type args struct {
	BPM      float64 `arg:"--bpm" help:"tempo in beats per minute (default: last used)"`
	Steps    int     `arg:"--steps" help:"number of steps, 1-32"`
	Division int     `arg:"--division" help:"division code: 1, 2, 3, 4, 6, 8, 12 or 16"`
	Debug    bool    `arg:"--debug" help:"write ~/.config/go-stepseq/debug.log"`
	MIDIPort string  `arg:"--midi-port" help:"send notes to the output port containing this name"`
	NoAudio  bool    `arg:"--no-audio" help:"run without opening the speaker"`
	Config   string  `arg:"--config" help:"config file (default: ~/.config/go-stepseq/config.json)"`
}

func (args) Description() string {
	return "go-stepseq - a clock-driven CV/gate step sequencer"
}

func main() {
	var a args
	arg.MustParse(&a)

	if err := run(a); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(a args) error {
	if a.Debug {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
	}

	cfg, err := loadConfig(a.Config)
	if err != nil {
		return err
	}

	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	// Audio context, engine host and shared transport
	actx, err := audio.NewContext("main", cfg.Audio.SampleRate, cfg.Audio.BlockSize)
	if err != nil {
		return err
	}
	route, err := audio.ParseRoute(cfg.Audio.Route)
	if err != nil {
		return err
	}

	seq := initialSequence(cfg, a)
	host, err := audio.NewHost(actx, audio.HostConfig{Steps: seq.Length, Route: route})
	if err != nil {
		return err
	}
	defer host.Close()

	tempo := cfg.UI.LastTempo
	if a.BPM > 0 {
		tempo = a.BPM
	}
	host.Transport().SetTempo(tempo)

	manager := sequencer.NewManager(host.Engine(), host.Transport(), seq)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go manager.Run(ctx)

	// Optional MIDI note output (handles hot-plug)
	var bridge *midi.Bridge
	var watcher *midi.OutWatcher
	port := cfg.MIDI.PortName
	if a.MIDIPort != "" {
		port = a.MIDIPort
	}
	if port != "" {
		bridge = midi.NewBridge(midi.BridgeConfig{
			Channel:        uint8(cfg.MIDI.Channel),
			Note:           uint8(cfg.MIDI.Note),
			Velocity:       uint8(cfg.MIDI.Velocity),
			AccentVelocity: uint8(cfg.MIDI.AccentVelocity),
			BendRange:      cfg.MIDI.BendRange,
		})
		host.AddTap(bridge)
		go bridge.Run(ctx)

		watcher = midi.NewOutWatcher(port)
		go watcher.Run(ctx)
	}

	if a.NoAudio {
		go audio.Drive(ctx, actx, host)
	} else if err := audio.Play(actx, cfg.Audio.SpeakerBufferMs, host); err != nil {
		return err
	}

	fmt.Println("go-stepseq")
	if port != "" {
		fmt.Printf("Waiting for MIDI output %q - it will be picked up automatically\n", port)
	}

	m := tui.NewModel(manager, watcher, bridge, th)
	if dir, err := sequencer.PatternsDir(); err == nil {
		m.PatternDir = dir
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	// Remember the pattern and tempo for next time
	final := manager.Sequence()
	msg := final.Message()
	cfg.Sequence = &msg
	_, _, cfg.UI.LastTempo = manager.GetState()
	if err := saveConfig(cfg, a.Config); err != nil {
		debug.Log(debug.CatConfig, "save failed: %v", err)
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	debug.Log(debug.CatConfig, "audio %d Hz block %d, midi port %q", cfg.Audio.SampleRate, cfg.Audio.BlockSize, cfg.MIDI.PortName)
	return cfg, nil
}

func saveConfig(cfg *config.Config, path string) error {
	if path != "" {
		return cfg.SaveTo(path)
	}
	return cfg.Save()
}

// initialSequence restores the saved pattern, or starts from the demo,
// then applies command line overrides
func initialSequence(cfg *config.Config, a args) sequencer.Sequence {
	steps := 16
	if a.Steps > 0 {
		steps = a.Steps
	}

	var seq sequencer.Sequence
	if cfg.Sequence != nil {
		msg := *cfg.Sequence
		if a.Steps > 0 {
			msg.Length = &steps
		}
		seq = msg.Normalize()
	} else {
		seq = sequencer.DemoSequence(steps)
	}

	if a.Division > 0 {
		seq.Division = a.Division
	}
	return seq
}
