package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-stepseq/sequencer"
)

// AudioConfig defines the audio host
type AudioConfig struct {
	SampleRate      int    `json:"sampleRate,omitempty"`
	BlockSize       int    `json:"blockSize,omitempty"`
	SpeakerBufferMs int    `json:"speakerBufferMs,omitempty"`
	Route           string `json:"route,omitempty"` // "cv-gate" or "gate-accent"
}

// MIDIConfig defines the MIDI note output
type MIDIConfig struct {
	PortName       string  `json:"portName,omitempty"`
	AutoConnect    bool    `json:"autoConnect"`
	Channel        int     `json:"channel"` // 0-15
	Note           int     `json:"note"`
	Velocity       int     `json:"velocity"`
	AccentVelocity int     `json:"accentVelocity"`
	BendRange      float64 `json:"bendRange"` // CV that maps to full pitch bend
}

// UIConfig stores UI preferences
type UIConfig struct {
	LastTempo float64 `json:"lastTempo,omitempty"`
	Palette   string  `json:"palette,omitempty"` // path to a GIMP .gpl file
}

// Config is the main configuration structure
type Config struct {
	Audio    AudioConfig             `json:"audio"`
	MIDI     MIDIConfig              `json:"midi"`
	UI       UIConfig                `json:"ui,omitempty"`
	Sequence *sequencer.StateMessage `json:"sequence,omitempty"` // last edited pattern
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Audio: AudioConfig{
			SampleRate:      48000,
			BlockSize:       128,
			SpeakerBufferMs: 20,
			Route:           "cv-gate",
		},
		MIDI: MIDIConfig{
			Note:           48,
			Velocity:       90,
			AccentVelocity: 127,
			BendRange:      1,
		},
		UI: UIConfig{
			LastTempo: sequencer.DefaultBPM,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-stepseq"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. Missing fields keep their defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.sanitize()

	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// sanitize replaces unusable values with defaults
func (c *Config) sanitize() {
	def := DefaultConfig()
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.BlockSize <= 0 {
		c.Audio.BlockSize = def.Audio.BlockSize
	}
	if c.Audio.SpeakerBufferMs <= 0 {
		c.Audio.SpeakerBufferMs = def.Audio.SpeakerBufferMs
	}
	if c.MIDI.Channel < 0 || c.MIDI.Channel > 15 {
		c.MIDI.Channel = 0
	}
	c.MIDI.Note = clamp7(c.MIDI.Note)
	c.MIDI.Velocity = clamp7(c.MIDI.Velocity)
	c.MIDI.AccentVelocity = clamp7(c.MIDI.AccentVelocity)
	if c.MIDI.BendRange <= 0 {
		c.MIDI.BendRange = def.MIDI.BendRange
	}
	if c.UI.LastTempo < sequencer.MinBPM || c.UI.LastTempo > sequencer.MaxBPM {
		c.UI.LastTempo = def.UI.LastTempo
	}
}

func clamp7(v int) int {
	return min(max(v, 0), 127)
}
