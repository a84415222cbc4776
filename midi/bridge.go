package midi

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-stepseq/debug"
)

// eventBuffer bounds the events waiting between the audio thread and the
// sender goroutine
const eventBuffer = 256

// Sender writes one message to an output port
type Sender func(msg gomidi.Message) error

// BridgeConfig maps sequencer outputs to MIDI
type BridgeConfig struct {
	Channel        uint8 // 0-15
	Note           uint8
	Velocity       uint8
	AccentVelocity uint8
	BendRange      float64 // CV that maps to full pitch bend
}

// Bridge turns the gate, accent and CV outputs into note and pitch bend
// messages. Block runs on the audio thread and only queues events; Run
// sends them from its own goroutine.
type Bridge struct {
	cfg BridgeConfig

	events  chan Event
	dropped atomic.Uint64

	// audio thread
	gateHigh bool
	lastBend int16

	mu       sync.Mutex
	send     Sender
	sounding bool
}

// NewBridge creates a bridge. Without a sender events are consumed and discarded.
func NewBridge(cfg BridgeConfig) *Bridge {
	if cfg.BendRange <= 0 {
		cfg.BendRange = 1
	}
	return &Bridge{
		cfg:    cfg,
		events: make(chan Event, eventBuffer),
	}
}

// SetSender swaps the output port. A sounding note is released on the old
// port first.
func (b *Bridge) SetSender(s Sender) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.send != nil && b.sounding {
		b.send(gomidi.NoteOff(b.cfg.Channel, b.cfg.Note))
	}
	b.send = s
	b.sounding = false
}

// Dropped returns how many events were lost because the queue was full
func (b *Bridge) Dropped() uint64 {
	return b.dropped.Load()
}

// Block scans one rendered block. Audio thread only.
func (b *Bridge) Block(start int64, cv, gate, accent []float64) {
	for i := range gate {
		high := gate[i] >= 0.5
		if high == b.gateHigh {
			continue
		}
		b.gateHigh = high
		t := start + int64(i)
		if high {
			b.bend(t, sampleOr(cv, i))
			vel := b.cfg.Velocity
			if sampleOr(accent, i) >= 0.5 {
				vel = b.cfg.AccentVelocity
			}
			b.push(Event{Sample: t, Type: NoteOn, Velocity: vel})
		} else {
			b.push(Event{Sample: t, Type: NoteOff})
		}
	}
	// follow slides while the note sounds
	if b.gateHigh && len(cv) > 0 {
		b.bend(start+int64(len(cv)-1), cv[len(cv)-1])
	}
}

func (b *Bridge) bend(t int64, cv float64) {
	v := BendValue(cv, b.cfg.BendRange)
	if v == b.lastBend {
		return
	}
	b.lastBend = v
	b.push(Event{Sample: t, Type: PitchBend, Bend: v})
}

func (b *Bridge) push(ev Event) {
	select {
	case b.events <- ev:
	default:
		b.dropped.Add(1)
	}
}

// Run sends queued events until ctx is done (blocking - run in goroutine)
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.SetSender(nil)
			return
		case ev := <-b.events:
			b.dispatch(ev)
		}
	}
}

func (b *Bridge) dispatch(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.send == nil {
		return
	}
	if err := b.send(b.Message(ev)); err != nil {
		debug.Log(debug.CatMIDI, "send failed: %v", err)
		return
	}
	switch ev.Type {
	case NoteOn:
		b.sounding = true
	case NoteOff:
		b.sounding = false
	}
	debug.LogEvery(32, debug.CatMIDI, "sent type=%#x sample=%d", ev.Type, ev.Sample)
}

// Message converts an event to its MIDI message on the configured channel
func (b *Bridge) Message(ev Event) gomidi.Message {
	switch ev.Type {
	case NoteOn:
		return gomidi.NoteOn(b.cfg.Channel, b.cfg.Note, ev.Velocity)
	case NoteOff:
		return gomidi.NoteOff(b.cfg.Channel, b.cfg.Note)
	default:
		return gomidi.Pitchbend(b.cfg.Channel, ev.Bend)
	}
}

// BendValue maps a CV to a 14-bit signed pitch bend; ±bendRange is full scale
func BendValue(cv, bendRange float64) int16 {
	if math.IsNaN(cv) || bendRange <= 0 {
		return 0
	}
	x := min(max(cv/bendRange, -1), 1)
	if x < 0 {
		return int16(math.Round(x * 8192))
	}
	return int16(math.Round(x * 8191))
}

func sampleOr(buf []float64, i int) float64 {
	if i < len(buf) {
		return buf[i]
	}
	return 0
}
