package audio

import (
	"fmt"
	"sync"

	"github.com/faiface/beep"

	"go-stepseq/debug"
	"go-stepseq/sequencer"
)

// Route selects which engine outputs land on the left and right channels
type Route int

const (
	RouteCVGate     Route = iota // left CV, right gate
	RouteGateAccent              // left gate, right accent
)

// ParseRoute maps a config name to a Route
func ParseRoute(name string) (Route, error) {
	switch name {
	case "", "cv-gate":
		return RouteCVGate, nil
	case "gate-accent":
		return RouteGateAccent, nil
	}
	return RouteCVGate, fmt.Errorf("unknown route %q", name)
}

// Tap receives every rendered block on the audio thread. It must not block.
type Tap interface {
	Block(start int64, cv, gate, accent []float64)
}

// HostConfig configures a Host
type HostConfig struct {
	Steps int
	Route Route

	// Optional external clock and reset signals, read from the left
	// channel. Without Clock the host follows the context transport.
	Clock beep.Streamer
	Reset beep.Streamer
}

// Host runs an Engine as a beep.Streamer. beep asks for arbitrary buffer
// sizes; the host always renders whole engine blocks and hands them out
// across Stream calls.
type Host struct {
	ctx       *Context
	engine    *sequencer.Engine
	transport *Transport
	route     Route

	clockSrc beep.Streamer
	resetSrc beep.Streamer
	scratch  [][2]float64

	clock, reset     []float64
	cv, gate, accent []float64
	pos              int
	clockPos         int64 // next transport block to read
	taps             []Tap

	closeOnce sync.Once
}

// NewHost creates an engine on ctx and attaches it to the context transport
func NewHost(ctx *Context, cfg HostConfig) (*Host, error) {
	engine, err := sequencer.NewEngine(int(ctx.SampleRate), ctx.BlockSize, cfg.Steps)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	transport, err := AcquireTransport(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire transport: %w", err)
	}

	n := ctx.BlockSize
	h := &Host{
		ctx:       ctx,
		engine:    engine,
		transport: transport,
		route:     cfg.Route,
		clockSrc:  cfg.Clock,
		resetSrc:  cfg.Reset,
		clock:     make([]float64, n),
		reset:     make([]float64, n),
		cv:        make([]float64, n),
		gate:      make([]float64, n),
		accent:    make([]float64, n),
		pos:       n,
		clockPos:  transport.Position(),
	}
	if cfg.Clock != nil || cfg.Reset != nil {
		h.scratch = make([][2]float64, n)
	}
	debug.Log(debug.CatAudio, "host on %s: %d Hz, block %d, %d steps", ctx.Name, ctx.SampleRate, n, cfg.Steps)
	return h, nil
}

// Engine returns the sequencer the host drives
func (h *Host) Engine() *sequencer.Engine {
	return h.engine
}

// Transport returns the shared transport of the host's context
func (h *Host) Transport() *Transport {
	return h.transport
}

// AddTap registers a block observer. Call before the host starts streaming.
func (h *Host) AddTap(t Tap) {
	h.taps = append(h.taps, t)
}

// Stream implements beep.Streamer
func (h *Host) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if h.pos >= h.ctx.BlockSize {
			h.renderBlock()
		}
		switch h.route {
		case RouteGateAccent:
			samples[i] = [2]float64{h.gate[h.pos], h.accent[h.pos]}
		default:
			samples[i] = [2]float64{h.cv[h.pos], h.gate[h.pos]}
		}
		h.pos++
	}
	return len(samples), true
}

// Err implements beep.Streamer
func (h *Host) Err() error {
	return nil
}

func (h *Host) renderBlock() {
	start := h.engine.Now()

	if h.clockSrc != nil {
		h.readInput(h.clockSrc, h.clock)
	} else {
		h.transport.Read(h.clockPos, h.clock)
		h.clockPos += int64(len(h.clock))
	}
	var reset []float64
	if h.resetSrc != nil {
		h.readInput(h.resetSrc, h.reset)
		reset = h.reset
	}

	h.engine.Process(
		sequencer.Inputs{Clock: h.clock, Reset: reset},
		sequencer.Outputs{CV: h.cv, Gate: h.gate, Accent: h.accent},
	)
	for _, t := range h.taps {
		t.Block(start, h.cv, h.gate, h.accent)
	}
	h.pos = 0
}

// readInput fills dst from the left channel of src; an exhausted source
// reads as silence
func (h *Host) readInput(src beep.Streamer, dst []float64) {
	filled := 0
	for filled < len(dst) {
		n, ok := src.Stream(h.scratch[:len(dst)-filled])
		for i := 0; i < n; i++ {
			dst[filled+i] = h.scratch[i][0]
		}
		filled += n
		if !ok || n == 0 {
			break
		}
	}
	clear(dst[filled:])
}

// Close detaches the host from the transport
func (h *Host) Close() error {
	var err error
	h.closeOnce.Do(func() {
		err = ReleaseTransport(h.ctx)
	})
	return err
}
