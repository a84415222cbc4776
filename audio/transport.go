package audio

import (
	"math"
	"sync/atomic"
	"time"

	"go-stepseq/debug"
	"go-stepseq/sequencer"
)

// transports holds one shared clock per audio context
var transports = NewRegistry[*Context, *Transport]()

// Transport is the master clock of one audio context. Every host on the
// context reads the same pulse train, rendered once per block.
type Transport struct {
	ctx   *Context
	clock *sequencer.Clock

	// audio thread
	block    []float64
	rendered atomic.Int64 // start of the last rendered block, -1 before the first

	playing atomic.Bool
	tempo   atomic.Uint64 // float64 bits
}

// AcquireTransport returns the shared transport for ctx. Pair with
// ReleaseTransport.
func AcquireTransport(ctx *Context) (*Transport, error) {
	return transports.Acquire(ctx, func() (*Transport, error) {
		return newTransport(ctx)
	})
}

// ReleaseTransport drops one reference to the transport of ctx
func ReleaseTransport(ctx *Context) error {
	return transports.Release(ctx)
}

func newTransport(ctx *Context) (*Transport, error) {
	clock, err := sequencer.NewClock(int(ctx.SampleRate), ctx.BlockSize)
	if err != nil {
		return nil, err
	}
	t := &Transport{
		ctx:   ctx,
		clock: clock,
		block: make([]float64, ctx.BlockSize),
	}
	t.rendered.Store(-1)
	t.tempo.Store(math.Float64bits(sequencer.DefaultBPM))
	debug.Log(debug.CatAudio, "transport created for %s", ctx.Name)
	return t, nil
}

// Start begins emitting pulses at the next block, phase aligned to that block
func (t *Transport) Start() {
	if t.playing.Swap(true) {
		return
	}
	t.clock.Running.SetValue(1)
}

// Stop silences the clock at the next block
func (t *Transport) Stop() {
	if !t.playing.Swap(false) {
		return
	}
	t.clock.Running.SetValue(0)
}

// Playing reports the requested running state
func (t *Transport) Playing() bool {
	return t.playing.Load()
}

// SetTempo changes the tempo at the next block
func (t *Transport) SetTempo(bpm float64) {
	bpm = min(max(bpm, sequencer.MinBPM), sequencer.MaxBPM)
	t.tempo.Store(math.Float64bits(bpm))
	if !t.clock.BPM.SetValue(bpm) {
		debug.Log(debug.CatAudio, "tempo change dropped, automation full")
	}
}

// RampTempo glides to bpm over d, starting at the next block
func (t *Transport) RampTempo(bpm float64, d time.Duration) {
	bpm = min(max(bpm, sequencer.MinBPM), sequencer.MaxBPM)
	t.tempo.Store(math.Float64bits(bpm))
	if !t.clock.BPM.RampTo(0, bpm, int64(t.ctx.SampleRate.N(d))) {
		debug.Log(debug.CatAudio, "tempo ramp dropped, automation full")
	}
}

// Tempo returns the last requested tempo
func (t *Transport) Tempo() float64 {
	return math.Float64frombits(t.tempo.Load())
}

// Position returns the start of the last rendered block. A host that
// attaches to a running transport starts reading there so it stays in
// step with the hosts already attached.
func (t *Transport) Position() int64 {
	return max(t.rendered.Load(), 0)
}

// Read copies the clock block starting at blockStart into out. Block starts
// are on the transport's own timeline. The first reader of a new block
// renders it; a reader asking for an older block gets the latest one, so
// the clock never runs more than once per block. Audio thread only.
func (t *Transport) Read(blockStart int64, out []float64) {
	if blockStart > t.rendered.Load() {
		t.clock.Process(blockStart, t.block)
		t.rendered.Store(blockStart)
	}
	copy(out, t.block)
}

// Close stops the clock. Called by the registry when the last host lets go.
func (t *Transport) Close() error {
	t.Stop()
	debug.Log(debug.CatAudio, "transport closed for %s", t.ctx.Name)
	return nil
}
