package sequencer

import "math"

// Clock constants
const (
	MinBPM     = 1.0
	MaxBPM     = 999.0
	DefaultBPM = 120.0

	PulseWidthSeconds = 0.010
)

// Clock generates the master pulse train: PulsesPerBeat pulses per beat,
// each a fixed-width high level. bpm and running are audio-rate so tempo
// changes and start/stop are sample accurate.
type Clock struct {
	sampleRate float64
	pulseWidth int

	phase   int
	running bool

	// period cache, recomputed only when bpm changes
	lastBPM float64
	period  int

	BPM     *Param
	Running *Param

	bpmBuf []float64
	runBuf []float64
}

// NewClock allocates a clock and its automation buffers for blocks of up
// to blockSize samples
func NewClock(sampleRate, blockSize int) (*Clock, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	return &Clock{
		sampleRate: float64(sampleRate),
		pulseWidth: int(math.Round(PulseWidthSeconds * float64(sampleRate))),
		BPM:        NewParam(DefaultBPM, MinBPM, MaxBPM),
		Running:    NewParam(0, 0, 1),
		bpmBuf:     make([]float64, blockSize),
		runBuf:     make([]float64, blockSize),
	}, nil
}

// Period returns the pulse period in samples for bpm
func (c *Clock) Period(bpm float64) int {
	bpm = clampFloat(finiteOr(bpm, DefaultBPM), MinBPM, MaxBPM)
	if bpm != c.lastBPM || c.period == 0 {
		c.lastBPM = bpm
		c.period = max(1, int(math.Round(c.sampleRate*60/(bpm*PulsesPerBeat))))
	}
	return c.period
}

// Process renders out using the automated BPM and Running parameters.
// blockStart is the absolute sample index of out[0].
func (c *Clock) Process(blockStart int64, out []float64) {
	for len(out) > 0 {
		n := min(len(out), len(c.bpmBuf))
		c.BPM.Fill(blockStart, c.bpmBuf[:n])
		c.Running.Fill(blockStart, c.runBuf[:n])
		c.Generate(c.bpmBuf[:n], c.runBuf[:n], out[:n])
		out = out[n:]
		blockStart += int64(n)
	}
}

// Generate renders the pulse train from per-sample bpm and running
// signals. A nil signal reads as DefaultBPM / stopped.
func (c *Clock) Generate(bpm, running, out []float64) {
	for i := range out {
		b := DefaultBPM
		if i < len(bpm) {
			b = bpm[i]
		}
		on := i < len(running) && running[i] > 0

		if !on {
			c.running = false
			c.phase = 0
			out[i] = 0
			continue
		}
		if !c.running {
			c.running = true
			c.phase = 0
		}

		period := c.Period(b)
		width := min(c.pulseWidth, max(1, period/2))
		if c.phase < width {
			out[i] = 1
		} else {
			out[i] = 0
		}

		c.phase++
		if c.phase >= period {
			c.phase = 0
		}
	}
}

// IsRunning reports the running state seen at the end of the last block
func (c *Clock) IsRunning() bool {
	return c.running
}
