package sequencer

import (
	"math"
	"sync/atomic"
)

// statusBuffer is how many step notifications may wait for the control
// layer before new ones are dropped
const statusBuffer = 64

// Inputs are the audio-rate inputs of one block. A nil slice is silence.
type Inputs struct {
	Clock []float64
	Reset []float64
}

// Outputs are the audio-rate outputs of one block. A nil slice is an
// unconnected output and is skipped.
type Outputs struct {
	CV     []float64
	Gate   []float64
	Accent []float64
}

// Stats are counters kept by the audio thread for the control layer
type Stats struct {
	Transitions    uint64
	DroppedStatus  uint64
	QueueOverflows uint64
	Resets         uint64
}

// Engine is the step sequencer. Process runs on the audio thread; every
// other exported method is safe to call from the control layer and only
// leaves a message for the next block.
type Engine struct {
	sampleRate float64
	blockSize  int

	// control layer -> audio thread
	pendingState atomic.Pointer[Sequence]
	resetReq     atomic.Bool

	// audio thread -> control layer
	status  chan int
	shownAt atomic.Int64 // current step readout for the UI

	transitions    atomic.Uint64
	droppedStatus  atomic.Uint64
	queueOverflows atomic.Uint64
	resets         atomic.Uint64

	// Everything below is owned by the audio thread.
	seq Sequence

	clockEdge EdgeDetector
	resetEdge EdgeDetector

	now int64 // absolute sample index of the next block

	currentStep      int
	pulseAccumulator float64
	resetPending     bool

	lastPulseSample   int64
	hasLastPulse      bool
	lastPulseInterval int64
	hasPulseInterval  bool

	lastStepSample   int64
	hasLastStep      bool
	stepTriggerCount int

	gateOffSample   int64
	accentOffSample int64

	cvValue         float64
	cvRampTarget    float64
	cvRampStep      float64
	cvRampRemaining int64

	// last written values, held while the sequence is empty
	heldGate   float64
	heldAccent float64

	queue stepQueue
}

// NewEngine creates an engine for the host's sample rate and block size,
// playing a sequence of steps inert steps. A zero-step engine holds its
// outputs until the control layer sends a state.
func NewEngine(sampleRate, blockSize, steps int) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if blockSize <= 0 {
		return nil, ErrInvalidBlockSize
	}
	return &Engine{
		sampleRate: float64(sampleRate),
		blockSize:  blockSize,
		status:     make(chan int, statusBuffer),
		seq:        NewSequence(steps),
	}, nil
}

// SampleRate returns the rate the engine was built for
func (e *Engine) SampleRate() int {
	return int(e.sampleRate)
}

// BlockSize returns the number of samples rendered by one Process call
func (e *Engine) BlockSize() int {
	return e.blockSize
}

// SetState replaces the whole sequence at the next block boundary. If
// several states arrive within one block only the latest is applied. The
// sequence is normalized first, so out-of-range fields are clamped.
func (e *Engine) SetState(seq Sequence) {
	s := seq.Normalize()
	e.pendingState.Store(&s)
}

// Reset asks the audio thread to reset at the start of the next block.
// The step readout is updated right away; the audio thread confirms it
// when it processes the request.
func (e *Engine) Reset() {
	e.resetReq.Store(true)
	e.shownAt.Store(0)
}

// Status delivers the index of each step as it starts playing. Delivery
// is best effort: notifications are dropped when nobody is reading.
func (e *Engine) Status() <-chan int {
	return e.status
}

// CurrentStep returns the most recent step readout
func (e *Engine) CurrentStep() int {
	return int(e.shownAt.Load())
}

// Stats returns a snapshot of the audio thread counters
func (e *Engine) Stats() Stats {
	return Stats{
		Transitions:    e.transitions.Load(),
		DroppedStatus:  e.droppedStatus.Load(),
		QueueOverflows: e.queueOverflows.Load(),
		Resets:         e.resets.Load(),
	}
}

// Now returns the absolute sample index of the next block
func (e *Engine) Now() int64 {
	return e.now
}

// Process renders one block. It never blocks and never allocates.
func (e *Engine) Process(in Inputs, out Outputs) {
	e.applyMessages()

	for i := 0; i < e.blockSize; i++ {
		t := e.now + int64(i)

		if e.resetEdge.Detect(sampleAt(in.Reset, i)) {
			e.reset()
		}
		if e.clockEdge.Detect(sampleAt(in.Clock, i)) {
			e.pulse(t)
		}
		for ev := e.queue.peek(); ev != nil && ev.at <= t; ev = e.queue.peek() {
			e.apply(e.queue.pop())
		}
		e.render(i, t, out)
	}
	e.now += int64(e.blockSize)
}

func (e *Engine) applyMessages() {
	if s := e.pendingState.Swap(nil); s != nil {
		e.seq = *s
		if e.seq.Length > 0 {
			e.currentStep %= e.seq.Length
		} else {
			e.currentStep = 0
		}
		if pps := PulsesPerStep(e.seq.Division); e.pulseAccumulator >= pps {
			e.pulseAccumulator = math.Mod(e.pulseAccumulator, pps)
		}
	}
	if e.resetReq.Swap(false) {
		e.reset()
	}
}

// reset puts the engine back on step 0 so the very next pulse completes
// it. Visible state changes immediately.
func (e *Engine) reset() {
	e.queue.clear()
	e.currentStep = 0
	e.pulseAccumulator = PulsesPerStep(e.seq.Division) - 1
	e.resetPending = true

	e.hasLastPulse = false
	e.hasPulseInterval = false
	e.hasLastStep = false
	e.stepTriggerCount = 0

	e.cvRampRemaining = 0
	if e.seq.Length > 0 {
		e.cvValue = e.seq.Steps[0].Value
	}
	e.shownAt.Store(0)
	e.resets.Add(1)
}

// pulse handles one detected clock edge at sample t
func (e *Engine) pulse(t int64) {
	if e.hasLastPulse {
		e.lastPulseInterval = t - e.lastPulseSample
		e.hasPulseInterval = true
	}
	e.lastPulseSample = t
	e.hasLastPulse = true

	if e.seq.Length == 0 {
		return
	}

	pps := PulsesPerStep(e.seq.Division)
	e.pulseAccumulator++
	if e.pulseAccumulator < pps {
		return
	}
	e.pulseAccumulator -= pps
	e.schedule(t, pps)
}

// schedule resolves the next step transition for a pulse at sample p
func (e *Engine) schedule(p int64, pps float64) {
	var swingOffset float64
	if e.seq.Swing != 0 && e.hasPulseInterval {
		stepInterval := float64(e.lastPulseInterval) * pps
		delay := math.Abs(e.seq.Swing) / 100 * stepInterval
		odd := e.stepTriggerCount%2 == 1
		if (e.seq.Swing > 0 && odd) || (e.seq.Swing < 0 && !odd) {
			swingOffset = delay
		}
	}
	at := p + int64(math.Round(swingOffset))

	n := e.seq.Length
	index := e.nextIndex(n)
	ev := scheduledStep{
		at:    at,
		index: index,
		step:  e.seq.Steps[index],
		prev:  e.seq.Steps[(index-1+n)%n],
		next:  e.seq.Steps[(index+1)%n],
	}
	if e.hasLastStep {
		ev.interval = at - e.lastStepSample
		ev.hasInterval = true
	}
	ev.slideFromPrev = ev.hasInterval && ev.prev.Active && ev.step.Active && ev.step.Slide
	ev.slideIntoNext = ev.hasInterval && ev.step.Active && ev.next.Active && ev.next.Slide

	if !e.queue.push(ev) {
		e.queueOverflows.Add(1)
		return
	}
	e.lastStepSample = at
	e.hasLastStep = true
	e.stepTriggerCount++
}

// nextIndex follows the latest scheduled transition when one is still
// pending, so two transitions in flight never resolve to the same step
func (e *Engine) nextIndex(n int) int {
	if last := e.queue.last(); last != nil {
		return (last.index + 1) % n
	}
	if e.resetPending {
		return 0
	}
	return (e.currentStep + 1) % n
}

// apply performs a transition; the sample clock is at ev.at
func (e *Engine) apply(ev scheduledStep) {
	// CV
	slideSamples := int64(math.Round(e.seq.SlideTime * e.sampleRate))
	if ev.slideFromPrev && slideSamples > 0 {
		e.cvValue = ev.prev.Value
		e.cvRampTarget = ev.step.Value
		e.cvRampRemaining = slideSamples
		e.cvRampStep = (ev.step.Value - ev.prev.Value) / float64(slideSamples)
	} else {
		e.cvValue = ev.step.Value
		e.cvRampRemaining = 0
	}

	// Gate. Legato keeps a high gate high instead of retriggering it.
	legato := ev.slideFromPrev && e.gateOffSample > ev.at
	if ev.step.Active {
		if ev.slideIntoNext {
			e.gateOffSample = ev.at + ev.interval + roundSamples(float64(ev.interval)*ev.next.LengthPct/100)
		} else {
			e.gateOffSample = ev.at + e.gateDuration(ev, ev.step.LengthPct)
		}
	} else if !legato {
		e.gateOffSample = ev.at
	}

	// Accent
	if ev.step.Active && ev.step.Accent {
		e.accentOffSample = ev.at + e.gateDuration(ev, ev.step.LengthPct)
	} else {
		e.accentOffSample = ev.at
	}

	if e.seq.Length > 0 {
		e.currentStep = ev.index % e.seq.Length
	}
	e.resetPending = false
	e.shownAt.Store(int64(e.currentStep))
	e.transitions.Add(1)

	select {
	case e.status <- e.currentStep:
	default:
		e.droppedStatus.Add(1)
	}
}

// gateDuration is pct percent of the measured step interval, or of the
// base gate time when no interval is known yet
func (e *Engine) gateDuration(ev scheduledStep, pct float64) int64 {
	if ev.hasInterval {
		return roundSamples(float64(ev.interval) * pct / 100)
	}
	return roundSamples(e.seq.BaseGateSeconds * e.sampleRate * pct / 100)
}

func (e *Engine) render(i int, t int64, out Outputs) {
	cv := e.cvValue
	gate, accent := e.heldGate, e.heldAccent

	if e.seq.Length > 0 {
		gate, accent = 0, 0
		if t < e.gateOffSample {
			gate = 1
		}
		if t < e.accentOffSample {
			accent = 1
		}
		e.heldGate, e.heldAccent = gate, accent

		if e.cvRampRemaining > 0 {
			e.cvRampRemaining--
			if e.cvRampRemaining == 0 {
				e.cvValue = e.cvRampTarget
			} else {
				e.cvValue += e.cvRampStep
			}
		}
	}

	writeAt(out.CV, i, cv)
	writeAt(out.Gate, i, gate)
	writeAt(out.Accent, i, accent)
}

func roundSamples(x float64) int64 {
	return int64(math.Round(x))
}

func sampleAt(buf []float64, i int) float64 {
	if i < len(buf) {
		return buf[i]
	}
	return 0
}

func writeAt(buf []float64, i int, v float64) {
	if i < len(buf) {
		buf[i] = v
	}
}
