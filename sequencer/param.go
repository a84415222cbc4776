package sequencer

// maxParamEvents bounds the automation list of one parameter
const maxParamEvents = 32

// paramEvent is either a set (ramp == 0) or a linear ramp to value over
// ramp samples, starting at sample at.
type paramEvent struct {
	at    int64
	value float64
	ramp  int64
}

// Param is an automatable audio-rate parameter. Automation is a short
// time-sorted list of set/ramp events consumed once per block by Fill.
// The control side schedules through a buffered channel that Fill drains
// without blocking; when it is full the schedule call reports false.
type Param struct {
	value    float64
	min, max float64

	events [maxParamEvents]paramEvent
	n      int

	rampTarget    float64
	rampStep      float64
	rampRemaining int64

	pending chan paramEvent
}

// NewParam creates a parameter clamped to [min, max]
func NewParam(value, min, max float64) *Param {
	return &Param{
		value:   clampFloat(value, min, max),
		min:     min,
		max:     max,
		pending: make(chan paramEvent, maxParamEvents),
	}
}

// SetValueAt schedules a jump to v at absolute sample at
func (p *Param) SetValueAt(at int64, v float64) bool {
	return p.schedule(paramEvent{at: at, value: v})
}

// SetValue schedules a jump at the start of the next block
func (p *Param) SetValue(v float64) bool {
	return p.SetValueAt(0, v)
}

// RampTo schedules a linear ramp to target lasting duration samples,
// starting at absolute sample at
func (p *Param) RampTo(at int64, target float64, duration int64) bool {
	return p.schedule(paramEvent{at: at, value: target, ramp: duration})
}

func (p *Param) schedule(ev paramEvent) bool {
	select {
	case p.pending <- ev:
		return true
	default:
		return false
	}
}

// Fill writes one value per sample of out, starting at absolute sample
// blockStart. Audio thread only.
func (p *Param) Fill(blockStart int64, out []float64) {
	p.drain()
	for i := range out {
		t := blockStart + int64(i)
		for p.n > 0 && p.events[0].at <= t {
			p.apply(p.events[0])
			copy(p.events[:p.n-1], p.events[1:p.n])
			p.n--
		}
		out[i] = p.value
		if p.rampRemaining > 0 {
			p.rampRemaining--
			if p.rampRemaining == 0 {
				p.value = p.rampTarget
			} else {
				p.value = clampFloat(p.value+p.rampStep, p.min, p.max)
			}
		}
	}
}

func (p *Param) drain() {
	for {
		select {
		case ev := <-p.pending:
			p.insert(ev)
		default:
			return
		}
	}
}

// insert keeps events sorted by time; events at the same time keep
// arrival order. A full list drops its latest entry.
func (p *Param) insert(ev paramEvent) {
	if p.n == maxParamEvents {
		p.n--
	}
	i := p.n
	for i > 0 && p.events[i-1].at > ev.at {
		p.events[i] = p.events[i-1]
		i--
	}
	p.events[i] = ev
	p.n++
}

func (p *Param) apply(ev paramEvent) {
	target := clampFloat(ev.value, p.min, p.max)
	if ev.ramp <= 0 {
		p.value = target
		p.rampRemaining = 0
		return
	}
	p.rampTarget = target
	p.rampRemaining = ev.ramp
	p.rampStep = (target - p.value) / float64(ev.ramp)
}
