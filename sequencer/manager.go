package sequencer

import (
	"context"
	"sync"
	"time"

	"go-stepseq/debug"
)

// Transport is the tempo source the manager drives. The audio package
// provides the shared implementation.
type Transport interface {
	Start()
	Stop()
	SetTempo(bpm float64)
	Tempo() float64
	Playing() bool
}

// statsInterval is how often the manager checks the audio thread counters
const statsInterval = time.Second

// Manager is the control layer: it owns the editable copy of the sequence,
// pushes whole snapshots to the engine and turns step notifications into
// UI updates.
type Manager struct {
	engine    *Engine
	transport Transport

	mu   sync.RWMutex
	seq  Sequence
	step int // last known playing step

	lastStats Stats

	// Notify UI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager for engine. The engine's sequence is
// replaced with seq right away.
func NewManager(engine *Engine, transport Transport, seq Sequence) *Manager {
	m := &Manager{
		engine:     engine,
		transport:  transport,
		seq:        seq,
		UpdateChan: make(chan struct{}, 1),
	}
	engine.SetState(seq)
	return m
}

// Run consumes step notifications until ctx is done (blocking - run in goroutine)
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case step := <-m.engine.Status():
			m.mu.Lock()
			m.step = step
			m.mu.Unlock()
			debug.LogEvery(16, debug.CatEngine, "step %d", step)
			m.notifyUpdate()
		case <-ticker.C:
			m.checkStats()
		}
	}
}

// checkStats logs audio thread counters that moved since the last check
func (m *Manager) checkStats() {
	st := m.engine.Stats()
	if st.DroppedStatus != m.lastStats.DroppedStatus {
		debug.Log(debug.CatEngine, "dropped %d step notifications", st.DroppedStatus-m.lastStats.DroppedStatus)
	}
	if st.QueueOverflows != m.lastStats.QueueOverflows {
		debug.Log(debug.CatEngine, "step queue overflowed %d times", st.QueueOverflows-m.lastStats.QueueOverflows)
	}
	m.lastStats = st
}

// notifyUpdate wakes the UI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// Sequence returns a copy of the current sequence
func (m *Manager) Sequence() Sequence {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

// Apply normalizes a state message and makes it the current sequence
func (m *Manager) Apply(msg StateMessage) {
	seq := msg.Normalize()
	m.mu.Lock()
	m.seq = seq
	m.mu.Unlock()

	m.engine.SetState(seq)
	debug.Log(debug.CatCtrl, "state applied: %d steps, division %d, swing %.0f", seq.Length, seq.Division, seq.Swing)
	m.notifyUpdate()
}

// Edit mutates the sequence under lock, re-normalizes it and sends the
// whole snapshot to the engine
func (m *Manager) Edit(fn func(seq *Sequence)) {
	m.mu.Lock()
	fn(&m.seq)
	m.seq = m.seq.Normalize()
	seq := m.seq
	m.mu.Unlock()

	m.engine.SetState(seq)
	m.notifyUpdate()
}

// ToggleActive flips a step on or off
func (m *Manager) ToggleActive(i int) {
	m.editStep(i, func(st *Step) { st.Active = !st.Active })
}

// ToggleSlide flips the slide flag of a step
func (m *Manager) ToggleSlide(i int) {
	m.editStep(i, func(st *Step) { st.Slide = !st.Slide })
}

// ToggleAccent flips the accent flag of a step
func (m *Manager) ToggleAccent(i int) {
	m.editStep(i, func(st *Step) { st.Accent = !st.Accent })
}

// NudgeValue adds d to a step's CV value
func (m *Manager) NudgeValue(i int, d float64) {
	m.editStep(i, func(st *Step) { st.Value += d })
}

// NudgeLength adds d percent to a step's gate length
func (m *Manager) NudgeLength(i int, d float64) {
	m.editStep(i, func(st *Step) { st.LengthPct += d })
}

func (m *Manager) editStep(i int, fn func(st *Step)) {
	m.Edit(func(seq *Sequence) {
		if i >= 0 && i < seq.Length {
			fn(&seq.Steps[i])
		}
	})
}

// SetLength changes the number of steps (clamped to 1-32)
func (m *Manager) SetLength(n int) {
	m.Edit(func(seq *Sequence) {
		n = clampInt(n, 1, MaxSteps)
		for i := seq.Length; i < n; i++ {
			seq.Steps[i] = InertStep()
		}
		seq.Length = n
	})
}

// CycleDivision moves to the next (dir=1) or previous (dir=-1) division
func (m *Manager) CycleDivision(dir int) {
	m.Edit(func(seq *Sequence) { seq.Division = NextDivision(seq.Division, dir) })
}

// NudgeSwing adds d percent of swing
func (m *Manager) NudgeSwing(d float64) {
	m.Edit(func(seq *Sequence) { seq.Swing += d })
}

// SetSlideTime sets the slide time in seconds
func (m *Manager) SetSlideTime(seconds float64) {
	m.Edit(func(seq *Sequence) { seq.SlideTime = seconds })
}

// SetBaseGate sets the fallback gate time in seconds
func (m *Manager) SetBaseGate(seconds float64) {
	m.Edit(func(seq *Sequence) { seq.BaseGateSeconds = seconds })
}

// Reset sends the sequencer back to step 0. The readout shows step 0
// immediately; the audio thread catches up at its next block.
func (m *Manager) Reset() {
	m.engine.Reset()
	m.mu.Lock()
	m.step = 0
	m.mu.Unlock()
	debug.Log(debug.CatCtrl, "reset requested")
	m.notifyUpdate()
}

// Play starts the transport
func (m *Manager) Play() {
	if m.transport == nil || m.transport.Playing() {
		return
	}
	m.transport.Start()
	debug.Log(debug.CatCtrl, "play at %.1f bpm", m.transport.Tempo())
	m.notifyUpdate()
}

// Stop stops the transport
func (m *Manager) Stop() {
	if m.transport == nil || !m.transport.Playing() {
		return
	}
	m.transport.Stop()
	debug.Log(debug.CatCtrl, "stop")
	m.notifyUpdate()
}

// TogglePlay starts a stopped transport and stops a running one
func (m *Manager) TogglePlay() {
	if m.transport != nil && m.transport.Playing() {
		m.Stop()
	} else {
		m.Play()
	}
}

// SetTempo sets the BPM
func (m *Manager) SetTempo(bpm float64) {
	if m.transport == nil {
		return
	}
	bpm = clampFloat(bpm, MinBPM, MaxBPM)
	m.transport.SetTempo(bpm)
	m.notifyUpdate()
}

// GetState returns the current sequencer state
func (m *Manager) GetState() (step int, playing bool, tempo float64) {
	m.mu.RLock()
	step = m.step
	m.mu.RUnlock()
	if m.transport != nil {
		playing = m.transport.Playing()
		tempo = m.transport.Tempo()
	}
	return step, playing, tempo
}

// SaveSnapshot writes the current sequence to dir
func (m *Manager) SaveSnapshot(dir, name string) (string, error) {
	filename, err := SaveSnapshot(dir, name, m.Sequence(), time.Now())
	if err != nil {
		return "", err
	}
	debug.Log(debug.CatCtrl, "saved pattern %s", filename)
	return filename, nil
}

// LoadSnapshot replaces the sequence with the newest snapshot in dir
func (m *Manager) LoadSnapshot(dir string) error {
	seq, err := LoadSnapshot(dir, "")
	if err != nil {
		return err
	}
	m.Apply(seq.Message())
	return nil
}
