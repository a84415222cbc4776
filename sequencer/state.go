package sequencer

import "math"

// MaxSteps is the longest sequence the engine will play
const MaxSteps = 32

// Step limits and defaults
const (
	MinLengthPct     = 10.0
	MaxLengthPct     = 100.0
	DefaultLengthPct = 80.0

	MinSwing = -50.0
	MaxSwing = 50.0

	DefaultDivision        = 16
	DefaultSlideTime       = 0.05 // seconds
	DefaultBaseGateSeconds = 0.1  // seconds
)

// Step is a single slot in a sequence
type Step struct {
	Active    bool    `json:"active"`
	Value     float64 `json:"value"`     // CV emitted when the step plays
	LengthPct float64 `json:"lengthPct"` // gate length, percent of the step interval
	Slide     bool    `json:"slide"`
	Accent    bool    `json:"accent"`
}

// InertStep returns a step that never fires
func InertStep() Step {
	return Step{LengthPct: DefaultLengthPct}
}

// Sequence is the complete state the engine plays. It is fixed-size so the
// audio thread can copy it without allocating.
type Sequence struct {
	Steps           [MaxSteps]Step
	Length          int
	Division        int
	Swing           float64
	SlideTime       float64 // seconds
	BaseGateSeconds float64 // seconds
}

// NewSequence creates a sequence of n inert steps. n is used as given so a
// host can create an empty (n=0) sequence; control messages go through
// Normalize which clamps to [1,MaxSteps].
func NewSequence(n int) Sequence {
	if n < 0 {
		n = 0
	}
	if n > MaxSteps {
		n = MaxSteps
	}
	seq := Sequence{
		Length:          n,
		Division:        DefaultDivision,
		SlideTime:       DefaultSlideTime,
		BaseGateSeconds: DefaultBaseGateSeconds,
	}
	for i := range seq.Steps {
		seq.Steps[i] = InertStep()
	}
	return seq
}

// StateMessage is the "replace state" message sent by the control layer.
// Pointer fields distinguish missing values from zero values.
type StateMessage struct {
	Steps           []StepMessage `json:"steps"`
	Length          *int          `json:"length,omitempty"`
	Division        *int          `json:"division,omitempty"`
	Swing           *float64      `json:"swing,omitempty"`
	SlideTime       *float64      `json:"slideTime,omitempty"`
	BaseGateSeconds *float64      `json:"baseGateSeconds,omitempty"`
}

// StepMessage is one step as it arrives from the control layer
type StepMessage struct {
	Active    *bool    `json:"active,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	LengthPct *float64 `json:"lengthPct,omitempty"`
	Slide     *bool    `json:"slide,omitempty"`
	Accent    *bool    `json:"accent,omitempty"`
}

// Normalize turns a state message into a playable Sequence. Nothing is
// rejected: invalid or missing numbers fall back to defaults, length is
// clamped and the step list is truncated or padded with inert steps.
func (m StateMessage) Normalize() Sequence {
	length := len(m.Steps)
	if m.Length != nil {
		length = *m.Length
	}
	seq := NewSequence(MaxSteps)
	seq.Length = length

	for i := 0; i < MaxSteps && i < len(m.Steps); i++ {
		seq.Steps[i] = m.Steps[i].normalize()
	}

	if m.Division != nil {
		seq.Division = *m.Division
	}
	if m.Swing != nil {
		seq.Swing = *m.Swing
	}
	if m.SlideTime != nil {
		seq.SlideTime = *m.SlideTime
	}
	if m.BaseGateSeconds != nil {
		seq.BaseGateSeconds = *m.BaseGateSeconds
	}
	return seq.Normalize()
}

// Normalize returns a copy of s that the engine can play: length clamped
// to [1,MaxSteps], swing and gate lengths clamped, non-finite or negative
// times replaced by defaults and steps past the length made inert.
func (s Sequence) Normalize() Sequence {
	s.Length = clampInt(s.Length, 1, MaxSteps)
	if s.Division <= 0 {
		s.Division = DefaultDivision
	}
	s.Swing = clampFloat(finiteOr(s.Swing, 0), MinSwing, MaxSwing)
	if v := finiteOr(s.SlideTime, -1); v >= 0 {
		s.SlideTime = v
	} else {
		s.SlideTime = DefaultSlideTime
	}
	if v := finiteOr(s.BaseGateSeconds, -1); v >= 0 {
		s.BaseGateSeconds = v
	} else {
		s.BaseGateSeconds = DefaultBaseGateSeconds
	}

	for i := range s.Steps {
		if i >= s.Length {
			s.Steps[i] = InertStep()
			continue
		}
		st := &s.Steps[i]
		st.Value = finiteOr(st.Value, 0)
		st.LengthPct = clampFloat(finiteOr(st.LengthPct, DefaultLengthPct), MinLengthPct, MaxLengthPct)
	}
	return s
}

func (s StepMessage) normalize() Step {
	step := InertStep()
	if s.Active != nil {
		step.Active = *s.Active
	}
	if s.Value != nil {
		step.Value = finiteOr(*s.Value, 0)
	}
	if s.LengthPct != nil {
		step.LengthPct = clampFloat(finiteOr(*s.LengthPct, DefaultLengthPct), MinLengthPct, MaxLengthPct)
	}
	if s.Slide != nil {
		step.Slide = *s.Slide
	}
	if s.Accent != nil {
		step.Accent = *s.Accent
	}
	return step
}

// Message converts a sequence back into a fully populated state message
func (s *Sequence) Message() StateMessage {
	n := clampInt(s.Length, 0, MaxSteps)
	div := s.Division
	swing := s.Swing
	slide := s.SlideTime
	base := s.BaseGateSeconds
	m := StateMessage{
		Steps:           make([]StepMessage, n),
		Length:          &n,
		Division:        &div,
		Swing:           &swing,
		SlideTime:       &slide,
		BaseGateSeconds: &base,
	}
	for i := 0; i < n; i++ {
		st := s.Steps[i]
		m.Steps[i] = StepMessage{
			Active:    &st.Active,
			Value:     &st.Value,
			LengthPct: &st.LengthPct,
			Slide:     &st.Slide,
			Accent:    &st.Accent,
		}
	}
	return m
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
