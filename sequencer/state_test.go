package sequencer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNormalize_StepCountFollowsClampedLength(t *testing.T) {
	cases := []struct {
		name   string
		length *int
		steps  int
		want   int
	}{
		{"negative length", ptr(-3), 4, 1},
		{"zero length", ptr(0), 0, 1},
		{"exact", ptr(8), 8, 8},
		{"pads missing steps", ptr(16), 3, 16},
		{"truncates extra steps", ptr(4), 10, 4},
		{"clamps to max", ptr(40), 40, MaxSteps},
		{"length from steps", nil, 5, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := StateMessage{Length: tc.length, Steps: make([]StepMessage, tc.steps)}
			for i := range msg.Steps {
				msg.Steps[i] = StepMessage{Active: ptr(true)}
			}
			seq := msg.Normalize()
			require.Equal(t, tc.want, seq.Length)

			for i := 0; i < seq.Length; i++ {
				require.Equal(t, i < tc.steps, seq.Steps[i].Active, "step %d", i)
			}
		})
	}
}

func TestNormalize_InvalidNumbersFallBackToDefaults(t *testing.T) {
	msg := StateMessage{
		Length: ptr(3),
		Steps: []StepMessage{
			{Active: ptr(true), Value: ptr(math.NaN()), LengthPct: ptr(math.NaN())},
			{LengthPct: ptr(5.0), Value: ptr(math.Inf(1))},
			{LengthPct: ptr(150.0), Value: ptr(0.25)},
		},
		Swing:           ptr(math.NaN()),
		SlideTime:       ptr(-1.0),
		BaseGateSeconds: ptr(math.Inf(-1)),
	}
	seq := msg.Normalize()

	require.True(t, seq.Steps[0].Active)
	require.Equal(t, 0.0, seq.Steps[0].Value)
	require.Equal(t, DefaultLengthPct, seq.Steps[0].LengthPct)
	require.False(t, seq.Steps[0].Slide)
	require.False(t, seq.Steps[0].Accent)

	require.False(t, seq.Steps[1].Active)
	require.Equal(t, 0.0, seq.Steps[1].Value)
	require.Equal(t, MinLengthPct, seq.Steps[1].LengthPct)

	require.Equal(t, MaxLengthPct, seq.Steps[2].LengthPct)
	require.Equal(t, 0.25, seq.Steps[2].Value)

	require.Equal(t, 0.0, seq.Swing)
	require.Equal(t, DefaultSlideTime, seq.SlideTime)
	require.Equal(t, DefaultBaseGateSeconds, seq.BaseGateSeconds)
	require.Equal(t, DefaultDivision, seq.Division)
}

func TestNormalize_ClampsSwing(t *testing.T) {
	require.Equal(t, MaxSwing, StateMessage{Swing: ptr(80.0)}.Normalize().Swing)
	require.Equal(t, MinSwing, StateMessage{Swing: ptr(-51.0)}.Normalize().Swing)
	require.Equal(t, 12.5, StateMessage{Swing: ptr(12.5)}.Normalize().Swing)
}

func TestNormalize_KeepsUnknownDivision(t *testing.T) {
	seq := StateMessage{Division: ptr(5)}.Normalize()
	require.Equal(t, 5, seq.Division)

	seq = StateMessage{Division: ptr(-2)}.Normalize()
	require.Equal(t, DefaultDivision, seq.Division)
}

func TestSequenceMessage_RoundTripsThroughNormalize(t *testing.T) {
	seq := NewSequence(4)
	seq.Division = 8
	seq.Swing = -20
	seq.Steps[2] = Step{Active: true, Value: 0.3, LengthPct: 40, Slide: true, Accent: true}

	require.Equal(t, seq, seq.Message().Normalize())
}

func TestSequenceNormalize_ClampsFields(t *testing.T) {
	seq := NewSequence(4)
	seq.Steps[5].Active = true
	seq.Steps[0].LengthPct = 0
	seq.Division = 0
	seq.Swing = math.Inf(-1)

	got := seq.Normalize()
	require.Equal(t, 4, got.Length)
	require.Equal(t, InertStep(), got.Steps[5], "steps past the length are inert")
	require.Equal(t, MinLengthPct, got.Steps[0].LengthPct)
	require.Equal(t, DefaultDivision, got.Division)
	require.Equal(t, 0.0, got.Swing)

	seq.Length = 0
	require.Equal(t, 1, seq.Normalize().Length)
}

func TestNewSequence_AllowsEmpty(t *testing.T) {
	require.Equal(t, 0, NewSequence(0).Length)
	require.Equal(t, 0, NewSequence(-1).Length)
	require.Equal(t, MaxSteps, NewSequence(99).Length)
}

func TestDemoSequence(t *testing.T) {
	seq := DemoSequence(20)
	require.Equal(t, 20, seq.Length)
	require.Equal(t, seq.Steps[0], seq.Steps[16], "pattern repeats after 16 steps")
	require.Equal(t, 1.0, seq.Steps[2].Value)
	require.True(t, seq.Steps[2].Slide)

	require.Equal(t, 1, DemoSequence(0).Length)
}
