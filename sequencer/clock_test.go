package sequencer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func risingEdges(signal []float64) []int {
	var edges []int
	prev := 0.0
	for i, x := range signal {
		if prev < EdgeThreshold && x >= EdgeThreshold {
			edges = append(edges, i)
		}
		prev = x
	}
	return edges
}

func TestClock_PeriodAndPulseWidth(t *testing.T) {
	c, err := NewClock(48000, 256)
	require.NoError(t, err)
	require.Equal(t, 1500, c.Period(120))

	out := make([]float64, 4000)
	c.Generate(constant(4000, 120), constant(4000, 1), out)

	require.Equal(t, []int{0, 1500, 3000}, risingEdges(out))
	require.Equal(t, 1.0, out[479])
	require.Equal(t, 0.0, out[480])
	require.Equal(t, 0.0, out[1499])
}

func TestClock_StoppedOutputsSilenceAndRestartsAligned(t *testing.T) {
	c, err := NewClock(48000, 256)
	require.NoError(t, err)

	running := constant(5000, 1)
	for i := 700; i < 2100; i++ {
		running[i] = 0
	}
	out := make([]float64, 5000)
	c.Generate(constant(5000, 120), running, out)

	for i := 700; i < 2100; i++ {
		require.Equal(t, 0.0, out[i], "sample %d", i)
	}
	// restart at 2100 begins a fresh pulse, not the remainder of the old phase
	require.Equal(t, []int{0, 2100, 3600}, risingEdges(out))
}

func TestClock_ClampsTempo(t *testing.T) {
	c, err := NewClock(48000, 64)
	require.NoError(t, err)

	require.Equal(t, 180000, c.Period(0))
	require.Equal(t, 180, c.Period(5000))

	// at the top tempo the pulse narrows to half a period so edges survive
	out := make([]float64, 400)
	c.Generate(constant(400, 999), constant(400, 1), out)
	require.Equal(t, []int{0, 180, 360}, risingEdges(out))
}

func TestClock_ProcessFollowsAutomation(t *testing.T) {
	c, err := NewClock(48000, 128)
	require.NoError(t, err)
	require.True(t, c.BPM.SetValue(240))
	require.True(t, c.Running.SetValueAt(100, 1))

	out := make([]float64, 1000)
	c.Process(0, out)

	require.Equal(t, []int{100, 850}, risingEdges(out))
	require.True(t, c.IsRunning())
}

func TestNewClock_RejectsInvalidHostParameters(t *testing.T) {
	_, err := NewClock(0, 64)
	require.ErrorIs(t, err, ErrInvalidSampleRate)
	_, err = NewClock(48000, 0)
	require.ErrorIs(t, err, ErrInvalidBlockSize)
}
