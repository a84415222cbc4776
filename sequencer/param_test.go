package sequencer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParam_SetValueAtIsSampleAccurate(t *testing.T) {
	p := NewParam(1, 0, 10)
	require.True(t, p.SetValueAt(50, 3))
	require.True(t, p.SetValueAt(20, 2)) // scheduled out of order

	out := make([]float64, 64)
	p.Fill(0, out)

	require.Equal(t, 1.0, out[19])
	require.Equal(t, 2.0, out[20])
	require.Equal(t, 2.0, out[49])
	require.Equal(t, 3.0, out[50])
}

func TestParam_RampIsLinearAndLandsExactly(t *testing.T) {
	p := NewParam(0, 0, 10)
	require.True(t, p.RampTo(10, 10, 10))

	out := make([]float64, 30)
	p.Fill(0, out)

	require.Equal(t, 0.0, out[9])
	for k := 0; k <= 10; k++ {
		require.InDelta(t, float64(k), out[10+k], 1e-9, "sample %d", 10+k)
	}
	require.Equal(t, 10.0, out[20])
	require.Equal(t, 10.0, out[29])
}

func TestParam_RampSpansBlocks(t *testing.T) {
	p := NewParam(0, 0, 1)
	require.True(t, p.RampTo(0, 1, 100))

	first := make([]float64, 64)
	second := make([]float64, 64)
	p.Fill(0, first)
	p.Fill(64, second)

	require.InDelta(t, 0.63, first[63], 1e-9)
	require.InDelta(t, 0.64, second[0], 1e-9)
	require.Equal(t, 1.0, second[36])
}

func TestParam_ClampsToRange(t *testing.T) {
	p := NewParam(5, 1, 10)
	require.True(t, p.SetValue(99))

	out := make([]float64, 4)
	p.Fill(0, out)
	require.Equal(t, 10.0, out[0])
}

func TestParam_ScheduleReportsFullMailbox(t *testing.T) {
	p := NewParam(0, 0, 1)
	for i := 0; i < maxParamEvents; i++ {
		require.True(t, p.SetValueAt(int64(i), 1))
	}
	require.False(t, p.SetValueAt(100, 0))
}
