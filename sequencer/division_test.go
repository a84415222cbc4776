package sequencer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPulsesPerStep(t *testing.T) {
	cases := map[int]float64{
		1: 16, 2: 8, 3: 6, 4: 4, 6: 3, 8: 2, 12: 1.5, 16: 1,
		// fallback: max(1, 16/division)
		5:  3.2,
		32: 1,
		64: 1,
		0:  1,
		-4: 1,
	}
	for div, want := range cases {
		require.InDelta(t, want, PulsesPerStep(div), 1e-12, "division %d", div)
	}
}

func TestNextDivision_Wraps(t *testing.T) {
	require.Equal(t, 2, NextDivision(1, 1))
	require.Equal(t, 1, NextDivision(16, 1))
	require.Equal(t, 16, NextDivision(1, -1))
	require.Equal(t, DefaultDivision, NextDivision(5, 1))
}
