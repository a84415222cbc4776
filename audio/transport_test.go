package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-stepseq/sequencer"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	ctx, err := NewContext(t.Name(), 48000, 64)
	require.NoError(t, err)
	return ctx
}

func TestNewContextRejectsBadParameters(t *testing.T) {
	_, err := NewContext("x", 0, 64)
	require.ErrorIs(t, err, sequencer.ErrInvalidSampleRate)
	_, err = NewContext("x", 48000, 0)
	require.ErrorIs(t, err, sequencer.ErrInvalidBlockSize)
}

func TestTransportIsSharedPerContext(t *testing.T) {
	ctx := newTestContext(t)

	a, err := AcquireTransport(ctx)
	require.NoError(t, err)
	b, err := AcquireTransport(ctx)
	require.NoError(t, err)
	require.Same(t, a, b)

	other, err := AcquireTransport(newTestContext(t))
	require.NoError(t, err)
	require.NotSame(t, a, other)

	require.NoError(t, ReleaseTransport(ctx))
	require.NoError(t, ReleaseTransport(ctx))
	require.Equal(t, 0, transports.Refs(ctx))
}

func TestTransportRendersEachBlockOnce(t *testing.T) {
	ctx := newTestContext(t)
	tr, err := AcquireTransport(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { ReleaseTransport(ctx) })

	tr.Start()
	require.True(t, tr.Playing())

	first := make([]float64, 64)
	second := make([]float64, 64)
	tr.Read(0, first)
	tr.Read(0, second)
	require.Equal(t, first, second)
	require.Equal(t, 1.0, first[0])

	// a new block continues the pulse instead of restarting it
	next := make([]float64, 64)
	tr.Read(64, next)
	require.Equal(t, 1.0, next[0])
	tr.Read(128, next)
	require.Equal(t, 1.0, next[0])
}

func TestTransportStopSilencesNextBlock(t *testing.T) {
	ctx := newTestContext(t)
	tr, err := AcquireTransport(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { ReleaseTransport(ctx) })

	buf := make([]float64, 64)
	tr.Read(0, buf)
	require.Equal(t, make([]float64, 64), buf, "stopped transport is silent")

	tr.Start()
	tr.Read(64, buf)
	require.Equal(t, 1.0, buf[0])

	tr.Stop()
	require.False(t, tr.Playing())
	tr.Read(128, buf)
	require.Equal(t, make([]float64, 64), buf)
}

func TestTransportTempo(t *testing.T) {
	ctx := newTestContext(t)
	tr, err := AcquireTransport(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { ReleaseTransport(ctx) })

	require.Equal(t, sequencer.DefaultBPM, tr.Tempo())
	tr.SetTempo(90)
	require.Equal(t, 90.0, tr.Tempo())
	tr.SetTempo(5000)
	require.Equal(t, sequencer.MaxBPM, tr.Tempo())
	tr.RampTempo(60, time.Second)
	require.Equal(t, 60.0, tr.Tempo())
}
