package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type closeCounter struct {
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return nil
}

func TestRegistrySharesAndClosesAtZero(t *testing.T) {
	r := NewRegistry[string, *closeCounter]()
	created := 0
	create := func() (*closeCounter, error) {
		created++
		return &closeCounter{}, nil
	}

	a, err := r.Acquire("ctx", create)
	require.NoError(t, err)
	b, err := r.Acquire("ctx", create)
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, 1, created)
	require.Equal(t, 2, r.Refs("ctx"))

	require.NoError(t, r.Release("ctx"))
	require.Equal(t, 0, a.closed)
	require.NoError(t, r.Release("ctx"))
	require.Equal(t, 1, a.closed)
	require.Equal(t, 0, r.Refs("ctx"))

	c, err := r.Acquire("ctx", create)
	require.NoError(t, err)
	require.NotSame(t, a, c)
	require.Equal(t, 2, created)
}

func TestRegistryCreateErrorLeavesNoEntry(t *testing.T) {
	r := NewRegistry[int, *closeCounter]()
	boom := errors.New("boom")

	_, err := r.Acquire(1, func() (*closeCounter, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, r.Refs(1))
}

func TestRegistryReleaseUnknownKey(t *testing.T) {
	r := NewRegistry[int, *closeCounter]()
	require.Error(t, r.Release(7))
}
