package propagator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	name string
}

func (c *fakeClock) Intensity() Distribution { return nil }

func TestFiringQueueOrdering(t *testing.T) {
	q := NewFiringQueue()
	require.Equal(t, 0, q.Len())

	a, b, c := &fakeClock{"a"}, &fakeClock{"b"}, &fakeClock{"c"}
	q.Push(15.0, a)
	q.Push(5.0, b)
	q.Push(10.0, c)
	require.Equal(t, 3, q.Len())

	tm, clk, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, 5.0, tm)
	require.Same(t, b, clk)
	require.Equal(t, 3, q.Len(), "peek must not remove")
}

func TestFiringQueueEmptyPeek(t *testing.T) {
	q := NewFiringQueue()
	_, clk, ok := q.Peek()
	require.False(t, ok)
	require.Nil(t, clk)
}

func TestFiringQueueUpdateReordersAndPreservesHandle(t *testing.T) {
	q := NewFiringQueue()
	a, b := &fakeClock{"a"}, &fakeClock{"b"}
	ha := q.Push(10.0, a)
	q.Push(20.0, b)

	tm, clk, _ := q.Peek()
	require.Equal(t, 10.0, tm)
	require.Same(t, a, clk)

	// Increase a's key past b's: b should become the new minimum.
	q.Update(ha, 30.0, a)
	tm, clk, _ = q.Peek()
	require.Equal(t, 20.0, tm)
	require.Same(t, b, clk)

	// Decrease a's key back below b's.
	q.Update(ha, 1.0, a)
	tm, clk, _ = q.Peek()
	require.Equal(t, 1.0, tm)
	require.Same(t, a, clk)
}

func TestFiringQueueRemoveByHandle(t *testing.T) {
	q := NewFiringQueue()
	a, b, c := &fakeClock{"a"}, &fakeClock{"b"}, &fakeClock{"c"}
	q.Push(5.0, a)
	hb := q.Push(1.0, b)
	q.Push(9.0, c)

	tm, clk := q.Remove(hb)
	require.Equal(t, 1.0, tm)
	require.Same(t, b, clk)
	require.Equal(t, 2, q.Len())

	tm, clk, ok := q.Peek()
	require.True(t, ok)
	require.Equal(t, 5.0, tm)
	require.Same(t, a, clk)
}

func TestFiringQueueRemoveRoot(t *testing.T) {
	q := NewFiringQueue()
	a := &fakeClock{"a"}
	h := q.Push(5.0, a)

	tm, clk := q.Remove(h)
	require.Equal(t, 5.0, tm)
	require.Same(t, a, clk)
	require.Equal(t, 0, q.Len())

	_, _, ok := q.Peek()
	require.False(t, ok)
}

func TestFiringQueueUnknownHandlePanics(t *testing.T) {
	q := NewFiringQueue()
	require.Panics(t, func() { q.Update(Handle(999), 1.0, &fakeClock{}) })
	require.Panics(t, func() { q.Remove(Handle(999)) })
}

func TestFiringQueueStress(t *testing.T) {
	q := NewFiringQueue()
	n := 500
	handles := make([]Handle, n)
	for i := 0; i < n; i++ {
		ts := float64((i * 37) % n)
		handles[i] = q.Push(ts, &fakeClock{})
	}
	require.Equal(t, n, q.Len())

	last := -1.0
	for q.Len() > 0 {
		tm, _, ok := q.Peek()
		require.True(t, ok)
		require.GreaterOrEqual(t, tm, last)
		last = tm

		// Remove whatever is currently at the root via its own handle to
		// exercise Remove alongside Peek, not just Pop-by-position.
		for _, h := range handles {
			if idx, ok := q.h.index[h]; ok && idx == 0 {
				q.Remove(h)
				break
			}
		}
	}
}
