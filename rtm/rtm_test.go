package rtm

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotSingleInstance(t *testing.T) {
	s := NewSlot("m")

	lease, err := s.Acquire()
	require.NoError(t, err)
	assert.True(t, s.Live())

	_, err = s.Acquire()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInUse))
	assert.Contains(t, err.Error(), "m:")

	lease.Release(nil)
	assert.False(t, s.Live())

	again, err := s.Acquire()
	require.NoError(t, err)
	again.Release(nil)
}

func TestLeaseReleaseOnce(t *testing.T) {
	s := NewSlot("m")
	lease, err := s.Acquire()
	require.NoError(t, err)

	calls := 0
	for range 3 {
		lease.Release(func() { calls++ })
	}
	assert.Equal(t, 1, calls)

	// A stale lease must not free a newer holder.
	next, err := s.Acquire()
	require.NoError(t, err)
	lease.Release(func() { calls++ })
	assert.True(t, s.Live())
	assert.Equal(t, 1, calls)
	next.Release(nil)
}

func TestLeaseReleaseOnPanic(t *testing.T) {
	s := NewSlot("m")

	func() {
		defer func() {
			assert.NotNil(t, recover())
		}()

		lease, err := s.Acquire()
		require.NoError(t, err)
		defer lease.Release(func() {})

		panic("model failure")
	}()
	assert.False(t, s.Live())

	lease, err := s.Acquire()
	require.NoError(t, err)
	assert.Panics(t, func() {
		lease.Release(func() { panic("terminate failed") })
	})
	assert.False(t, s.Live())
}

func TestStepsInfinite(t *testing.T) {
	calls := 0
	seq := Steps(func() { calls++ })

	n := 0
	for range seq {
		n++
		if n == 5 {
			break
		}
	}
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, calls)

	// Restart.
	for range seq {
		break
	}
	assert.Equal(t, 6, calls)
}

func TestBorrow(t *testing.T) {
	type ctx struct{ state *[2]float64 }

	var state [2]float64
	Borrow(&ctx{state: &state}, func(c *ctx) {
		c.state[1] = 7
	})
	assert.Equal(t, [2]float64{0, 7}, state)
}

type inputKind int

const (
	inputA inputKind = iota
	inputB
)

func TestViewIndexing(t *testing.T) {
	var storage struct {
		a [2]float64
		b float64
	}

	a := NewView(inputA, storage.a[:])
	b := NewView(inputB, unsafe.Slice(&storage.b, 1))

	assert.Equal(t, inputA, a.Kind())
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 1, b.Len())

	a.Set(0, 1.5)
	a.Set(1, -2)
	assert.Equal(t, [2]float64{1.5, -2}, storage.a)
	assert.Equal(t, -2.0, a.At(1))

	assert.Panics(t, func() { a.At(2) })
	assert.Panics(t, func() { a.Set(2, 0) })
	b.Set(0, 4)
	assert.Equal(t, 4.0, storage.b)
	assert.Panics(t, func() { b.At(1) })
}

func TestViewValuesAndLoad(t *testing.T) {
	var storage [3]float64
	v := NewView(inputA, storage[:])

	v.Load([]float64{1, 2, 3})
	assert.Equal(t, [3]float64{1, 2, 3}, storage)

	out := v.Values()
	out[0] = 99
	assert.Equal(t, 1.0, storage[0])

	assert.Panics(t, func() { v.Load([]float64{1}) })
}
