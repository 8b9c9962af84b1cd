package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrComputeSingleFlight(t *testing.T) {
	c := New(time.Minute)

	var calls atomic.Int32
	compute := func() (any, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return "value", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrCompute("key", compute)
			assert.NoError(t, err)
			assert.Equal(t, "value", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "population must run once per key")
}

func TestErrorsNotCached(t *testing.T) {
	c := New(time.Minute)

	boom := errors.New("boom")
	_, err := c.GetOrCompute("key", func() (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	v, err := c.GetOrCompute("key", func() (any, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestExpiry(t *testing.T) {
	c := New(time.Millisecond)

	var calls int
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	v, _ := c.GetOrCompute("key", compute)
	assert.Equal(t, 1, v)

	time.Sleep(5 * time.Millisecond)

	v, _ = c.GetOrCompute("key", compute)
	assert.Equal(t, 2, v, "expired entry recomputes")
}

func TestInvalidate(t *testing.T) {
	c := New(time.Minute)

	var calls int
	compute := func() (any, error) {
		calls++
		return calls, nil
	}

	c.GetOrCompute("key", compute)
	c.Invalidate("key")
	v, _ := c.GetOrCompute("key", compute)
	assert.Equal(t, 2, v)
}
