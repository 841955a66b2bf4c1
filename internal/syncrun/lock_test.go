package syncrun

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLockAcquireRelease(t *testing.T) {
	lock := NewRunLock(time.Hour)

	_, held := lock.HeldDuration()
	assert.False(t, held)

	require.True(t, lock.TryAcquire())
	assert.False(t, lock.TryAcquire(), "second acquire must fail while held")
	_, held = lock.HeldDuration()
	assert.True(t, held)

	lock.Release()
	assert.True(t, lock.TryAcquire())
}

func TestRunLockSelfHeals(t *testing.T) {
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lock := NewRunLock(30 * time.Minute)
	lock.now = func() time.Time { return current }

	require.True(t, lock.TryAcquire())
	current = current.Add(29 * time.Minute)
	assert.False(t, lock.TryAcquire())

	heldFor, held := lock.HeldDuration()
	require.True(t, held)
	assert.Equal(t, 29*time.Minute, heldFor)

	current = current.Add(2 * time.Minute)
	require.True(t, lock.TryAcquire(), "stale hold must be taken over")
	heldFor, _ = lock.HeldDuration()
	assert.Zero(t, heldFor, "takeover restarts the hold clock")
}

func TestRunLockDefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultLockTimeout, NewRunLock(0).Timeout())
}

func TestRunLockSingleWinner(t *testing.T) {
	lock := NewRunLock(time.Hour)
	var winners atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if lock.TryAcquire() {
				winners.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}
