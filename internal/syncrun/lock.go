package syncrun

import (
	"sync"
	"time"
)

// DefaultLockTimeout is how long a run may hold the lock before a later
// TryAcquire treats the hold as abandoned.
const DefaultLockTimeout = 6 * time.Hour

// RunLock admits one synchronization run at a time. The held flag and the
// acquisition timestamp change together under mu.
type RunLock struct {
	mu         sync.Mutex
	held       bool
	acquiredAt time.Time
	timeout    time.Duration
	now        func() time.Time
}

// NewRunLock returns a free lock. A non-positive timeout selects DefaultLockTimeout.
func NewRunLock(timeout time.Duration) *RunLock {
	if timeout <= 0 {
		timeout = DefaultLockTimeout
	}
	return &RunLock{timeout: timeout, now: time.Now}
}

// TryAcquire takes the lock if it is free or its current hold has outlived the
// timeout. It never blocks.
func (l *RunLock) TryAcquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if l.held && now.Sub(l.acquiredAt) <= l.timeout {
		return false
	}
	l.held = true
	l.acquiredAt = now
	return true
}

// Release frees the lock. Releasing a free lock is a no-op.
func (l *RunLock) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = false
	l.acquiredAt = time.Time{}
}

// HeldDuration reports how long the current hold has lasted. ok is false when
// the lock is free.
func (l *RunLock) HeldDuration() (held time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.held {
		return 0, false
	}
	return l.now().Sub(l.acquiredAt), true
}

// Timeout returns the configured stale-hold threshold.
func (l *RunLock) Timeout() time.Duration {
	return l.timeout
}
