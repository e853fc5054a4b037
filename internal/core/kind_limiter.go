package core

// kind_limiter.go serializes jobs per kind and caps how many jobs run at
// once.
//
// Each kind owns a single slot, so two imports of the same kind never
// overlap. A shared semaphore bounds the total across kinds. Requests that
// cannot get both within maxWait fail with ErrJobsBusy.

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrJobsBusy is returned when a slot could not be acquired before the wait
// timeout expired. Clients should retry after a short delay.
var ErrJobsBusy = errors.New("too many jobs in progress, please try again later")

// DefaultMaxConcurrentJobs is the default limit for jobs across all kinds.
const DefaultMaxConcurrentJobs = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// KindLimiter controls job concurrency with one slot per kind plus a global
// cap.
type KindLimiter struct {
	global  chan struct{}
	maxWait time.Duration

	mu    sync.Mutex
	kinds map[string]chan struct{}
}

// NewKindLimiter creates a limiter that runs at most maxConcurrent jobs and
// at most one job per kind.
func NewKindLimiter(maxConcurrent int, maxWait time.Duration) *KindLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentJobs
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	return &KindLimiter{
		global:  make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		kinds:   make(map[string]chan struct{}),
	}
}

func (l *KindLimiter) slot(kind string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.kinds[kind]
	if !ok {
		ch = make(chan struct{}, 1)
		l.kinds[kind] = ch
	}
	return ch
}

// Acquire waits for kind's slot and a global slot.
// The caller MUST call Release(kind) when the job completes.
func (l *KindLimiter) Acquire(ctx context.Context, kind string) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	ks := l.slot(kind)
	select {
	case ks <- struct{}{}:
	case <-waitCtx.Done():
		return l.waitErr(ctx)
	}

	select {
	case l.global <- struct{}{}:
		return nil
	case <-waitCtx.Done():
		<-ks
		return l.waitErr(ctx)
	}
}

func (l *KindLimiter) waitErr(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return ErrJobsBusy
}

// TryAcquire takes both slots without blocking.
func (l *KindLimiter) TryAcquire(kind string) bool {
	ks := l.slot(kind)
	select {
	case ks <- struct{}{}:
	default:
		return false
	}

	select {
	case l.global <- struct{}{}:
		return true
	default:
		<-ks
		return false
	}
}

// Release frees the slots taken by a successful Acquire or TryAcquire.
func (l *KindLimiter) Release(kind string) {
	<-l.global
	<-l.slot(kind)
}

// Busy reports whether a job of kind holds its slot.
func (l *KindLimiter) Busy(kind string) bool {
	return len(l.slot(kind)) > 0
}

// ActiveCount returns the number of running jobs.
func (l *KindLimiter) ActiveCount() int {
	return len(l.global)
}

// MaxConcurrent returns the global job cap.
func (l *KindLimiter) MaxConcurrent() int {
	return cap(l.global)
}

// WaitForDrain blocks until no job holds a slot or ctx is cancelled.
func (l *KindLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// KindLimiterStatus is a snapshot of the limiter.
type KindLimiterStatus struct {
	Active        int      `json:"active"`
	Available     int      `json:"available"`
	MaxConcurrent int      `json:"max_concurrent"`
	BusyKinds     []string `json:"busy_kinds"`
}

// Status returns the current limiter state for monitoring.
func (l *KindLimiter) Status() KindLimiterStatus {
	l.mu.Lock()
	busy := make([]string, 0, len(l.kinds))
	for kind, ch := range l.kinds {
		if len(ch) > 0 {
			busy = append(busy, kind)
		}
	}
	l.mu.Unlock()
	sort.Strings(busy)

	active := len(l.global)
	return KindLimiterStatus{
		Active:        active,
		Available:     cap(l.global) - active,
		MaxConcurrent: cap(l.global),
		BusyKinds:     busy,
	}
}
