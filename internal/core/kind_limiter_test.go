package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestKindLimiter_AcquireRelease(t *testing.T) {
	limiter := NewKindLimiter(2, time.Second)
	ctx := context.Background()

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("initial ActiveCount = %d, want 0", got)
	}

	if err := limiter.Acquire(ctx, "countries"); err != nil {
		t.Fatalf("Acquire countries failed: %v", err)
	}
	if err := limiter.Acquire(ctx, "ports"); err != nil {
		t.Fatalf("Acquire ports failed: %v", err)
	}

	if got := limiter.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}
	if !limiter.Busy("countries") {
		t.Error("countries should be busy")
	}
	if limiter.Busy("vessels") {
		t.Error("vessels should not be busy")
	}

	limiter.Release("countries")
	limiter.Release("ports")

	if got := limiter.ActiveCount(); got != 0 {
		t.Errorf("final ActiveCount = %d, want 0", got)
	}
	if limiter.Busy("countries") {
		t.Error("countries should be free after Release")
	}
}

func TestKindLimiter_SameKindBlocks(t *testing.T) {
	limiter := NewKindLimiter(4, 100*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx, "vessels"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	start := time.Now()
	err := limiter.Acquire(ctx, "vessels")
	elapsed := time.Since(start)

	if err != ErrJobsBusy {
		t.Errorf("expected ErrJobsBusy, got %v", err)
	}
	if elapsed < 90*time.Millisecond {
		t.Errorf("timeout too fast: %v", elapsed)
	}

	// other kinds are unaffected
	if err := limiter.Acquire(ctx, "voyages"); err != nil {
		t.Errorf("Acquire voyages failed: %v", err)
	} else {
		limiter.Release("voyages")
	}

	limiter.Release("vessels")
}

func TestKindLimiter_GlobalCap(t *testing.T) {
	limiter := NewKindLimiter(1, 50*time.Millisecond)
	ctx := context.Background()

	if err := limiter.Acquire(ctx, "countries"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := limiter.Acquire(ctx, "ports"); err != ErrJobsBusy {
		t.Errorf("expected ErrJobsBusy, got %v", err)
	}
	// the kind slot taken while waiting must be given back
	if limiter.Busy("ports") {
		t.Error("ports slot leaked after global timeout")
	}

	limiter.Release("countries")
}

func TestKindLimiter_SerializesSameKind(t *testing.T) {
	const total = 8
	limiter := NewKindLimiter(total, time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	running, maxObserved := 0, 0

	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Acquire(context.Background(), "sightings"); err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			defer limiter.Release("sightings")

			mu.Lock()
			running++
			if running > maxObserved {
				maxObserved = running
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxObserved != 1 {
		t.Errorf("observed %d concurrent jobs of one kind, want 1", maxObserved)
	}
}

func TestKindLimiter_TryAcquire(t *testing.T) {
	limiter := NewKindLimiter(2, time.Second)

	if !limiter.TryAcquire("ports") {
		t.Fatal("first TryAcquire should succeed")
	}
	if limiter.TryAcquire("ports") {
		t.Error("second TryAcquire of same kind should fail")
		limiter.Release("ports")
	}
	if !limiter.TryAcquire("countries") {
		t.Error("TryAcquire of another kind should succeed")
	} else {
		limiter.Release("countries")
	}

	limiter.Release("ports")
	if !limiter.TryAcquire("ports") {
		t.Error("TryAcquire after Release should succeed")
	}
	limiter.Release("ports")
}

func TestKindLimiter_ContextCancellation(t *testing.T) {
	limiter := NewKindLimiter(1, 5*time.Second)

	if err := limiter.Acquire(context.Background(), "ports"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- limiter.Acquire(ctx, "ports")
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Acquire did not return after context cancellation")
	}

	limiter.Release("ports")
}

func TestKindLimiter_WaitForDrain(t *testing.T) {
	limiter := NewKindLimiter(2, time.Second)
	_ = limiter.Acquire(context.Background(), "ports")

	drainDone := make(chan error, 1)
	go func() {
		drainDone <- limiter.WaitForDrain(context.Background())
	}()

	select {
	case <-drainDone:
		t.Error("WaitForDrain returned too early")
	case <-time.After(50 * time.Millisecond):
	}

	limiter.Release("ports")

	select {
	case err := <-drainDone:
		if err != nil {
			t.Errorf("WaitForDrain returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("WaitForDrain did not complete after release")
	}
}

func TestKindLimiter_Status(t *testing.T) {
	limiter := NewKindLimiter(3, time.Second)
	ctx := context.Background()

	_ = limiter.Acquire(ctx, "vessels")
	_ = limiter.Acquire(ctx, "countries")

	status := limiter.Status()
	if status.Active != 2 {
		t.Errorf("Active = %d, want 2", status.Active)
	}
	if status.Available != 1 {
		t.Errorf("Available = %d, want 1", status.Available)
	}
	if len(status.BusyKinds) != 2 || status.BusyKinds[0] != "countries" || status.BusyKinds[1] != "vessels" {
		t.Errorf("BusyKinds = %v, want [countries vessels]", status.BusyKinds)
	}

	limiter.Release("vessels")
	limiter.Release("countries")
}

func TestKindLimiter_DefaultValues(t *testing.T) {
	limiter := NewKindLimiter(0, 0)
	if got := limiter.MaxConcurrent(); got != DefaultMaxConcurrentJobs {
		t.Errorf("MaxConcurrent = %d, want %d", got, DefaultMaxConcurrentJobs)
	}
}
