package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestPool(t testing.TB, workers int, opts ...Option) *WorkerPool {
	t.Helper()
	pool, err := NewWorkerPool(workers, opts...)
	if err != nil {
		t.Fatalf("NewWorkerPool(%d) failed: %v", workers, err)
	}
	return pool
}

func submit(pool *WorkerPool, task func()) bool {
	return pool.SubmitContext(context.Background(), task) == nil
}

// TestWorkerPoolBasicOperations tests basic worker pool functionality
func TestWorkerPoolBasicOperations(t *testing.T) {
	pool := newTestPool(t, 4)
	defer pool.Close()

	executed := false
	success := submit(pool, func() {
		executed = true
	})

	if !success {
		t.Error("Task submission failed")
	}

	// Wait for task to complete
	pool.Close()

	if !executed {
		t.Error("Task was not executed")
	}
}

func TestWorkerPoolDefaultsToOneWorker(t *testing.T) {
	pool := newTestPool(t, 0)
	defer pool.Close()

	if pool.Workers() != 1 {
		t.Errorf("Workers() = %d, want 1", pool.Workers())
	}
}

func TestWorkerPoolTooManyWorkers(t *testing.T) {
	_, err := NewWorkerPool(MaxWorkers + 1)
	if !errors.Is(err, ErrTooManyWorkers) {
		t.Errorf("Expected ErrTooManyWorkers, got %v", err)
	}
}

// TestWorkerPoolConcurrentSubmissions tests concurrent task submissions
func TestWorkerPoolConcurrentSubmissions(t *testing.T) {
	pool := newTestPool(t, 10)
	defer pool.Close()

	numTasks := 100
	var counter int64

	var wg sync.WaitGroup
	for i := 0; i < numTasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			submit(pool, func() {
				atomic.AddInt64(&counter, 1)
			})
		}()
	}

	wg.Wait()
	pool.Close()

	if counter != int64(numTasks) {
		t.Errorf("Expected counter %d, got %d", numTasks, counter)
	}
}

// TestWorkerPoolCloseRace tests that closing while submitting doesn't panic
func TestWorkerPoolCloseRace(t *testing.T) {
	for iteration := 0; iteration < 50; iteration++ {
		pool := newTestPool(t, 4)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					submit(pool, func() {
						time.Sleep(time.Millisecond)
					})
				}
			}()
		}

		time.Sleep(5 * time.Millisecond)
		pool.Close()
		wg.Wait()
	}
}

// TestWorkerPoolSubmitAfterClose tests that submissions after close are refused
func TestWorkerPoolSubmitAfterClose(t *testing.T) {
	pool := newTestPool(t, 4)

	if !submit(pool, func() { time.Sleep(10 * time.Millisecond) }) {
		t.Error("Task submission before close should succeed")
	}

	pool.Close()

	if submit(pool, func() { t.Error("This task should never execute") }) {
		t.Error("Task submission after close should be refused")
	}
	if err := pool.SubmitContext(context.Background(), func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("SubmitContext after close = %v, want ErrPoolClosed", err)
	}
}

// TestWorkerPoolSubmitContextCancelled tests that a full queue honours ctx
func TestWorkerPoolSubmitContextCancelled(t *testing.T) {
	pool := newTestPool(t, 1)
	defer pool.Close()

	release := make(chan struct{})
	// One running task plus a full buffer of two
	for i := 0; i < 3; i++ {
		if err := pool.SubmitContext(context.Background(), func() { <-release }); err != nil {
			t.Fatalf("SubmitContext %d failed: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// The first task may not have been picked up yet, so fill until blocked
	var err error
	for i := 0; i < 2 && err == nil; i++ {
		err = pool.SubmitContext(ctx, func() { <-release })
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("SubmitContext on full queue = %v, want DeadlineExceeded", err)
	}
	close(release)
}

// TestWorkerPoolMultipleClose tests that closing multiple times is safe
func TestWorkerPoolMultipleClose(t *testing.T) {
	pool := newTestPool(t, 4)

	for i := 0; i < 10; i++ {
		submit(pool, func() {
			time.Sleep(time.Millisecond)
		})
	}

	pool.Close()
	pool.Close()
	pool.Close()
}

// TestWorkerPoolConcurrentClose tests concurrent close calls
func TestWorkerPoolConcurrentClose(t *testing.T) {
	pool := newTestPool(t, 4)

	for i := 0; i < 20; i++ {
		submit(pool, func() {
			time.Sleep(time.Millisecond)
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool.Close()
		}()
	}

	wg.Wait()
}

// TestWorkerPoolTaskExecution tests that all submitted tasks execute
func TestWorkerPoolTaskExecution(t *testing.T) {
	pool := newTestPool(t, 5)
	defer pool.Close()

	numTasks := 50
	executed := make([]bool, numTasks)
	var mu sync.Mutex

	for i := 0; i < numTasks; i++ {
		taskID := i
		submit(pool, func() {
			mu.Lock()
			executed[taskID] = true
			mu.Unlock()
		})
	}

	pool.Close()

	for i, exec := range executed {
		if !exec {
			t.Errorf("Task %d was not executed", i)
		}
	}
}

// TestWorkerPoolWithPanic tests that panics in tasks reach the handler
// and leave the workers running
func TestWorkerPoolWithPanic(t *testing.T) {
	var panics, counter int64
	pool := newTestPool(t, 4, WithPanicHandler(func(r any) {
		if r == "intentional panic" {
			atomic.AddInt64(&panics, 1)
		}
	}))

	for i := 0; i < 5; i++ {
		submit(pool, func() {
			panic("intentional panic")
		})
	}
	for i := 0; i < 10; i++ {
		submit(pool, func() {
			atomic.AddInt64(&counter, 1)
		})
	}

	pool.Close()

	if counter != 10 {
		t.Errorf("Expected counter 10, got %d", counter)
	}
	if panics != 5 {
		t.Errorf("Expected 5 recovered panics, got %d", panics)
	}
}

// BenchmarkWorkerPoolThroughput benchmarks worker pool throughput
func BenchmarkWorkerPoolThroughput(b *testing.B) {
	pool := newTestPool(b, 10)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		submit(pool, func() {})
	}

	pool.Close()
}
