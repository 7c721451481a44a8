// Package parallel runs independent analysis tasks on a bounded set of
// goroutines.
package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func() error
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu

	errMu sync.Mutex
	errs  []error
}

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("worker pool is closed")

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// NewWorkerPool creates a pool of workers goroutines. Zero or fewer means
// one per CPU.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func() error, workers*2), // Buffer for 2x workers
	}

	pool.start()
	return pool
}

// Workers returns the number of worker goroutines.
func (wp *WorkerPool) Workers() int { return wp.workers }

// start initializes the worker goroutines
func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// worker processes tasks from the queue
func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		if err := wp.runTask(task); err != nil {
			wp.errMu.Lock()
			wp.errs = append(wp.errs, err)
			wp.errMu.Unlock()
		}
	}
}

// runTask turns a panic into a PanicError so one bad task cannot kill the
// worker.
func (wp *WorkerPool) runTask(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return task()
}

// Submit adds a task to the worker pool. It returns ErrPoolClosed once the
// pool is closed.
func (wp *WorkerPool) Submit(task func() error) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return ErrPoolClosed
	}

	// Safe to send because we hold the lock and pool is not closed
	wp.taskQueue <- task
	return nil
}

// Close stops accepting tasks, waits for the queued ones and returns every
// task error joined.
func (wp *WorkerPool) Close() error {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()

	wp.errMu.Lock()
	defer wp.errMu.Unlock()
	return errors.Join(wp.errs...)
}

// ForEach calls fn for every index in [0, n) on a pool of workers. Once a
// call fails the context passed to the remaining calls is cancelled and
// indexes not yet started are skipped. The first error is returned; a
// panicking call is reported as a *PanicError.
func ForEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pool := NewWorkerPool(min(workers, n))

	for i := 0; i < n; i++ {
		err := pool.Submit(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := fn(ctx, i); err != nil {
				cancel(err)
				return err
			}
			return nil
		})
		if err != nil {
			break
		}
	}
	// Task errors already cancelled ctx; what Close adds beyond them is
	// panics.
	closeErr := pool.Close()
	if err := context.Cause(ctx); err != nil {
		return err
	}
	return closeErr
}
