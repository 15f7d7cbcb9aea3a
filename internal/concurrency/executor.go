// File: internal/concurrency/executor.go
// Package concurrency implements the worker pool that runs transport calls.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across worker goroutines, using per-worker
// lock-free queues and a global queue fallback. The lockFreeQueue type is
// defined in lock_free_queue.go.

package concurrency

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/momentics/clientconnect/api"
)

var (
	// ErrExecutorClosed is returned by Submit after Close.
	ErrExecutorClosed = errors.New("executor is closed")
	// ErrExecutorFull is returned when every queue is at capacity.
	ErrExecutorFull = errors.New("executor queues are full")
)

// TaskFunc is a unit of work to execute.
type TaskFunc func()

// PanicHandler receives values recovered from panicking tasks.
type PanicHandler func(recovered any)

// Executor manages a pool of worker goroutines.
type Executor struct {
	globalQueue chan TaskFunc              // fallback queue for tasks when local queues are full
	localQueues []*lockFreeQueue[TaskFunc] // per-worker single-producer queues
	workers     []*worker
	closeCh     chan struct{}
	closed      atomic.Bool
	submitMu    sync.Mutex // serializes producers onto the single-producer queues
	wg          sync.WaitGroup
	onPanic     PanicHandler

	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	panics         atomic.Int64
	wakeups        atomic.Int64
}

var _ api.Executor = (*Executor)(nil)

// NewExecutor creates an Executor with numWorkers workers, each owning a local
// queue of queueSize entries. numWorkers <= 0 defaults to runtime.NumCPU().
func NewExecutor(numWorkers, queueSize int, onPanic PanicHandler) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 1024
	}
	e := &Executor{
		globalQueue: make(chan TaskFunc, numWorkers*4),
		closeCh:     make(chan struct{}),
		onPanic:     onPanic,
	}
	e.localQueues = make([]*lockFreeQueue[TaskFunc], numWorkers)
	e.workers = make([]*worker, numWorkers)
	for i := 0; i < numWorkers; i++ {
		e.localQueues[i] = NewLockFreeQueue[TaskFunc](queueSize)
		e.workers[i] = &worker{
			id:         i,
			executor:   e,
			localQueue: e.localQueues[i],
			notify:     make(chan struct{}, 1),
		}
	}
	e.wg.Add(numWorkers)
	for _, w := range e.workers {
		go w.run()
	}
	return e
}

// Submit enqueues a task. It never blocks.
func (e *Executor) Submit(task func()) error {
	if e.closed.Load() {
		return ErrExecutorClosed
	}
	e.submitMu.Lock()
	defer e.submitMu.Unlock()

	n := e.totalTasks.Add(1)
	idx := int(n % int64(len(e.localQueues)))
	if e.localQueues[idx].Enqueue(task) {
		e.workers[idx].wake()
		return nil
	}
	select {
	case e.globalQueue <- task:
		return nil
	case <-e.closeCh:
		e.totalTasks.Add(-1)
		return ErrExecutorClosed
	default:
		e.totalTasks.Add(-1)
		return ErrExecutorFull
	}
}

// NumWorkers returns the number of workers.
func (e *Executor) NumWorkers() int {
	return len(e.workers)
}

// Close stops the workers and waits for them to exit. Queued tasks that have
// not started are dropped.
func (e *Executor) Close() {
	if e.closed.CompareAndSwap(false, true) {
		close(e.closeCh)
		e.wg.Wait()
	}
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	total := e.totalTasks.Load()
	done := e.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": done,
		"pending_tasks":   total - done,
		"panics":          e.panics.Load(),
		"wakeups":         e.wakeups.Load(),
		"num_workers":     int64(e.NumWorkers()),
	}
}

type worker struct {
	id         int
	executor   *Executor
	localQueue *lockFreeQueue[TaskFunc]
	notify     chan struct{} // signalled after a task lands in localQueue
}

func (w *worker) wake() {
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *worker) run() {
	defer w.executor.wg.Done()
	for {
		select {
		case <-w.executor.closeCh:
			return
		default:
		}
		if task, ok := w.localQueue.Dequeue(); ok {
			w.executeTask(task)
			continue
		}
		select {
		case <-w.notify:
			w.executor.wakeups.Add(1)
		case task := <-w.executor.globalQueue:
			w.executor.wakeups.Add(1)
			w.executeTask(task)
		case <-w.executor.closeCh:
			return
		}
	}
}

// executeTask runs the task, recovering from panics to keep the worker alive.
func (w *worker) executeTask(task TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			w.executor.panics.Add(1)
			if w.executor.onPanic != nil {
				w.executor.onPanic(r)
			}
		}
		w.executor.completedTasks.Add(1)
	}()
	task()
}
