// Package api
// Author: momentics
//
// Executor contract for parallel task dispatch.

package api

// Executor abstracts parallel task execution.
type Executor interface {
	// Submit schedules task for execution.
	Submit(task func()) error

	// NumWorkers returns current number of active worker routines.
	NumWorkers() int

	// Close stops the workers.
	Close()
}
