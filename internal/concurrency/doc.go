// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Concurrency primitives for clientconnect transports: a fixed worker pool
// fed by per-worker lock-free queues with a shared fallback queue. The core
// runtime itself is single-threaded; only transports run work here.
package concurrency
