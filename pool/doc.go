// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer pooling for call results.
// Result bodies are copied into size-classed buffers when a call completes and
// handed back to the pool when the host releases the result.
package pool
