// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics, configuration control, and debug introspection layer
// for clientconnect.
//
// Provides concurrent-safe state handling primitives including:
//   - Snapshot config reads and listener-notified updates
//   - Metrics registry for call and socket counters
//   - Debug probe registration and state export
package control
