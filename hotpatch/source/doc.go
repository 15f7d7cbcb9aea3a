// Package source loads hotpatch definitions from configuration backends: a
// JSON document on disk or in memory, or a Redis hash. Loading happens once
// before the runtime starts; the resulting registry is never updated.
package source
