// Package hotpatch holds the registry of remotely configured API overrides
// and the rules for merging call-site overrides into a definition.
package hotpatch
