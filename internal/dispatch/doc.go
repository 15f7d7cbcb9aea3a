// Package dispatch starts hotpatch calls and publishes their completions.
//
// The Dispatcher resolves a call against the hotpatch registry and hands it
// to the transport; the Poller, driven once per host tick, moves finished
// calls from Pending to Ready in the slot table.
package dispatch
