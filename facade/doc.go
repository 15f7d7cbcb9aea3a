// Package facade provides ClientConnect, the single entry point of the
// runtime. New builds every component from a Config, Tick drives call
// completion from the host's frame loop and Shutdown tears everything down.
package facade
