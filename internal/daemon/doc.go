// Package daemon runs the long-lived subsyncarr service.
//
// It wires configuration, the sync orchestrator, and run history into a
// single lifecycle with flock-based locking to prevent multiple instances on
// the same state directory, and serves the HTTP API (see package api for the
// endpoint list). The daemon never starts runs on its own; every run is
// requested through POST /sync.
//
// Keep orchestration logic out of here: run semantics live in syncrun while
// the daemon focuses on startup, shutdown, and request translation.
package daemon
