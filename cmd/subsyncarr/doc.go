// Command subsyncarr is the operator CLI.
//
// `serve` runs the HTTP daemon. `scan`, `sync`, `probe`, `history`, and `deps`
// work directly against the configured directories and state database, so
// they are usable without a daemon. `status` and `unlock` talk to a running
// daemon over its API, and `sync --remote` hands the run to it instead of
// executing locally.
package main
