// Package api defines the wire-format types of the HTTP API and a small client
// for talking to a running daemon.
//
// # Endpoints
//
//	GET  /paths        scan of the configured roots
//	POST /sync         run engines over subtitles under the given paths
//	POST /unlock       force-release the run lock
//	GET  /api/status   daemon, run lock, and dependency state
//	GET  /api/runs     recent run history
//
// POST /sync takes {"engine": [...], "path": [...]} and reads per-run
// overrides from the AUDIO_TRACK_LANGUAGE, FFSUBSYNC_ARGS, AUTOSUBSYNC_ARGS,
// ALASS_ARGS, and OVERWRITE request headers. Errors are returned as
// {"error": "..."} with 400 for validation problems, 409 while another run
// holds the lock, and 500 otherwise.
//
// DTOs use camelCase JSON tags. Durations are rendered both as Go duration
// strings and as seconds so shell scripts do not have to parse either.
package api
