// Package services defines shared utilities consumed by the scanner, engine
// adapters, the run orchestrator, and the HTTP API.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, engine names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that separate validation,
//     discovery, lock contention, and internal failures so callers can map
//     them to whole-run outcomes.
package services
