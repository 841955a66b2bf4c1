// Package notifications delivers run completion alerts.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when no topic is set. Delivery failures
// are returned to the caller, which logs them; a failed notification never
// changes the outcome of a run.
package notifications
