// Package syncrun coordinates whole synchronization runs.
//
// An Orchestrator owns the single process-wide RunLock. A run first takes the
// lock without blocking (a held lock yields *services.LockBusyError carrying
// how long it has been held), then discovers subtitles, then hands them to the
// Scheduler. The Scheduler processes files in consecutive chunks of
// max_concurrent; every file×engine invocation in a chunk runs concurrently
// and the whole chunk settles before the next one starts. Each settled chunk
// is folded into the run's Report by Merge.
//
// Runs are detached from caller cancellation: once started, every engine
// process runs to completion. The lock is always released when the run ends,
// including on panic, and a hold older than the configured timeout is taken
// over by the next TryAcquire.
package syncrun
