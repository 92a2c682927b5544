// Package tasks runs batch catalog lookups with real-time progress reporting.
//
// # Batch Lookups
//
// [BatchLookup] fetches many ids of one resource type through any [services.Fetcher]:
//   - A single feeder hands ids to a fixed worker pool after waiting on a shared [rate.Limiter]
//   - Each worker calls Fetch and optionally records the outcome through a [Recorder]
//   - Results land at the index of their id, so completion order never matters
//
// Individual failures are reported per id and do not stop the batch. Nothing is retried.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
package tasks
