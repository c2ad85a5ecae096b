// Package tasks runs long catalog operations with real-time progress reporting.
//
// # Bulk Import
//
// [Importer.Import] adds a list of titles to one user's catalog:
//   - A worker pool looks up each title through a [services.MetadataService], throttled by a token bucket
//   - Each descriptor is linked with [catalog.Manager.AddMovieToUser], which serializes writes in the store
//   - Titles fail independently; the [ImportResult] records an [ImportOutcome] per title plus totals
//
// # Progress Reporting
//
// Progress is sent on an optional channel as [ProgressUpdate] values. Sends use select with default so a slow or
// absent reader never blocks the import.
package tasks
