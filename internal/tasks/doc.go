// Package tasks runs long watchlist operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [Exporter.ExportWatchlist] : writes one watchlist in a single format
//     - csv: {slug}_movies.csv plus {slug}_metadata.json
//     - markdown: {slug}/README.md with an optional downloaded cover
//     - txt: {slug}_movies.txt
//     - json: {slug}.json
//
//  2. [Exporter.BulkExport] : exports every watchlist of the signed-in user
//     - fetches list contents through a rate limiter
//     - writes files from a bounded pool of workers
//     - collects per-list failures instead of aborting
//     - writes export_manifest.json summarizing the run
//
// # Progress Reporting
//
// Operations send [ProgressUpdate] values on an optional channel. Sends use select with default,
// so a slow or absent reader never blocks an export.
package tasks
