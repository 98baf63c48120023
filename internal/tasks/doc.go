// Package tasks runs multi-step operations with real-time progress reporting.
//
// # Playlist Operations
//
// [Engine] drives a [services.PlaylistService]:
//
//  1. [Engine.AddToNew] : create a playlist, then add one track. If the add fails the
//     created playlist is returned alongside the error.
//  2. [Engine.CopyTracks] : sequential, rate-limited adds into an existing playlist.
//     Conflicts count as already present, other per-track errors are recorded, and
//     auth or not-found errors abort the batch. Nothing is rolled back.
//  3. [Engine.CopyPlaylist] / [Engine.ImportDocument] : copy an export document (fetched
//     from the API or read from disk) into an existing or new playlist.
//  4. [Engine.BulkExport] : write export files for many playlists with a worker pool and
//     a manifest.
//
// # Catalog Import
//
// [ImportCatalog] walks a directory of audio files, reads tags with dhowden/tag, measures
// MP3 durations with go-mp3 and upserts artists, albums and tracks through a [CatalogWriter].
//
// # Progress Reporting
//
// All operations accept an optional chan<- [ProgressUpdate]. Sends never block: a full or
// nil channel drops the update.
package tasks
