// Package repositories implements SQLite persistence for the catalog and for playlists.
//
// Key Implementations:
//   - [CatalogRepository] : artists, albums and tracks; read-only to the playlist engine, written by catalog import
//   - [PlaylistRepository] : playlists and their membership rows, every mutation scoped to (id, owner)
//
// Ownership scoping makes a playlist owned by someone else indistinguishable from a missing one:
// both produce [shared.ErrNotFound].
//
// Sequence numbers provide stable ordering independent of UUIDs and timestamps. The [NextSequence]
// function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
