// Package models defines the domain entities of the setlist catalog and playlist service.
//
// The package contains three groups of types:
//
// 1. Catalog: the shared, read-only reference data
//   - [Artist], [Album], [Track]
//
// 2. Playlists: user-owned collections and their membership rows
//   - [Playlist] : owned by exactly one subject, private until published
//   - [PlaylistTrack] : one (playlist, track) membership with an optional position
//   - [PlaylistDetail] / [OrderedTrack] : a playlist with its tracks in display order
//
// 3. Documents exchanged over the wire
//   - [ExportDocument] : the portable export of a playlist's track list
//   - [SearchResults] : the four-category result of a unified search
package models
