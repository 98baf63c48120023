// package services defines [PlaylistService], the client view of the setlist HTTP API
package services

import (
	"context"

	"github.com/desertthunder/setlist/internal/models"
)

// PlaylistService is what the terminal client and batch tasks need from the API.
//
// Errors wrap the shared sentinels (ErrUnauthorized, ErrNotFound, ErrConflict...) so
// callers can branch with errors.Is.
type PlaylistService interface {
	// Search runs a unified search as the configured caller.
	Search(ctx context.Context, term string) (*models.SearchResults, error)

	// MyPlaylists lists the caller's playlists, most recently updated first.
	MyPlaylists(ctx context.Context) ([]models.Playlist, error)

	// PublicPlaylists lists public playlists, newest first.
	PublicPlaylists(ctx context.Context) ([]models.Playlist, error)

	// CreatePlaylist creates a private playlist owned by the caller.
	CreatePlaylist(ctx context.Context, name string) (*models.Playlist, error)

	// UpdatePlaylist applies a rename and/or visibility change.
	UpdatePlaylist(ctx context.Context, id string, patch models.PlaylistPatch) (*models.Playlist, error)

	// Publish sets the visibility flag.
	Publish(ctx context.Context, id string, isPublic bool) (*models.Playlist, error)

	// DeletePlaylist removes an owned playlist.
	DeletePlaylist(ctx context.Context, id string) error

	// PlaylistDetail returns an owned playlist with its ordered tracks.
	PlaylistDetail(ctx context.Context, id string) (*models.PlaylistDetail, error)

	// AddTrack adds a track to an owned playlist.
	AddTrack(ctx context.Context, id, trackID string, position *int) (*models.PlaylistTrack, error)

	// RemoveTrack removes a track from an owned playlist.
	RemoveTrack(ctx context.Context, id, trackID string) error

	// Export fetches the JSON export document of any playlist the caller may read.
	Export(ctx context.Context, id string) (*models.ExportDocument, error)
}

var _ PlaylistService = (*APIService)(nil)
