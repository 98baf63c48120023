package models

import (
	"fmt"
	"strings"
	"time"
)

// Artist is a catalog artist.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album is a catalog album belonging to exactly one [Artist].
type Album struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Year     *int   `json:"year"`
	ArtistID string `json:"artist_id"`
}

// Track is a catalog track belonging to exactly one [Album].
type Track struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	AlbumID         string `json:"album_id"`
}

// Playlist is a named, user-owned collection of tracks.
type Playlist struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OwnedBy reports whether subject owns the playlist.
func (p Playlist) OwnedBy(subject string) bool {
	return subject != "" && p.OwnerID == subject
}

// PlaylistPatch carries the optional fields of a playlist update.
type PlaylistPatch struct {
	Name     *string
	IsPublic *bool
}

// Empty reports whether the patch changes nothing.
func (p PlaylistPatch) Empty() bool {
	return p.Name == nil && p.IsPublic == nil
}

// PlaylistTrack is a single membership row.
//
// Position is optional; rows without one sort after positioned rows.
type PlaylistTrack struct {
	PlaylistID string    `json:"playlist_id"`
	TrackID    string    `json:"track_id"`
	Position   *int      `json:"position"`
	AddedAt    time.Time `json:"added_at"`
}

// OrderedTrack is a [Track] as it appears inside a playlist.
type OrderedTrack struct {
	Track
	Position *int      `json:"position"`
	AddedAt  time.Time `json:"added_at"`
}

// PlaylistDetail is a playlist with its tracks in display order.
type PlaylistDetail struct {
	Playlist
	Tracks []OrderedTrack `json:"tracks"`
}

// ExportTrack is one entry of an [ExportDocument].
type ExportTrack struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
}

// ExportDocument is the portable serialization of a playlist's track list.
//
// Field order is part of the format.
type ExportDocument struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	IsPublic bool          `json:"is_public"`
	Tracks   []ExportTrack `json:"tracks"`
}

// TrackIDs returns the document's track ids in order.
func (d ExportDocument) TrackIDs() []string {
	ids := make([]string, 0, len(d.Tracks))
	for _, t := range d.Tracks {
		ids = append(ids, t.ID)
	}
	return ids
}

// TotalSeconds sums track durations.
func (d ExportDocument) TotalSeconds() int {
	total := 0
	for _, t := range d.Tracks {
		total += t.DurationSeconds
	}
	return total
}

// Validate checks the fields required to import a document.
func (d ExportDocument) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("export document is missing an id")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("export document is missing a name")
	}
	for i, t := range d.Tracks {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("export track %d is missing an id", i)
		}
	}
	return nil
}

// SearchResults is the four-category result of a unified search.
type SearchResults struct {
	Artists         []Artist   `json:"artists"`
	Tracks          []Track    `json:"tracks"`
	PlaylistsPublic []Playlist `json:"playlists_public"`
	PlaylistsMine   []Playlist `json:"playlists_me"`
}

// EmptySearchResults returns results with four empty, non-nil lists.
func EmptySearchResults() *SearchResults {
	return &SearchResults{
		Artists:         []Artist{},
		Tracks:          []Track{},
		PlaylistsPublic: []Playlist{},
		PlaylistsMine:   []Playlist{},
	}
}

// ValidatePlaylistName trims name and rejects empty values.
func ValidatePlaylistName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("name is required")
	}
	return trimmed, nil
}

// Normalize replaces nil categories with empty lists so they encode as [].
func (r *SearchResults) Normalize() *SearchResults {
	if r.Artists == nil {
		r.Artists = []Artist{}
	}
	if r.Tracks == nil {
		r.Tracks = []Track{}
	}
	if r.PlaylistsPublic == nil {
		r.PlaylistsPublic = []Playlist{}
	}
	if r.PlaylistsMine == nil {
		r.PlaylistsMine = []Playlist{}
	}
	return r
}
