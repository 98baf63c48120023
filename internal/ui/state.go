package ui

import (
	"strings"

	"github.com/desertthunder/setlist/internal/models"
)

// ItemKind tags an entry of the flattened result list.
type ItemKind int

const (
	TrackItem ItemKind = iota
	PlaylistItem
	ArtistItem
)

func (k ItemKind) String() string {
	switch k {
	case TrackItem:
		return "track"
	case PlaylistItem:
		return "playlist"
	case ArtistItem:
		return "artist"
	default:
		return ""
	}
}

// Item is one addressable search result.
type Item struct {
	Kind     ItemKind
	ID       string
	Label    string
	Mine     bool // playlist owned by the caller
	Track    *models.Track
	Playlist *models.Playlist
	Artist   *models.Artist
}

// Flatten orders results as tracks, playlists (the caller's first, then public ones not
// already listed), artists.
func Flatten(r *models.SearchResults) []Item {
	if r == nil {
		return []Item{}
	}

	items := make([]Item, 0, len(r.Tracks)+len(r.PlaylistsMine)+len(r.PlaylistsPublic)+len(r.Artists))
	for i := range r.Tracks {
		t := r.Tracks[i]
		items = append(items, Item{Kind: TrackItem, ID: t.ID, Label: t.Title, Track: &t})
	}

	seen := make(map[string]bool, len(r.PlaylistsMine))
	for i := range r.PlaylistsMine {
		p := r.PlaylistsMine[i]
		seen[p.ID] = true
		items = append(items, Item{Kind: PlaylistItem, ID: p.ID, Label: p.Name, Mine: true, Playlist: &p})
	}
	for i := range r.PlaylistsPublic {
		p := r.PlaylistsPublic[i]
		if seen[p.ID] {
			continue
		}
		items = append(items, Item{Kind: PlaylistItem, ID: p.ID, Label: p.Name, Playlist: &p})
	}

	for i := range r.Artists {
		a := r.Artists[i]
		items = append(items, Item{Kind: ArtistItem, ID: a.ID, Label: a.Name, Artist: &a})
	}
	return items
}

// SearchState is the query, the rendered results, the active index and the token of the
// latest dispatched query. Active is -1 when there is nothing to select.
type SearchState struct {
	Query   string
	Results []Item
	Active  int
	Token   int
}

// NewSearchState returns an empty state.
func NewSearchState() SearchState {
	return SearchState{Results: []Item{}, Active: -1}
}

// SetQuery records an edit and returns the token its debounce tick and request must carry.
func (s *SearchState) SetQuery(q string) int {
	s.Query = q
	s.Token++
	return s.Token
}

// Blank reports whether the query has nothing to search for.
func (s *SearchState) Blank() bool {
	return strings.TrimSpace(s.Query) == ""
}

// Current reports whether token belongs to the latest edit.
func (s *SearchState) Current(token int) bool {
	return token == s.Token
}

// Accept installs results for token. Results for a superseded token are dropped and
// Accept returns false.
func (s *SearchState) Accept(token int, results *models.SearchResults) bool {
	if !s.Current(token) {
		return false
	}
	s.Results = Flatten(results)
	s.Active = -1
	if len(s.Results) > 0 {
		s.Active = 0
	}
	return true
}

// Clear empties the result list. In-flight responses are invalidated.
func (s *SearchState) Clear() {
	s.Results = []Item{}
	s.Active = -1
	s.Token++
}

// Next moves the active index down, wrapping to the top.
func (s *SearchState) Next() {
	if n := len(s.Results); n > 0 {
		s.Active = (s.Active + 1) % n
	}
}

// Prev moves the active index up, wrapping to the bottom.
func (s *SearchState) Prev() {
	if n := len(s.Results); n > 0 {
		s.Active = (s.Active - 1 + n) % n
	}
}

// Selected returns the active item.
func (s *SearchState) Selected() (Item, bool) {
	if s.Active < 0 || s.Active >= len(s.Results) {
		return Item{}, false
	}
	return s.Results[s.Active], true
}
