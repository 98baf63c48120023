// Package search fans a single query out over artists, tracks, public playlists and the caller's
// own playlists, returning one authorization-aware result.
package search

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/models"
)

// DefaultLimit caps each result category.
const DefaultLimit = 20

// CatalogSearcher matches a term against catalog display fields.
//
// Implementations order artists by name and tracks by title, ascending and case-insensitive.
type CatalogSearcher interface {
	SearchArtists(ctx context.Context, term string, limit int) ([]models.Artist, error)
	SearchTracks(ctx context.Context, term string, limit int) ([]models.Track, error)
}

// PlaylistSearcher matches a term against playlist names, most recently updated first.
type PlaylistSearcher interface {
	SearchPublic(ctx context.Context, term string, limit int) ([]models.Playlist, error)
	SearchOwned(ctx context.Context, ownerID, term string, limit int) ([]models.Playlist, error)
}

// Aggregator runs the four sub-searches of a unified search.
type Aggregator struct {
	catalog   CatalogSearcher
	playlists PlaylistSearcher
	limit     int
}

// NewAggregator creates an Aggregator; limit <= 0 uses [DefaultLimit].
func NewAggregator(catalog CatalogSearcher, playlists PlaylistSearcher, limit int) *Aggregator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Aggregator{catalog: catalog, playlists: playlists, limit: limit}
}

// Search matches term as a case-insensitive substring in every category.
//
// A blank term returns four empty lists without touching the stores. PlaylistsMine is only
// populated for an identified caller. The first failing sub-search fails the whole call.
func (a *Aggregator) Search(ctx context.Context, term string, caller *identity.Identity) (*models.SearchResults, error) {
	results := models.EmptySearchResults()

	term = strings.TrimSpace(term)
	if term == "" {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		artists, err := a.catalog.SearchArtists(ctx, term, a.limit)
		results.Artists = artists
		return err
	})

	g.Go(func() error {
		tracks, err := a.catalog.SearchTracks(ctx, term, a.limit)
		results.Tracks = tracks
		return err
	})

	g.Go(func() error {
		public, err := a.playlists.SearchPublic(ctx, term, a.limit)
		results.PlaylistsPublic = public
		return err
	})

	if caller != nil && caller.Subject != "" {
		g.Go(func() error {
			mine, err := a.playlists.SearchOwned(ctx, caller.Subject, term, a.limit)
			results.PlaylistsMine = mine
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results.Normalize(), nil
}
