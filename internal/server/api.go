package server

import (
	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/search"
	"github.com/desertthunder/setlist/internal/visibility"
)

// APIOptions holds what the API router is assembled from.
type APIOptions struct {
	Catalog   *repositories.CatalogRepository
	Playlists *repositories.PlaylistRepository
	Verifier  identity.Verifier
	Logger    *log.Logger

	// CatalogSearcher overrides the catalog repository for search (e.g. a bleve index).
	CatalogSearcher search.CatalogSearcher
	SearchLimit     int
}

// NewAPI wires repositories, policy and search into a router with the standard middleware stack.
func NewAPI(opts APIOptions) *BasicRouter {
	catalogSearch := opts.CatalogSearcher
	if catalogSearch == nil {
		catalogSearch = opts.Catalog
	}

	router := NewBasicRouter()
	router.Use(RequestID, Logger(opts.Logger), Recover(opts.Logger))

	router.Handler(&HealthHandler{})
	router.Handler(NewCatalogHandler(opts.Catalog, opts.Logger))
	router.Handler(NewSearchHandler(search.NewAggregator(catalogSearch, opts.Playlists, opts.SearchLimit), opts.Verifier, opts.Logger))
	router.Handler(NewPlaylistHandler(opts.Playlists, visibility.NewExporter(opts.Playlists), opts.Verifier, opts.Logger))

	return router
}
