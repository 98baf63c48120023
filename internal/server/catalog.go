package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
)

// CatalogReader is the read side of the catalog store.
type CatalogReader interface {
	ListArtists(ctx context.Context) ([]models.Artist, error)
	ListAlbums(ctx context.Context, artistID string) ([]models.Album, error)
	ListTracks(ctx context.Context, albumID string) ([]models.Track, error)
}

// CatalogHandler serves the anonymous catalog browse endpoints.
type CatalogHandler struct {
	catalog CatalogReader
	logger  *log.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog CatalogReader, logger *log.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

func (h *CatalogHandler) Register(r Router) {
	r.Handle(http.MethodGet, "/catalog/artists", http.HandlerFunc(h.artists))
	r.Handle(http.MethodGet, "/catalog/albums", http.HandlerFunc(h.albums))
	r.Handle(http.MethodGet, "/catalog/tracks", http.HandlerFunc(h.tracks))
}

func (h *CatalogHandler) artists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.catalog.ListArtists(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

func (h *CatalogHandler) albums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.catalog.ListAlbums(r.Context(), r.URL.Query().Get("artist_id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

func (h *CatalogHandler) tracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.catalog.ListTracks(r.Context(), r.URL.Query().Get("album_id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tracks)
}
