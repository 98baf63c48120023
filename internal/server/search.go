package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/models"
)

// Searcher runs a unified search for an optional caller.
type Searcher interface {
	Search(ctx context.Context, term string, caller *identity.Identity) (*models.SearchResults, error)
}

// SearchHandler serves GET /search.
type SearchHandler struct {
	searcher Searcher
	verifier identity.Verifier
	logger   *log.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(searcher Searcher, verifier identity.Verifier, logger *log.Logger) *SearchHandler {
	return &SearchHandler{searcher: searcher, verifier: verifier, logger: logger}
}

func (h *SearchHandler) Register(r Router) {
	r.Handle(http.MethodGet, "/search", OptionalAuth(h.verifier, h.logger)(http.HandlerFunc(h.search)))
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request) {
	results, err := h.searcher.Search(r.Context(), r.URL.Query().Get("q"), identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
