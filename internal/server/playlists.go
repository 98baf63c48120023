package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/models"
)

// publicListLimit caps GET /playlists/public.
const publicListLimit = 100

// PlaylistStore is the owner-scoped playlist repository.
type PlaylistStore interface {
	ListOwned(ctx context.Context, ownerID string) ([]models.Playlist, error)
	ListPublic(ctx context.Context, limit int) ([]models.Playlist, error)
	Create(ctx context.Context, ownerID, name string) (*models.Playlist, error)
	Update(ctx context.Context, ownerID, id string, patch models.PlaylistPatch) (*models.Playlist, error)
	SetPublic(ctx context.Context, ownerID, id string, isPublic bool) (*models.Playlist, error)
	Delete(ctx context.Context, ownerID, id string) error
	Detail(ctx context.Context, ownerID, id string) (*models.PlaylistDetail, error)
	AddTrack(ctx context.Context, ownerID, id, trackID string, position *int) (*models.PlaylistTrack, error)
	RemoveTrack(ctx context.Context, ownerID, id, trackID string) error
}

// Exporter builds export documents subject to the visibility policy.
type Exporter interface {
	Export(ctx context.Context, id string, caller *identity.Identity) (*models.ExportDocument, error)
}

// PlaylistHandler serves the public listing, export, and the caller's own playlists.
type PlaylistHandler struct {
	store    PlaylistStore
	exporter Exporter
	verifier identity.Verifier
	logger   *log.Logger
}

// NewPlaylistHandler creates a PlaylistHandler.
func NewPlaylistHandler(store PlaylistStore, exporter Exporter, verifier identity.Verifier, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{store: store, exporter: exporter, verifier: verifier, logger: logger}
}

func (h *PlaylistHandler) Register(r Router) {
	optional := OptionalAuth(h.verifier, h.logger)
	required := RequireAuth(h.verifier, h.logger)

	r.Handle(http.MethodGet, "/playlists/public", http.HandlerFunc(h.listPublic))
	r.Handle(http.MethodGet, "/playlists/{id}/export", optional(http.HandlerFunc(h.export)))

	r.Handle(http.MethodGet, "/playlists/me/playlists", required(http.HandlerFunc(h.listMine)))
	r.Handle(http.MethodPost, "/playlists/me/playlists", required(http.HandlerFunc(h.create)))
	r.Handle(http.MethodPatch, "/playlists/me/playlists/{id}", required(http.HandlerFunc(h.update)))
	r.Handle(http.MethodDelete, "/playlists/me/playlists/{id}", required(http.HandlerFunc(h.delete)))
	r.Handle(http.MethodGet, "/playlists/me/playlists/{id}/detail", required(http.HandlerFunc(h.detail)))
	r.Handle(http.MethodPost, "/playlists/me/playlists/{id}/tracks", required(http.HandlerFunc(h.addTrack)))
	r.Handle(http.MethodDelete, "/playlists/me/playlists/{id}/tracks/{track_id}", required(http.HandlerFunc(h.removeTrack)))
	r.Handle(http.MethodPost, "/playlists/me/playlists/{id}/publish", required(http.HandlerFunc(h.publish)))
}

func (h *PlaylistHandler) listPublic(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.store.ListPublic(r.Context(), publicListLimit)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *PlaylistHandler) export(w http.ResponseWriter, r *http.Request) {
	format, err := formatter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	doc, err := h.exporter.Export(r.Context(), r.PathValue("id"), identity.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	attachment, err := formatter.Render(doc, format)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", attachment.ContentType)
	w.Header().Set("Content-Disposition", attachment.ContentDisposition())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(attachment.Body)
}

func (h *PlaylistHandler) listMine(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.store.ListOwned(r.Context(), identity.SubjectFromContext(r.Context()))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

type createPlaylistRequest struct {
	Name *string `json:"name"`
}

func (h *PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, r, h.logger, NewValidationError("name", "is required"))
		return
	}

	playlist, err := h.store.Create(r.Context(), identity.SubjectFromContext(r.Context()), *req.Name)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, playlist)
}

type updatePlaylistRequest struct {
	Name     *string `json:"name"`
	IsPublic *bool   `json:"is_public"`
}

func (h *PlaylistHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updatePlaylistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, r, h.logger, NewValidationError("name", "must not be empty"))
		return
	}

	patch := models.PlaylistPatch{Name: req.Name, IsPublic: req.IsPublic}
	playlist, err := h.store.Update(r.Context(), identity.SubjectFromContext(r.Context()), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}

func (h *PlaylistHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), identity.SubjectFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlaylistHandler) detail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.store.Detail(r.Context(), identity.SubjectFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type addTrackRequest struct {
	TrackID  *string `json:"track_id"`
	Position *int    `json:"position"`
}

func (h *PlaylistHandler) addTrack(w http.ResponseWriter, r *http.Request) {
	var req addTrackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.TrackID == nil || strings.TrimSpace(*req.TrackID) == "" {
		writeError(w, r, h.logger, NewValidationError("track_id", "is required"))
		return
	}

	membership, err := h.store.AddTrack(r.Context(), identity.SubjectFromContext(r.Context()), r.PathValue("id"), *req.TrackID, req.Position)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, membership)
}

func (h *PlaylistHandler) removeTrack(w http.ResponseWriter, r *http.Request) {
	err := h.store.RemoveTrack(r.Context(), identity.SubjectFromContext(r.Context()), r.PathValue("id"), r.PathValue("track_id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type publishRequest struct {
	IsPublic *bool `json:"is_public"`
}

func (h *PlaylistHandler) publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	playlist, err := h.store.SetPublic(r.Context(), identity.SubjectFromContext(r.Context()), r.PathValue("id"), isPublic)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}
