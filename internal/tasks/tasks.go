// package tasks implements the multi-step playlist operations driven through the API,
// and the local catalog import.
package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

// TrackFailure records a track that could not be added.
type TrackFailure struct {
	TrackID string
	Err     error
}

// CopyResult reports a best-effort batch add. Nothing is rolled back.
type CopyResult struct {
	Target         *models.Playlist // Playlist the tracks were added to
	Added          []string         // Track ids newly added
	AlreadyPresent []string         // Track ids the target already had
	Failed         []TrackFailure   // Per-track failures that did not stop the batch
	Aborted        bool             // True when an auth or not-found error stopped the batch
}

// Processed is the number of tracks that got an outcome.
func (r *CopyResult) Processed() int {
	return len(r.Added) + len(r.AlreadyPresent) + len(r.Failed)
}

// CopyTarget selects an existing playlist by id or, when PlaylistID is empty, a new one named NewName.
type CopyTarget struct {
	PlaylistID string
	NewName    string
}

// Engine runs client-side playlist tasks against a [services.PlaylistService].
type Engine struct {
	svc     services.PlaylistService
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewEngine creates an Engine. ratePerSecond <= 0 disables throttling of per-track calls.
func NewEngine(svc services.PlaylistService, ratePerSecond float64, logger *log.Logger) *Engine {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &Engine{
		svc:     svc,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// abortsBatch reports errors that make further adds to the same target pointless.
func abortsBatch(err error) bool {
	return errors.Is(err, shared.ErrUnauthorized) ||
		errors.Is(err, shared.ErrForbidden) ||
		errors.Is(err, shared.ErrNotFound) ||
		errors.Is(err, shared.ErrServiceUnavailable)
}

// AddToNew creates a playlist named name and adds trackID to it.
//
// When the add fails the created playlist is still returned with the error, so the
// caller can show it.
func (e *Engine) AddToNew(ctx context.Context, name, trackID string) (*models.Playlist, error) {
	playlist, err := e.svc.CreatePlaylist(ctx, name)
	if err != nil {
		return nil, err
	}

	if _, err := e.svc.AddTrack(ctx, playlist.ID, trackID, nil); err != nil {
		return playlist, fmt.Errorf("playlist %q created but track was not added: %w", playlist.Name, err)
	}
	return playlist, nil
}

// CopyTracks adds trackIDs to target one at a time, in order.
//
// A conflict counts as already present; other per-track errors are recorded and the batch
// continues. Auth and not-found errors stop the batch and return the partial result with the error.
func (e *Engine) CopyTracks(ctx context.Context, progress chan<- ProgressUpdate, target *models.Playlist, trackIDs []string) (*CopyResult, error) {
	result := &CopyResult{
		Target:         target,
		Added:          []string{},
		AlreadyPresent: []string{},
		Failed:         []TrackFailure{},
	}
	total := len(trackIDs)

	for i, trackID := range trackIDs {
		if err := e.limiter.Wait(ctx); err != nil {
			result.Aborted = true
			return result, err
		}

		_, err := e.svc.AddTrack(ctx, target.ID, trackID, nil)
		switch {
		case err == nil:
			result.Added = append(result.Added, trackID)
			sendProgress(progress, copyTrackUpdate(i+1, total, trackID, "added"))
		case errors.Is(err, shared.ErrConflict):
			result.AlreadyPresent = append(result.AlreadyPresent, trackID)
			sendProgress(progress, copyTrackUpdate(i+1, total, trackID, "already present"))
		case abortsBatch(err):
			result.Aborted = true
			e.logger.Warn("copy aborted", "target", target.ID, "track", trackID, "err", err)
			return result, err
		default:
			result.Failed = append(result.Failed, TrackFailure{TrackID: trackID, Err: err})
			sendProgress(progress, copyTrackUpdate(i+1, total, trackID, "failed"))
			e.logger.Debug("track copy failed", "target", target.ID, "track", trackID, "err", err)
		}
	}

	return result, nil
}

// CopyToNew creates a playlist named name and copies trackIDs into it.
func (e *Engine) CopyToNew(ctx context.Context, progress chan<- ProgressUpdate, name string, trackIDs []string) (*CopyResult, error) {
	playlist, err := e.svc.CreatePlaylist(ctx, name)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, createPlaylistUpdate(playlist))
	return e.CopyTracks(ctx, progress, playlist, trackIDs)
}

// ImportDocument copies an export document's tracks into target.
func (e *Engine) ImportDocument(ctx context.Context, progress chan<- ProgressUpdate, doc *models.ExportDocument, target CopyTarget) (*CopyResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if target.PlaylistID == "" {
		name := target.NewName
		if name == "" {
			name = doc.Name
		}
		return e.CopyToNew(ctx, progress, name, doc.TrackIDs())
	}

	detail, err := e.svc.PlaylistDetail(ctx, target.PlaylistID)
	if err != nil {
		return nil, err
	}
	return e.CopyTracks(ctx, progress, &detail.Playlist, doc.TrackIDs())
}

// CopyPlaylist copies the tracks of any playlist the caller can read into target.
func (e *Engine) CopyPlaylist(ctx context.Context, progress chan<- ProgressUpdate, sourceID string, target CopyTarget) (*CopyResult, error) {
	sendProgress(progress, fetchSourceUpdate(sourceID))

	doc, err := e.svc.Export(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return e.ImportDocument(ctx, progress, doc, target)
}
