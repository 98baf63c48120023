package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const playlistColumns = `id, owner_id, name, is_public, created_at, updated_at`

// PlaylistRepository persists playlists and their membership rows.
//
// Every mutation filters on (id, owner_id) together so that a playlist owned by someone
// else reports [shared.ErrNotFound] exactly like a missing one.
type PlaylistRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// ListOwned returns the owner's playlists, most recently updated first
func (r *PlaylistRepository) ListOwned(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE owner_id = ?
		ORDER BY updated_at DESC, sequence DESC
	`

	return r.queryPlaylists(ctx, query, ownerID)
}

// ListPublic returns published playlists of any owner, most recently updated first
func (r *PlaylistRepository) ListPublic(ctx context.Context, limit int) ([]models.Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE is_public = 1
		ORDER BY updated_at DESC, sequence DESC
		LIMIT ?
	`

	return r.queryPlaylists(ctx, query, limit)
}

// SearchPublic matches term as a case-insensitive substring of published playlist names
func (r *PlaylistRepository) SearchPublic(ctx context.Context, term string, limit int) ([]models.Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE is_public = 1 AND fold(name) LIKE ? ESCAPE '\'
		ORDER BY updated_at DESC, sequence DESC
		LIMIT ?
	`

	return r.queryPlaylists(ctx, query, likePattern(term), limit)
}

// SearchOwned matches term as a case-insensitive substring of the owner's playlist names
func (r *PlaylistRepository) SearchOwned(ctx context.Context, ownerID, term string, limit int) ([]models.Playlist, error) {
	query := `
		SELECT ` + playlistColumns + `
		FROM playlists
		WHERE owner_id = ? AND fold(name) LIKE ? ESCAPE '\'
		ORDER BY updated_at DESC, sequence DESC
		LIMIT ?
	`

	return r.queryPlaylists(ctx, query, ownerID, likePattern(term), limit)
}

// Create inserts a new private playlist owned by ownerID
func (r *PlaylistRepository) Create(ctx context.Context, ownerID, name string) (*models.Playlist, error) {
	name, err := models.ValidatePlaylistName(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner is required", shared.ErrUnauthorized)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := r.now()
	playlist := &models.Playlist{
		ID:        shared.GenerateID(),
		OwnerID:   ownerID,
		Name:      name,
		IsPublic:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO playlists (id, sequence, owner_id, name, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		playlist.ID,
		sequence,
		playlist.OwnerID,
		playlist.Name,
		playlist.IsPublic,
		playlist.CreatedAt,
		playlist.UpdatedAt,
	)
	if err != nil {
		if classifyConstraint(err) == constraintCheck {
			return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		return nil, fmt.Errorf("failed to insert playlist: %w", err)
	}

	return playlist, nil
}

// Get retrieves a playlist by ID without any ownership filter.
//
// Only the visibility policy should call this; everything else goes through owner-scoped methods.
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ?`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

// GetOwned retrieves a playlist by ID when it belongs to ownerID
func (r *PlaylistRepository) GetOwned(ctx context.Context, ownerID, id string) (*models.Playlist, error) {
	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND owner_id = ?`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id, ownerID), id)
}

// Rename changes the name of an owned playlist
func (r *PlaylistRepository) Rename(ctx context.Context, ownerID, id, name string) (*models.Playlist, error) {
	return r.Update(ctx, ownerID, id, models.PlaylistPatch{Name: &name})
}

// SetPublic publishes or unpublishes an owned playlist.
//
// Setting the current value succeeds without writing.
func (r *PlaylistRepository) SetPublic(ctx context.Context, ownerID, id string, isPublic bool) (*models.Playlist, error) {
	return r.Update(ctx, ownerID, id, models.PlaylistPatch{IsPublic: &isPublic})
}

// Update applies the fields of patch that differ from the stored playlist and refreshes updated_at.
//
// A patch with no differing fields (including an empty one) returns the playlist unchanged.
func (r *PlaylistRepository) Update(ctx context.Context, ownerID, id string, patch models.PlaylistPatch) (*models.Playlist, error) {
	if patch.Name != nil {
		name, err := models.ValidatePlaylistName(*patch.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		patch.Name = &name
	}

	current, err := r.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	set := "updated_at = ?"
	args := []any{r.now()}
	changed := false

	if patch.Name != nil && *patch.Name != current.Name {
		set += ", name = ?"
		args = append(args, *patch.Name)
		changed = true
	}

	if patch.IsPublic != nil && *patch.IsPublic != current.IsPublic {
		set += ", is_public = ?"
		args = append(args, *patch.IsPublic)
		changed = true
	}

	if !changed {
		return current, nil
	}

	query := `UPDATE playlists SET ` + set + ` WHERE id = ? AND owner_id = ?`
	args = append(args, id, ownerID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if classifyConstraint(err) == constraintCheck {
			return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, id)
	}

	return r.GetOwned(ctx, ownerID, id)
}

// Delete removes an owned playlist together with its membership rows
func (r *PlaylistRepository) Delete(ctx context.Context, ownerID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: playlist %s", shared.ErrNotFound, id)
	}

	// covers databases opened without foreign key enforcement
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_tracks WHERE playlist_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete playlist tracks: %w", err)
	}

	return tx.Commit()
}

// AddTrack appends a track to an owned playlist.
//
// The insert only selects the playlist row when (id, owner) match, so a playlist owned by someone
// else yields [shared.ErrNotFound]. An existing (playlist, track) pair yields [shared.ErrConflict]
// and an unknown track yields [shared.ErrValidation]. The playlist's updated_at is not touched.
func (r *PlaylistRepository) AddTrack(ctx context.Context, ownerID, id, trackID string, position *int) (*models.PlaylistTrack, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: track_id is required", shared.ErrValidation)
	}

	sequence, err := NextSequence(r.db, "playlist_tracks")
	if err != nil {
		return nil, fmt.Errorf("failed to generate sequence: %w", err)
	}

	membership := &models.PlaylistTrack{
		PlaylistID: id,
		TrackID:    trackID,
		Position:   position,
		AddedAt:    r.now(),
	}

	query := `
		INSERT INTO playlist_tracks (playlist_id, track_id, position, sequence, added_at)
		SELECT p.id, ?, ?, ?, ?
		FROM playlists p
		WHERE p.id = ? AND p.owner_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, trackID, position, sequence, membership.AddedAt, id, ownerID)
	if err != nil {
		switch classifyConstraint(err) {
		case constraintUnique:
			return nil, fmt.Errorf("%w: track %s is already in playlist %s", shared.ErrConflict, trackID, id)
		case constraintForeignKey:
			return nil, fmt.Errorf("%w: unknown track %s", shared.ErrValidation, trackID)
		case constraintCheck:
			return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
		}
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, id)
	}

	return membership, nil
}

// RemoveTrack deletes one membership row from an owned playlist
func (r *PlaylistRepository) RemoveTrack(ctx context.Context, ownerID, id, trackID string) error {
	query := `
		DELETE FROM playlist_tracks
		WHERE playlist_id = ? AND track_id = ?
		AND EXISTS (SELECT 1 FROM playlists p WHERE p.id = ? AND p.owner_id = ?)
	`

	result, err := r.db.ExecContext(ctx, query, id, trackID, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to remove track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: track %s in playlist %s", shared.ErrNotFound, trackID, id)
	}

	return nil
}

// Detail returns an owned playlist with its tracks in display order
func (r *PlaylistRepository) Detail(ctx context.Context, ownerID, id string) (*models.PlaylistDetail, error) {
	playlist, err := r.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	tracks, err := r.Tracks(ctx, id)
	if err != nil {
		return nil, err
	}

	return &models.PlaylistDetail{Playlist: *playlist, Tracks: tracks}, nil
}

// Tracks returns the playlist's tracks ordered by position (nulls last), then insertion order.
//
// There is no ownership filter; callers decide whether the caller may read the playlist.
func (r *PlaylistRepository) Tracks(ctx context.Context, id string) ([]models.OrderedTrack, error) {
	query := `
		SELECT t.id, t.title, t.duration_seconds, t.album_id, pt.position, pt.added_at
		FROM playlist_tracks pt
		JOIN tracks t ON t.id = pt.track_id
		WHERE pt.playlist_id = ?
		ORDER BY pt.position IS NULL, pt.position ASC, pt.sequence ASC
	`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.OrderedTrack{}
	for rows.Next() {
		var (
			t        models.OrderedTrack
			position sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.DurationSeconds, &t.AlbumID, &position, &t.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist track: %w", err)
		}
		if position.Valid {
			p := int(position.Int64)
			t.Position = &p
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

func (r *PlaylistRepository) queryPlaylists(ctx context.Context, query string, args ...any) ([]models.Playlist, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		playlist, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// scanOne scans a single row into a [models.Playlist]
func (r *PlaylistRepository) scanOne(row *sql.Row, id string) (*models.Playlist, error) {
	playlist, err := r.scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: playlist %s", shared.ErrNotFound, id)
	}
	return playlist, err
}

// scanRow scans the current row into a [models.Playlist]
func (r *PlaylistRepository) scanRow(row rowScanner) (*models.Playlist, error) {
	var p models.Playlist
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.IsPublic, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}
	return &p, nil
}
