package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// CatalogRepository reads the shared artist/album/track catalog.
//
// The upsert methods exist for catalog import only; the playlist engine never writes here.
type CatalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new CatalogRepository with the given database connection
func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListArtists returns every artist ordered by name
func (r *CatalogRepository) ListArtists(ctx context.Context) ([]models.Artist, error) {
	query := `
		SELECT id, name
		FROM artists
		ORDER BY fold(name) ASC, id ASC
	`

	return r.queryArtists(ctx, query)
}

// GetArtist retrieves an artist by ID
func (r *CatalogRepository) GetArtist(ctx context.Context, id string) (*models.Artist, error) {
	query := `SELECT id, name FROM artists WHERE id = ?`

	var a models.Artist
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: artist %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}
	return &a, nil
}

// ListAlbums returns albums ordered by title, optionally restricted to one artist
func (r *CatalogRepository) ListAlbums(ctx context.Context, artistID string) ([]models.Album, error) {
	query := `
		SELECT id, title, year, artist_id
		FROM albums
	`
	args := []any{}
	if artistID != "" {
		query += " WHERE artist_id = ?"
		args = append(args, artistID)
	}
	query += " ORDER BY fold(title) ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query albums: %w", err)
	}
	defer rows.Close()

	albums := []models.Album{}
	for rows.Next() {
		album, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *album)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return albums, nil
}

// ListTracks returns tracks ordered by title, optionally restricted to one album
func (r *CatalogRepository) ListTracks(ctx context.Context, albumID string) ([]models.Track, error) {
	query := `
		SELECT id, title, duration_seconds, album_id
		FROM tracks
	`
	args := []any{}
	if albumID != "" {
		query += " WHERE album_id = ?"
		args = append(args, albumID)
	}
	query += " ORDER BY fold(title) ASC, id ASC"

	return r.queryTracks(ctx, query, args...)
}

// GetTrack retrieves a track by ID
func (r *CatalogRepository) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	query := `SELECT id, title, duration_seconds, album_id FROM tracks WHERE id = ?`

	t, err := scanTrack(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: track %s", shared.ErrNotFound, id)
	}
	return t, err
}

// SearchArtists matches term as a case-insensitive substring of the artist name
func (r *CatalogRepository) SearchArtists(ctx context.Context, term string, limit int) ([]models.Artist, error) {
	query := `
		SELECT id, name
		FROM artists
		WHERE fold(name) LIKE ? ESCAPE '\'
		ORDER BY fold(name) ASC, id ASC
		LIMIT ?
	`

	return r.queryArtists(ctx, query, likePattern(term), limit)
}

// SearchTracks matches term as a case-insensitive substring of the track title
func (r *CatalogRepository) SearchTracks(ctx context.Context, term string, limit int) ([]models.Track, error) {
	query := `
		SELECT id, title, duration_seconds, album_id
		FROM tracks
		WHERE fold(title) LIKE ? ESCAPE '\'
		ORDER BY fold(title) ASC, id ASC
		LIMIT ?
	`

	return r.queryTracks(ctx, query, likePattern(term), limit)
}

// UpsertArtist returns the artist with the given name, inserting it when missing
func (r *CatalogRepository) UpsertArtist(ctx context.Context, name string) (*models.Artist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: artist name is required", shared.ErrValidation)
	}

	insert := `INSERT INTO artists (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, shared.GenerateID(), name); err != nil {
		return nil, fmt.Errorf("failed to insert artist: %w", err)
	}

	var a models.Artist
	if err := r.db.QueryRowContext(ctx, `SELECT id, name FROM artists WHERE name = ?`, name).Scan(&a.ID, &a.Name); err != nil {
		return nil, fmt.Errorf("failed to load artist: %w", err)
	}
	return &a, nil
}

// UpsertAlbum returns the artist's album with the given title, inserting it when missing.
// A known year replaces an unknown one.
func (r *CatalogRepository) UpsertAlbum(ctx context.Context, artistID, title string, year *int) (*models.Album, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: album title is required", shared.ErrValidation)
	}

	insert := `
		INSERT INTO albums (id, artist_id, title, year) VALUES (?, ?, ?, ?)
		ON CONFLICT (artist_id, title) DO UPDATE SET year = COALESCE(albums.year, excluded.year)
	`
	if _, err := r.db.ExecContext(ctx, insert, shared.GenerateID(), artistID, title, year); err != nil {
		if classifyConstraint(err) == constraintForeignKey {
			return nil, fmt.Errorf("%w: unknown artist %s", shared.ErrValidation, artistID)
		}
		return nil, fmt.Errorf("failed to insert album: %w", err)
	}

	query := `SELECT id, title, year, artist_id FROM albums WHERE artist_id = ? AND title = ?`
	return scanAlbum(r.db.QueryRowContext(ctx, query, artistID, title))
}

// UpsertTrack returns the album's track with the given title, inserting it when missing.
// A positive duration overwrites the stored one.
func (r *CatalogRepository) UpsertTrack(ctx context.Context, albumID, title string, durationSeconds int) (*models.Track, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: track title is required", shared.ErrValidation)
	}
	if durationSeconds < 0 {
		durationSeconds = 0
	}

	insert := `
		INSERT INTO tracks (id, album_id, title, duration_seconds) VALUES (?, ?, ?, ?)
		ON CONFLICT (album_id, title) DO UPDATE SET duration_seconds =
			CASE WHEN excluded.duration_seconds > 0 THEN excluded.duration_seconds ELSE tracks.duration_seconds END
	`
	if _, err := r.db.ExecContext(ctx, insert, shared.GenerateID(), albumID, title, durationSeconds); err != nil {
		if classifyConstraint(err) == constraintForeignKey {
			return nil, fmt.Errorf("%w: unknown album %s", shared.ErrValidation, albumID)
		}
		return nil, fmt.Errorf("failed to insert track: %w", err)
	}

	query := `SELECT id, title, duration_seconds, album_id FROM tracks WHERE album_id = ? AND title = ?`
	return scanTrack(r.db.QueryRowContext(ctx, query, albumID, title))
}

func (r *CatalogRepository) queryArtists(ctx context.Context, query string, args ...any) ([]models.Artist, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	artists := []models.Artist{}
	for rows.Next() {
		var a models.Artist
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

func (r *CatalogRepository) queryTracks(ctx context.Context, query string, args ...any) ([]models.Track, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// scanAlbum scans a single row into a [models.Album]
func scanAlbum(row rowScanner) (*models.Album, error) {
	var (
		a    models.Album
		year sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.Title, &year, &a.ArtistID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan album: %w", err)
	}
	if year.Valid {
		y := int(year.Int64)
		a.Year = &y
	}
	return &a, nil
}

// scanTrack scans a single row into a [models.Track]
func scanTrack(row rowScanner) (*models.Track, error) {
	var t models.Track
	if err := row.Scan(&t.ID, &t.Title, &t.DurationSeconds, &t.AlbumID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return &t, nil
}
