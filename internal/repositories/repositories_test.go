package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/setlist/internal/shared"
	tu "github.com/desertthunder/setlist/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return tu.NewTestDB(t)
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "playlists")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for table without a sequence")
	}
}

func TestLikePattern(t *testing.T) {
	tc := []struct {
		term string
		want string
	}{
		{"jazz", "%jazz%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\`, `%c:\\%`},
		{"CORAÇÃO", "%coração%"},
	}

	for _, tt := range tc {
		if got := likePattern(tt.term); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.term, got, tt.want)
		}
	}
}

func TestClassifyConstraint(t *testing.T) {
	db := setupTestDB(t)
	c := tu.SeedCatalog(t, db, "So What")
	tu.MustExec(t, db, `INSERT INTO playlists (id, sequence, owner_id, name, is_public, created_at, updated_at)
		VALUES ('p1', 1, 'alice', 'Mix', 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	tu.MustExec(t, db, `INSERT INTO playlist_tracks (playlist_id, track_id, sequence, added_at)
		VALUES ('p1', ?, 1, CURRENT_TIMESTAMP)`, c.TrackIDs[0])

	tc := []struct {
		name  string
		query string
		args  []any
		want  constraint
	}{
		{
			name:  "duplicate membership",
			query: `INSERT INTO playlist_tracks (playlist_id, track_id, sequence, added_at) VALUES ('p1', ?, 2, CURRENT_TIMESTAMP)`,
			args:  []any{c.TrackIDs[0]},
			want:  constraintUnique,
		},
		{
			name:  "unknown track",
			query: `INSERT INTO playlist_tracks (playlist_id, track_id, sequence, added_at) VALUES ('p1', 'missing', 3, CURRENT_TIMESTAMP)`,
			want:  constraintForeignKey,
		},
		{
			name:  "blank name",
			query: `UPDATE playlists SET name = '   ' WHERE id = 'p1'`,
			want:  constraintCheck,
		},
		{
			name:  "negative duration",
			query: `UPDATE tracks SET duration_seconds = -1 WHERE id = ?`,
			args:  []any{c.TrackIDs[0]},
			want:  constraintCheck,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Exec(tt.query, tt.args...)
			if err == nil {
				t.Fatal("expected a constraint violation")
			}
			if got := classifyConstraint(err); got != tt.want {
				t.Errorf("classifyConstraint() = %v, want %v (err: %v)", got, tt.want, err)
			}
		})
	}

	if got := classifyConstraint(errors.New("boom")); got != constraintNone {
		t.Errorf("non-sqlite error classified as %v", got)
	}
}

func TestCatalogRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("ListArtists", func(t *testing.T) {
		db := setupTestDB(t)
		tu.SeedCatalog(t, db)
		repo := NewCatalogRepository(db)

		artists, err := repo.ListArtists(ctx)
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}

		if len(artists) != 2 {
			t.Fatalf("expected 2 artists, got %d", len(artists))
		}

		if artists[0].Name != "Miles Davis" || artists[1].Name != "Nina Simone" {
			t.Errorf("expected artists ordered by name, got %s, %s", artists[0].Name, artists[1].Name)
		}
	})

	t.Run("ListAlbums by artist", func(t *testing.T) {
		db := setupTestDB(t)
		c := tu.SeedCatalog(t, db)
		repo := NewCatalogRepository(db)

		albums, err := repo.ListAlbums(ctx, c.ArtistIDs[0])
		if err != nil {
			t.Fatalf("failed to list albums: %v", err)
		}

		if len(albums) != 1 || albums[0].ArtistID != c.ArtistIDs[0] {
			t.Fatalf("expected one album for artist, got %+v", albums)
		}

		if albums[0].Year == nil || *albums[0].Year != 1959 {
			t.Errorf("expected year 1959, got %v", albums[0].Year)
		}

		all, err := repo.ListAlbums(ctx, "")
		if err != nil {
			t.Fatalf("failed to list all albums: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 albums, got %d", len(all))
		}
	})

	t.Run("ListTracks by album", func(t *testing.T) {
		db := setupTestDB(t)
		c := tu.SeedCatalog(t, db, "Zebra", "Feeling Good", "Alpha")
		repo := NewCatalogRepository(db)

		tracks, err := repo.ListTracks(ctx, c.AlbumIDs[0])
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}

		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks on first album, got %d", len(tracks))
		}

		if tracks[0].Title != "Alpha" || tracks[1].Title != "Zebra" {
			t.Errorf("expected tracks ordered by title, got %s, %s", tracks[0].Title, tracks[1].Title)
		}
	})

	t.Run("GetTrack", func(t *testing.T) {
		db := setupTestDB(t)
		c := tu.SeedCatalog(t, db, "Feeling Good")
		repo := NewCatalogRepository(db)

		track, err := repo.GetTrack(ctx, c.TrackIDs[0])
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if track.DurationSeconds != 60 {
			t.Errorf("expected duration 60, got %d", track.DurationSeconds)
		}

		if _, err := repo.GetTrack(ctx, "nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Search is case-insensitive substring", func(t *testing.T) {
		db := setupTestDB(t)
		tu.SeedCatalog(t, db, "Feeling Good", "So What", "Good Morning Heartache")
		repo := NewCatalogRepository(db)

		tracks, err := repo.SearchTracks(ctx, "GOOD", 20)
		if err != nil {
			t.Fatalf("failed to search tracks: %v", err)
		}

		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}
		if tracks[0].Title != "Feeling Good" || tracks[1].Title != "Good Morning Heartache" {
			t.Errorf("expected title order, got %s, %s", tracks[0].Title, tracks[1].Title)
		}

		artists, err := repo.SearchArtists(ctx, "simone", 20)
		if err != nil {
			t.Fatalf("failed to search artists: %v", err)
		}
		if len(artists) != 1 || artists[0].Name != "Nina Simone" {
			t.Errorf("expected Nina Simone, got %+v", artists)
		}
	})

	t.Run("Search folds non-ASCII case", func(t *testing.T) {
		db := setupTestDB(t)
		tu.SeedCatalog(t, db, "Coração Vagabundo", "So What")
		repo := NewCatalogRepository(db)

		if _, err := repo.UpsertArtist(ctx, "Élis Regina"); err != nil {
			t.Fatalf("failed to upsert artist: %v", err)
		}

		for _, term := range []string{"élis", "ÉLIS", "Élis"} {
			artists, err := repo.SearchArtists(ctx, term, 20)
			if err != nil {
				t.Fatalf("failed to search artists: %v", err)
			}
			if len(artists) != 1 || artists[0].Name != "Élis Regina" {
				t.Errorf("%q: expected Élis Regina, got %+v", term, artists)
			}
		}

		for _, term := range []string{"coração", "CORAÇÃO", "Ção"} {
			tracks, err := repo.SearchTracks(ctx, term, 20)
			if err != nil {
				t.Fatalf("failed to search tracks: %v", err)
			}
			if len(tracks) != 1 || tracks[0].Title != "Coração Vagabundo" {
				t.Errorf("%q: expected Coração Vagabundo, got %+v", term, tracks)
			}
		}
	})

	t.Run("Search honours limit and wildcards", func(t *testing.T) {
		db := setupTestDB(t)
		tu.SeedCatalog(t, db, "a1", "a2", "a3", "100% Pure")
		repo := NewCatalogRepository(db)

		tracks, err := repo.SearchTracks(ctx, "a", 2)
		if err != nil {
			t.Fatalf("failed to search tracks: %v", err)
		}
		if len(tracks) != 2 {
			t.Errorf("expected limit of 2, got %d", len(tracks))
		}

		tracks, err = repo.SearchTracks(ctx, "%", 20)
		if err != nil {
			t.Fatalf("failed to search tracks: %v", err)
		}
		if len(tracks) != 1 || tracks[0].Title != "100% Pure" {
			t.Errorf("expected literal %% match only, got %+v", tracks)
		}
	})

	t.Run("Upserts are idempotent", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCatalogRepository(db)

		a1, err := repo.UpsertArtist(ctx, "Nina Simone")
		if err != nil {
			t.Fatalf("failed to upsert artist: %v", err)
		}
		a2, err := repo.UpsertArtist(ctx, " Nina Simone ")
		if err != nil {
			t.Fatalf("failed to upsert artist again: %v", err)
		}
		if a1.ID != a2.ID {
			t.Errorf("expected same artist id, got %s and %s", a1.ID, a2.ID)
		}

		album, err := repo.UpsertAlbum(ctx, a1.ID, "Pastel Blues", nil)
		if err != nil {
			t.Fatalf("failed to upsert album: %v", err)
		}
		year := 1965
		album2, err := repo.UpsertAlbum(ctx, a1.ID, "Pastel Blues", &year)
		if err != nil {
			t.Fatalf("failed to upsert album again: %v", err)
		}
		if album.ID != album2.ID || album2.Year == nil || *album2.Year != 1965 {
			t.Errorf("expected year filled on existing album, got %+v", album2)
		}

		track, err := repo.UpsertTrack(ctx, album.ID, "Sinnerman", 0)
		if err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}
		track2, err := repo.UpsertTrack(ctx, album.ID, "Sinnerman", 622)
		if err != nil {
			t.Fatalf("failed to upsert track again: %v", err)
		}
		if track.ID != track2.ID || track2.DurationSeconds != 622 {
			t.Errorf("expected duration updated on existing track, got %+v", track2)
		}

		if _, err := repo.UpsertTrack(ctx, "missing-album", "X", 1); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for unknown album, got %v", err)
		}

		if _, err := repo.UpsertArtist(ctx, "  "); !errors.Is(err, shared.ErrValidation) {
			t.Errorf("expected ErrValidation for empty name, got %v", err)
		}
	})
}
