package search

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/setlist/internal/repositories"
	tu "github.com/desertthunder/setlist/internal/testing"
)

func TestIndex(t *testing.T) {
	ctx := context.Background()
	db := tu.NewTestDB(t)
	tu.SeedCatalog(t, db, "Feeling Good", "good bait", "So What", "100* Proof")
	catalog := repositories.NewCatalogRepository(db)

	idx, err := NewIndex("", catalog, nil)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Rebuild(ctx, catalog))

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(6), count)

	t.Run("tracks by substring, sorted by title", func(t *testing.T) {
		tracks, err := idx.SearchTracks(ctx, "GOOD", 20)
		require.NoError(t, err)
		require.Len(t, tracks, 2)
		assert.Equal(t, "Feeling Good", tracks[0].Title)
		assert.Equal(t, "good bait", tracks[1].Title)
		assert.Equal(t, "track-1", tracks[0].ID)
		assert.Equal(t, 60, tracks[0].DurationSeconds)
		assert.Equal(t, "album-1", tracks[0].AlbumID)
	})

	t.Run("artists", func(t *testing.T) {
		artists, err := idx.SearchArtists(ctx, "davis", 20)
		require.NoError(t, err)
		require.Len(t, artists, 1)
		assert.Equal(t, "Miles Davis", artists[0].Name)
		assert.Equal(t, "artist-2", artists[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		tracks, err := idx.SearchTracks(ctx, "o", 2)
		require.NoError(t, err)
		assert.Len(t, tracks, 2)
	})

	t.Run("wildcard characters use the fallback", func(t *testing.T) {
		tracks, err := idx.SearchTracks(ctx, "*", 20)
		require.NoError(t, err)
		require.Len(t, tracks, 1)
		assert.Equal(t, "100* Proof", tracks[0].Title)
	})

	t.Run("agrees with sqlite", func(t *testing.T) {
		for _, term := range []string{"good", "what", "nina", "zzz"} {
			fromIndex, err := idx.SearchTracks(ctx, term, 20)
			require.NoError(t, err)
			fromDB, err := catalog.SearchTracks(ctx, term, 20)
			require.NoError(t, err)
			assert.Equal(t, fromDB, fromIndex, "term %q", term)
		}
	})
}

func TestIndexOnDisk(t *testing.T) {
	ctx := context.Background()
	db := tu.NewTestDB(t)
	tu.SeedCatalog(t, db, "Blue in Green")
	catalog := repositories.NewCatalogRepository(db)

	path := filepath.Join(t.TempDir(), "catalog.bleve")
	idx, err := NewIndex(path, catalog, nil)
	require.NoError(t, err)
	defer idx.Close()

	require.NoError(t, idx.Rebuild(ctx, catalog))
	require.NoError(t, idx.Rebuild(ctx, catalog))

	tracks, err := idx.SearchTracks(ctx, "green", 20)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	tu.AssertFileExists(t, path)
}
