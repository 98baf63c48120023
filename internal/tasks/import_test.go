package tasks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/setlist/internal/repositories"
	tu "github.com/desertthunder/setlist/internal/testing"
)

// id3v1 builds a 128-byte ID3v1 trailer.
func id3v1(title, artist, album, year string) []byte {
	field := func(s string, n int) []byte {
		b := make([]byte, n)
		copy(b, s)
		return b
	}

	var buf bytes.Buffer
	buf.WriteString("TAG")
	buf.Write(field(title, 30))
	buf.Write(field(artist, 30))
	buf.Write(field(album, 30))
	buf.Write(field(year, 4))
	buf.Write(field("", 30))
	buf.WriteByte(12)
	return buf.Bytes()
}

// writeAudio writes a file that is not decodable audio, optionally with an ID3v1 trailer.
func writeAudio(t *testing.T, path string, trailer []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data := append(bytes.Repeat([]byte{0x01}, 256), trailer...)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestScanFile(t *testing.T) {
	root := t.TempDir()

	t.Run("id3v1 tags", func(t *testing.T) {
		path := filepath.Join(root, "loose", "track01.mp3")
		writeAudio(t, path, id3v1("Sinnerman", "Nina Simone", "Pastel Blues", "1965"))

		track, err := ScanFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Sinnerman", track.Title)
		assert.Equal(t, "Nina Simone", track.Artist)
		assert.Equal(t, "Pastel Blues", track.Album)
		require.NotNil(t, track.Year)
		assert.Equal(t, 1965, *track.Year)
		assert.Equal(t, 0, track.DurationSeconds, "undecodable stream has no duration")
	})

	t.Run("directory layout fallback", func(t *testing.T) {
		path := filepath.Join(root, "Miles Davis", "Kind of Blue", "So What.flac")
		writeAudio(t, path, nil)

		track, err := ScanFile(path)
		require.NoError(t, err)
		assert.Equal(t, "So What", track.Title)
		assert.Equal(t, "Kind of Blue", track.Album)
		assert.Equal(t, "Miles Davis", track.Artist)
		assert.Nil(t, track.Year)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ScanFile(filepath.Join(root, "nope.mp3"))
		assert.Error(t, err)
	})
}

func TestFindAudioFiles(t *testing.T) {
	root := t.TempDir()
	writeAudio(t, filepath.Join(root, "b", "two.MP3"), nil)
	writeAudio(t, filepath.Join(root, "a", "one.ogg"), nil)
	writeAudio(t, filepath.Join(root, "a", "cover.jpg"), nil)
	writeAudio(t, filepath.Join(root, ".cache", "hidden.mp3"), nil)

	files, err := FindAudioFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a", "one.ogg"),
		filepath.Join(root, "b", "two.MP3"),
	}, files)

	_, err = FindAudioFiles(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

func TestImportCatalog(t *testing.T) {
	ctx := context.Background()
	db := tu.NewTestDB(t)
	catalog := repositories.NewCatalogRepository(db)
	logger := log.New(&bytes.Buffer{})

	root := t.TempDir()
	writeAudio(t, filepath.Join(root, "Miles Davis", "Kind of Blue", "So What.flac"), nil)
	writeAudio(t, filepath.Join(root, "Miles Davis", "Kind of Blue", "Blue in Green.flac"), nil)
	writeAudio(t, filepath.Join(root, "miles  davis", "kind of blue", "Freddie Freeloader.flac"), nil)
	writeAudio(t, filepath.Join(root, "Nina Simone", "Pastel Blues", "Sinnerman.m4a"), nil)

	progress := make(chan ProgressUpdate, 16)
	result, err := ImportCatalog(ctx, progress, root, catalog, logger)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Files)
	assert.Equal(t, 4, result.Tracks)
	assert.Equal(t, 2, result.Artists, "case and spacing variants are merged")
	assert.Equal(t, 2, result.Albums)
	assert.Empty(t, result.Errors)

	artists, err := catalog.ListArtists(ctx)
	require.NoError(t, err)
	require.Len(t, artists, 2)

	tracks, err := catalog.ListTracks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, tracks, 4)

	t.Run("re-import is idempotent", func(t *testing.T) {
		again, err := ImportCatalog(ctx, nil, root, catalog, logger)
		require.NoError(t, err)
		assert.Equal(t, 4, again.Tracks)

		tracks, err := catalog.ListTracks(ctx, "")
		require.NoError(t, err)
		assert.Len(t, tracks, 4)
	})

	t.Run("empty directory", func(t *testing.T) {
		empty, err := ImportCatalog(ctx, nil, t.TempDir(), catalog, logger)
		require.NoError(t, err)
		assert.Zero(t, empty.Files)
	})
}
