package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"github.com/hajimehoshi/go-mp3"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	unknownArtist = "Unknown Artist"
	unknownAlbum  = "Unknown Album"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
}

// CatalogWriter is the write side of the catalog store used by the importer.
type CatalogWriter interface {
	UpsertArtist(ctx context.Context, name string) (*models.Artist, error)
	UpsertAlbum(ctx context.Context, artistID, title string, year *int) (*models.Album, error)
	UpsertTrack(ctx context.Context, albumID, title string, durationSeconds int) (*models.Track, error)
}

// ScannedTrack is the metadata read from one audio file.
type ScannedTrack struct {
	Path            string
	Artist          string
	Album           string
	Title           string
	Year            *int
	DurationSeconds int
}

// FileError records a file that could not be imported.
type FileError struct {
	Path string
	Err  error
}

// ImportResult summarizes a catalog import.
type ImportResult struct {
	Files   int         // Audio files found
	Tracks  int         // Tracks upserted
	Artists int         // Distinct artists seen
	Albums  int         // Distinct albums seen
	Errors  []FileError // Files skipped
}

// ScanFile reads tags from path.
//
// Missing tags fall back to the <artist>/<album>/<title>.<ext> directory layout. MP3
// durations are computed by decoding the stream; other formats get 0.
func ScanFile(path string) (*ScannedTrack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t := &ScannedTrack{Path: path}

	if m, err := tag.ReadFrom(f); err == nil {
		t.Artist = strings.TrimSpace(m.Artist())
		if albumArtist := strings.TrimSpace(m.AlbumArtist()); albumArtist != "" {
			t.Artist = albumArtist
		}
		t.Album = strings.TrimSpace(m.Album())
		t.Title = strings.TrimSpace(m.Title())
		if year := m.Year(); year > 0 {
			t.Year = &year
		}
	} else if !errors.Is(err, tag.ErrNoTagsFound) {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	fillFromLayout(t)

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		if _, err := f.Seek(0, io.SeekStart); err == nil {
			t.DurationSeconds = mp3Duration(f)
		}
	}

	return t, nil
}

// fillFromLayout fills blank fields from the file's position in the tree.
func fillFromLayout(t *ScannedTrack) {
	dir := filepath.Dir(t.Path)
	if t.Title == "" {
		t.Title = strings.TrimSuffix(filepath.Base(t.Path), filepath.Ext(t.Path))
	}
	if t.Album == "" {
		if album := filepath.Base(dir); album != "." && album != string(filepath.Separator) {
			t.Album = album
		} else {
			t.Album = unknownAlbum
		}
	}
	if t.Artist == "" {
		if artist := filepath.Base(filepath.Dir(dir)); artist != "." && artist != string(filepath.Separator) {
			t.Artist = artist
		} else {
			t.Artist = unknownArtist
		}
	}
}

// mp3Duration returns whole seconds of decoded audio, or 0 when the stream can't be decoded.
func mp3Duration(f *os.File) int {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0
	}
	// 16-bit stereo
	samples := decoder.Length() / 4
	if samples <= 0 || decoder.SampleRate() <= 0 {
		return 0
	}
	return int(samples / int64(decoder.SampleRate()))
}

// FindAudioFiles lists audio files under root in lexical order.
func FindAudioFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// ImportCatalog scans root for audio files and upserts their artists, albums and tracks.
//
// Files are parsed on a worker pool and written sequentially. Artist and album names that
// only differ in case or spacing are merged under the first spelling seen.
func ImportCatalog(ctx context.Context, progress chan<- ProgressUpdate, root string, store CatalogWriter, logger *log.Logger) (*ImportResult, error) {
	files, err := FindAudioFiles(root)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, scanFilesUpdate(len(files), root))

	result := &ImportResult{Files: len(files), Errors: []FileError{}}
	if len(files) == 0 {
		return result, nil
	}

	type scanned struct {
		index int
		track *ScannedTrack
		err   error
		path  string
	}

	paths := make(chan int)
	out := make(chan scanned)

	var wg sync.WaitGroup
	for i := 0; i < min(runtime.NumCPU(), len(files)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range paths {
				t, err := ScanFile(files[idx])
				out <- scanned{index: idx, track: t, err: err, path: files[idx]}
			}
		}()
	}

	go func() {
		defer close(paths)
		for i := range files {
			select {
			case paths <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	ordered := make([]scanned, len(files))
	received := make([]bool, len(files))
	for s := range out {
		ordered[s.index] = s
		received[s.index] = true
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	w := &catalogWriter{store: store, artists: map[string]string{}, albums: map[string]string{}}
	for i, s := range ordered {
		if !received[i] {
			continue
		}
		if s.err != nil {
			logger.Warn("skipping file", "path", s.path, "err", s.err)
			result.Errors = append(result.Errors, FileError{Path: s.path, Err: s.err})
			continue
		}

		if err := w.write(ctx, s.track); err != nil {
			return result, fmt.Errorf("failed to import %s: %w", s.path, err)
		}
		result.Tracks++
		sendProgress(progress, importTrackUpdate(i+1, len(files), s.track))
	}

	result.Artists = len(w.artists)
	result.Albums = len(w.albums)
	return result, nil
}

// catalogWriter caches artist and album ids by normalized key for one import.
type catalogWriter struct {
	store   CatalogWriter
	artists map[string]string
	albums  map[string]string
}

func (w *catalogWriter) write(ctx context.Context, t *ScannedTrack) error {
	artistKey := shared.NormalizeKey(t.Artist)
	artistID, ok := w.artists[artistKey]
	if !ok {
		artist, err := w.store.UpsertArtist(ctx, t.Artist)
		if err != nil {
			return err
		}
		artistID = artist.ID
		w.artists[artistKey] = artistID
	}

	albumKey := artistID + "\x00" + shared.NormalizeKey(t.Album)
	albumID, ok := w.albums[albumKey]
	if !ok {
		album, err := w.store.UpsertAlbum(ctx, artistID, t.Album, t.Year)
		if err != nil {
			return err
		}
		albumID = album.ID
		w.albums[albumKey] = albumID
	}

	_, err := w.store.UpsertTrack(ctx, albumID, t.Title, t.DurationSeconds)
	return err
}
