package search

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const (
	kindArtist = "artist"
	kindTrack  = "track"
)

// CatalogSource lists the catalog rows to index.
type CatalogSource interface {
	ListArtists(ctx context.Context) ([]models.Artist, error)
	ListTracks(ctx context.Context, albumID string) ([]models.Track, error)
}

// Index is a bleve-backed [CatalogSearcher].
//
// Names and titles are indexed as a single lowercase keyword and matched with a *term*
// wildcard, which keeps substring semantics. Terms containing bleve wildcard characters
// are answered by the fallback searcher instead.
type Index struct {
	mu       sync.RWMutex
	index    bleve.Index
	path     string
	fallback CatalogSearcher
	logger   *log.Logger
}

// NewIndex creates an empty index. An empty path keeps it in memory.
func NewIndex(path string, fallback CatalogSearcher, logger *log.Logger) (*Index, error) {
	idx := &Index{path: path, fallback: fallback, logger: logger}
	index, err := idx.open()
	if err != nil {
		return nil, err
	}
	idx.index = index
	return idx, nil
}

func newMapping() mapping.IndexMapping {
	keyword := bleve.NewKeywordFieldMapping()

	stored := bleve.NewTextFieldMapping()
	stored.Index = false
	stored.Store = true

	duration := bleve.NewNumericFieldMapping()
	duration.Index = false
	duration.Store = true

	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt("kind", keyword)
	doc.AddFieldMappingsAt("key", keyword)
	doc.AddFieldMappingsAt("display", stored)
	doc.AddFieldMappingsAt("album_id", stored)
	doc.AddFieldMappingsAt("duration_seconds", duration)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}

func (i *Index) open() (bleve.Index, error) {
	if i.path == "" {
		index, err := bleve.NewMemOnly(newMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
		return index, nil
	}

	// the index is always rebuilt from the database
	if err := os.RemoveAll(i.path); err != nil {
		return nil, fmt.Errorf("failed to clear index directory: %w", err)
	}
	index, err := bleve.New(i.path, newMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index at %s: %w", i.path, err)
	}
	return index, nil
}

// Rebuild replaces the index contents with every artist and track in source.
func (i *Index) Rebuild(ctx context.Context, source CatalogSource) error {
	artists, err := source.ListArtists(ctx)
	if err != nil {
		return err
	}
	tracks, err := source.ListTracks(ctx, "")
	if err != nil {
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.index.Close(); err != nil {
		return fmt.Errorf("failed to close index: %w", err)
	}
	index, err := i.open()
	if err != nil {
		return err
	}
	i.index = index

	batch := index.NewBatch()
	for _, a := range artists {
		doc := map[string]any{
			"kind":    kindArtist,
			"key":     shared.Fold(a.Name),
			"display": a.Name,
		}
		if err := batch.Index(kindArtist+":"+a.ID, doc); err != nil {
			return fmt.Errorf("failed to index artist %s: %w", a.ID, err)
		}
	}
	for _, t := range tracks {
		doc := map[string]any{
			"kind":             kindTrack,
			"key":              shared.Fold(t.Title),
			"display":          t.Title,
			"album_id":         t.AlbumID,
			"duration_seconds": float64(t.DurationSeconds),
		}
		if err := batch.Index(kindTrack+":"+t.ID, doc); err != nil {
			return fmt.Errorf("failed to index track %s: %w", t.ID, err)
		}
	}

	if err := index.Batch(batch); err != nil {
		return fmt.Errorf("failed to write index batch: %w", err)
	}

	if i.logger != nil {
		i.logger.Info("rebuilt search index", "artists", len(artists), "tracks", len(tracks))
	}
	return nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.index.DocCount()
}

// Close releases the index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.index.Close()
}

// SearchArtists implements [CatalogSearcher].
func (i *Index) SearchArtists(ctx context.Context, term string, limit int) ([]models.Artist, error) {
	if strings.ContainsAny(term, "*?") && i.fallback != nil {
		return i.fallback.SearchArtists(ctx, term, limit)
	}

	hits, err := i.search(ctx, kindArtist, term, limit)
	if err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(hits))
	for _, h := range hits {
		artists = append(artists, models.Artist{ID: h.id, Name: h.display})
	}
	return artists, nil
}

// SearchTracks implements [CatalogSearcher].
func (i *Index) SearchTracks(ctx context.Context, term string, limit int) ([]models.Track, error) {
	if strings.ContainsAny(term, "*?") && i.fallback != nil {
		return i.fallback.SearchTracks(ctx, term, limit)
	}

	hits, err := i.search(ctx, kindTrack, term, limit)
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(hits))
	for _, h := range hits {
		tracks = append(tracks, models.Track{
			ID:              h.id,
			Title:           h.display,
			AlbumID:         h.albumID,
			DurationSeconds: h.duration,
		})
	}
	return tracks, nil
}

type hit struct {
	id       string
	display  string
	albumID  string
	duration int
}

func (i *Index) search(ctx context.Context, kind, term string, limit int) ([]hit, error) {
	kindQuery := bleve.NewTermQuery(kind)
	kindQuery.SetField("kind")

	keyQuery := bleve.NewWildcardQuery("*" + shared.Fold(term) + "*")
	keyQuery.SetField("key")

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(kindQuery, keyQuery), limit, 0, false)
	req.Fields = []string{"display", "album_id", "duration_seconds"}
	req.SortBy([]string{"key", "_id"})

	i.mu.RLock()
	res, err := i.index.SearchInContext(ctx, req)
	i.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	hits := make([]hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		out := hit{id: strings.TrimPrefix(h.ID, kind+":")}
		if v, ok := h.Fields["display"].(string); ok {
			out.display = v
		}
		if v, ok := h.Fields["album_id"].(string); ok {
			out.albumID = v
		}
		if v, ok := h.Fields["duration_seconds"].(float64); ok {
			out.duration = int(v)
		}
		hits = append(hits, out)
	}
	return hits, nil
}
