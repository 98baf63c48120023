package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format: json, csv, md, txt
	OutputDir  string           // Base output directory (default: setlist_export_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max 8)
}

// PlaylistExportResult is the outcome for one playlist of a bulk export.
type PlaylistExportResult struct {
	PlaylistID   string `json:"playlist_id"`
	PlaylistName string `json:"playlist_name,omitempty"`
	Path         string `json:"path,omitempty"`
	Tracks       int    `json:"tracks"`
	Error        string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export; it is also written as the manifest.
type BulkExportResult struct {
	OutputDirectory   string                 `json:"output_directory"`
	Format            formatter.Format       `json:"format"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	Results           []PlaylistExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

// BulkExport fetches export documents for ids and writes one file per playlist.
//
// Fetches go through the engine's rate limiter; writing runs on a small worker pool.
// A failed playlist is recorded and does not stop the others. A manifest.json summarizing
// the run is written to the output directory.
func (e *Engine) BulkExport(ctx context.Context, progress chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("setlist_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		OutputDirectory: opts.OutputDir,
		Format:          opts.Format,
		TotalPlaylists:  len(ids),
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	jobs := make(chan exportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- writeExportJob(j, opts)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := e.limiter.Wait(ctx); err != nil {
				results <- PlaylistExportResult{PlaylistID: id, Error: err.Error()}
				continue
			}

			sendProgress(progress, exportingPlaylistUpdate(i+1, len(ids), id))
			doc, err := e.svc.Export(ctx, id)
			if err != nil {
				results <- PlaylistExportResult{PlaylistID: id, Error: fmt.Sprintf("failed to fetch playlist: %v", err)}
				continue
			}
			jobs <- exportJob{id: id, doc: doc}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Error == "" {
			result.SuccessfulExports++
			sendProgress(progress, exportCompletedUpdate(completed, len(ids), res.PlaylistName, res.Path))
		} else {
			result.FailedExports++
			sendProgress(progress, exportFailedUpdate(completed, len(ids), res.PlaylistID, fmt.Errorf("%s", res.Error)))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("export completed but failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

type exportJob struct {
	id  string
	doc *models.ExportDocument
}

func writeExportJob(j exportJob, opts BulkExportOpts) PlaylistExportResult {
	res := PlaylistExportResult{
		PlaylistID:   j.id,
		PlaylistName: j.doc.Name,
		Tracks:       len(j.doc.Tracks),
	}

	path := filepath.Join(opts.OutputDir, formatter.ExportFilename(j.doc.ID, opts.Format))
	written, err := formatter.WriteExport(j.doc, opts.Format, path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Path = written
	return res
}
