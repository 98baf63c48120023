package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// PlaylistsList lists the caller's playlists.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.api.MyPlaylists(ctx)
	if err != nil {
		return err
	}
	return r.writePlaylists(cmd, playlists)
}

// PlaylistsPublic lists public playlists, newest first.
func (r *Runner) PlaylistsPublic(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.api.PublicPlaylists(ctx)
	if err != nil {
		return err
	}
	return r.writePlaylists(cmd, playlists)
}

func (r *Runner) writePlaylists(cmd *cli.Command, playlists []models.Playlist) error {
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s (%s)\n", i+1, p.Name, shared.Visibility(p.IsPublic))
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Owner: %s\n", p.OwnerID)
	}
	return nil
}

// PlaylistsCreate creates a playlist, publishing it when --public is set.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: name is required", shared.ErrMissingArgument)
	}

	playlist, err := r.api.CreatePlaylist(ctx, name)
	if err != nil {
		return err
	}

	if cmd.Bool("public") {
		if playlist, err = r.api.Publish(ctx, playlist.ID, true); err != nil {
			return err
		}
	}

	r.logger.Info("playlist created", "id", playlist.ID, "public", playlist.IsPublic)
	return r.writePlain("✓ Created %s (%s)\nID: %s\n", playlist.Name, shared.Visibility(playlist.IsPublic), playlist.ID)
}

// PlaylistsExport writes one playlist's export, or every owned playlist with --all.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	if cmd.Bool("all") {
		return r.exportAll(ctx, format, cmd.String("output"), cmd.Int("workers"))
	}

	id := cmd.String("id")
	if id == "" {
		return fmt.Errorf("%w: --id or --all is required", shared.ErrMissingArgument)
	}

	data, err := r.api.ExportRaw(ctx, id, format)
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		_, err := r.output.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	r.logger.Info("playlist exported", "id", id, "format", format, "path", output)
	return r.writePlain("✓ Exported %s → %s\n", id, output)
}

func (r *Runner) exportAll(ctx context.Context, format formatter.Format, dir string, workers int) error {
	playlists, err := r.api.MyPlaylists(ctx)
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		return r.writePlain("No playlists to export\n")
	}

	ids := make([]string, 0, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.writeProgress(progress, done)

	result, err := r.engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  dir,
		NumWorkers: workers,
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("")
	r.writePlainHeader("Export Complete!")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	for _, res := range result.Results {
		if res.Error != "" {
			r.writePlain("  ✗ %s: %s\n", res.PlaylistID, res.Error)
		}
	}
	return nil
}

// PlaylistsImport adds the tracks of a JSON export document to a new or existing playlist.
func (r *Runner) PlaylistsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path is required", shared.ErrMissingArgument)
	}

	doc, err := formatter.ReadExport(path)
	if err != nil {
		return err
	}

	r.writePlain("Importing %s (%d tracks)...\n", doc.Name, len(doc.Tracks))
	return r.runCopy(func(progress chan<- tasks.ProgressUpdate) (*tasks.CopyResult, error) {
		return r.engine.ImportDocument(ctx, progress, doc, tasks.CopyTarget{
			PlaylistID: cmd.String("into"),
			NewName:    cmd.String("name"),
		})
	})
}

// PlaylistsCopy copies a readable playlist's tracks into an owned or new playlist.
func (r *Runner) PlaylistsCopy(ctx context.Context, cmd *cli.Command) error {
	target := tasks.CopyTarget{PlaylistID: cmd.String("into"), NewName: cmd.String("name")}
	if target.PlaylistID != "" && target.NewName != "" {
		return fmt.Errorf("%w: cannot specify both --into and --name", shared.ErrInvalidArgument)
	}

	return r.runCopy(func(progress chan<- tasks.ProgressUpdate) (*tasks.CopyResult, error) {
		return r.engine.CopyPlaylist(ctx, progress, cmd.String("source"), target)
	})
}

// runCopy streams progress while fn runs and prints the batch summary.
//
// A partial result is printed before an aborting error is returned.
func (r *Runner) runCopy(fn func(chan<- tasks.ProgressUpdate) (*tasks.CopyResult, error)) error {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.writeProgress(progress, done)

	result, err := fn(progress)
	close(progress)
	<-done

	if result != nil {
		r.writeCopyResult(result)
	}
	return err
}

func (r *Runner) writeCopyResult(result *tasks.CopyResult) {
	r.writePlainln("")
	if result.Aborted {
		r.writePlainHeader("Copy Stopped")
	} else {
		r.writePlainHeader("Copy Complete!")
	}
	if result.Target != nil {
		r.writePlain("Target: %s (%s)\n", result.Target.Name, result.Target.ID)
	}
	r.writePlain("Added: %d\n", len(result.Added))
	r.writePlain("Already present: %d\n", len(result.AlreadyPresent))
	r.writePlain("Failed: %d\n", len(result.Failed))
	for _, f := range result.Failed {
		r.writePlain("  - %s: %v\n", f.TrackID, f.Err)
	}
}
