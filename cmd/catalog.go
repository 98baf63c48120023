package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// CatalogImport scans a directory of audio files into the local catalog.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	root := cmd.StringArg("dir")
	if root == "" {
		return fmt.Errorf("%w: directory is required", shared.ErrMissingArgument)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, root)
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go r.writeProgress(progress, done)

	result, err := tasks.ImportCatalog(ctx, progress, root, repositories.NewCatalogRepository(db), r.logger)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Files: %d\n", result.Files)
	r.writePlain("Tracks: %d\n", result.Tracks)
	r.writePlain("Artists: %d\n", result.Artists)
	r.writePlain("Albums: %d\n", result.Albums)

	if len(result.Errors) > 0 {
		r.writePlain("\nSkipped %d files:\n", len(result.Errors))
		for _, fe := range result.Errors {
			r.writePlain("  - %s: %v\n", fe.Path, fe.Err)
		}
	}
	return nil
}

// CatalogArtists lists artists from the local database.
func (r *Runner) CatalogArtists(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	artists, err := repositories.NewCatalogRepository(db).ListArtists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d artists:\n\n", len(artists))
	for i, a := range artists {
		r.writePlain("%d. %s\n", i+1, a.Name)
		r.writePlain("   ID: %s\n", a.ID)
	}
	return nil
}

// CatalogAlbums lists albums, optionally for one artist.
func (r *Runner) CatalogAlbums(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	albums, err := repositories.NewCatalogRepository(db).ListAlbums(ctx, cmd.String("artist-id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(albums, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d albums:\n\n", len(albums))
	for i, a := range albums {
		if a.Year != nil {
			r.writePlain("%d. %s (%d)\n", i+1, a.Title, *a.Year)
		} else {
			r.writePlain("%d. %s\n", i+1, a.Title)
		}
		r.writePlain("   ID: %s\n", a.ID)
	}
	return nil
}

// CatalogTracks lists tracks, optionally for one album.
func (r *Runner) CatalogTracks(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	tracks, err := repositories.NewCatalogRepository(db).ListTracks(ctx, cmd.String("album-id"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d tracks:\n\n", len(tracks))
	for i, t := range tracks {
		r.writePlain("%d. %s [%s]\n", i+1, t.Title, shared.FormatDuration(t.DurationSeconds))
		r.writePlain("   ID: %s\n", t.ID)
	}
	return nil
}
