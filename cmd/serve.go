package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/setlist/internal/identity"
	"github.com/desertthunder/setlist/internal/repositories"
	"github.com/desertthunder/setlist/internal/search"
	"github.com/desertthunder/setlist/internal/server"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/web"
)

// Serve runs the HTTP API until the process is interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	verifier, err := identity.New(r.config.Identity, r.httpClient)
	if err != nil {
		return err
	}

	catalog := repositories.NewCatalogRepository(db)
	opts := server.APIOptions{
		Catalog:     catalog,
		Playlists:   repositories.NewPlaylistRepository(db),
		Verifier:    verifier,
		Logger:      shared.WithLogger(r.logger, "component", "api"),
		SearchLimit: r.config.Search.Limit,
	}

	switch r.config.Search.Backend {
	case shared.SearchBackendSQLite, "":
	case shared.SearchBackendBleve:
		index, err := search.NewIndex(r.config.Search.IndexPath, catalog, r.logger)
		if err != nil {
			return err
		}
		defer index.Close()

		if err := index.Rebuild(ctx, catalog); err != nil {
			return fmt.Errorf("failed to build search index: %w", err)
		}
		opts.CatalogSearcher = index
	default:
		return fmt.Errorf("%w: unknown search backend %q", shared.ErrInvalidConfig, r.config.Search.Backend)
	}

	r.logger.Info("starting API", "addr", cfg.Addr(), "search", r.config.Search.Backend, "identity", r.config.Identity.Provider)
	api := server.NewAPI(opts)
	api.Handler(web.NewPages(catalog, opts.Playlists, shared.WithLogger(r.logger, "component", "web")))
	return server.NewServer(cfg, api, r.logger).Run(ctx)
}
