// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: prettyDefault,
		},
	}
}

// setupCommand handles setup operations for the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create config.toml if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "List migrations and whether they are applied",
				Action: r.SetupStatus,
			},
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the playlist HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override server.host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override server.port",
			},
		},
		Action: r.Serve,
	}
}

// catalogCommand handles local catalog operations.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Import and inspect the local catalog",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Scan a directory of audio files and upsert artists, albums and tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "dir"},
				},
				Action: r.CatalogImport,
			},
			{
				Name:   "artists",
				Usage:  "List artists by name",
				Flags:  outputFlags(true),
				Action: r.CatalogArtists,
			},
			{
				Name:  "albums",
				Usage: "List albums by title",
				Flags: append(outputFlags(true), &cli.StringFlag{
					Name:  "artist-id",
					Usage: "Only albums by this artist",
				}),
				Action: r.CatalogAlbums,
			},
			{
				Name:  "tracks",
				Usage: "List tracks by title",
				Flags: append(outputFlags(true), &cli.StringFlag{
					Name:  "album-id",
					Usage: "Only tracks on this album",
				}),
				Action: r.CatalogTracks,
			},
		},
	}
}

// searchCommand returns the top-level TUI command.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive search client",
		Action:  r.TUI,
	}
}

// playlistsCommand handles playlist operations through the API.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations against the API",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your playlists",
				Flags:  outputFlags(true),
				Action: r.PlaylistsList,
			},
			{
				Name:   "public",
				Usage:  "List public playlists",
				Flags:  outputFlags(true),
				Action: r.PlaylistsPublic,
			},
			{
				Name:  "create",
				Usage: "Create a private playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Publish the playlist after creating it",
					},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "export",
				Usage: "Export a playlist, or all of yours with --all",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Playlist ID to export",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every playlist you own",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, md, txt)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (single) or directory (--all); stdout when empty",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent file writers for --all",
						Value: 4,
					},
				},
				Action: r.PlaylistsExport,
			},
			{
				Name:  "import",
				Usage: "Create a playlist from a JSON export document",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "into",
						Usage: "Add to this existing playlist instead of creating one",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Name of the new playlist (defaults to the document's)",
					},
				},
				Action: r.PlaylistsImport,
			},
			{
				Name:  "copy",
				Usage: "Copy the tracks of any readable playlist into one of yours",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Usage:    "Source playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "into",
						Usage: "Target playlist ID",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Create a new target playlist with this name",
					},
				},
				Action: r.PlaylistsCopy,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the playlist API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output compact JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:  "dump",
				Usage: "Health, public playlists and your playlists with details",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					&cli.StringFlag{
						Name:  "save",
						Usage: "Also write the dump to this file",
					},
				},
				Action: r.APIDump,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with the identity provider and store the access token in config",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: defaultLoginTimeout,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening it",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check service health and whether the configured token is accepted",
				Action: r.AuthStatus,
			},
			{
				Name:  "hash-token",
				Usage: "Print the bcrypt hash of a bearer token for [[identity.tokens]]",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "token"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "subject",
						Usage: "Subject to print in the TOML snippet",
					},
				},
				Action: r.AuthHashToken,
			},
		},
	}
}
