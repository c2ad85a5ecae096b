// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func userFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "User ID",
		Required: true,
	}
}

func movieFlag() cli.Flag {
	return &cli.Int64Flag{
		Name:     "movie",
		Aliases:  []string{"m"},
		Usage:    "Movie ID",
		Required: true,
	}
}

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
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
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// usersCommand handles user operations
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage catalog owners",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List every user",
				Flags:  jsonFlags(),
				Action: r.UsersList,
			},
			{
				Name:  "add",
				Usage: "Add a user",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  jsonFlags(),
				Action: r.UsersAdd,
			},
		},
	}
}

// moviesCommand handles shared movie records and metadata lookups
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "movies",
		Usage: "Browse stored movies and look up metadata",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored movies",
				Flags: append(jsonFlags(),
					&cli.StringFlag{
						Name:  "director",
						Usage: "Only movies by this director (case-insensitive)",
					},
					&cli.IntFlag{
						Name:  "year",
						Usage: "Only movies released this year",
					},
				),
				Action: r.MoviesList,
			},
			{
				Name:  "show",
				Usage: "Show one movie and how many catalogs contain it",
				Flags: append(jsonFlags(),
					&cli.Int64Flag{
						Name:     "id",
						Usage:    "Movie ID",
						Required: true,
					},
				),
				Action: r.MoviesShow,
			},
			{
				Name:  "find",
				Usage: "Find a stored movie by name (case-insensitive)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  jsonFlags(),
				Action: r.MoviesFind,
			},
			{
				Name:  "lookup",
				Usage: "Look up a title with the metadata service without storing it",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "title"},
				},
				Flags:  jsonFlags(),
				Action: r.MoviesLookup,
			},
		},
	}
}

// catalogCommand handles per-user catalog operations
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Manage a user's movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List a user's movies",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only entries with this status (watched, watching, wishlist)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (txt, csv, markdown, json)",
						Value:   "txt",
					},
				},
				Action: r.CatalogList,
			},
			{
				Name:  "export",
				Usage: "Write a user's catalog to a file",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, txt)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: {user_id}_movies.{format})",
					},
				},
				Action: r.CatalogExport,
			},
			{
				Name:  "add",
				Usage: "Look up a title and add it to a user's catalog",
				Flags: append(jsonFlags(),
					userFlag(),
					&cli.StringFlag{
						Name:     "title",
						Aliases:  []string{"t"},
						Usage:    "Movie title to look up",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Watch status (watched, watching, wishlist)",
					},
					&cli.IntFlag{
						Name:  "rating",
						Usage: "Personal rating",
					},
				),
				Action: r.CatalogAdd,
			},
			{
				Name:  "update",
				Usage: "Change the rating and status of a catalog entry",
				Flags: []cli.Flag{
					userFlag(),
					movieFlag(),
					&cli.IntFlag{
						Name:     "rating",
						Usage:    "Personal rating (2, 3 or 4)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "status",
						Usage:    "Watch status (watched, watching, wishlist)",
						Required: true,
					},
				},
				Action: r.CatalogUpdate,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a movie from a user's catalog",
				Flags: []cli.Flag{
					userFlag(),
					movieFlag(),
				},
				Action: r.CatalogRemove,
			},
			{
				Name:  "import",
				Usage: "Add every title in a file (one per line) to a user's catalog",
				Flags: append(jsonFlags(),
					userFlag(),
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Path to the titles file, or - for stdin",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Watch status applied to every imported title",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent lookups (max 10)",
						Value: 4,
					},
					&cli.Float64Flag{
						Name:  "rate",
						Usage: "Lookups per second",
						Value: 5,
					},
				),
				Action: r.CatalogImport,
			},
		},
	}
}

// serveCommand starts the JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for browsing one user's catalog.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for a user's catalog",
		Flags:   []cli.Flag{userFlag()},
		Action:  r.TUI,
	}
}
