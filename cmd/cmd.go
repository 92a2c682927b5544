// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/amx/internal/formatter"
	"github.com/desertthunder/amx/internal/services"
	"github.com/urfave/cli/v3"
)

func storefrontFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "storefront",
		Aliases: []string{"s"},
		Usage:   "Two letter storefront code (default: client.storefront from config)",
	}
}

func languageFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "l",
		Usage: "Localization, e.g. en-GB (default: client.language from config)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, csv, markdown or txt",
		Value:   formatter.FormatJSON,
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// tokenCommand handles developer token operations
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "token",
		Aliases: []string{"tok"},
		Usage:   "Generate, inspect and track developer tokens",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Sign a new developer token with the configured key",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "months",
						Aliases: []string{"m"},
						Usage:   "Lifetime in calendar months (1-6)",
					},
					&cli.DurationFlag{
						Name:    "expires",
						Aliases: []string{"e"},
						Usage:   "Lifetime as a duration, e.g. 24h (default: 1h)",
					},
					&cli.StringSliceFlag{
						Name:  "origin",
						Usage: "Restrict the token to a web origin (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Record the token in the local ledger",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output token and timestamps as JSON",
					},
				},
				Action: r.TokenGenerate,
			},
			{
				Name:  "verify",
				Usage: "Check a token's signature and expiry",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "token"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output claims as JSON",
					},
				},
				Action: r.TokenVerify,
			},
			{
				Name:  "list",
				Usage: "List tokens in the local ledger",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Include expired tokens",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TokenList,
			},
			{
				Name:  "revoke",
				Usage: "Remove a token from the local ledger",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TokenRevoke,
			},
		},
	}
}

// catalogCommand fetches single catalog resources
func catalogCommand(r *Runner) *cli.Command {
	fetchFlags := func() []cli.Flag {
		return []cli.Flag{
			storefrontFlag(),
			languageFlag(),
			formatFlag(),
			&cli.StringSliceFlag{
				Name:    "include",
				Aliases: []string{"i"},
				Usage:   "Relationships to include, e.g. albums,artists",
			},
		}
	}

	sub := func(name, usage string, aliases ...string) *cli.Command {
		return &cli.Command{
			Name:      name,
			Aliases:   aliases,
			Usage:     usage,
			Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
			Flags:     fetchFlags(),
			Action:    r.CatalogFetch(name),
		}
	}

	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Fetch catalog resources by ID",
		Commands: []*cli.Command{
			sub("song", "Fetch a song", "songs"),
			sub("album", "Fetch an album", "albums"),
			sub("artist", "Fetch an artist", "artists"),
			sub("playlist", "Fetch a playlist", "playlists"),
			sub("music-video", "Fetch a music video", "music-videos", "mv"),
		},
	}
}

// storefrontCommand lists storefronts or fetches one
func storefrontCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "storefront",
		Aliases:   []string{"sf"},
		Usage:     "List storefronts, or show one by code",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags:     []cli.Flag{languageFlag(), formatFlag()},
		Action:    r.Storefronts,
	}
}

// searchCommand searches the catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog",
		Arguments: []cli.Argument{&cli.StringArg{Name: "term"}},
		Flags: []cli.Flag{
			storefrontFlag(),
			languageFlag(),
			formatFlag(),
			&cli.StringSliceFlag{
				Name:    "types",
				Aliases: []string{"t"},
				Usage:   "Resource types: songs, albums, artists, playlists, music-videos",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Results per type (1-25)",
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Results to skip",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write a Markdown export (README.md + cover.jpg) to this directory",
			},
		},
		Action: r.Search,
	}
}

// apiCommand handles direct catalog API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the Apple Music API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Authenticated GET relative to the base URL, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Query parameter as name=value (repeatable, order kept)",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:   "status",
				Usage:  "Check that the configured credentials are accepted",
				Flags:  []cli.Flag{storefrontFlag()},
				Action: r.APIStatus,
			},
		},
	}
}

// batchCommand looks up many resources concurrently
func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Concurrent catalog lookups",
		Commands: []*cli.Command{
			{
				Name:      "lookup",
				Usage:     "Look up IDs with a bounded, rate limited worker pool",
				ArgsUsage: "<id> [id...]",
				Flags: []cli.Flag{
					storefrontFlag(),
					languageFlag(),
					formatFlag(),
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Resource type: songs, albums, artists, playlists, music-videos",
						Value:   "songs",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent workers (max 10, default: tasks.workers from config)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second (default: tasks.rate_limit from config)",
					},
					&cli.BoolFlag{
						Name:  "record",
						Usage: "Record each outcome in the lookup log",
					},
				},
				Action: r.BatchLookup,
			},
			{
				Name:  "history",
				Usage: "Show recorded lookup outcomes",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum records to show",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "failed",
						Usage: "Only show failed lookups",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.BatchHistory,
			},
		},
	}
}

// serveCommand runs the local developer token endpoint
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve fresh developer tokens over HTTP for MusicKit front-ends",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: server.port from config)",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Record issued tokens in the local ledger",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive catalog search.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Aliases:   []string{"interactive", "ui"},
		Usage:     "Launch interactive catalog search browser",
		Arguments: []cli.Argument{&cli.StringArg{Name: "term"}},
		Flags: []cli.Flag{
			storefrontFlag(),
			&cli.StringSliceFlag{
				Name:    "types",
				Aliases: []string{"t"},
				Usage:   "Resource types to search",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Results per type (1-25)",
				Value: services.MaxSearchLimit,
			},
		},
		Action: r.TUI,
	}
}
