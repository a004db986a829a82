// submodule cmd contains command definitions
package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"
)

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

// setupCommand handles configuration and database setup
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the local database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
		},
	}
}

// authCommand handles sign in and out
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, register and sign out",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and store the token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Account email",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Account password (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "username",
						Aliases:  []string{"u"},
						Usage:    "Username",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Account password (prompted when omitted)",
					},
					&cli.StringFlag{
						Name:  "age",
						Usage: "Age",
					},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and forget the token",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show who is signed in",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// moviesCommand handles catalog browsing
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "movies",
		Aliases: []string{"m"},
		Usage:   "Browse the movie catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List movies matching the filters",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Filter titles locally",
					},
					&cli.StringFlag{
						Name:    "genre",
						Aliases: []string{"g"},
						Usage:   "Genre id or name",
					},
					&cli.StringFlag{
						Name:    "year",
						Aliases: []string{"y"},
						Usage:   "Release year",
					},
					&cli.StringFlag{
						Name:    "rating",
						Aliases: []string{"r"},
						Usage:   "Minimum rating (5-9)",
					},
					&cli.StringFlag{
						Name:    "sort",
						Aliases: []string{"s"},
						Usage:   "Sort key, see 'movies sorts'",
					},
					&cli.BoolFlag{
						Name:  "csv",
						Usage: "Output CSV",
					},
				}, jsonFlags()...),
				Action: r.MoviesList,
			},
			{
				Name:      "show",
				Usage:     "Show a movie with its favorite and watchlist status",
				ArgsUsage: "<tmdb-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the movie page in a browser",
					},
				}, jsonFlags()...),
				Action: r.MoviesShow,
			},
			{
				Name:   "genres",
				Usage:  "List genre ids",
				Action: r.MoviesGenres,
			},
			{
				Name:   "sorts",
				Usage:  "List sort keys and rating options",
				Action: r.MoviesSorts,
			},
			{
				Name:   "recommend",
				Usage:  "Show recommendations for the signed-in user",
				Flags:  jsonFlags(),
				Action: r.MoviesRecommend,
			},
			{
				Name:  "history",
				Usage: "Show recent searches",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of searches to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Delete the search history",
					},
				},
				Action: r.MoviesHistory,
			},
		},
	}
}

// favoritesCommand handles the favorites list
func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage favorite movies",
		Commands: []*cli.Command{
			{
				Name:      "toggle",
				Usage:     "Add or remove a movie from favorites",
				ArgsUsage: "<tmdb-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesToggle,
			},
			{
				Name:      "status",
				Usage:     "Show whether a movie is a favorite",
				ArgsUsage: "<tmdb-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.FavoritesStatus,
			},
		},
	}
}

func watchlistFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "list",
		Aliases:  []string{"l"},
		Usage:    "Watchlist name",
		Required: true,
	}
}

// watchlistsCommand handles watchlists and exports
func watchlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watchlists",
		Aliases: []string{"wl"},
		Usage:   "Manage watchlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List watchlists",
				Flags:  jsonFlags(),
				Action: r.WatchlistsList,
			},
			{
				Name:      "create",
				Usage:     "Create a watchlist",
				ArgsUsage: "<name>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.WatchlistsCreate,
			},
			{
				Name:      "show",
				Usage:     "List the movies in a watchlist",
				ArgsUsage: "<name>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     jsonFlags(),
				Action:    r.WatchlistsShow,
			},
			{
				Name:      "add",
				Usage:     "Add a movie to a watchlist",
				ArgsUsage: "<tmdb-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{watchlistFlag()},
				Action:    r.WatchlistsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a movie from a watchlist",
				ArgsUsage: "<tmdb-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{watchlistFlag()},
				Action:    r.WatchlistsRemove,
			},
			{
				Name:      "rate",
				Usage:     "Rate a watchlist movie from 1 to 5 stars",
				ArgsUsage: "<movie-id> <stars>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "stars"},
				},
				Action: r.WatchlistsRate,
			},
			{
				Name:      "comment",
				Usage:     "Comment on a watchlist movie",
				ArgsUsage: "<movie-id> <text>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "text"},
				},
				Action: r.WatchlistsComment,
			},
			{
				Name:      "export",
				Usage:     "Export a watchlist, or all of them, to files",
				ArgsUsage: "[name]",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Export every watchlist",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format: csv, md, txt or json",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.BoolFlag{
						Name:  "cover",
						Usage: "Download a cover image for Markdown exports",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent exports with --all",
						Value: 4,
					},
				},
				Action: r.WatchlistsExport,
			},
		},
	}
}

// usersCommand handles the people directory
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Browse and follow people",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"s"},
						Usage:   "Fuzzy match on usernames",
					},
				}, jsonFlags()...),
				Action: r.UsersList,
			},
			{
				Name:      "show",
				Usage:     "Show a user",
				ArgsUsage: "<user-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.UsersShow,
			},
			{
				Name:      "follow",
				Usage:     "Follow a user",
				ArgsUsage: "<user-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.UsersFollow,
			},
			{
				Name:      "unfollow",
				Usage:     "Stop following a user",
				ArgsUsage: "<user-id>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Action:    r.UsersUnfollow,
			},
		},
	}
}

// profileCommand handles the signed-in user's profile
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View and edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile",
				Flags:  jsonFlags(),
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Change username or age",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "username",
						Aliases: []string{"u"},
						Usage:   "New username",
					},
					&cli.IntFlag{
						Name:  "age",
						Usage: "New age",
					},
				},
				Action: r.ProfileUpdate,
			},
		},
	}
}

// themeCommand handles the persisted color theme
func themeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "theme",
		Usage: "Show or change the color theme",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the current theme",
				Action: r.ThemeShow,
			},
			{
				Name:      "set",
				Usage:     "Set the theme",
				ArgsUsage: "<light|dark>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "mode"}},
				Action:    r.ThemeSet,
			},
			{
				Name:   "toggle",
				Usage:  "Switch between light and dark",
				Action: r.ThemeToggle,
			},
		},
	}
}

func apiRequestCommand(r *Runner, method string) *cli.Command {
	flags := jsonFlags()
	if method != "GET" && method != "DELETE" {
		flags = append(flags, &cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "JSON request body",
		})
	}
	return &cli.Command{
		Name:      strings.ToLower(method),
		Usage:     "Send a " + method + " request",
		ArgsUsage: "<path>",
		Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return r.APIRequest(ctx, cmd, method)
		},
	}
}

// apiCommand sends raw requests through the dispatcher
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Send raw requests to the API with the stored token",
		Commands: []*cli.Command{
			apiRequestCommand(r, "GET"),
			apiRequestCommand(r, "POST"),
			apiRequestCommand(r, "PUT"),
			apiRequestCommand(r, "DELETE"),
		},
	}
}

// cacheCommand handles the offline cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the offline cache",
		Commands: []*cli.Command{
			{
				Name:   "install",
				Usage:  "Precache the configured URLs",
				Action: r.CacheInstall,
			},
			{
				Name:   "activate",
				Usage:  "Delete cache generations other than the current one",
				Action: r.CacheActivate,
			},
			{
				Name:   "status",
				Usage:  "List cache generations and entries",
				Action: r.CacheStatus,
			},
			{
				Name:      "fetch",
				Usage:     "Fetch a path cache-first",
				ArgsUsage: "<path>",
				Arguments: []cli.Argument{&cli.StringArg{Name: "path"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "html",
						Usage: "Ask for HTML (Accept: text/html)",
					},
				},
				Action: r.CacheFetch,
			},
		},
	}
}

// devCommand holds local development helpers
func devCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "dev",
		Usage: "Development helpers",
		Commands: []*cli.Command{
			{
				Name:  "mock-api",
				Usage: "Serve an in-memory CineMate API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to [server] host:port)",
					},
					&cli.BoolFlag{
						Name:  "seed",
						Usage: "Create the demo user demo@cinemate.dev / password",
						Value: true,
					},
				},
				Action: r.DevMockAPI,
			},
		},
	}
}

// tuiCommand launches the interactive client
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal client",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Page to open first",
				Value: "/home",
			},
		},
		Action: r.TUI,
	}
}
