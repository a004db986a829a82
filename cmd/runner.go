package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinemate/internal/actions"
	"github.com/desertthunder/cinemate/internal/cache"
	"github.com/desertthunder/cinemate/internal/repositories"
	"github.com/desertthunder/cinemate/internal/services"
	"github.com/desertthunder/cinemate/internal/session"
	"github.com/desertthunder/cinemate/internal/shared"
	"github.com/desertthunder/cinemate/internal/state"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Handles backed by storage or the network are created on first use by [Runner.connect].
type Runner struct {
	config     *shared.Config
	loadConfig bool
	ephemeral  bool
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	password   func(prompt string) (string, error)

	db         *sql.DB
	slots      repositories.Slots
	history    *repositories.SearchHistoryRepository
	dispatcher *services.Dispatcher
	api        services.CineMate
	session    *session.Store
	alert      *state.Alert
	theme      *state.Theme
	controller *actions.Controller
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // When nil, loaded from the --config flag
	HTTPClient *http.Client
	Slots      repositories.Slots // Replaces the SQLite store
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Password   func(prompt string) (string, error) // Defaults to a hidden terminal prompt
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loadConfig := opts.Config == nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		loadConfig: loadConfig,
		httpClient: opts.HTTPClient,
		slots:      opts.Slots,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		password:   opts.Password,
	}
}

// SetLogger replaces the logger, e.g. with a file logger before the TUI takes over the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// configure applies the global flags. It runs before every command.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.loadConfig {
		config, err := shared.LoadConfigOrDefault(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}
	if baseURL := cmd.String("base-url"); baseURL != "" {
		r.config.API.BaseURL = baseURL
	}
	r.ephemeral = r.ephemeral || cmd.Bool("ephemeral")

	level := r.config.Log.Level
	if cmd.String("log-level") != "" {
		level = cmd.String("log-level")
	}
	if err := shared.SetLogLevel(r.logger, level); err != nil {
		return ctx, err
	}
	return ctx, nil
}

// connect opens the slot store and builds the API client, session and controller.
func (r *Runner) connect() error {
	if r.controller != nil {
		return nil
	}

	if r.slots == nil {
		if r.ephemeral {
			r.slots = repositories.NewMemorySlots(nil)
		} else {
			db, err := shared.OpenStore(r.config.Database.Path, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			r.db = db
			r.slots = repositories.NewSlotRepository(db)
			r.history = repositories.NewSearchHistoryRepository(db)
		}
	}

	client := r.httpClient
	if timeout := r.config.API.Timeout.Duration; timeout > 0 && client.Timeout == 0 {
		c := *client
		c.Timeout = timeout
		client = &c
	}

	r.dispatcher = services.NewDispatcher(services.DispatcherOpts{
		BaseURL:    r.config.API.BaseURL,
		HTTPClient: client,
		Storage:    r.slots,
		Limiter:    services.NewLimiter(r.config.API.RequestsPerSecond, r.config.API.Burst),
		Logger:     shared.WithLogger(r.logger, "component", "api"),
	})
	r.api = services.NewCineMateService(r.dispatcher)
	r.session = session.New(r.api, r.slots, shared.WithLogger(r.logger, "component", "session"))
	r.dispatcher.OnUnauthorized(r.session.Expire)

	theme, err := state.NewTheme(r.slots, r.config.UI.Theme, nil)
	if err != nil {
		return err
	}
	r.theme = theme
	r.alert = state.NewAlert(r.config.UI.AlertDuration.Duration, nil)
	r.controller = actions.New(r.api, r.session, r.alert, r.logger)
	return nil
}

// signedIn resolves the session and fails unless a user is signed in.
func (r *Runner) signedIn(ctx context.Context) error {
	if err := r.connect(); err != nil {
		return err
	}
	if r.session.Bootstrap(ctx) == nil {
		return fmt.Errorf("%w: run 'cinemate auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

// openCache opens the offline cache configured for the API host.
func (r *Runner) openCache() (*cache.Store, error) {
	return cache.Open(r.config.Cache.Path, cache.Options{
		Name:        r.config.Cache.Name,
		BaseURL:     r.config.API.BaseURL,
		Precache:    r.config.Cache.Precache,
		OfflinePage: r.config.Cache.OfflinePage,
		Logger:      shared.WithLogger(r.logger, "component", "cache"),
	})
}

// Close releases the database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// report prints the current alert, if any.
func (r *Runner) report() error {
	if r.alert == nil {
		return nil
	}
	n, ok := r.alert.Current()
	if !ok {
		return nil
	}
	return r.writePlain("%s %s\n", severityMark(n.Severity), n.Message)
}

// fail returns err, prefixed with the alert text the controller reported for it.
func (r *Runner) fail(err error) error {
	if r.alert == nil {
		return err
	}
	if n, ok := r.alert.Current(); ok && n.Severity != state.SeveritySuccess && n.Message != err.Error() {
		return fmt.Errorf("%s: %w", n.Message, err)
	}
	return err
}

func severityMark(s state.Severity) string {
	switch s {
	case state.SeveritySuccess:
		return "✓"
	case state.SeverityWarning:
		return "!"
	case state.SeverityInfo:
		return "i"
	}
	return "✗"
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, favoritesCommand, watchlistsCommand, usersCommand,
		profileCommand, themeCommand, apiCommand, cacheCommand, devCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
