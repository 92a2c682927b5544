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
	"github.com/desertthunder/amx/internal/auth"
	"github.com/desertthunder/amx/internal/formatter"
	"github.com/desertthunder/amx/internal/services"
	"github.com/desertthunder/amx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	strategy   auth.Strategy
	client     *services.Client
	clientErr  error
	ownsClient bool
	catalog    *services.Catalog
	api        *services.APIService
	db         *sql.DB
	ownsDB     bool
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// When Client is nil and Strategy is set, a client is built from Config.Client.
type RunnerOpts struct {
	Config   *shared.Config
	Strategy auth.Strategy
	Client   *services.Client
	API      *services.APIService
	DB       *sql.DB
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:   opts.Config,
		strategy: opts.Strategy,
		client:   opts.Client,
		api:      opts.API,
		db:       opts.DB,
		logger:   opts.Logger,
		output:   opts.Output,
	}

	if r.client != nil {
		r.strategy = r.client.Strategy()
	} else if !r.strategy.IsZero() {
		r.client, r.clientErr = services.NewFromConfig(r.strategy, r.config.Client, r.logger)
		r.ownsClient = r.clientErr == nil
	}
	if r.client != nil {
		r.catalog = services.NewCatalog(r.client)
	}

	if r.api == nil && !r.strategy.IsZero() {
		base := &http.Client{Timeout: r.config.Client.TimeoutDuration()}
		r.api = services.NewAuthenticatedAPIService(context.Background(), r.config.Client.BaseURLOrDefault(), r.strategy, base)
	}

	return r
}

// SetLogger replaces the logger used by the runner, rebuilding the client when the runner created it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.ownsClient {
		if client, err := services.NewFromConfig(r.strategy, r.config.Client, logger); err == nil {
			r.client.Close()
			r.client = client
			r.catalog = services.NewCatalog(client)
		}
	}
}

// Close releases the client's connections and the database when the runner opened it.
func (r *Runner) Close() error {
	if r.client != nil {
		r.client.Close()
	}
	if r.ownsDB && r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, tokenCommand, catalogCommand, storefrontCommand, searchCommand, apiCommand, batchCommand,
		serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) requireCatalog() (*services.Catalog, error) {
	if r.clientErr != nil {
		return nil, r.clientErr
	}
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrMissingCredentials,
			shared.NewValidationError("no authentication method provided; set credentials.apple_music in config.toml"))
	}
	return r.catalog, nil
}

func (r *Runner) requireGenerator() (*auth.TokenGenerator, error) {
	g := r.strategy.Generator()
	if g == nil {
		return nil, fmt.Errorf("%w: token generation needs team_id, key_id and private_key_path", shared.ErrMissingCredentials)
	}
	return g, nil
}

// openDB opens the configured database and runs pending migrations once per process.
func (r *Runner) openDB() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenAndMigrate(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	r.ownsDB = true
	return db, nil
}

func (r *Runner) storefront(cmd *cli.Command) string {
	if sf := cmd.String("storefront"); sf != "" {
		return sf
	}
	if r.config.Client.Storefront != "" {
		return r.config.Client.Storefront
	}
	return "us"
}

func (r *Runner) language(cmd *cli.Command) string {
	if l := cmd.String("l"); l != "" {
		return l
	}
	return r.config.Client.Language
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

// writeRendered renders rows (or v, for JSON) in the requested format.
func (r *Runner) writeRendered(format, title string, rows []formatter.Row, v any) error {
	data, err := formatter.Render(format, title, rows, v)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		if _, err := r.output.Write([]byte("\n")); err != nil {
			return fmt.Errorf("failed to write newline: %w", err)
		}
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
