// Package app provides the application context and dependency management
// for the tablemerge CLI: configuration, logging and construction of the
// merge pipeline shared by all commands.
package app

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge"
	sourcecsv "github.com/agentstation/tablemerge/internal/sources/csvfile"
	"github.com/agentstation/tablemerge/pkg/columns"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/sources"
)

// App represents the tablemerge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Output streams for commands
	stdout io.Writer
	stderr io.Writer

	// Merger instance (lazy-initialized, singleton)
	mu     sync.RWMutex
	merger tablemerge.Merger
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Columns returns the configured output columns.
func (a *App) Columns() []columns.Column {
	return a.config.Columns
}

// OutputPath returns the configured destination file.
func (a *App) OutputPath() string {
	return a.config.Output
}

// OutputFormat returns the configured display format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Merger returns the merger built from the configuration. Without options
// the same instance is returned on every call; with options a new merger
// is built each time.
func (a *App) Merger(opts ...tablemerge.Option) (tablemerge.Merger, error) {
	if len(opts) > 0 {
		return tablemerge.New(append(a.buildOptions(), opts...)...)
	}

	a.mu.RLock()
	if a.merger != nil {
		m := a.merger
		a.mu.RUnlock()
		return m, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.merger != nil {
		return a.merger, nil
	}

	m, err := tablemerge.New(a.buildOptions()...)
	if err != nil {
		return nil, err
	}
	a.merger = m
	return m, nil
}

// Shutdown releases application resources.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.merger = nil
	return nil
}

// buildOptions constructs merger options from the app configuration.
func (a *App) buildOptions() []tablemerge.Option {
	readerOpts := []sourcecsv.Option{
		sourcecsv.WithComma(a.config.Comma()),
		sourcecsv.WithTrimLeadingSpace(a.config.TrimSpace),
	}
	loader := sources.NewRegistry(sourcecsv.New(readerOpts...))
	loader.Set(".tsv", sourcecsv.New(append(readerOpts, sourcecsv.WithComma('\t'))...))

	return []tablemerge.Option{
		tablemerge.WithKeyField(a.config.KeyField),
		tablemerge.WithOverflow(a.config.OverflowField, a.config.OverflowSlots...),
		tablemerge.WithOverflowDelimiter(a.config.OverflowDelimiter),
		tablemerge.WithConcurrency(a.config.Concurrency),
		tablemerge.WithColumns(a.config.Columns...),
		tablemerge.WithLoader(loader),
		tablemerge.WithLogger(a.logger),
	}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithMerger sets a custom merger instance (useful for testing).
func WithMerger(m tablemerge.Merger) Option {
	return func(a *App) error {
		a.merger = m
		return nil
	}
}

// WithOutput redirects command output, mainly for tests.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) error {
		a.stdout = stdout
		a.stderr = stderr
		return nil
	}
}
