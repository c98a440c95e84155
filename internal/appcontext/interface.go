// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface instead of the
// concrete App so they can be tested with Mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/columns"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/tablemerge/app implements this interface.
type Interface interface {
	// Merger returns a merger configured from flags, environment and the
	// config file. Extra options are applied after the configured ones.
	Merger(opts ...tablemerge.Option) (tablemerge.Merger, error)

	// Columns returns the configured output columns.
	Columns() []columns.Column

	// OutputPath returns the configured destination file.
	OutputPath() string

	// OutputFormat returns the configured display format (table, json, yaml).
	OutputFormat() string

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
