// Package constants provides shared constants used throughout the tablemerge codebase.
// This includes the default schema of the merged table, file permissions and
// limits that should be consistent across the application.
package constants

import "time"

// Schema defaults describe the record layout tablemerge was built for.
const (
	// DefaultKeyField is the identifying field records are merged on
	DefaultKeyField = "email"

	// DefaultOverflowField is the multi-value field that absorbs unlabeled trailing values
	DefaultOverflowField = "skills"

	// DefaultDelimiter joins values folded into the overflow field
	DefaultDelimiter = ","

	// DefaultOutputPath is where the merged table is written when no path is given
	DefaultOutputPath = "out.csv"

	// DefaultConfigName is the config file base name searched in . and $HOME
	DefaultConfigName = ".tablemerge"

	// EnvPrefix prefixes environment variables read by the CLI
	EnvPrefix = "TABLEMERGE"

	// SuccessMessage is printed when a merge run completes
	SuccessMessage = "success!"
)

// DefaultOverflowSlots returns the anonymous column names a CSV reader gives
// to values past the fifth header column.
func DefaultOverflowSlots() []string {
	return []string{"_5", "_6", "_7"}
}

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// DefaultConcurrency bounds concurrent source loads (0 means unlimited)
	DefaultConcurrency = 0

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds graceful shutdown after a failed command
	ShutdownTimeout = 5 * time.Second
)
