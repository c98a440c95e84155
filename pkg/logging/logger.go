// Package logging wires zerolog into tablemerge. Loaders, the merge engine
// and the sinks take their logger from the context, so a line about one
// input carries its "source" and a line about a run carries its
// "key_field".
//
//	ctx = logging.WithKeyField(ctx, "email")
//	ctx = logging.WithSource(ctx, "file1.csv")
//	logging.FromContext(ctx).Info().Int("records", 12).Msg("Loaded")
//
// The process default is built by EnvConfig: console output on a terminal,
// JSON otherwise.
package logging

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	defaultLogger = NewLoggerFromConfig(EnvConfig())

	// Nop discards everything.
	Nop = zerolog.Nop()
)

// Default returns the process logger used when a context carries none.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// New writes JSON to w at the current global level.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).
		Level(zerolog.GlobalLevel()).
		With().
		Timestamp().
		Logger()
}
