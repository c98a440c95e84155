package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge/pkg/constants"
)

// Config describes where tablemerge logs go and how they look.
type Config struct {
	Level      string // trace, debug, info, warn, error or off
	Format     string // json, console, or auto for console on a terminal
	Output     string // stderr, stdout, discard, or a file appended to
	TimeFormat string // console timestamps: kitchen, rfc3339, rfc3339nano or a Go layout
	NoColor    bool
	AddCaller  bool

	// Fields are attached to every line, e.g. a run id or the source list.
	Fields map[string]any
}

// DefaultConfig logs at info to stderr and picks the format from the
// terminal.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto",
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// EnvConfig is DefaultConfig adjusted by LOG_LEVEL (or DEBUG) and
// LOG_FORMAT. The process default logger starts from it.
func EnvConfig() *Config {
	cfg := DefaultConfig()
	switch {
	case os.Getenv("LOG_LEVEL") != "":
		cfg.Level = os.Getenv("LOG_LEVEL")
	case os.Getenv("DEBUG") != "":
		cfg.Level = "debug"
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = format
	}
	return cfg
}

// NewLoggerFromConfig builds a logger and sets the zerolog global level to
// match. A nil cfg means DefaultConfig. Debug and trace loggers always
// report the caller.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	zctx := zerolog.New(newWriter(cfg)).Level(level).With().Timestamp()
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		zctx = zctx.Caller()
	}
	for k, v := range cfg.Fields {
		zctx = addField(zctx, k, v)
	}
	return zctx.Logger()
}

// Configure replaces the default logger.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

func newWriter(cfg *Config) io.Writer {
	out, file := openOutput(cfg.Output)

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if file != nil && isTerminal(file) {
			format = "console"
		}
	}
	if format != "console" && format != "pretty" {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: parseTimeFormat(cfg.TimeFormat),
		NoColor:    cfg.NoColor,
	}
}

// openOutput resolves dest to a writer. file is the underlying *os.File
// when there is one, for terminal detection. An unopenable path falls back
// to stderr so logging never blocks a merge.
func openOutput(dest string) (out io.Writer, file *os.File) {
	switch strings.ToLower(dest) {
	case "", "stderr":
		return os.Stderr, os.Stderr
	case "stdout":
		return os.Stdout, os.Stdout
	case "discard", "none":
		return io.Discard, nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return os.Stderr, os.Stderr
	}
	return f, f
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var levelAliases = map[string]zerolog.Level{
	"":        zerolog.InfoLevel,
	"warning": zerolog.WarnLevel,
	"none":    zerolog.Disabled,
	"off":     zerolog.Disabled,
}

// parseLevel falls back to info for names zerolog does not know.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if l, ok := levelAliases[level]; ok {
		return l
	}
	if l, err := zerolog.ParseLevel(level); err == nil {
		return l
	}
	return zerolog.InfoLevel
}

var timeLayouts = map[string]string{
	"kitchen":     time.Kitchen,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"unix":        "",
	"epoch":       "",
}

// parseTimeFormat accepts a named layout or anything that looks like a Go
// time layout.
func parseTimeFormat(format string) string {
	if layout, ok := timeLayouts[strings.ToLower(format)]; ok {
		return layout
	}
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}

func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case []string:
		return ctx.Strs(key, v)
	case int:
		return ctx.Int(key, v)
	case bool:
		return ctx.Bool(key, v)
	case time.Duration:
		return ctx.Dur(key, v)
	case error:
		if key == zerolog.ErrorFieldName {
			return ctx.Err(v)
		}
		return ctx.Str(key, v.Error())
	default:
		return ctx.Interface(key, v)
	}
}
