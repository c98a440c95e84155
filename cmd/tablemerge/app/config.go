package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/agentstation/tablemerge/pkg/columns"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Pipeline configuration
	KeyField          string
	OverflowField     string
	OverflowSlots     []string
	OverflowDelimiter string
	Delimiter         string
	TrimSpace         bool
	Concurrency       int
	Columns           []columns.Column

	// Output is the destination file of the merge command
	Output string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables (TABLEMERGE_*)
// 3. .env files
// 4. Config file (./.tablemerge.yaml or ~/.tablemerge.yaml, or configFile)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit config file must exist; the search paths are optional.
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", err.Error(), err)
		}
	}

	cols := columns.Default()
	if v.IsSet("columns") {
		cols = nil
		if err := v.UnmarshalKey("columns", &cols); err != nil {
			return nil, errors.NewConfigError("columns", err.Error(), err)
		}
		if err := columns.Validate(cols); err != nil {
			return nil, errors.NewConfigError("columns", err.Error(), err)
		}
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),
		Format:     v.GetString("format"),

		KeyField:          v.GetString("key_field"),
		OverflowField:     v.GetString("overflow_field"),
		OverflowSlots:     getStringList(v, "overflow_slots"),
		OverflowDelimiter: v.GetString("overflow_delimiter"),
		Delimiter:         v.GetString("delimiter"),
		TrimSpace:         v.GetBool("trim_space"),
		Concurrency:       v.GetInt("concurrency"),
		Columns:           cols,

		Output: v.GetString("output"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("key_field", constants.DefaultKeyField)
	v.SetDefault("overflow_field", constants.DefaultOverflowField)
	v.SetDefault("overflow_slots", constants.DefaultOverflowSlots())
	v.SetDefault("overflow_delimiter", constants.DefaultDelimiter)
	v.SetDefault("delimiter", ",")
	v.SetDefault("trim_space", false)
	v.SetDefault("concurrency", constants.DefaultConcurrency)
	v.SetDefault("output", constants.DefaultOutputPath)
	v.SetDefault("format", "")
}

// UpdateFromFlags copies flags the user set explicitly over the loaded
// values, so flags take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("verbose") {
		c.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("quiet") {
		c.Quiet, _ = flags.GetBool("quiet")
	}
	if flags.Changed("no-color") {
		c.NoColor, _ = flags.GetBool("no-color")
	}
	if flags.Changed("format") {
		c.Format, _ = flags.GetString("format")
	}
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("key") {
		c.KeyField, _ = flags.GetString("key")
	}
	if flags.Changed("overflow-field") {
		c.OverflowField, _ = flags.GetString("overflow-field")
	}
	if flags.Changed("overflow-slots") {
		c.OverflowSlots, _ = flags.GetStringSlice("overflow-slots")
	}
	if flags.Changed("overflow-delimiter") {
		c.OverflowDelimiter, _ = flags.GetString("overflow-delimiter")
	}
	if flags.Changed("delimiter") {
		c.Delimiter, _ = flags.GetString("delimiter")
	}
	if flags.Changed("trim-space") {
		c.TrimSpace, _ = flags.GetBool("trim-space")
	}
	if flags.Changed("concurrency") {
		c.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("columns") {
		specs, _ := flags.GetStringSlice("columns")
		if c.Columns, err = columns.Parse(specs...); err != nil {
			return err
		}
	}
	return c.Validate()
}

// Validate checks values that cannot be checked by their consumers.
func (c *Config) Validate() error {
	if len([]rune(c.Delimiter)) != 1 {
		return &errors.ValidationError{
			Field:   "delimiter",
			Value:   c.Delimiter,
			Message: "must be a single character",
		}
	}
	return nil
}

// Comma returns the CSV field delimiter as a rune.
func (c *Config) Comma() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ','
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getStringList reads key as a list. Values from the environment arrive
// as one comma-separated string and are split here.
func getStringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
