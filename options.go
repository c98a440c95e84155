package tablemerge

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge/internal/sources/csvfile"
	"github.com/agentstation/tablemerge/pkg/columns"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/normalize"
	"github.com/agentstation/tablemerge/pkg/sources"
)

// options holds the configuration of a Merger.
type options struct {
	keyField          string
	overflowField     string
	overflowSlots     []string
	overflowDelimiter string
	loader            sources.Loader
	concurrency       int
	provenance        bool
	columns           []columns.Column
	logger            *zerolog.Logger
}

// Option is a function that configures a Merger.
type Option func(*options) error

// defaults returns the default options: key "email", overflow slots
// "_5", "_6", "_7" folded into "skills", CSV loading for ".csv" and ".tsv"
// and the default output columns.
func defaults() *options {
	return &options{
		keyField:          constants.DefaultKeyField,
		overflowField:     constants.DefaultOverflowField,
		overflowSlots:     constants.DefaultOverflowSlots(),
		overflowDelimiter: constants.DefaultDelimiter,
		loader:            DefaultLoader(),
		concurrency:       constants.DefaultConcurrency,
		columns:           columns.Default(),
	}
}

// apply applies the given options and validates the result.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// DefaultLoader returns the loader used when none is configured: a CSV
// reader for every source, tab separated for ".tsv" files.
func DefaultLoader() *sources.Registry {
	reg := sources.NewRegistry(csvfile.New())
	reg.Set(".tsv", csvfile.New(csvfile.WithComma('\t')))
	return reg
}

// WithKeyField sets the identifying field records are merged by. The name
// is lowercased to match normalized records.
func WithKeyField(field string) Option {
	return func(o *options) error {
		if field == "" {
			return &errors.ValidationError{Field: "key_field", Message: "cannot be empty"}
		}
		o.keyField = normalize.FieldName(field)
		return nil
	}
}

// WithOverflow sets the multi-value field and the overflow slots folded
// into it. With no slots the default slots are kept.
func WithOverflow(field string, slots ...string) Option {
	return func(o *options) error {
		if field == "" {
			return &errors.ValidationError{Field: "overflow_field", Message: "cannot be empty"}
		}
		o.overflowField = normalize.FieldName(field)
		if len(slots) > 0 {
			o.overflowSlots = make([]string, len(slots))
			for i, slot := range slots {
				o.overflowSlots[i] = normalize.FieldName(slot)
			}
		}
		return nil
	}
}

// WithOverflowDelimiter sets the separator used when folding overflow values.
func WithOverflowDelimiter(delimiter string) Option {
	return func(o *options) error {
		o.overflowDelimiter = delimiter
		return nil
	}
}

// WithLoader sets the loader used to read sources.
func WithLoader(l sources.Loader) Option {
	return func(o *options) error {
		if l == nil {
			return &errors.ValidationError{Field: "loader", Message: "cannot be nil"}
		}
		o.loader = l
		return nil
	}
}

// WithConcurrency limits how many sources load at once. Zero means no limit.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return &errors.ValidationError{Field: "concurrency", Value: n, Message: "cannot be negative"}
		}
		o.concurrency = n
		return nil
	}
}

// WithProvenance enables field-level provenance tracking.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.provenance = enabled
		return nil
	}
}

// WithColumns sets the output columns handed to writers.
func WithColumns(cols ...columns.Column) Option {
	return func(o *options) error {
		if err := columns.Validate(cols); err != nil {
			return err
		}
		o.columns = append([]columns.Column(nil), cols...)
		return nil
	}
}

// WithLogger sets the logger used for a run. Without it the logger from
// the run's context is used.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
