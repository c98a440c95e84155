// Package tablemerge provides the main entry point for merging CSV-like
// record sources into one table.
//
// A run loads every source concurrently, waits for all of them, and fails
// as a whole if any source fails. Loaded records are concatenated in the
// order the sources were given, normalized (field names and the key value
// lowercased), repaired (overflow values folded into a multi-value field)
// and merged by the identifying field with first-seen precedence.
//
// Example usage:
//
//	m, err := tablemerge.New(
//	    tablemerge.WithKeyField("email"),
//	    tablemerge.WithOverflow("skills", "_5", "_6", "_7"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Register event hooks
//	m.OnRecordRepaired(func(r *records.Record) {
//	    log.Printf("repaired %s:%d", r.Source, r.Line)
//	})
//
//	// Merge and write
//	w := csvfile.New("out.csv")
//	if _, err := m.RunAndWrite(ctx, w, "file1.csv", "file2.csv"); err != nil {
//	    log.Fatal(err)
//	}
package tablemerge

import (
	"context"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/sinks"
)

// Compile-time interface check to ensure proper implementation.
var _ Merger = (*client)(nil)

// Runner runs the load, normalize, sanitize and merge pipeline.
type Runner interface {
	// Run loads sources and returns the merged records. Nothing is merged
	// if any source fails to load; the first load error is returned as is.
	Run(ctx context.Context, sources ...string) (*Result, error)

	// RunAndWrite runs the pipeline and hands the merged records to w with
	// the configured columns. w is never called when Run fails.
	RunAndWrite(ctx context.Context, w sinks.Writer, sources ...string) (*Result, error)
}

// Merger merges record sources and exposes event hooks.
type Merger interface {
	// Runner runs the pipeline
	Runner

	// Hooks provides access to event callback registration
	Hooks

	// KeyField returns the configured identifying field.
	KeyField() string
}

// client is the internal implementation of the Merger interface.
type client struct {
	options *options
	hooks   *hooks
}

// New creates a Merger with the given options.
func New(opts ...Option) (Merger, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &client{
		options: o,
		hooks:   newHooks(),
	}, nil
}

// KeyField returns the configured identifying field.
func (c *client) KeyField() string {
	return c.options.keyField
}

// Run implements Runner.
func (c *client) Run(ctx context.Context, srcs ...string) (*Result, error) {
	ctx = logging.WithKeyField(c.context(ctx), c.options.keyField)
	logger := logging.FromContext(ctx)

	// Step 1: load every source, all or nothing
	loaded, err := c.load(ctx, srcs)
	if err != nil {
		logger.Debug().Err(err).Msg("Load failed, nothing merged")
		return nil, err
	}

	// Step 2: normalize and repair in source order
	rows, stats := c.prepare(srcs, loaded)

	// Step 3: merge by the identifying field
	mopts := []merge.Option{merge.WithProvenance(c.options.provenance)}
	m, err := merge.New(c.options.keyField, mopts...)
	if err != nil {
		return nil, err
	}
	merged, err := m.Merge(ctx, rows)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Result:   merged,
		Sources:  stats,
		Repaired: countRepaired(stats),
	}

	logger.Info().
		Int("sources", len(srcs)).
		Int("records", merged.Metadata.Stats.InputRecords).
		Int("merged", merged.Metadata.Stats.OutputRecords).
		Int("repaired", result.Repaired).
		Msg("Merge completed")

	c.hooks.triggerMerged(result)
	return result, nil
}

// RunAndWrite implements Runner.
func (c *client) RunAndWrite(ctx context.Context, w sinks.Writer, srcs ...string) (*Result, error) {
	if w == nil {
		return nil, &errors.ValidationError{Field: "writer", Message: "cannot be nil"}
	}

	result, err := c.Run(ctx, srcs...)
	if err != nil {
		return nil, err
	}
	if err := w.Write(c.context(ctx), result.Records, c.options.columns); err != nil {
		return result, err
	}
	return result, nil
}

// context attaches the configured logger to ctx.
func (c *client) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.options.logger != nil {
		ctx = logging.WithLogger(ctx, c.options.logger)
	}
	return ctx
}
