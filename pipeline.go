package tablemerge

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/normalize"
	"github.com/agentstation/tablemerge/pkg/records"
)

// load reads every source concurrently and returns the records indexed by
// source position. The first failure is returned as soon as it happens;
// siblings still in flight are not canceled and their results are dropped,
// and sources not yet started are never loaded.
func (c *client) load(ctx context.Context, srcs []string) ([][]*records.Record, error) {
	loaded := make([][]*records.Record, len(srcs))

	var (
		g        errgroup.Group
		once     sync.Once
		firstErr error
	)
	failed := make(chan struct{})
	if c.options.concurrency > 0 {
		g.SetLimit(c.options.concurrency)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
	launch:
		for i, src := range srcs {
			// With a limit set, Go blocks for a free slot and the load may
			// only start after a sibling failed; both sides check.
			select {
			case <-failed:
				break launch
			default:
			}
			g.Go(func() error {
				select {
				case <-failed:
					return nil
				default:
				}
				start := time.Now()
				srcLogger := logging.FromContext(logging.WithSource(ctx, src))
				srcLogger.Debug().Msg("Loading")

				recs, err := c.options.loader.Load(ctx, src)
				if err != nil {
					srcLogger.Warn().Err(err).Msg("Source failed to load")
					once.Do(func() {
						firstErr = err
						close(failed)
					})
					return err
				}

				loaded[i] = recs
				srcLogger.Info().
					Int("records", len(recs)).
					Dur("duration", time.Since(start)).
					Msg("Loaded")
				c.hooks.triggerLoaded(src, len(recs))
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-failed:
		return nil, firstErr
	case <-done:
		select {
		case <-failed:
			return nil, firstErr
		default:
			return loaded, nil
		}
	}
}

// prepare normalizes and repairs every record, flattening sources in the
// order they were given.
func (c *client) prepare(srcs []string, loaded [][]*records.Record) ([]*records.Record, []SourceStats) {
	norm := normalize.NewNormalizer(c.options.keyField)
	san := normalize.NewSanitizer(
		c.options.overflowField,
		c.options.overflowSlots,
		normalize.WithDelimiter(c.options.overflowDelimiter),
	)

	total := 0
	for _, recs := range loaded {
		total += len(recs)
	}

	out := make([]*records.Record, 0, total)
	stats := make([]SourceStats, len(loaded))
	for i, recs := range loaded {
		for _, r := range recs {
			n := norm.Normalize(r)
			if san.Sanitize(n) {
				stats[i].Repaired++
				c.hooks.triggerRepaired(n)
			}
			out = append(out, n)
		}
		stats[i].ID = srcs[i]
		stats[i].Records = len(recs)
	}
	return out, stats
}
