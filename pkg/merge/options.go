package merge

import (
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/records"
)

// CollisionHook is called when an incoming record shares its key with a
// record already stored, before the two are combined.
type CollisionHook func(key string, stored, incoming *records.Record)

type options struct {
	tracking   bool
	collisions []CollisionHook
}

func defaultOptions() *options {
	return &options{}
}

// Option is a function that configures a Merger.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithProvenance enables field-level tracking.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}

// WithCollisionHook registers a hook called on every key collision.
func WithCollisionHook(hook CollisionHook) Option {
	return func(o *options) error {
		if hook == nil {
			return &errors.ValidationError{
				Field:   "collision_hook",
				Message: "cannot be nil",
			}
		}
		o.collisions = append(o.collisions, hook)
		return nil
	}
}
