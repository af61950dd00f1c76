package eval

import (
	"go.uber.org/zap"

	"github.com/on-the-ground/easing_ive_go/notify"
	"github.com/on-the-ground/easing_ive_go/valuecache"
)

type options struct {
	logger  *zap.Logger
	handler notify.Handler
	store   valuecache.Store
}

// Option configures a Runtime.
type Option func(*options)

// WithLogger sets the runtime logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInvalidationHandler sets the host's late-definition callback.
func WithInvalidationHandler(h notify.Handler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// WithValueStore replaces the store selected by the configuration.
// The runtime does not close a store passed this way.
func WithValueStore(store valuecache.Store) Option {
	return func(o *options) {
		o.store = store
	}
}
