package reactive

import "github.com/rs/zerolog"

const defaultFlushLimit = 100

type options struct {
	onError    OnErrorFunc
	logger     zerolog.Logger
	equal      EqualFunc
	flushLimit int
}

// Option configures a Runtime.
type Option func(*options)

// WithErrorHandler sets the handler for errors returned by effects re-run
// from a plain write. Without one those errors are logged.
func WithErrorHandler(fn OnErrorFunc) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithLogger sets the logger used by the runtime. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithEqual replaces SameValue as the test for no-op writes.
func WithEqual(fn EqualFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.equal = fn
		}
	}
}

// WithFlushLimit bounds how many times a single effect may run while one write
// settles before the flush gives up with ErrFlushLimit. Effects that keep
// re-triggering each other hit this; long acyclic chains do not.
func WithFlushLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.flushLimit = n
		}
	}
}

func defaultOptions() options {
	return options{
		logger:     zerolog.Nop(),
		equal:      SameValue,
		flushLimit: defaultFlushLimit,
	}
}
