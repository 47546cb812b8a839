package lang

import "github.com/ardnew/blockcfg/log"

// DefaultSource is the source label used when none is given.
const DefaultSource = "<input>"

// DefaultMaxDepth is the default maximum nesting depth of struct blocks.
// Users may modify this before parsing to change the default.
var DefaultMaxDepth = 100

// options configures a parse.
type options struct {
	logger   log.Logger
	source   string
	maxDepth int
}

// Option configures parsing behavior.
type Option func(*options)

// WithSource sets the label identifying the input in diagnostics.
func WithSource(label string) Option {
	return func(o *options) {
		o.source = label
	}
}

// WithMaxDepth sets the maximum nesting depth of struct blocks.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithLogger sets the logger that receives trace records and the report of
// the first syntax error.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func makeOptions(opts ...Option) options {
	o := options{
		source:   DefaultSource,
		maxDepth: DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
