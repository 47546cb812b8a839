package profile

// Config holds the parameters of a profiling session.
type Config struct {
	Mode  string // one of [Modes]; empty disables profiling
	Path  string // output directory
	Quiet bool   // suppress the profiler's own log lines
}

// Option sets a parameter of a [Config].
type Option func(Config) Config

// Make returns a Config with the given options applied.
func Make(opts ...Option) Config {
	var c Config

	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// Enabled reports whether Start would begin profiling.
//
// It is false when built without tag pprof or when the mode is not one of
// [Modes].
func (c Config) Enabled() bool {
	return c.Mode != "" && supported(c.Mode)
}

// Start initializes the profiler and returns an interface for stopping it.
//
// If build tag pprof is unset or the mode is not supported, then Start
// returns a no-op implementation. Both Start and Stop are always safely
// callable.
func (c Config) Start() interface{ Stop() } {
	if !c.Enabled() {
		return ignore{}
	}

	return start(c)
}

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) Option {
	return func(c Config) Config {
		c.Mode = mode

		return c
	}
}

// WithPath returns a functional option for setting a profiler's output path.
func WithPath(path string) Option {
	return func(c Config) Config {
		c.Path = path

		return c
	}
}

// WithQuiet returns a functional option for setting a profiler's quiet flag.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.Quiet = quiet

		return c
	}
}

type ignore struct{}

func (ignore) Stop() {}
