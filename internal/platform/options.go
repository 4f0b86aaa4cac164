package platform

import "log/slog"

// options holds the internal configuration for opening a workspace.
type options struct {
	logger   *slog.Logger
	findRoot bool
}

// Option defines a functional option for configuring the workspace.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger:   nil,
		findRoot: true,
	}
}

// WithLogger sets the logger used by the store and the reconciler.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithExactDir disables the upward dotfile search: the given directory must
// itself hold the dotfile. Tests use this to keep fixtures hermetic.
func WithExactDir() Option {
	return func(o *options) {
		o.findRoot = false
	}
}
