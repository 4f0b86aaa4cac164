package graisseprompt

import (
	"context"
	"log/slog"

	"github.com/manifolded/graisse-prompt-versioning/internal/platform"
	"github.com/manifolded/graisse-prompt-versioning/pkg/graisse"
)

// Version exposes the version of the library.
const Version = "0.3.0"

// --- Types ---

// Workspace is a public alias for the application-layer workspace.
type Workspace = graisse.Workspace

// CommitOptions is a public alias for the commit arguments.
type CommitOptions = graisse.CommitOptions

// BranchSpec is a public alias for a branch directive.
type BranchSpec = graisse.BranchSpec

// --- Configuration ---

// Option defines a functional option for opening a workspace.
type Option = platform.Option

// WithLogger sets the logger for the store and the reconciler.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithExactDir disables the upward dotfile search.
func WithExactDir() Option {
	return platform.WithExactDir()
}

// --- Factory ---

// Open resolves the workspace rooted at (or above) dir and connects to its
// initialized store.
func Open(ctx context.Context, dir string, opts ...Option) (*Workspace, error) {
	return platform.Open(ctx, dir, opts...)
}

// Init sets up a new workspace: dotfile plus store schema. The database
// argument may be empty when the dotfile already exists or to accept the
// default path.
func Init(ctx context.Context, dir, database string, opts ...Option) (*Workspace, error) {
	return platform.Initialize(ctx, dir, database, opts...)
}
