package graisse

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/manifolded/graisse-prompt-versioning/pkg/adapters/sqlite"
	"github.com/manifolded/graisse-prompt-versioning/pkg/core"
)

// Workspace binds a configured working directory to its store and exposes
// the operations the CLI runs. One Workspace per invocation; Close releases
// the store.
type Workspace struct {
	Config  *Config
	Repo    *sqlite.Repository
	Service *core.Service

	log *slog.Logger
}

// NewWorkspace wires an already-opened repository to a resolved config.
func NewWorkspace(cfg *Config, repo *sqlite.Repository, logger *slog.Logger) *Workspace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workspace{
		Config:  cfg,
		Repo:    repo,
		Service: core.NewService(repo, logger),
		log:     logger,
	}
}

func (w *Workspace) Close() error { return w.Repo.Close() }

// BranchSpec asks for one touched file to branch from an existing fragment
// instead of incrementing its slot's version.
type BranchSpec struct {
	ParentID int64
	Path     string
}

// CommitOptions are the arguments of one commit invocation. An empty Paths
// slice means a full commit over the whole working directory; otherwise
// only the named files are reconciled.
type CommitOptions struct {
	Message  string
	Paths    []string
	Branches []BranchSpec
}

// Commit scans the working directory and reconciles it against the current
// master. The full directory is validated even when Paths narrows the
// commit to a few files.
func (w *Workspace) Commit(ctx context.Context, opts CommitOptions) (*core.CommitResult, error) {
	ws, err := Scan(w.Config)
	if err != nil {
		return nil, err
	}

	in := core.CommitInput{
		Message:     opts.Message,
		Mode:        core.FullCommit,
		Candidates:  ws.Candidates,
		BackedTypes: ws.Backed,
	}
	if len(opts.Paths) > 0 {
		in.Mode = core.PartialCommit
		in.Candidates, err = ws.Select(opts.Paths)
		if err != nil {
			return nil, err
		}
	}
	if len(opts.Branches) > 0 {
		in.Branches, err = resolveBranches(in.Candidates, opts.Branches)
		if err != nil {
			return nil, err
		}
	}
	return w.Service.Commit(ctx, in)
}

// resolveBranches maps branch directives from file paths to slot types. A
// directive must name a file that is part of this commit's candidate set:
// for a partial commit that is the selected subset, so a directive cannot
// point at a file the commit does not touch.
func resolveBranches(candidates []core.Candidate, specs []BranchSpec) (map[string]int64, error) {
	byName := make(map[string]string, len(candidates))
	for _, c := range candidates {
		byName[c.Name] = c.Type
	}
	out := make(map[string]int64, len(specs))
	for _, s := range specs {
		typ, ok := byName[filepath.Base(s.Path)]
		if !ok {
			return nil, core.Validationf("branch target %s is not part of this commit", s.Path)
		}
		if _, dup := out[typ]; dup {
			return nil, core.Validationf("more than one branch directive for slot type %q", typ)
		}
		out[typ] = s.ParentID
	}
	return out, nil
}

// Uncommit reverts to the previous master.
func (w *Workspace) Uncommit(ctx context.Context) (*core.UncommitResult, error) {
	return w.Service.Uncommit(ctx)
}

// Snapshot resolves a master (0 means current) together with its ordered
// fragments.
func (w *Workspace) Snapshot(ctx context.Context, masterID int64) (*core.Master, []core.Fragment, error) {
	return w.Service.Snapshot(ctx, masterID)
}

// History lists all masters, newest first.
func (w *Workspace) History(ctx context.Context) ([]core.Master, error) {
	return w.Service.History(ctx)
}

// Status classifies every slot of the working directory against the
// current master.
func (w *Workspace) Status(ctx context.Context) ([]core.Drift, error) {
	ws, err := Scan(w.Config)
	if err != nil {
		return nil, err
	}
	return w.Service.Status(ctx, ws.Candidates)
}

// Render concatenates a master's fragments into the composed document,
// each slot preceded by a [type] marker line.
func (w *Workspace) Render(ctx context.Context, masterID int64) (string, error) {
	_, frags, err := w.Snapshot(ctx, masterID)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	for i, f := range frags {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "[%s]\n%s", f.Type, f.Content)
		if len(f.Content) > 0 && f.Content[len(f.Content)-1] != '\n' {
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

// ExtractConflictError lists the fragment files an extract would overwrite.
// The caller decides whether to force.
type ExtractConflictError struct {
	Paths []string
}

func (e *ExtractConflictError) Error() string {
	return fmt.Sprintf("would overwrite %d existing file(s): %v", len(e.Paths), e.Paths)
}

// Extract writes each fragment of a master back to its
// <prefix>_<type><ext> file in the working directory. Unless overwrite is
// set, an existing target file aborts the whole extract before any write.
// Writes are atomic, so a crash never leaves a half-written fragment file.
func (w *Workspace) Extract(ctx context.Context, masterID int64, overwrite bool) ([]string, error) {
	_, frags, err := w.Snapshot(ctx, masterID)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(frags))
	for i, f := range frags {
		names[i] = TypeFilename(f.Type, i, len(frags), w.Config.Extension)
	}

	if !overwrite {
		var clash []string
		for _, name := range names {
			if _, err := os.Stat(filepath.Join(w.Config.Dir, name)); err == nil {
				clash = append(clash, name)
			}
		}
		if len(clash) > 0 {
			return nil, &ExtractConflictError{Paths: clash}
		}
	}

	for i, f := range frags {
		path := filepath.Join(w.Config.Dir, names[i])
		if err := atomic.WriteFile(path, bytes.NewReader([]byte(f.Content))); err != nil {
			return nil, fmt.Errorf("write %s: %w", names[i], err)
		}
	}
	w.log.Info("extracted master", "files", len(names))
	return names, nil
}
