package platform

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/manifolded/graisse-prompt-versioning/pkg/adapters/sqlite"
	"github.com/manifolded/graisse-prompt-versioning/pkg/graisse"
)

// Open resolves the workspace rooted at (or above) dir and connects to its
// store. The store must already be initialized; a fresh directory gets a
// pointer to Initialize instead of a silent empty database.
func Open(ctx context.Context, dir string, opts ...Option) (*graisse.Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	root := dir
	if o.findRoot {
		var err error
		root, err = FindRoot(dir)
		if err != nil {
			return nil, err
		}
	}

	cfg, err := graisse.LoadConfig(root)
	if err != nil {
		return nil, err
	}

	repo, err := sqlite.Open(sqlite.Config{Path: cfg.Database, Logger: o.logger})
	if err != nil {
		return nil, err
	}

	ready, err := repo.Ready(ctx)
	if err != nil {
		repo.Close()
		return nil, err
	}
	if !ready {
		repo.Close()
		return nil, fmt.Errorf("store %s is not initialized; run 'graisse init'", cfg.Database)
	}

	return graisse.NewWorkspace(cfg, repo, o.logger), nil
}

// Initialize sets up a new workspace in dir: writes the dotfile if one does
// not exist yet, then creates the store schema. Fails if the store already
// has the schema.
func Initialize(ctx context.Context, dir, database string, opts ...Option) (*graisse.Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	dotfile := filepath.Join(dir, graisse.ConfigFileName)
	if _, err := os.Stat(dotfile); os.IsNotExist(err) {
		if database == "" {
			database = "prompts.db"
		}
		if err := writeDotfile(dotfile, database); err != nil {
			return nil, err
		}
	} else if database != "" {
		return nil, fmt.Errorf("%s already exists; it decides the database path", dotfile)
	}

	cfg, err := graisse.LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	repo, err := sqlite.Open(sqlite.Config{Path: cfg.Database, Logger: o.logger})
	if err != nil {
		return nil, err
	}
	if err := repo.Initialize(ctx); err != nil {
		repo.Close()
		return nil, err
	}

	return graisse.NewWorkspace(cfg, repo, o.logger), nil
}

func writeDotfile(path, database string) error {
	raw, err := yaml.Marshal(map[string]string{"database": database})
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
