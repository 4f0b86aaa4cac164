// Package graisse wires the working directory to the versioned prompt
// store: dotfile configuration, fragment file scanning, and the high-level
// operations the CLI exposes.
package graisse

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the dotfile, looked up in the working directory, that
// points at the store.
const ConfigFileName = ".graisse"

// DefaultExtension is the fragment file extension when the dotfile does not
// override it.
const DefaultExtension = ".j2"

// Config is the resolved dotfile. The YAML form is:
//
//	database: prompts.db
//	extension: .j2
//	ignore:
//	  - "*_draft.j2"
//
// A plain single-line file containing just the database path is accepted
// too, for hand-written dotfiles.
type Config struct {
	Database  string   `yaml:"database"`
	Extension string   `yaml:"extension"`
	Ignore    []string `yaml:"ignore"`

	// Dir is the directory the dotfile was found in; the working set is
	// scanned here and relative paths resolve against it.
	Dir string `yaml:"-"`
}

// ConfigError is an unresolvable store location. Always fatal, surfaced
// before any store access.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config %s: %v", e.Path, e.Err) }
func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(path, format string, args ...any) error {
	return &ConfigError{Path: path, Err: fmt.Errorf(format, args...)}
}

// LoadConfig reads <dir>/.graisse and resolves the database path. The
// parent directory of the database is created if missing; the dotfile
// itself never is.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, configErrorf(path, "not found; run from a directory with a %s file", ConfigFileName)
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, configErrorf(path, "file is empty")
	}

	cfg := Config{Dir: dir}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		// Hand-written dotfiles may hold just the database path.
		var scalar string
		if serr := yaml.Unmarshal(raw, &scalar); serr != nil || strings.TrimSpace(scalar) == "" {
			return nil, configErrorf(path, "invalid YAML: %v", err)
		}
		cfg = Config{Dir: dir, Database: strings.TrimSpace(scalar)}
	}
	if cfg.Database == "" {
		return nil, configErrorf(path, "database is not set")
	}

	if !filepath.IsAbs(cfg.Database) {
		cfg.Database = filepath.Join(dir, cfg.Database)
	}
	if cfg.Extension == "" {
		cfg.Extension = DefaultExtension
	}
	if !strings.HasPrefix(cfg.Extension, ".") {
		cfg.Extension = "." + cfg.Extension
	}

	parent := filepath.Dir(cfg.Database)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, configErrorf(path, "cannot create database directory %s: %v", parent, err)
	}
	if info, err := os.Stat(cfg.Database); err == nil && info.IsDir() {
		return nil, configErrorf(path, "database path is a directory: %s", cfg.Database)
	}
	return &cfg, nil
}
