package graisse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/manifolded/graisse-prompt-versioning/pkg/core"
)

// Fragment files are named <prefix>_<type><ext>, e.g. "01_intro.j2". The
// numeric prefix orders the composition; the type is everything between the
// first underscore and the extension.

// ParseFilename splits a fragment filename into its prefix and type.
func ParseFilename(name, ext string) (prefix, typ string, err error) {
	if !strings.HasSuffix(name, ext) {
		return "", "", core.Validationf("filename %q must end with %s", name, ext)
	}
	stem := strings.TrimSuffix(name, ext)
	i := strings.Index(stem, "_")
	if i <= 0 || i == len(stem)-1 {
		return "", "", core.Validationf("filename %q must look like <prefix>_<type>%s", name, ext)
	}
	return stem[:i], stem[i+1:], nil
}

// TypeFilename is the reverse mapping used by extract: a slot type plus its
// zero-based position becomes "<NN>_<type><ext>" with a zero-padded prefix.
func TypeFilename(typ string, index, total int, ext string) string {
	width := len(strconv.Itoa(total))
	if width < 2 {
		width = 2
	}
	return fmt.Sprintf("%0*d_%s%s", width, index+1, typ, ext)
}

// WorkingSet is the decoded working directory: every fragment file in
// prefix order, plus the set of slot types that have a backing file. The
// latter is what lets a partial commit decide whether untouched slots may
// be carried forward.
type WorkingSet struct {
	Candidates []core.Candidate
	Backed     map[string]bool
}

type workingFile struct {
	name   string
	prefix string
	typ    string
}

// Scan reads the fragment files of the configured directory and validates
// the prefix scheme: prefixes must be numeric, uniformly wide, unique, and
// consecutive from 1. The whole directory is validated even when a commit
// later touches only some of the files.
func Scan(cfg *Config) (*WorkingSet, error) {
	entries, err := os.ReadDir(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", cfg.Dir, err)
	}

	var files []workingFile
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), cfg.Extension) {
			continue
		}
		skip, err := ignored(cfg.Ignore, e.Name())
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		prefix, typ, err := ParseFilename(e.Name(), cfg.Extension)
		if err != nil {
			return nil, err
		}
		files = append(files, workingFile{name: e.Name(), prefix: prefix, typ: typ})
	}

	if err := validatePrefixes(files); err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		a, _ := strconv.Atoi(files[i].prefix)
		b, _ := strconv.Atoi(files[j].prefix)
		return a < b
	})

	ws := &WorkingSet{Backed: make(map[string]bool, len(files))}
	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(cfg.Dir, f.name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		ws.Candidates = append(ws.Candidates, core.Candidate{
			Name:    f.name,
			Type:    f.typ,
			Content: string(content),
		})
		ws.Backed[f.typ] = true
	}
	return ws, nil
}

// Select reduces a working set to the candidates backing the given paths,
// for a partial commit. Every path must name a scanned fragment file.
func (ws *WorkingSet) Select(paths []string) ([]core.Candidate, error) {
	byName := make(map[string]core.Candidate, len(ws.Candidates))
	for _, c := range ws.Candidates {
		byName[c.Name] = c
	}
	out := make([]core.Candidate, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		c, ok := byName[name]
		if !ok {
			return nil, core.Validationf("path %s is not a fragment file of the working directory", p)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, c)
	}
	return out, nil
}

func validatePrefixes(files []workingFile) error {
	if len(files) == 0 {
		return nil
	}

	width := len(files[0].prefix)
	nums := make(map[int]string, len(files))
	for _, f := range files {
		n, err := strconv.Atoi(f.prefix)
		if err != nil {
			return core.Validationf("non-numeric prefix in %q", f.name)
		}
		if len(f.prefix) != width {
			return core.Validationf(
				"inconsistent prefix format: %q does not match width %d of the other files", f.name, width)
		}
		if other, dup := nums[n]; dup {
			return core.Validationf("duplicate prefix %s in %q and %q", f.prefix, other, f.name)
		}
		nums[n] = f.name
	}
	for i := 1; i <= len(files); i++ {
		if _, ok := nums[i]; !ok {
			return core.Validationf("prefixes must be consecutive from 1: missing %d", i)
		}
	}
	return nil
}

func ignored(patterns []string, name string) (bool, error) {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, name)
		if err != nil {
			return false, fmt.Errorf("bad ignore pattern %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
