package platform

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifolded/graisse-prompt-versioning/pkg/graisse"
)

// FindRoot looks upwards from startDir for the directory holding the
// workspace dotfile and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, graisse.ConfigFileName) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no %s file found in %s or any parent directory", graisse.ConfigFileName, abs)
}

func hasFile(dir, name string) bool {
	path := filepath.Join(dir, name)
	_, err := os.Stat(path)
	return err == nil
}
