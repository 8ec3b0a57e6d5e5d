package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// SystemDir is the per-project directory holding collections and the config
// file.
const SystemDir = ".cardweaver"

// ErrRootNotFound is returned by FindRoot when no directory up the tree holds a
// SystemDir.
var ErrRootNotFound = errors.New("root not found")

// FindRoot looks upwards from startDir for a directory containing SystemDir and
// returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, SystemDir)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrRootNotFound
}

// DataDir picks the data directory: an explicit path first, then
// CARDWEAVER_DIR, then the SystemDir of the nearest root above startDir, and
// finally a fresh SystemDir inside startDir.
func DataDir(explicit, startDir string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if env := os.Getenv(EnvDir); env != "" {
		return env, nil
	}
	root, err := FindRoot(startDir)
	if err == nil {
		return filepath.Join(root, SystemDir), nil
	}
	if !errors.Is(err, ErrRootNotFound) {
		return "", err
	}
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, SystemDir), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
