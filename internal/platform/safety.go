package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// devDirName is the namespace of sandboxed data directories under the system
// temp dir.
const devDirName = "cardweaver-dev"

// IsDevRun checks if the current process is running via `go run` or `go test`.
// Both build their binaries in temporary directories.
func IsDevRun() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	if strings.HasPrefix(strings.ToLower(exe), strings.ToLower(os.TempDir())) {
		return true
	}
	return strings.HasSuffix(exe, ".test") || strings.HasSuffix(exe, ".test.exe")
}

// ResolveDataPath determines the directory actually used for data. With
// forceTemp the path is re-rooted into a namespaced temp directory, unless it
// already lives under the system temp dir.
func ResolveDataPath(userPath string, forceTemp bool) string {
	if !forceTemp {
		if userPath == "" {
			return "."
		}
		return userPath
	}

	cleanUserPath := filepath.Clean(userPath)
	rel, err := filepath.Rel(os.TempDir(), cleanUserPath)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return cleanUserPath
	}

	// ".cardweaver" alone says nothing about the project it belongs to.
	subName := filepath.Base(cleanUserPath)
	if subName == SystemDir {
		subName = filepath.Base(filepath.Dir(cleanUserPath))
	}
	if subName == "." || subName == string(os.PathSeparator) {
		subName = "default"
	}
	return filepath.Join(os.TempDir(), devDirName, subName)
}
