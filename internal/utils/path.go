package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// PathResolver finds catalog files relative to the places tagserve is
// usually run from.
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver resolves the executable location, following symlinks.
func NewPathResolver(configDir string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	pr := &PathResolver{executableDir: filepath.Dir(execPath), configDir: configDir}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, configDir)
	return pr, nil
}

// Candidates lists where a catalog named path may live, most specific first:
// the path itself, then relative to the working directory, the executable
// and the config directory.
func (pr *PathResolver) Candidates(path string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}
	var out []string
	if cwd, err := os.Getwd(); err == nil {
		out = append(out, filepath.Join(cwd, path))
	}
	out = append(out, filepath.Join(pr.executableDir, path))
	if pr.configDir != "" {
		out = append(out, filepath.Join(pr.configDir, path))
	}
	return out
}

// FindCatalog returns the first candidate that is a regular file.
func (pr *PathResolver) FindCatalog(path string) (string, error) {
	for _, candidate := range pr.Candidates(path) {
		if stat, err := os.Stat(candidate); err == nil && stat.Mode().IsRegular() {
			log.Debugf("Found catalog: %s", candidate)
			return candidate, nil
		}
		log.Debugf("Catalog candidate not found: %s", candidate)
	}
	return "", os.ErrNotExist
}

// GetExecutableDir returns the directory containing the executable
func (pr *PathResolver) GetExecutableDir() string {
	return pr.executableDir
}
