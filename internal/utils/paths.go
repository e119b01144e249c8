package utils

import "path/filepath"

// ResolvePath resolves path relative to baseDir. Absolute paths and an empty
// baseDir leave path unchanged.
func ResolvePath(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
