package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/blockcfg/pkg"
)

// baseConfig is the base name of the configuration file.
const baseConfig = "config"

// defaultDirMode is the default permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// searchPath returns the directories searched for relative source names:
// those listed by --path, then the configuration directory.
func searchPath(list string) string {
	return pkg.SearchPath(list + string(os.PathListSeparator) + pkg.ConfigDir())
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	// Create base config directory
	err := os.MkdirAll(pkg.ConfigDir(), defaultDirMode)
	if err != nil {
		return err
	}

	// Create base cache directory
	return os.MkdirAll(pkg.CacheDir(), defaultDirMode)
}
