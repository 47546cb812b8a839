package pkg

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/mung"
)

// SearchPathEnv is the environment variable holding additional directories
// searched for relative source names.
const SearchPathEnv = "BLOCKCFG_PATH"

// Prefix returns the base prefix string used to construct the path to the
// configuration directory.
//
// By default, Prefix is the base name of the executable file unless it matches
// one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with Name
//   - "^\.+" (dot-prefixed names): remove the dot prefix
//
//nolint:gochecknoglobals
var Prefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		exe, err := os.Executable()
		if err == nil {
			id = exe
		}

		ext := filepath.Ext(filepath.Base(id))
		id = strings.TrimSuffix(filepath.Base(id), ext)

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): Name, // default output from dlv
			regexp.MustCompile(`^\.+`):             "",   // remove leading dot(s)
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			return Name
		}

		return id
	},
)

// ConfigDir returns the configuration directory path.
//
//nolint:gochecknoglobals
var ConfigDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserConfigDir, ".config"), Prefix())
	},
)

// CacheDir returns the cache directory path used for transient files.
//
//nolint:gochecknoglobals
var CacheDir = sync.OnceValue(
	func() string {
		return filepath.Join(userDir(os.UserCacheDir, ".cache"), Prefix())
	},
)

// userDir returns the directory reported by dirFunc, falling back to a
// hidden directory in the user's home, then to the working directory.
func userDir(dirFunc func() (string, error), hidden string) string {
	dir, err := dirFunc()
	if err == nil {
		return dir
	}

	dir, err = os.UserHomeDir()
	if err == nil {
		return filepath.Join(dir, hidden)
	}

	dir, err = os.Getwd()
	if err != nil {
		return "."
	}

	return dir
}

// SearchPath returns a list of existing directories separated by
// [os.PathListSeparator]. The given dirs come first, followed by the entries
// of list, which uses the same separator. Duplicates and entries that are not
// directories are dropped.
func SearchPath(list string, dirs ...string) string {
	return mung.Make(
		mung.WithSubjectItems(filepath.SplitList(list)...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()
}

// Resolve returns the path of the source named name.
//
// Absolute names, names that exist relative to the working directory, and
// the special name "-" are returned unchanged. Otherwise each directory of
// the search path is tried in order.
func Resolve(name, searchPath string) (string, error) {
	if name == "-" || filepath.IsAbs(name) || exists(name) {
		return name, nil
	}

	for _, dir := range filepath.SplitList(searchPath) {
		path := filepath.Join(dir, name)
		if exists(path) {
			return path, nil
		}

		if filepath.Ext(name) == "" && exists(path+Extension) {
			return path + Extension, nil
		}
	}

	return "", ErrSourceNotFound.Wrapf("%s", name)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func exists(path string) bool {
	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}
