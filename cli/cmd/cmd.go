package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockcfg/lang"
	"github.com/ardnew/blockcfg/log"
	"github.com/ardnew/blockcfg/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// Settings holds the global options shared by all commands.
type Settings struct {
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	SearchPath string // directories separated by os.PathListSeparator
	CacheDir   string
	MaxDepth   int
	Color      bool // style diagnostics written to Stdout
}

type settingsKey struct{}

// WithSettings returns a new context.Context containing s.
func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// settingsFrom returns the Settings stored in ctx, with unset streams
// defaulting to the process's standard streams.
func settingsFrom(ctx context.Context) Settings {
	s, _ := ctx.Value(settingsKey{}).(Settings)

	if s.Stdin == nil {
		s.Stdin = os.Stdin
	}

	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}

	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}

	if s.CacheDir == "" {
		s.CacheDir = pkg.CacheDir()
	}

	return s
}

// parseOptions returns the parser options implied by s for a source
// labeled name.
func (s Settings) parseOptions(name string) []lang.Option {
	opts := []lang.Option{
		lang.WithSource(name),
		lang.WithLogger(log.Default()),
	}

	if s.MaxDepth > 0 {
		opts = append(opts, lang.WithMaxDepth(s.MaxDepth))
	}

	return opts
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinLabel names stdin in diagnostics.
const stdinLabel = "<stdin>"

// source is one input document.
type source struct {
	name string // label used in diagnostics
	path string // resolved file path; empty for stdin
	io.Reader
}

func (s source) Close() error {
	if c, ok := s.Reader.(io.Closer); ok && s.path != "" {
		return c.Close()
	}

	return nil
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each named source once.
//
// Relative names are resolved against the search path. Files are
// deduplicated by resolving symlinks and comparing device/inode pairs. All
// occurrences of "-" are replaced with a single stdin reader placed last so
// it reads after all regular files.
func openSources(ctx context.Context, names []string) ([]source, error) {
	s := settingsFrom(ctx)

	if len(names) == 0 {
		names = []string{stdinSource}
	}

	srcs := make([]source, 0, len(names))
	seen := make(map[fileKey]struct{})
	hasStdin := false

	for _, name := range names {
		if name == stdinSource {
			hasStdin = true

			continue
		}

		path, err := pkg.Resolve(name, s.SearchPath)
		if err != nil {
			closeSources(srcs)

			return nil, err
		}

		file, ok, err := openUniqueFile(path, seen)
		if err != nil {
			closeSources(srcs)

			return nil, pkg.ErrOpenSource.Wrap(err)
		}

		if ok {
			srcs = append(srcs, source{name: name, path: path, Reader: file})
		}
	}

	if hasStdin {
		srcs = append(srcs, source{name: stdinLabel, Reader: s.Stdin})
	}

	return srcs, nil
}

// openSource opens a single named source.
func openSource(ctx context.Context, name string) (source, error) {
	srcs, err := openSources(ctx, []string{name})
	if err != nil {
		return source{}, err
	}

	if len(srcs) == 0 {
		return source{}, pkg.ErrNoSource
	}

	return srcs[0], nil
}

func closeSources(srcs []source) {
	for _, s := range srcs {
		_ = s.Close()
	}
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
// A duplicate is reported with ok false and a nil error.
func openUniqueFile(
	path string,
	seen map[fileKey]struct{},
) (file *os.File, ok bool, err error) {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}

	// Resolve symlinks to their target.
	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false, err
	}

	if key, hasKey := makeFileKey(info); hasKey {
		if _, exists := seen[key]; exists {
			return nil, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err = os.Open(resolved)
	if err != nil {
		return nil, false, err
	}

	return file, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true //nolint:unconvert
}

// parseSource opens and parses the named source.
func parseSource(ctx context.Context, name string) (*lang.Tree, []byte, error) {
	src, err := openSource(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, lang.ErrReadInput.Wrap(err)
	}

	tree, err := lang.Parse(ctx, data, settingsFrom(ctx).parseOptions(src.name)...)
	if err != nil {
		return nil, data, err
	}

	return tree, data, nil
}
