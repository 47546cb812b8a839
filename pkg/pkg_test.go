package pkg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	expected := "blockcfg"
	if Name != expected {
		t.Errorf("Expected Name to be %q, got %q", expected, Name)
	}
}

func TestVersion(t *testing.T) {
	// Version is embedded from the VERSION file next to this test.
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("Failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("Expected Version to be %q, got %q", content, Version)
	}
}

func TestAuthor(t *testing.T) {
	if len(Author) == 0 {
		t.Fatal("Expected Author to have at least one entry")
	}

	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Expected Author to contain ardnew")
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestError_Chain(t *testing.T) {
	cause := fs.ErrNotExist
	err := ErrOpenSource.Wrap(cause)

	if got, want := err.Error(), "failed to open source: "+cause.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	if !errors.Is(err, ErrOpenSource) {
		t.Error("errors.Is(err, ErrOpenSource) = false")
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(err, fs.ErrNotExist) = false")
	}

	if errors.Is(err, ErrCheck) {
		t.Error("errors.Is(err, ErrCheck) = true")
	}

	if len(ErrOpenSource) != 1 {
		t.Errorf("Wrap modified the sentinel: %v", ErrOpenSource)
	}
}

func TestMakeError(t *testing.T) {
	if MakeError() != nil || MakeError(nil, nil) != nil {
		t.Error("MakeError without errors should be nil")
	}

	inner := errors.New("inner")
	outer := MakeError(inner, ErrCheck)

	if len(outer) != 2 || outer[0] != inner {
		t.Errorf("MakeError = %#v", outer)
	}

	if !errors.Is(outer, ErrCheck) {
		t.Error("flattened chain lost the sentinel")
	}
}

func TestSearchPath(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	sep := string(os.PathListSeparator)

	got := filepath.SplitList(SearchPath(b+sep+a, a))

	if !slices.Contains(got, a) || !slices.Contains(got, b) {
		t.Errorf("SearchPath = %v, want both %q and %q", got, a, b)
	}

	if got[0] != a {
		t.Errorf("SearchPath[0] = %q, want prefix %q", got[0], a)
	}

}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"game.blk", "plain"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		want string
	}{
		{"-", "-"},
		{"game.blk", filepath.Join(dir, "game.blk")},
		{"game", filepath.Join(dir, "game.blk")},
		{"plain", filepath.Join(dir, "plain")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.name, dir)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}

	if _, err := Resolve("nope.blk", dir); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("Resolve(missing) error = %v", err)
	}
}
