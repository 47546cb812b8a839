package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/blockcfg/lang"
)

// maxSuggestions bounds the "did you mean" list of a failed lookup.
const maxSuggestions = 3

// Get prints the value at a dotted path.
type Get struct {
	Output string `default:"value" enum:"value,json,yaml" help:"Output format (${enum})." short:"o"`

	Path string `arg:"" help:"Dotted path such as meta.name or anim.walk.0.tex." name:"path"`

	Input
}

// Run executes the get command.
func (g *Get) Run(ctx context.Context) error {
	tree, _, err := parseSource(ctx, g.Source)
	if err != nil {
		return err
	}

	n, err := tree.Lookup(g.Path)
	if err != nil {
		e := ErrNoMatch.Wrap(err).With(slog.String("path", g.Path))
		if alt := suggest(g.Path, tree.Paths()); len(alt) > 0 {
			e = e.With(slog.Any("suggestions", alt))
		}

		return e
	}

	return writeNative(ctx, settingsFrom(ctx).Stdout, g.Output, n)
}

// suggest returns the paths that best fuzzy-match path, best first.
func suggest(path string, paths []string) []string {
	matches := fuzzy.Find(path, paths)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	alt := make([]string, 0, len(matches))
	for _, m := range matches {
		alt = append(alt, m.Str)
	}

	return alt
}

// writeNative writes the value of n to w in the given format.
func writeNative(ctx context.Context, w io.Writer, format string, n lang.Node) error {
	switch format {
	case "json":
		err := writeJSON(w, n.Native())
		if err != nil {
			return ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

		return nil

	case "yaml":
		return writeYAML(ctx, w, n.Native())
	}

	switch {
	case n.Kind().IsLiteral():
		return writeLiteral(w, n)

	case n.Kind() == lang.KindField && n.FirstChild().Kind().IsLiteral():
		for lit := range n.Children() {
			err := writeLiteral(w, lit)
			if err != nil {
				return err
			}
		}

		return nil
	}

	return writeYAML(ctx, w, n.Native())
}

// writeLiteral writes one literal per line; strings are written unquoted.
func writeLiteral(w io.Writer, n lang.Node) error {
	v := n.Value()

	s := v.String()
	if n.Kind() == lang.KindString {
		s = v.Str()
	}

	_, err := fmt.Fprintln(w, s)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func writeYAML(ctx context.Context, w io.Writer, v any) error {
	data, err := yaml.MarshalContext(ctx, v)
	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", "yaml"))
	}

	_, err = w.Write(data)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
