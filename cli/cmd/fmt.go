package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ardnew/blockcfg/lang"
	"github.com/ardnew/blockcfg/pkg"
)

// Fmt parses a source and formats it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native syntax (default)."`
	Tree   Tree   `cmd:""                    help:"Print the parsed tree structure."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	TOML   TOML   `cmd:""                    help:"Format as TOML."`
}

// Input is the positional source argument shared by the fmt subcommands.
type Input struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source"`
}

// Native formats input as native syntax.
type Native struct {
	Indent int  `default:"0" help:"Indent width of struct fields; 0 keeps blocks on one line" short:"i"`
	Diff   bool `help:"Print a line diff against the source instead; fails if they differ" short:"d"`
	Write  bool `help:"Write the result back to the source file" short:"w"`

	Input
}

// Run executes the fmt command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tree, data, err := parseSource(ctx, f.Source)
	if err != nil {
		return err
	}

	var buf bytes.Buffer

	err = tree.Format(ctx, &buf, f.Indent)
	if err != nil {
		return err
	}

	s := settingsFrom(ctx)

	switch {
	case f.Diff:
		return writeDiff(s.Stdout, newStyles(s.Stdout, s.Color), string(data), buf.String())

	case f.Write && f.Source != stdinSource:
		return writeBack(ctx, f.Source, buf.Bytes())
	}

	_, err = buf.WriteTo(s.Stdout)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// writeBack replaces the content of the named source, keeping its mode.
func writeBack(ctx context.Context, name string, data []byte) error {
	path, err := pkg.Resolve(name, settingsFrom(ctx).SearchPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	err = os.WriteFile(path, data, info.Mode().Perm())
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	return nil
}

// writeDiff writes a line diff turning before into after. Unchanged lines
// are prefixed with a space, removed lines with '-', and added lines
// with '+'. It returns [pkg.ErrNotFormatted] if any line differs.
func writeDiff(w io.Writer, st styles, before, after string) error {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var (
		sb      strings.Builder
		changed bool
	)

	for _, d := range diffs {
		prefix, style := " ", st.hint

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, style, changed = "-", st.del, true

		case diffmatchpatch.DiffInsert:
			prefix, style, changed = "+", st.add, true
		}

		for line := range strings.Lines(d.Text) {
			sb.WriteString(style.Render(prefix + strings.TrimSuffix(line, "\n")))
			sb.WriteByte('\n')
		}
	}

	if !changed {
		return nil
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return pkg.ErrNotFormatted
}

// Tree prints the parsed tree structure.
type Tree struct {
	Input
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) error {
	tree, _, err := parseSource(ctx, t.Source)
	if err != nil {
		return err
	}

	return tree.Print(settingsFrom(ctx).Stdout)
}

// JSON parses input and outputs it as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output; 0 for compact" short:"i"`

	Input
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return formatAs(ctx, j.Source, "json", j.Indent, (*lang.Tree).FormatJSON)
}

// YAML parses input and outputs it as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output; 0 for flow style" short:"i"`

	Input
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return formatAs(ctx, y.Source, "yaml", y.Indent, (*lang.Tree).FormatYAML)
}

// TOML parses input and outputs it as TOML.
type TOML struct {
	Indent int `default:"2" help:"Indent width of nested TOML tables" short:"i"`

	Input
}

// Run executes the toml command.
func (t *TOML) Run(ctx context.Context) error {
	return formatAs(ctx, t.Source, "toml", t.Indent, (*lang.Tree).FormatTOML)
}

type formatFunc func(*lang.Tree, context.Context, io.Writer, int) error

func formatAs(
	ctx context.Context,
	source, format string,
	indent int,
	fn formatFunc,
) error {
	tree, _, err := parseSource(ctx, source)
	if err != nil {
		return err
	}

	err = fn(tree, ctx, settingsFrom(ctx).Stdout, indent)
	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", format))
	}

	return nil
}
