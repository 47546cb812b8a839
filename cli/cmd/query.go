package cmd

import (
	"context"
	"fmt"
	"log/slog"
)

// Query evaluates an expression against a source.
//
// Top-level fields and categories are variables of the expression, and
// lookup(path) returns the value at a dotted path.
type Query struct {
	Output string `default:"value" enum:"value,json,yaml" help:"Output format (${enum})." short:"o"`

	Expr string `arg:"" help:"Expression such as 'len(anim.walk)' or 'meta.count > 2'." name:"expr"`

	Input
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) error {
	tree, _, err := parseSource(ctx, q.Source)
	if err != nil {
		return err
	}

	result, err := tree.Eval(ctx, q.Expr)
	if err != nil {
		return err
	}

	return writeResult(ctx, q.Output, result)
}

// writeResult writes an expression result. Scalars are printed as-is;
// maps and slices fall back to YAML unless another format is chosen.
func writeResult(ctx context.Context, format string, result any) error {
	w := settingsFrom(ctx).Stdout

	if format == "value" {
		switch result.(type) {
		case map[string]any, []any:
			format = "yaml"

		default:
			_, err := fmt.Fprintln(w, result)
			if err != nil {
				return ErrWriteOutput.Wrap(err)
			}

			return nil
		}
	}

	if format == "yaml" {
		return writeYAML(ctx, w, result)
	}

	err := writeJSON(w, result)
	if err != nil {
		return ErrMarshal.Wrap(err).With(slog.String("format", format))
	}

	return nil
}
