package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockcfg/cli/cmd"
	"github.com/ardnew/blockcfg/lang"
	"github.com/ardnew/blockcfg/lang/token"
	"github.com/ardnew/blockcfg/log"
)

// resolve returns a [kong.ConfigurationLoader] for configuration files
// written in blockcfg syntax, such as those created by the init command.
//
// A flag of a group is read from the category named by the group key, with
// the group prefix removed from its name. Other flags are read from root
// fields. Hyphens in flag names are written as underscores:
//
//	max_depth 50
//	color "never"
//
//	[log]
//	level "debug"
//	pretty true
//
// A field with several literals sets a slice flag. Command-line flags
// override configured values. A file that fails to parse is reported and
// otherwise ignored.
func resolve(
	ctx context.Context,
	path string,
) func(r io.Reader) (kong.Resolver, error) {
	return func(r io.Reader) (kong.Resolver, error) {
		tree, err := lang.ParseReader(ctx, r,
			lang.WithSource(path),
			lang.WithLogger(log.Default()),
		)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration",
				slog.String("path", path),
				slog.Any("error", err),
			)

			return config{}, nil
		}

		return config{tree: tree}, nil
	}
}

// config implements [kong.Resolver] over a parsed configuration document.
type config struct {
	tree *lang.Tree
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if c.tree == nil {
		return nil, nil
	}

	field, ok := c.field(flag)
	if !ok || field.Len() == 0 || !field.FirstChild().Kind().IsLiteral() {
		return nil, nil
	}

	if field.Len() == 1 {
		return scalar(field.FirstChild().Value()), nil
	}

	values := make([]string, 0, field.Len())
	for lit := range field.Children() {
		values = append(values, text(lit.Value()))
	}

	return strings.Join(values, ","), nil
}

// field returns the field holding the value of flag.
func (c config) field(flag *kong.Flag) (lang.Node, bool) {
	parent, name := c.tree.Root(), flag.Name

	if g := flag.Group; g != nil && g.Key != "" {
		cat, ok := parent.Category(g.Key)
		if !ok {
			return lang.Node{}, false
		}

		parent, name = cat, strings.TrimPrefix(name, g.Key+"-")
	}

	return parent.Field(cmd.FieldName(name))
}

// scalar returns the value Kong decodes a single literal from.
func scalar(v token.Value) any {
	if v.Kind() == token.ValueBool {
		return v.Bool()
	}

	return text(v)
}

// text returns the unquoted text of a literal.
func text(v token.Value) string {
	if v.Kind() == token.ValueString {
		return v.Str()
	}

	return v.String()
}
