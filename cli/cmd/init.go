package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockcfg/lang"
	"github.com/ardnew/blockcfg/lang/token"
	"github.com/ardnew/blockcfg/log"
	"github.com/ardnew/blockcfg/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// ignoreFlags lists flags never written to the configuration file.
var ignoreFlags = []string{"help", "version", "path", profile.Tag}

// Init generates a default configuration file with current flag values.
type Init struct {
	Force  bool `help:"Overwrite existing configuration file" short:"f"`
	Stdout bool `help:"Print the configuration instead of writing it"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	tree := buildConfig(ktx, confPath)

	if i.Stdout {
		return tree.Format(ctx, settingsFrom(ctx).Stdout, defaultConfigIndent)
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = tree.Format(ctx, file, defaultConfigIndent)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
		slog.Int("nodes", tree.Size()),
	)

	return nil
}

// buildConfig constructs a configuration document from current flag values.
// Flags of a group are written as fields of a category named by the group
// key, with the group prefix removed.
func buildConfig(ktx *kong.Context, source string) *lang.Tree {
	tree := lang.NewTree(source)
	cats := make(map[string]lang.Node)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignoreFlags, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		values := flagValues(ktx.FlagValue(flag))
		if len(values) == 0 {
			continue
		}

		parent, name := tree.Root(), flag.Name

		if g := flag.Group; g != nil && g.Key != "" {
			c, ok := cats[g.Key]
			if !ok {
				c = tree.AddCategory(g.Key)
				cats[g.Key] = c
			}

			parent, name = c, strings.TrimPrefix(name, g.Key+"-")
		}

		field := tree.AddField(parent, FieldName(name))
		for _, v := range values {
			tree.AddLiteral(field, v)
		}
	}

	return tree
}

// FieldName returns the document field name of a flag name.
func FieldName(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// flagValues returns the literals of a flag value, or nil if it is unset,
// empty, or of a type with no literal form.
func flagValues(v any) []token.Value {
	if v == nil {
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		if lit, ok := literal(rv); ok {
			return []token.Value{lit}
		}

		return nil
	}

	values := make([]token.Value, 0, rv.Len())

	for i := range rv.Len() {
		lit, ok := literal(rv.Index(i))
		if !ok {
			return nil
		}

		values = append(values, lit)
	}

	return values
}

func literal(rv reflect.Value) (token.Value, bool) {
	switch rv.Kind() {
	case reflect.Bool:
		return token.BoolValue(rv.Bool()), true

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return token.IntValue(rv.Int()), true

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return token.UintValue(rv.Uint(), 0), true

	case reflect.Float32, reflect.Float64:
		return token.Float64Value(rv.Float(), token.Float|token.RequiresFloat64), true

	case reflect.String:
		if rv.String() == "" {
			return token.Value{}, false
		}

		return token.StringValue(rv.String()), true
	}

	return token.Value{}, false
}
