package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Format writes the tree in native syntax to the writer.
//
// Top-level fields are written before categories so that reparsing the
// output does not attach them to a category. If indent > 0, struct blocks
// span multiple lines indented by that many spaces per level; otherwise
// each block is written on one line. Comments and the exact spelling of
// literals are not preserved.
func (t *Tree) Format(_ context.Context, w io.Writer, indent int) error {
	var sb strings.Builder

	root := t.Root()

	for c := range root.Children() {
		if c.Kind() == KindField {
			formatField(&sb, c, indent, 0)
			sb.WriteByte('\n')
		}
	}

	for c := range root.Children() {
		if c.Kind() != KindCategory {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}

		fmt.Fprintf(&sb, "[%s]\n", c.Name())

		for f := range c.Children() {
			formatField(&sb, f, indent, 0)
			sb.WriteByte('\n')
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// formatField writes one field without a trailing newline.
func formatField(sb *strings.Builder, f Node, indent, depth int) {
	sb.WriteString(f.Name())

	head := f.FirstChild()
	if head.Kind().IsLiteral() {
		for c := range f.Children() {
			sb.WriteByte(' ')
			sb.WriteString(c.Value().String())
		}

		return
	}

	for e := range f.Elements() {
		sb.WriteByte(' ')
		formatStruct(sb, e, indent, depth)
	}
}

func formatStruct(sb *strings.Builder, s Node, indent, depth int) {
	sb.WriteByte('{')

	if indent <= 0 {
		for f := range s.Children() {
			sb.WriteByte(' ')
			formatField(sb, f, indent, depth+1)
		}

		sb.WriteString(" }")

		return
	}

	sb.WriteByte('\n')

	for f := range s.Children() {
		sb.WriteString(strings.Repeat(" ", (depth+1)*indent))
		formatField(sb, f, indent, depth+1)
		sb.WriteByte('\n')
	}

	sb.WriteString(strings.Repeat(" ", depth*indent))
	sb.WriteByte('}')
}

// FormatJSON writes the native form of the tree as JSON to the writer.
// Object keys are sorted.
func (t *Tree) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(t, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(t)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the native form of the tree as YAML to the writer.
// Keys keep their source order.
func (t *Tree) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, t.toMapSlice(), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(yamlData))

	return err
}

// FormatTOML writes the native form of the tree as TOML to the writer.
// Categories and single struct blocks become tables; arrays of structs
// become arrays of tables.
func (t *Tree) FormatTOML(_ context.Context, w io.Writer, indent int) error {
	enc := toml.NewEncoder(w)
	enc.Indent = strings.Repeat(" ", max(indent, 0))

	return enc.Encode(t.ToNative())
}

// Print writes an indented dump of every node, its kind, name, and value
// to the writer.
func (t *Tree) Print(w io.Writer) error {
	var sb strings.Builder

	var dump func(n Node, depth int)

	dump = func(n Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(n.Kind().String())

		if name := n.Name(); name != "" {
			fmt.Fprintf(&sb, " %q", name)
		}

		if n.Kind().IsLiteral() {
			v := n.Value()
			sb.WriteByte(' ')
			sb.WriteString(v.String())

			if f := v.Flags(); f != 0 {
				fmt.Fprintf(&sb, " [%s]", f)
			}
		}

		sb.WriteByte('\n')

		for c := range n.Children() {
			dump(c, depth+1)
		}
	}

	dump(t.Root(), 0)

	_, err := io.WriteString(w, sb.String())

	return err
}
