package lang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/blockcfg/lang/token"
	"github.com/ardnew/blockcfg/log"
)

func mustParse(t *testing.T, src string, opts ...Option) *Tree {
	t.Helper()

	tree, err := ParseString(context.Background(), src, opts...)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}

	return tree
}

func parseError(t *testing.T, src string, opts ...Option) *Diagnostic {
	t.Helper()

	tree, err := ParseString(context.Background(), src, opts...)
	if err == nil {
		t.Fatalf("parse %q: expected error", src)
	}

	if tree != nil {
		t.Errorf("parse %q: tree returned with error", src)
	}

	var d *Diagnostic
	if !errors.As(err, &d) {
		t.Fatalf("parse %q: error %T is not a *Diagnostic", src, err)
	}

	if !errors.Is(err, ErrSyntax) {
		t.Errorf("parse %q: error does not match ErrSyntax", src)
	}

	return d
}

// checkLinks verifies the child count and sibling links of every node.
func checkLinks(t *testing.T, n Node) {
	t.Helper()

	count := 0
	prev := Node{}

	for c := range n.Children() {
		if c.Parent() != n {
			t.Errorf("%s %q: child %s has wrong parent", n.Kind(), n.Name(), c.Kind())
		}

		if c.Prev() != prev {
			t.Errorf("%s %q: broken prev link at %d", n.Kind(), n.Name(), count)
		}

		prev = c
		count++

		checkLinks(t, c)
	}

	if count != n.Len() {
		t.Errorf("%s %q: Len() = %d, chain length %d", n.Kind(), n.Name(), n.Len(), count)
	}

	if prev != n.LastChild() {
		t.Errorf("%s %q: LastChild is not the end of the chain", n.Kind(), n.Name())
	}
}

func TestParse_CategoryFields(t *testing.T) {
	tree := mustParse(t, "[meta]\nname \"foo\"\ncount 3\n")
	checkLinks(t, tree.Root())

	root := tree.Root()
	if root.Kind() != KindRoot || root.Len() != 1 {
		t.Fatalf("root = %s with %d children", root.Kind(), root.Len())
	}

	meta := root.FirstChild()
	if meta.Kind() != KindCategory || meta.Name() != "meta" || meta.Len() != 2 {
		t.Fatalf("first child = %s %q with %d children", meta.Kind(), meta.Name(), meta.Len())
	}

	name := meta.FirstChild()
	if name.Kind() != KindField || name.Name() != "name" {
		t.Fatalf("name = %s %q", name.Kind(), name.Name())
	}

	if v := name.FirstChild(); v.Kind() != KindString || v.Value().Str() != "foo" {
		t.Errorf("name value = %s %v", v.Kind(), v.Value())
	}

	count := name.Next()
	if count.Kind() != KindField || count.Name() != "count" {
		t.Fatalf("count = %s %q", count.Kind(), count.Name())
	}

	v := count.FirstChild()
	if v.Kind() != KindNumber || v.Value().Kind() != token.ValueInt || v.Value().Int64() != 3 {
		t.Errorf("count value = %s %v", v.Kind(), v.Value())
	}
}

func TestParse_FieldsAttachToCurrentCategory(t *testing.T) {
	tree := mustParse(t, `
top 1

[first]
a 1
b 2

[second]
; fields follow the most recent category
c 3
`)
	checkLinks(t, tree.Root())

	var got []string
	for c := range tree.Root().Children() {
		got = append(got, c.Kind().String()+":"+c.Name())
	}

	want := "Field:top Category:first Category:second"
	if strings.Join(got, " ") != want {
		t.Fatalf("root children = %v, want %s", got, want)
	}

	first, _ := tree.Root().Category("first")
	if first.Len() != 2 {
		t.Errorf("first has %d fields", first.Len())
	}

	second, _ := tree.Root().Category("second")
	if _, ok := second.Field("c"); !ok {
		t.Error("c not under second")
	}
}

func TestParse_LiteralRuns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		want  []string
	}{
		{"numbers", "pos 1 -2 +3 4.5", KindNumber, []string{"1", "-2", "3", "4.5"}},
		{"strings", `tags "a" "b c"`, KindString, []string{`"a"`, `"b c"`}},
		{"booleans", "flags true false true", KindBoolean, []string{"true", "false", "true"}},
		{"hex", "mask 0xff 0X10", KindNumber, []string{"0xFF", "0x10"}},
		{"single", "n 7", KindNumber, []string{"7"}},
		{"across lines", "a 1\n2", KindNumber, []string{"1", "2"}},
		{"across comment", "a \"x\" ; more\n\"y\"", KindString, []string{`"x"`, `"y"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := mustParse(t, tt.input)
			f := tree.Root().FirstChild()

			if n := tree.Root().Len(); n != 1 {
				t.Fatalf("root has %d children, want 1", n)
			}

			if f.Len() != len(tt.want) {
				t.Fatalf("field has %d children, want %d", f.Len(), len(tt.want))
			}

			i := 0
			for c := range f.Children() {
				if c.Kind() != tt.kind {
					t.Errorf("child %d kind = %s, want %s", i, c.Kind(), tt.kind)
				}

				if got := c.Value().String(); got != tt.want[i] {
					t.Errorf("child %d = %s, want %s", i, got, tt.want[i])
				}

				i++
			}
		})
	}
}

func TestParse_SingleStruct(t *testing.T) {
	tree := mustParse(t, "cfg { a 1 b \"x\" }")
	checkLinks(t, tree.Root())

	cfg := tree.Root().FirstChild()
	if cfg.Len() != 1 {
		t.Fatalf("cfg has %d children", cfg.Len())
	}

	s := cfg.FirstChild()
	if s.Kind() != KindStruct || s.Name() != "cfg" || s.Len() != 2 {
		t.Fatalf("child = %s %q with %d children", s.Kind(), s.Name(), s.Len())
	}

	if b, ok := cfg.Block(); !ok || b != s {
		t.Error("Block() does not return the struct")
	}
}

func TestParse_ArrayPromotion(t *testing.T) {
	tree := mustParse(t, `anim { tex "a" dur 1 } { tex "b" dur 2 }`)
	checkLinks(t, tree.Root())

	anim := tree.Root().FirstChild()
	if anim.Kind() != KindField || anim.Name() != "anim" || anim.Len() != 1 {
		t.Fatalf("anim = %s %q with %d children", anim.Kind(), anim.Name(), anim.Len())
	}

	arr := anim.FirstChild()
	if arr.Kind() != KindArrayOfStructs || arr.Name() != "anim" || arr.Len() != 2 {
		t.Fatalf("array = %s %q with %d children", arr.Kind(), arr.Name(), arr.Len())
	}

	want := []struct {
		tex string
		dur int64
	}{{"a", 1}, {"b", 2}}

	i := 0
	for e := range arr.Children() {
		if e.Kind() != KindStruct || e.Len() != 2 {
			t.Fatalf("element %d = %s with %d children", i, e.Kind(), e.Len())
		}

		tex, _ := e.Field("tex")
		dur, _ := e.Field("dur")

		if got := tex.FirstChild().Value().Str(); got != want[i].tex {
			t.Errorf("element %d tex = %q, want %q", i, got, want[i].tex)
		}

		if got := dur.FirstChild().Value().Int64(); got != want[i].dur {
			t.Errorf("element %d dur = %d, want %d", i, got, want[i].dur)
		}

		i++
	}

	if _, ok := anim.Block(); ok {
		t.Error("Block() succeeds on an array of structs")
	}
}

func TestParse_ArrayPromotionManyBlocks(t *testing.T) {
	for m := 2; m <= 5; m++ {
		src := "list" + strings.Repeat(" { x 1 y 2 }", m)
		tree := mustParse(t, src)
		checkLinks(t, tree.Root())

		f := tree.Root().FirstChild()

		n := 0
		for e := range f.Elements() {
			if e.Len() != 2 {
				t.Errorf("m=%d: element %d has %d fields", m, n, e.Len())
			}

			n++
		}

		if n != m || f.FirstChild().Len() != m {
			t.Errorf("m=%d: got %d elements", m, n)
		}
	}
}

func TestParse_NestedPromotion(t *testing.T) {
	tree := mustParse(t, `
scene {
  layer { id 1 } { id 2 }
  name "s1"
} {
  layer { id 3 }
  name "s2"
}
`)
	checkLinks(t, tree.Root())

	paths := []struct {
		path string
		want string
	}{
		{"scene.0.layer.0.id", "1"},
		{"scene.0.layer.1.id", "2"},
		{"scene.0.name.0", `"s1"`},
		{"scene.1.layer.id", "3"},
		{"scene.1.name.0", `"s2"`},
	}

	for _, p := range paths {
		n, err := tree.Lookup(p.path)
		if err != nil {
			t.Errorf("Lookup(%q): %v", p.path, err)

			continue
		}

		if n.Kind() == KindField {
			n = n.FirstChild()
		}

		if got := n.Value().String(); got != p.want {
			t.Errorf("Lookup(%q) = %s, want %s", p.path, got, p.want)
		}
	}
}

func TestParse_Comments(t *testing.T) {
	tree := mustParse(t, "; header\n[meta] ; trailing\nname ; between\n\"x\" ; end")

	f, err := tree.Lookup("meta.name")
	if err != nil {
		t.Fatal(err)
	}

	if got := Read[string](f); got != "x" {
		t.Errorf("name = %q", got)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, src := range []string{"", "  \n\t\n", "; only a comment"} {
		tree := mustParse(t, src)
		if tree.Root().Len() != 0 || tree.Size() != 1 {
			t.Errorf("%q: root has %d children", src, tree.Root().Len())
		}
	}
}

func TestParse_HexOverflowFlagged(t *testing.T) {
	tree := mustParse(t, "h 0x11111111111111111")

	v := tree.Root().FirstChild().FirstChild().Value()
	if !v.Flags().Has(token.Hex | token.RequiresFloat64) {
		t.Errorf("flags = %s", v.Flags())
	}

	if v.Uint64() != 0x1111111111111111 {
		t.Errorf("value = %#x", v.Uint64())
	}
}

func TestParse_IntegerOverflowFlagged(t *testing.T) {
	tree := mustParse(t, "x 99999999999999999999 1")

	v := tree.Root().FirstChild().FirstChild().Value()
	if !v.Flags().Has(token.Float | token.RequiresFloat64) {
		t.Errorf("flags = %s", v.Flags())
	}

	if v.Float64() != 1e20 {
		t.Errorf("value = %v, want 1e20", v.Float64())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
		line    int
		column  int
		width   int
	}{
		{"mixed types", `f 1 "x"`, msgMultipleType, 1, 5, 3},
		{"mixed bool", "f 1 true", msgMultipleType, 1, 5, 4},
		{"missing value", "f", msgLiteralOrBrace, 1, 2, 1},
		{"bracket value", "f [x]", msgLiteralOrBrace, 1, 3, 1},
		{"period", "f.g 1", msgPeriodInField, 1, 2, 1},
		{"category number", "[1]", msgIdentifier, 1, 2, 1},
		{"category empty", "[]", msgIdentifier, 1, 2, 1},
		{"bracket missing", "[cat\nx 1", msgClosingBracket, 2, 1, 1},
		{"empty struct", "f {}", msgEmptyStruct, 1, 4, 1},
		{"brace missing", "f { a 1", msgClosingBrace, 1, 8, 1},
		{"literal in struct", "f { 3 }", msgClosingBrace, 1, 5, 1},
		{"top-level brace", "}", msgCategoryOrField, 1, 1, 1},
		{"number after struct", "a { b 1 }\n2", msgCategoryOrField, 2, 1, 1},
		{"string after struct", "a { b 1 }\n\"s\"", msgCategoryOrField, 2, 1, 3},
		{"unterminated", `s "abc`, msgUnterminatedStr, 1, 3, 4},
		{"empty hex", "h 0x", msgEmptyHex, 1, 3, 2},
		{"empty hex in run", "h 1 0x", msgEmptyHex, 1, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := parseError(t, tt.input)

			if d.Message != tt.message {
				t.Errorf("message = %q, want %q", d.Message, tt.message)
			}

			if d.Line != tt.line || d.Column != tt.column || d.Width != tt.width {
				t.Errorf("position = %d:%d+%d, want %d:%d+%d",
					d.Line, d.Column, d.Width, tt.line, tt.column, tt.width)
			}
		})
	}
}

func TestParse_MaxDepth(t *testing.T) {
	src := "a { b { c { d 1 } } }"

	mustParse(t, src, WithMaxDepth(3))

	d := parseError(t, src, WithMaxDepth(2))
	if d.Message != msgMaxDepth {
		t.Errorf("message = %q", d.Message)
	}

	if !errors.Is(d, ErrMaxDepthExceeded) {
		t.Error("error does not match ErrMaxDepthExceeded")
	}
}

func TestParse_ReportsOnlyFirstError(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithTimeLayout("none"))

	_, err := ParseString(context.Background(),
		"a {}\nb {\n[\n",
		WithLogger(logger),
		WithSource("two.cfg"),
	)
	if err == nil {
		t.Fatal("expected error")
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("logged %d records, want 1:\n%s", len(lines), buf.String())
	}

	if !strings.Contains(lines[0], msgEmptyStruct) ||
		!strings.Contains(lines[0], "two.cfg") {
		t.Errorf("record = %s", lines[0])
	}

	if strings.Contains(lines[0], msgClosingBrace) {
		t.Error("second error was reported")
	}
}

func TestParse_TraceRecords(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelTrace), log.WithTimeLayout("none"))

	mustParse(t, "a 1", WithLogger(logger))

	out := buf.String()
	if !strings.Contains(out, "parse start") || !strings.Contains(out, "parse complete") {
		t.Errorf("trace output = %s", out)
	}
}

func TestParseReader(t *testing.T) {
	tree, err := ParseReader(context.Background(),
		strings.NewReader("[meta]\nname \"r\""),
		WithSource("reader.cfg"),
	)
	if err != nil {
		t.Fatal(err)
	}

	if tree.Source() != "reader.cfg" {
		t.Errorf("Source() = %q", tree.Source())
	}

	_, err = ParseReader(context.Background(), strings.NewReader("x"),
		WithSource("bad.cfg"))
	if err == nil || !strings.HasPrefix(err.Error(), "bad.cfg:1:2: ") {
		t.Errorf("error = %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestParseReader_ReadError(t *testing.T) {
	_, err := ParseReader(context.Background(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("error = %v, want ErrReadInput", err)
	}
}
