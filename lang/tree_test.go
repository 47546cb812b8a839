package lang

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/blockcfg/lang/token"
)

func TestTree_Builders(t *testing.T) {
	tree := NewTree("built")

	top := tree.AddField(tree.Root(), "version")
	tree.AddLiteral(top, token.IntValue(2))

	meta := tree.AddCategory("meta")
	name := tree.AddField(meta, "name")
	tree.AddLiteral(name, token.StringValue("demo"))

	anim := tree.AddField(meta, "anim")
	for _, tex := range []string{"a", "b", "c"} {
		s := tree.AddStruct(anim)
		f := tree.AddField(s, "tex")
		tree.AddLiteral(f, token.StringValue(tex))
	}

	checkLinks(t, tree.Root())

	if got := tree.Source(); got != "built" {
		t.Errorf("Source() = %q", got)
	}

	if got := tree.Root().Len(); got != 2 {
		t.Errorf("root children = %d, want 2", got)
	}

	arr := anim.FirstChild()
	if arr.Kind() != KindArrayOfStructs {
		t.Fatalf("anim child kind = %v", arr.Kind())
	}

	if arr.Len() != 3 {
		t.Errorf("elements = %d, want 3", arr.Len())
	}

	var texs []string

	for e := range anim.Elements() {
		f, ok := e.Field("tex")
		if !ok {
			t.Fatal("element without tex")
		}

		texs = append(texs, Read[string](f))
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, texs); diff != "" {
		t.Errorf("tex mismatch (-want +got):\n%s", diff)
	}
}

func TestTree_PromotionKeepsFirstElement(t *testing.T) {
	tree := NewTree("")
	f := tree.AddField(tree.Root(), "f")

	first := tree.AddStruct(f)
	x := tree.AddField(first, "x")
	tree.AddLiteral(x, token.IntValue(1))
	y := tree.AddField(first, "y")
	tree.AddLiteral(y, token.IntValue(2))

	tree.AddStruct(f)

	checkLinks(t, tree.Root())

	elem := f.FirstChild().FirstChild()
	if elem.Kind() != KindStruct || elem.Name() != "f" {
		t.Fatalf("element = %v %q", elem.Kind(), elem.Name())
	}

	// The fields are the same nodes, now owned by the element.
	if elem.FirstChild() != x || elem.LastChild() != y {
		t.Error("element does not own the original fields")
	}

	if x.Parent() != elem {
		t.Error("field parent not updated")
	}

	if Read[int64](x) != 1 || Read[int64](y) != 2 {
		t.Errorf("values = %d %d", Read[int64](x), Read[int64](y))
	}
}

func TestTree_BuilderContracts(t *testing.T) {
	tree := NewTree("")
	other := NewTree("")

	lits := tree.AddField(tree.Root(), "n")
	tree.AddLiteral(lits, token.IntValue(1))

	blocks := tree.AddField(tree.Root(), "b")
	tree.AddStruct(blocks)

	tests := []struct {
		name string
		fn   func()
	}{
		{"mixed literal kinds", func() { tree.AddLiteral(lits, token.StringValue("x")) }},
		{"struct after literal", func() { tree.AddStruct(lits) }},
		{"literal after struct", func() { tree.AddLiteral(blocks, token.IntValue(1)) }},
		{"field under field", func() { tree.AddField(lits, "x") }},
		{"field under literal", func() { tree.AddField(lits.FirstChild(), "x") }},
		{"foreign parent", func() { tree.AddField(other.Root(), "x") }},
		{"literal on category", func() { tree.AddLiteral(tree.AddCategory("c"), token.IntValue(1)) }},
		{"empty value", func() { tree.AddLiteral(tree.AddField(tree.Root(), "e"), token.Value{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}

				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrContract) {
					t.Errorf("panic = %v, want ErrContract", r)
				}
			}()

			tt.fn()
		})
	}
}

func TestNode_ZeroValue(t *testing.T) {
	var n Node

	if n.Valid() {
		t.Error("zero Node is valid")
	}

	if n.Kind() != KindInvalid || n.Name() != "" || n.Len() != 0 {
		t.Errorf("zero Node = %v %q %d", n.Kind(), n.Name(), n.Len())
	}

	if n.Parent().Valid() || n.FirstChild().Valid() {
		t.Error("zero Node has links")
	}

	if len(slices.Collect(n.Children())) != 0 || len(slices.Collect(n.Elements())) != 0 {
		t.Error("zero Node has children")
	}
}

func TestNode_Navigation(t *testing.T) {
	tree := mustParse(t, "a 1\nb 2\nc 3")
	root := tree.Root()

	a := root.Child(0)
	b := root.Child(1)
	c := root.Child(2)

	if a.Name() != "a" {
		t.Errorf("first child = %q", a.Name())
	}

	if a.Next() != b || b.Prev() != a || root.LastChild() != c {
		t.Error("sibling links broken")
	}

	if c.Next().Valid() || root.Child(3).Valid() || root.Child(-1).Valid() {
		t.Error("out of range node is valid")
	}

	if c.Tree() != tree {
		t.Error("Tree() mismatch")
	}

	if _, ok := root.Field("missing"); ok {
		t.Error("found missing field")
	}

	if _, ok := root.Category("a"); ok {
		t.Error("Category matched a field")
	}
}

func TestKind_String(t *testing.T) {
	kinds := map[Kind]string{
		KindInvalid:        "Invalid",
		KindRoot:           "Root",
		KindCategory:       "Category",
		KindField:          "Field",
		KindStruct:         "Struct",
		KindArrayOfStructs: "ArrayOfStructs",
		KindNumber:         "Number",
		KindString:         "String",
		KindBoolean:        "Boolean",
	}

	for k, want := range kinds {
		if got := k.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}

		literal := k == KindNumber || k == KindString || k == KindBoolean
		if k.IsLiteral() != literal {
			t.Errorf("%v.IsLiteral() = %v", k, k.IsLiteral())
		}
	}
}
