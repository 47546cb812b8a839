package lang

import (
	"iter"
	"log/slog"

	"github.com/ardnew/blockcfg/lang/token"
)

// Kind identifies the structural or literal class of a tree node.
type Kind uint8

const (
	// KindInvalid is the kind of the zero [Node].
	KindInvalid Kind = iota

	// KindRoot is the single top-level node of a tree.
	KindRoot

	// KindCategory is a [name] section; following bare fields attach to it.
	KindCategory

	// KindField is a named field holding literals or struct blocks.
	KindField

	// KindStruct is one { ... } block, or one element of an array of structs.
	KindStruct

	// KindArrayOfStructs wraps the struct elements of a field written with
	// two or more consecutive blocks.
	KindArrayOfStructs

	// KindNumber is a numeric literal.
	KindNumber

	// KindString is a quoted string literal.
	KindString

	// KindBoolean is a true or false literal.
	KindBoolean
)

// String returns a string representation of the node kind.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "Root"

	case KindCategory:
		return "Category"

	case KindField:
		return "Field"

	case KindStruct:
		return "Struct"

	case KindArrayOfStructs:
		return "ArrayOfStructs"

	case KindNumber:
		return "Number"

	case KindString:
		return "String"

	case KindBoolean:
		return "Boolean"

	default:
		return "Invalid"
	}
}

// IsLiteral reports whether k is a number, string, or boolean kind.
func (k Kind) IsLiteral() bool {
	return k == KindNumber || k == KindString || k == KindBoolean
}

// literalKind maps a literal token kind to its node kind.
func literalKind(k token.Kind) Kind {
	switch k {
	case token.Number:
		return KindNumber

	case token.String:
		return KindString

	case token.True, token.False:
		return KindBoolean

	default:
		return KindInvalid
	}
}

// id indexes a node in its tree's arena.
type id int32

const nilID id = -1

// node is the arena record. Links are indices into Tree.nodes; the parent
// link is a back-reference only, ownership runs from parent to children.
type node struct {
	name   string
	value  token.Value
	parent id
	next   id
	prev   id
	first  id
	last   id
	count  int32
	kind   Kind
}

// Tree is a parsed document. All nodes live in a single arena owned by the
// tree and are released together when the tree is no longer referenced.
type Tree struct {
	source string
	nodes  []node
}

// NewTree returns a tree containing only a root node.
// The source label is reported by [Tree.Source].
func NewTree(source string) *Tree {
	return newTree(source, 0)
}

func newTree(source string, capacity int) *Tree {
	t := &Tree{
		source: source,
		nodes:  make([]node, 0, max(capacity, 1)),
	}

	t.alloc(KindRoot, "", token.Value{})

	return t
}

// Source returns the label of the input the tree was built from.
func (t *Tree) Source() string { return t.source }

// Root returns the root node.
func (t *Tree) Root() Node { return Node{tree: t, id: 0} }

// Size returns the number of nodes in the tree, including the root.
func (t *Tree) Size() int { return len(t.nodes) }

// LogValue implements slog.LogValuer.
func (t *Tree) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", t.source),
		slog.Int("nodes", len(t.nodes)),
		slog.Int("top_level", t.Root().Len()),
	)
}

func (t *Tree) alloc(kind Kind, name string, value token.Value) id {
	t.nodes = append(t.nodes, node{
		name:   name,
		value:  value,
		parent: nilID,
		next:   nilID,
		prev:   nilID,
		first:  nilID,
		last:   nilID,
		kind:   kind,
	})

	return id(len(t.nodes) - 1)
}

// link appends child to the end of parent's child list.
func (t *Tree) link(parent, child id) {
	c := &t.nodes[child]
	c.parent = parent
	c.next = nilID
	c.prev = t.nodes[parent].last

	p := &t.nodes[parent]
	if p.last == nilID {
		p.first = child
	} else {
		t.nodes[p.last].next = child
	}

	p.last = child
	p.count++
}

// addField appends a field to parent, which must be the root, a category,
// or a struct element.
func (t *Tree) addField(parent id, name string) id {
	f := t.alloc(KindField, name, token.Value{})
	t.link(parent, f)

	return f
}

// addLiteral appends a literal child to field.
func (t *Tree) addLiteral(field id, kind Kind, value token.Value) id {
	n := t.alloc(kind, "", value)
	t.link(field, n)

	return n
}

// addStruct returns a new, empty struct element for field.
//
// The first block becomes the field's single Struct child. The second block
// promotes that child to an ArrayOfStructs (see promote) before the new
// element is appended; later blocks are appended as further elements.
func (t *Tree) addStruct(field id) id {
	name := t.nodes[field].name

	head := t.nodes[field].first
	if head == nilID {
		s := t.alloc(KindStruct, name, token.Value{})
		t.link(field, s)

		return s
	}

	if t.nodes[head].kind == KindStruct {
		t.promote(head)
	}

	elem := t.alloc(KindStruct, name, token.Value{})
	t.link(head, elem)

	return elem
}

// promote rewrites the Struct node s in place into an ArrayOfStructs whose
// single element holds the fields s held before. Fields are re-parented,
// never copied.
func (t *Tree) promote(s id) {
	elem := t.alloc(KindStruct, t.nodes[s].name, token.Value{})

	for c := t.nodes[s].first; c != nilID; c = t.nodes[c].next {
		t.nodes[c].parent = elem
	}

	e := &t.nodes[elem]
	e.first = t.nodes[s].first
	e.last = t.nodes[s].last
	e.count = t.nodes[s].count
	e.parent = s

	n := &t.nodes[s]
	n.kind = KindArrayOfStructs
	n.first = elem
	n.last = elem
	n.count = 1
}

// AddCategory appends a category to the root and returns it.
func (t *Tree) AddCategory(name string) Node {
	c := t.alloc(KindCategory, name, token.Value{})
	t.link(0, c)

	return Node{tree: t, id: c}
}

// AddField appends a field named name to parent and returns it.
// It panics with [ErrContract] unless parent is the root, a category, or a
// struct belonging to t.
func (t *Tree) AddField(parent Node, name string) Node {
	if parent.tree != t {
		panic(ErrContract.With(slog.String("reason", "foreign parent")))
	}

	switch parent.Kind() {
	case KindRoot, KindCategory, KindStruct:

	default:
		panic(ErrContract.With(
			slog.String("reason", "field parent"),
			slog.String("kind", parent.Kind().String()),
		))
	}

	return Node{tree: t, id: t.addField(parent.id, name)}
}

// AddLiteral appends a literal value to field and returns the literal node.
// It panics with [ErrContract] if field already holds struct blocks or
// literals of a different kind.
func (t *Tree) AddLiteral(field Node, value token.Value) Node {
	kind := valueKind(value)

	if field.tree != t || field.Kind() != KindField || kind == KindInvalid {
		panic(ErrContract.With(slog.String("reason", "literal parent")))
	}

	if head := field.FirstChild(); head.Valid() && head.Kind() != kind {
		panic(ErrContract.With(
			slog.String("reason", "mixed field values"),
			slog.String("have", head.Kind().String()),
			slog.String("add", kind.String()),
		))
	}

	return Node{tree: t, id: t.addLiteral(field.id, kind, value)}
}

// AddStruct appends an empty struct block to field and returns it,
// promoting the field to an array of structs on the second block.
func (t *Tree) AddStruct(field Node) Node {
	if field.tree != t || field.Kind() != KindField {
		panic(ErrContract.With(slog.String("reason", "struct parent")))
	}

	if head := field.FirstChild(); head.Valid() && head.Kind().IsLiteral() {
		panic(ErrContract.With(
			slog.String("reason", "mixed field values"),
			slog.String("have", head.Kind().String()),
		))
	}

	return Node{tree: t, id: t.addStruct(field.id)}
}

func valueKind(v token.Value) Kind {
	switch v.Kind() {
	case token.ValueInt, token.ValueUint, token.ValueFloat32, token.ValueFloat64:
		return KindNumber

	case token.ValueString:
		return KindString

	case token.ValueBool:
		return KindBoolean

	default:
		return KindInvalid
	}
}

// Node is a handle to one node of a [Tree]. The zero Node is invalid; its
// accessors return zero values.
type Node struct {
	tree *Tree
	id   id
}

// Valid reports whether n refers to a node.
func (n Node) Valid() bool { return n.tree != nil && n.id >= 0 }

func (n Node) rec() *node { return &n.tree.nodes[n.id] }

func (n Node) at(i id) Node {
	if i == nilID {
		return Node{}
	}

	return Node{tree: n.tree, id: i}
}

// Tree returns the tree n belongs to.
func (n Node) Tree() *Tree { return n.tree }

// Kind returns the node kind.
func (n Node) Kind() Kind {
	if !n.Valid() {
		return KindInvalid
	}

	return n.rec().kind
}

// Name returns the name of a category, field, struct, or array of structs.
// Structs and arrays carry the name of their owning field.
func (n Node) Name() string {
	if !n.Valid() {
		return ""
	}

	return n.rec().name
}

// Value returns the payload of a literal node.
func (n Node) Value() token.Value {
	if !n.Valid() {
		return token.Value{}
	}

	return n.rec().value
}

// Parent returns the parent node, or the zero Node for the root.
func (n Node) Parent() Node {
	if !n.Valid() {
		return Node{}
	}

	return n.at(n.rec().parent)
}

// Next returns the following sibling.
func (n Node) Next() Node {
	if !n.Valid() {
		return Node{}
	}

	return n.at(n.rec().next)
}

// Prev returns the preceding sibling.
func (n Node) Prev() Node {
	if !n.Valid() {
		return Node{}
	}

	return n.at(n.rec().prev)
}

// FirstChild returns the first child.
func (n Node) FirstChild() Node {
	if !n.Valid() {
		return Node{}
	}

	return n.at(n.rec().first)
}

// LastChild returns the last child.
func (n Node) LastChild() Node {
	if !n.Valid() {
		return Node{}
	}

	return n.at(n.rec().last)
}

// Len returns the number of children.
func (n Node) Len() int {
	if !n.Valid() {
		return 0
	}

	return int(n.rec().count)
}

// Children returns an iterator over the children in source order.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for c := n.FirstChild(); c.Valid(); c = c.Next() {
			if !yield(c) {
				return
			}
		}
	}
}

// Child returns the i'th child, or the zero Node if i is out of range.
func (n Node) Child(i int) Node {
	if i < 0 || i >= n.Len() {
		return Node{}
	}

	c := n.FirstChild()
	for ; i > 0; i-- {
		c = c.Next()
	}

	return c
}

// Field returns the first field child named name.
func (n Node) Field(name string) (Node, bool) {
	return n.find(KindField, name)
}

// Category returns the first category named name. n must be the root.
func (n Node) Category(name string) (Node, bool) {
	return n.find(KindCategory, name)
}

func (n Node) find(kind Kind, name string) (Node, bool) {
	for c := range n.Children() {
		if c.Kind() == kind && c.Name() == name {
			return c, true
		}
	}

	return Node{}, false
}

// Block returns the struct a field holds when it was written with exactly
// one block.
func (n Node) Block() (Node, bool) {
	if n.Kind() != KindField {
		return Node{}, false
	}

	head := n.FirstChild()

	return head, head.Kind() == KindStruct
}

// Elements returns an iterator over the struct blocks of a field: the single
// struct, or every element of its array of structs.
func (n Node) Elements() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if n.Kind() != KindField {
			return
		}

		head := n.FirstChild()

		switch head.Kind() {
		case KindStruct:
			yield(head)

		case KindArrayOfStructs:
			for e := range head.Children() {
				if !yield(e) {
					return
				}
			}
		}
	}
}
