package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// PathSeparator separates the segments of a node path.
const PathSeparator = "."

// Lookup resolves a dotted path to a node.
//
// The first segment names a category or a top-level field. Each following
// segment names a field of the struct held by the current field, or, when
// numeric, indexes an element of an array of structs or a literal value.
// For example, "meta.name" selects field name of category meta, and
// "anim.1.tex" selects field tex of the second block of field anim.
func (t *Tree) Lookup(path string) (Node, error) {
	if path == "" {
		return t.Root(), nil
	}

	n := t.Root()

	for seg := range strings.SplitSeq(path, PathSeparator) {
		next, ok := n.step(seg)
		if !ok {
			return Node{}, ErrPathNotFound.With(
				slog.String("path", path),
				slog.String("segment", seg),
			)
		}

		n = next
	}

	return n, nil
}

// step resolves one path segment relative to n.
func (n Node) step(seg string) (Node, bool) {
	index, err := strconv.Atoi(seg)
	numeric := err == nil

	switch n.Kind() {
	case KindRoot:
		if c, ok := n.Category(seg); ok {
			return c, true
		}

		return n.Field(seg)

	case KindCategory, KindStruct:
		return n.Field(seg)

	case KindField:
		head := n.FirstChild()

		switch {
		case head.Kind().IsLiteral():
			if !numeric {
				return Node{}, false
			}

			c := n.Child(index)

			return c, c.Valid()

		case numeric:
			i := 0
			for e := range n.Elements() {
				if i == index {
					return e, true
				}

				i++
			}

			return Node{}, false

		default:
			// Fields of a single block are addressed without an index.
			if b, ok := n.Block(); ok {
				return b.Field(seg)
			}

			return Node{}, false
		}

	default:
		return Node{}, false
	}
}

// Path returns the dotted path that [Tree.Lookup] resolves to n.
func (n Node) Path() string {
	parent := n.Parent()

	switch n.Kind() {
	case KindCategory:
		return n.Name()

	case KindField:
		return join(parent.Path(), n.Name())

	case KindStruct:
		if parent.Kind() == KindArrayOfStructs {
			return join(parent.Parent().Path(), strconv.Itoa(n.index()))
		}

		return parent.Path()

	case KindArrayOfStructs:
		return parent.Path()

	case KindNumber, KindString, KindBoolean:
		return join(parent.Path(), strconv.Itoa(n.index()))

	default:
		return ""
	}
}

// index returns the position of n among its siblings.
func (n Node) index() int {
	i := 0
	for p := n.Prev(); p.Valid(); p = p.Prev() {
		i++
	}

	return i
}

func join(prefix, seg string) string {
	if prefix == "" {
		return seg
	}

	return prefix + PathSeparator + seg
}

// Paths returns the path of every category and field in source order.
// Fields inside an array of structs are listed once per element.
func (t *Tree) Paths() []string {
	var paths []string

	var walk func(n Node)

	walk = func(n Node) {
		for c := range n.Children() {
			switch c.Kind() {
			case KindCategory:
				paths = append(paths, c.Path())
				walk(c)

			case KindField:
				paths = append(paths, c.Path())

				for e := range c.Elements() {
					walk(e)
				}
			}
		}
	}

	walk(t.Root())

	return paths
}
