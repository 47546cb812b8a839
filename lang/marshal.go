package lang

import (
	"encoding/json"

	"github.com/goccy/go-yaml"
)

// MarshalJSON implements json.Marshaler for Tree.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToNative())
}

// ToNative converts the tree to native Go maps, slices, and scalars.
//
// Categories and struct blocks become map[string]any keyed by field name.
// A field holding one literal becomes that literal's Go value; a field
// holding several becomes []any. An array of structs becomes []any of maps.
// When a name repeats within one scope, the last occurrence wins.
func (t *Tree) ToNative() map[string]any {
	m, _ := t.Root().Native().(map[string]any)

	return m
}

// Native converts the subtree rooted at n as described by [Tree.ToNative].
func (n Node) Native() any {
	return convertNode(n, nativeBuilder{})
}

// toMapSlice converts the tree preserving source order, for encoders that
// honor key order.
func (t *Tree) toMapSlice() yaml.MapSlice {
	m, _ := convertNode(t.Root(), orderedBuilder{}).(yaml.MapSlice)

	return m
}

// mapBuilder abstracts over the container used for named scopes.
type mapBuilder interface {
	make(size int) any
	set(m any, key string, value any) any
}

type nativeBuilder struct{}

func (nativeBuilder) make(size int) any { return make(map[string]any, size) }

func (nativeBuilder) set(m any, key string, value any) any {
	m.(map[string]any)[key] = value

	return m
}

type orderedBuilder struct{}

func (orderedBuilder) make(size int) any { return make(yaml.MapSlice, 0, size) }

func (orderedBuilder) set(m any, key string, value any) any {
	return append(m.(yaml.MapSlice), yaml.MapItem{Key: key, Value: value})
}

func convertNode(n Node, b mapBuilder) any {
	switch n.Kind() {
	case KindRoot, KindCategory, KindStruct:
		m := b.make(n.Len())
		for c := range n.Children() {
			m = b.set(m, c.Name(), convertNode(c, b))
		}

		return m

	case KindField:
		head := n.FirstChild()

		switch {
		case head.Kind() == KindStruct || head.Kind() == KindArrayOfStructs:
			return convertNode(head, b)

		case n.Len() == 1:
			return head.Value().Any()
		}

		values := make([]any, 0, n.Len())
		for c := range n.Children() {
			values = append(values, c.Value().Any())
		}

		return values

	case KindArrayOfStructs:
		elems := make([]any, 0, n.Len())
		for e := range n.Children() {
			elems = append(elems, convertNode(e, b))
		}

		return elems

	case KindNumber, KindString, KindBoolean:
		return n.Value().Any()

	default:
		return nil
	}
}
