package lang

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const readDoc = `
[sprite]
name "hero"
frames 4
speed 1.5
scale 0.123456789
visible true
mask 0xFF
offset -0x10
pos 10 -20 30
tags "a" "b"
box { w 16 h 32 }
`

func field(t *testing.T, tree *Tree, path string) Node {
	t.Helper()

	n, err := tree.Lookup(path)
	if err != nil {
		t.Fatalf("Lookup(%q): %v", path, err)
	}

	return n
}

type millis int

type label string

func TestRead_Scalars(t *testing.T) {
	tree := mustParse(t, readDoc)

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", Read[string](field(t, tree, "sprite.name")), "hero"},
		{"int", Read[int](field(t, tree, "sprite.frames")), 4},
		{"int8", Read[int8](field(t, tree, "sprite.frames")), int8(4)},
		{"uint16", Read[uint16](field(t, tree, "sprite.frames")), uint16(4)},
		{"float32", Read[float32](field(t, tree, "sprite.speed")), float32(1.5)},
		{"float truncates", Read[int](field(t, tree, "sprite.speed")), 1},
		{"bool", Read[bool](field(t, tree, "sprite.visible")), true},
		{"hex uint64", Read[uint64](field(t, tree, "sprite.mask")), uint64(0xFF)},
		{"hex uint8", Read[uint8](field(t, tree, "sprite.mask")), uint8(0xFF)},
		{"negative hex", Read[int64](field(t, tree, "sprite.offset")), int64(-16)},
		{"int as float64", Read[float64](field(t, tree, "sprite.frames")), float64(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %#v, want %#v", tt.got, tt.want)
			}
		})
	}

	if got := Read[float64](field(t, tree, "sprite.scale")); math.Abs(got-0.123456789) > 1e-12 {
		t.Errorf("scale = %v", got)
	}
}

func TestRead_NamedTypes(t *testing.T) {
	tree := mustParse(t, readDoc)

	if got := Read[millis](field(t, tree, "sprite.frames")); got != 4 {
		t.Errorf("millis = %d", got)
	}

	if got := Read[label](field(t, tree, "sprite.name")); got != "hero" {
		t.Errorf("label = %q", got)
	}
}

func TestReadSlice(t *testing.T) {
	tree := mustParse(t, readDoc)

	pos := make([]int32, 3)
	ReadSlice(field(t, tree, "sprite.pos"), pos)

	if diff := cmp.Diff([]int32{10, -20, 30}, pos); diff != "" {
		t.Errorf("pos mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"a", "b"}, ReadAll[string](field(t, tree, "sprite.tags"))); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]float64{10, -20, 30}, ReadAll[float64](field(t, tree, "sprite.pos"))); diff != "" {
		t.Errorf("pos float mismatch (-want +got):\n%s", diff)
	}
}

func TestScan_ContractViolations(t *testing.T) {
	tree := mustParse(t, readDoc)

	tests := []struct {
		name string
		scan func() error
	}{
		{"string from number", func() error {
			var s string
			return Scan(field(t, tree, "sprite.frames"), &s)
		}},
		{"number from string", func() error {
			var n int
			return Scan(field(t, tree, "sprite.name"), &n)
		}},
		{"bool from number", func() error {
			var b bool
			return Scan(field(t, tree, "sprite.frames"), &b)
		}},
		{"scalar from array", func() error {
			var n int
			return Scan(field(t, tree, "sprite.pos"), &n)
		}},
		{"scalar from struct", func() error {
			var n int
			return Scan(field(t, tree, "sprite.box"), &n)
		}},
		{"slice too short", func() error {
			return ScanSlice(field(t, tree, "sprite.pos"), make([]int, 2))
		}},
		{"slice too long", func() error {
			return ScanSlice(field(t, tree, "sprite.pos"), make([]int, 4))
		}},
		{"category", func() error {
			var s string
			return Scan(field(t, tree, "sprite"), &s)
		}},
		{"zero node", func() error {
			var s string
			return Scan(Node{}, &s)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.scan(); !errors.Is(err, ErrContract) {
				t.Errorf("error = %v, want ErrContract", err)
			}
		})
	}
}

func TestRead_PanicsOnContractViolation(t *testing.T) {
	tree := mustParse(t, readDoc)

	tests := []struct {
		name   string
		fn     func()
		panics bool
	}{
		{"wrong kind", func() { Read[string](field(t, tree, "sprite.frames")) }, true},
		{"wrong length", func() { ReadSlice(field(t, tree, "sprite.pos"), make([]int, 1)) }, true},
		{"nested field", func() { Read[int](field(t, tree, "sprite.box.w")) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.panics {
					t.Errorf("panic = %v, want panic %v", r, tt.panics)
				}
			}()

			tt.fn()
		})
	}
}
