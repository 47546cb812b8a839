package lang

import (
	"log/slog"
	"reflect"

	"github.com/ardnew/blockcfg/lang/token"
)

// Number is the set of numeric types a field value can be read into.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Scalar is the set of types a field value can be read into.
type Scalar interface {
	Number | ~string | ~bool
}

// Scan reads the single literal held by field into dst.
//
// Scan returns an [ErrContract] error unless field is a Field node with
// exactly one literal child whose kind matches the type of dst: numbers for
// numeric types, strings for string types, booleans for bool types.
func Scan[T Scalar](field Node, dst *T) error {
	err := checkShape[T](field, 1)
	if err != nil {
		return err
	}

	assign(reflect.ValueOf(dst).Elem(), field.FirstChild().Value())

	return nil
}

// ScanSlice reads the literals held by field into dst, which must have
// exactly as many elements as field has children.
func ScanSlice[T Scalar](field Node, dst []T) error {
	err := checkShape[T](field, len(dst))
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(dst)

	i := 0
	for c := range field.Children() {
		assign(rv.Index(i), c.Value())
		i++
	}

	return nil
}

// Read is like [Scan] but returns the value and panics on a shape mismatch.
// Use it where the document schema is fixed and a mismatch is a programming
// error.
func Read[T Scalar](field Node) T {
	var v T

	err := Scan(field, &v)
	if err != nil {
		panic(err)
	}

	return v
}

// ReadSlice is like [ScanSlice] but panics on a shape mismatch.
func ReadSlice[T Scalar](field Node, dst []T) {
	err := ScanSlice(field, dst)
	if err != nil {
		panic(err)
	}
}

// ReadAll returns every literal held by field, panicking on a shape
// mismatch.
func ReadAll[T Scalar](field Node) []T {
	dst := make([]T, field.Len())
	ReadSlice(field, dst)

	return dst
}

// checkShape verifies that field holds exactly n literals of the kind T
// reads from.
func checkShape[T Scalar](field Node, n int) error {
	want := scalarKind(reflect.TypeFor[T]())

	if field.Kind() != KindField {
		return ErrContract.With(
			slog.String("reason", "not a field"),
			slog.String("kind", field.Kind().String()),
		)
	}

	if field.Len() != n {
		return ErrContract.With(
			slog.String("reason", "value count"),
			slog.String("field", field.Name()),
			slog.Int("want", n),
			slog.Int("have", field.Len()),
		)
	}

	for c := range field.Children() {
		if c.Kind() != want {
			return ErrContract.With(
				slog.String("reason", "value kind"),
				slog.String("field", field.Name()),
				slog.String("want", want.String()),
				slog.String("have", c.Kind().String()),
			)
		}
	}

	return nil
}

// scalarKind returns the literal node kind values of type t are read from.
func scalarKind(t reflect.Type) Kind {
	switch t.Kind() {
	case reflect.String:
		return KindString

	case reflect.Bool:
		return KindBoolean

	default:
		return KindNumber
	}
}

// assign stores v into dst, converting numbers to the destination width.
// Integers are truncated and floats are rounded toward zero as by a Go
// conversion.
func assign(dst reflect.Value, v token.Value) {
	switch dst.Kind() {
	case reflect.String:
		dst.SetString(v.Str())

	case reflect.Bool:
		dst.SetBool(v.Bool())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		dst.SetInt(v.Int64())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		dst.SetUint(v.Uint64())

	case reflect.Float32, reflect.Float64:
		dst.SetFloat(v.Float64())
	}
}
