package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/blockcfg/lang/token"
)

func kinds(src string) []token.Kind {
	l := New([]byte(src))

	var out []token.Kind

	for {
		tok := l.Next()
		out = append(out, tok.Kind)

		if tok.Kind == token.EOF {
			return out
		}
	}
}

func TestLexer_Kinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Kind
	}{
		{
			name:  "empty",
			input: "",
			want:  []token.Kind{token.EOF},
		},
		{
			name:  "whitespace only",
			input: " \t\r\n ",
			want:  []token.Kind{token.EOF},
		},
		{
			name:  "category",
			input: "[meta]",
			want: []token.Kind{
				token.CategoryOpen, token.Identifier, token.CategoryClose, token.EOF,
			},
		},
		{
			name:  "field with literals",
			input: `name "foo" 3 true false`,
			want: []token.Kind{
				token.Identifier, token.String, token.Number,
				token.True, token.False, token.EOF,
			},
		},
		{
			name:  "struct",
			input: "anim { dur 1 }",
			want: []token.Kind{
				token.Identifier, token.StructOpen, token.Identifier,
				token.Number, token.StructClose, token.EOF,
			},
		},
		{
			name:  "comment is a token",
			input: "; a comment\nx 1",
			want: []token.Kind{
				token.Comment, token.Identifier, token.Number, token.EOF,
			},
		},
		{
			name:  "period is punctuation",
			input: "a.b",
			want: []token.Kind{
				token.Identifier, token.Period, token.Identifier, token.EOF,
			},
		},
		{
			name:  "bare sign is punctuation",
			input: "- x",
			want:  []token.Kind{token.Kind('-'), token.Identifier, token.EOF},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(tt.input))
		})
	}
}

func TestLexer_PeekDoesNotAdvance(t *testing.T) {
	l := New([]byte("a b"))

	first := l.Peek()
	again := l.Peek()

	assert.Equal(t, first, again)
	assert.Equal(t, "a", first.Value.Str())

	l.Consume()

	second := l.Peek()
	assert.Equal(t, "b", second.Value.Str())
	assert.Equal(t, 2, second.Offset)
}

func TestLexer_Offsets(t *testing.T) {
	l := New([]byte("  key\n\t\"v\""))

	key := l.Next()
	assert.Equal(t, 2, key.Offset)
	assert.Equal(t, 5, l.Cursor())

	str := l.Next()
	assert.Equal(t, 7, str.Offset)
	assert.Equal(t, 10, l.Cursor())

	eof := l.Next()
	assert.Equal(t, token.EOF, eof.Kind)
	assert.Equal(t, 10, eof.Offset)
}

func TestLexer_Integers(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"0", 0},
		{"42", 42},
		{"+7", 7},
		{"-15", -15},
		{"9223372036854775807", 9223372036854775807},
		{"-9223372036854775808", -9223372036854775808},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New([]byte(tt.input)).Peek()

			require.Equal(t, token.Number, tok.Kind)
			assert.Equal(t, token.ValueInt, tok.Value.Kind())
			assert.Equal(t, tt.want, tok.Value.Int64())
			assert.Equal(t, token.Flags(0), tok.Value.Flags())
		})
	}
}

func TestLexer_IntegerOverflow(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"9223372036854775808", 9223372036854775808},
		{"99999999999999999999", 1e20},
		{"-99999999999999999999", -1e20},
		{"99999999999999999999.5", 1e20},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New([]byte(tt.input))
			tok := l.Peek()

			require.Equal(t, token.Number, tok.Kind)
			assert.Equal(t, token.ValueFloat64, tok.Value.Kind())
			assert.Equal(t, token.Float|token.RequiresFloat64, tok.Value.Flags())
			assert.Equal(t, tt.want, tok.Value.Float64())
			assert.Equal(t, len(tt.input), l.Cursor())
		})
	}
}

func TestLexer_Floats(t *testing.T) {
	tests := []struct {
		input string
		kind  token.ValueKind
		flags token.Flags
		want  float64
	}{
		{"1.5", token.ValueFloat32, token.Float, 1.5},
		{"-2.25", token.ValueFloat32, token.Float, -2.25},
		{"3.", token.ValueFloat32, token.Float, 3},
		{"0.12345678", token.ValueFloat32, token.Float, 0.12345678},
		{
			"0.123456789",
			token.ValueFloat64,
			token.Float | token.RequiresFloat64,
			0.123456789,
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New([]byte(tt.input)).Peek()

			require.Equal(t, token.Number, tok.Kind)
			assert.Equal(t, tt.kind, tok.Value.Kind())
			assert.Equal(t, tt.flags, tok.Value.Flags())
			assert.InDelta(t, tt.want, tok.Value.Float64(), 1e-6)
		})
	}
}

func TestLexer_Hex(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   uint64
		flags  token.Flags
		defect token.Defect
	}{
		{"lower", "0xff", 0xff, token.Hex, token.DefectNone},
		{"upper prefix", "0XAbC", 0xabc, token.Hex, token.DefectNone},
		{
			"sixteen digits",
			"0xFFFFFFFFFFFFFFFF",
			0xFFFFFFFFFFFFFFFF,
			token.Hex,
			token.DefectNone,
		},
		{
			"leading zeros are not significant",
			"0x000000000000000000FF",
			0xff,
			token.Hex,
			token.DefectNone,
		},
		{
			"seventeen digits",
			"0x10000000000000000",
			0x1000000000000000,
			token.Hex | token.RequiresFloat64,
			token.DefectNone,
		},
		{"no digits", "0x", 0, token.Hex, token.DefectEmptyHex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New([]byte(tt.input))
			tok := l.Peek()

			require.Equal(t, token.Number, tok.Kind)
			assert.Equal(t, token.ValueUint, tok.Value.Kind())
			assert.Equal(t, tt.want, tok.Value.Uint64())
			assert.Equal(t, tt.flags, tok.Value.Flags())
			assert.False(t, tok.Value.Flags().Has(token.Float))
			assert.Equal(t, tt.defect, tok.Defect)
			assert.Equal(t, len(tt.input), l.Cursor())
		})
	}
}

func TestLexer_NegativeHex(t *testing.T) {
	tok := New([]byte("-0x10")).Peek()

	assert.Equal(t, int64(-16), tok.Value.Int64())
	assert.True(t, tok.Value.Flags().Has(token.Hex))
}

func TestLexer_Strings(t *testing.T) {
	l := New([]byte(`"hello world" "" "a;b"`))

	assert.Equal(t, "hello world", l.Next().Value.Str())
	assert.Equal(t, "", l.Next().Value.Str())
	assert.Equal(t, "a;b", l.Next().Value.Str())
	assert.Equal(t, token.EOF, l.Next().Kind)
}

func TestLexer_UnterminatedString(t *testing.T) {
	l := New([]byte(`name "open`))

	l.Consume()

	tok := l.Next()
	assert.Equal(t, token.String, tok.Kind)
	assert.Equal(t, token.DefectUnterminatedString, tok.Defect)
	assert.Equal(t, "open", tok.Value.Str())
	assert.Equal(t, token.EOF, l.Next().Kind)
}

func TestLexer_Keywords(t *testing.T) {
	l := New([]byte("true false truely _false"))

	tok := l.Next()
	assert.Equal(t, token.True, tok.Kind)
	assert.True(t, tok.Value.Bool())

	tok = l.Next()
	assert.Equal(t, token.False, tok.Kind)
	assert.False(t, tok.Value.Bool())

	assert.Equal(t, token.Identifier, l.Next().Kind)
	assert.Equal(t, token.Identifier, l.Next().Kind)
}

func TestLexer_CommentSpansLine(t *testing.T) {
	l := New([]byte("; one two\nthree"))

	c := l.Next()
	assert.Equal(t, token.Comment, c.Kind)
	assert.Equal(t, 9, l.Cursor())

	assert.Equal(t, "three", l.Next().Value.Str())
}
