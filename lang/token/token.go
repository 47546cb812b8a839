// Package token defines the lexical tokens of the blockcfg language and the
// typed value payload they carry.
package token

import (
	"strconv"
)

// Kind identifies the lexical class of a [Token].
//
// Single-character punctuation reuses its byte value as the kind, so every
// named kind is numbered above the byte range.
type Kind int

// Punctuation kinds share their character value.
const (
	CategoryOpen  Kind = '['
	CategoryClose Kind = ']'
	StructOpen    Kind = '{'
	StructClose   Kind = '}'
	Period        Kind = '.'
)

// Named kinds.
const (
	Comment Kind = iota + 0x100
	Identifier
	Number
	String
	True
	False
	EOF
)

// String returns a human-readable name of the token kind.
func (k Kind) String() string {
	switch k {
	case Comment:
		return "comment"

	case Identifier:
		return "identifier"

	case Number:
		return "number"

	case String:
		return "string"

	case True:
		return "true"

	case False:
		return "false"

	case EOF:
		return "end of file"

	default:
		if k >= 0 && k < 0x100 {
			return strconv.QuoteRune(rune(k))
		}

		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// IsLiteral reports whether the kind is a number, string, or boolean keyword.
func (k Kind) IsLiteral() bool {
	switch k {
	case Number, String, True, False:
		return true

	default:
		return false
	}
}

// Defect marks a token the lexer produced from malformed input.
// The lexer never fails; the parser turns a defect into a diagnostic when it
// consumes the token.
type Defect uint8

const (
	DefectNone Defect = iota
	DefectUnterminatedString
	DefectEmptyHex
)

// Token is the smallest lexical unit: a kind, the byte offset of its first
// character, and a value whose active member is determined by the kind.
type Token struct {
	Value  Value
	Offset int
	Kind   Kind
	Defect Defect
}

// String returns a short description of the token for debugging.
func (t Token) String() string {
	switch t.Kind {
	case Identifier:
		return "identifier(" + t.Value.Str() + ")"

	case String:
		return "string(" + strconv.Quote(t.Value.Str()) + ")"

	case Number:
		return "number(" + t.Value.String() + ")"

	default:
		return t.Kind.String()
	}
}
