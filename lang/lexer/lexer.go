// Package lexer tokenizes blockcfg source text one token at a time.
//
// The lexer holds exactly one token of lookahead. [Lexer.Peek] produces the
// token lazily the first time it is requested; [Lexer.Consume] marks it spent
// so the next Peek scans again. The lexer never fails: malformed input yields
// a token carrying a [token.Defect] for the parser to report.
package lexer

import (
	"math"
	"strconv"

	"github.com/ardnew/blockcfg/lang/token"
)

const (
	// maxHexDigits is the number of significant hex digits that fit the
	// unsigned payload.
	maxHexDigits = 16

	// maxFloat32Digits is the number of fractional digits stored as float32.
	maxFloat32Digits = 8

	// maxMantissaDigits is the number of fractional digits accumulated before
	// further digits are ignored.
	maxMantissaDigits = 19
)

// Lexer produces tokens from a byte buffer.
type Lexer struct {
	src    []byte
	cursor int
	look   token.Token
	ready  bool
}

// New returns a lexer positioned at the start of src.
func New(src []byte) *Lexer {
	return &Lexer{src: src}
}

// Source returns the buffer being tokenized.
func (l *Lexer) Source() []byte { return l.src }

// Cursor returns the byte offset just past the most recently scanned token.
func (l *Lexer) Cursor() int { return l.cursor }

// Peek returns the lookahead token without consuming it.
func (l *Lexer) Peek() token.Token {
	if !l.ready {
		l.look = l.scan()
		l.ready = true
	}

	return l.look
}

// Consume marks the lookahead token as spent.
func (l *Lexer) Consume() {
	if !l.ready {
		l.Peek()
	}

	l.ready = false
}

// Next returns the lookahead token and consumes it.
func (l *Lexer) Next() token.Token {
	tok := l.Peek()
	l.Consume()

	return tok
}

func (l *Lexer) scan() token.Token {
	l.skipSpace()

	if l.cursor >= len(l.src) {
		return token.Token{Kind: token.EOF, Offset: len(l.src)}
	}

	c := l.src[l.cursor]

	switch {
	case isIdentStart(c):
		return l.scanIdentifier()

	case isDigit(c) || ((c == '+' || c == '-') && l.startsNumber(l.cursor+1)):
		return l.scanNumber()

	case c == '"':
		return l.scanString()

	case c == ';':
		return l.scanComment()

	default:
		tok := token.Token{Kind: token.Kind(c), Offset: l.cursor}
		l.cursor++

		return tok
	}
}

func (l *Lexer) skipSpace() {
	for l.cursor < len(l.src) {
		switch l.src[l.cursor] {
		case ' ', '\t', '\n', '\r':
			l.cursor++

		default:
			return
		}
	}
}

func (l *Lexer) startsNumber(i int) bool {
	return i < len(l.src) && isDigit(l.src[i])
}

func (l *Lexer) scanIdentifier() token.Token {
	start := l.cursor

	for l.cursor < len(l.src) && isIdentContinue(l.src[l.cursor]) {
		l.cursor++
	}

	word := string(l.src[start:l.cursor])

	switch word {
	case "true":
		return token.Token{
			Kind:   token.True,
			Offset: start,
			Value:  token.BoolValue(true),
		}

	case "false":
		return token.Token{
			Kind:   token.False,
			Offset: start,
			Value:  token.BoolValue(false),
		}

	default:
		return token.Token{
			Kind:   token.Identifier,
			Offset: start,
			Value:  token.StringValue(word),
		}
	}
}

func (l *Lexer) scanString() token.Token {
	start := l.cursor
	l.cursor++ // opening quote

	begin := l.cursor
	for l.cursor < len(l.src) && l.src[l.cursor] != '"' {
		l.cursor++
	}

	tok := token.Token{
		Kind:   token.String,
		Offset: start,
		Value:  token.StringValue(string(l.src[begin:l.cursor])),
	}

	if l.cursor >= len(l.src) {
		tok.Defect = token.DefectUnterminatedString

		return tok
	}

	l.cursor++ // closing quote

	return tok
}

func (l *Lexer) scanComment() token.Token {
	tok := token.Token{Kind: token.Comment, Offset: l.cursor}

	for l.cursor < len(l.src) && l.src[l.cursor] != '\n' {
		l.cursor++
	}

	return tok
}

func (l *Lexer) scanNumber() token.Token {
	tok := token.Token{Kind: token.Number, Offset: l.cursor}

	negative := false

	switch l.src[l.cursor] {
	case '-':
		negative = true

		l.cursor++

	case '+':
		l.cursor++
	}

	if l.hasHexPrefix() {
		l.cursor += 2

		l.scanHex(&tok, negative)

		return tok
	}

	whole, approx, overflow := l.scanWhole(negative)

	if l.cursor >= len(l.src) || l.src[l.cursor] != '.' {
		switch {
		case overflow && negative:
			tok.Value = token.Float64Value(
				-approx, token.Float|token.RequiresFloat64,
			)

		case overflow:
			tok.Value = token.Float64Value(
				approx, token.Float|token.RequiresFloat64,
			)

		case negative:
			tok.Value = token.IntValue(-int64(whole))

		default:
			tok.Value = token.IntValue(int64(whole))
		}

		return tok
	}

	l.cursor++ // decimal point

	var (
		mantissa uint64
		digits   int
	)

	for l.cursor < len(l.src) && isDigit(l.src[l.cursor]) {
		if digits < maxMantissaDigits {
			mantissa = mantissa*10 + uint64(l.src[l.cursor]-'0')
		}

		digits++
		l.cursor++
	}

	if !overflow {
		approx = float64(whole)
	}

	used := min(digits, maxMantissaDigits)
	value := approx + float64(mantissa)/math.Pow10(used)

	if negative {
		value = -value
	}

	if overflow || digits > maxFloat32Digits {
		tok.Value = token.Float64Value(
			value, token.Float|token.RequiresFloat64,
		)
	} else {
		tok.Value = token.Float32Value(float32(value), token.Float)
	}

	return tok
}

// scanWhole accumulates the integer digits of a decimal literal. Once the
// magnitude no longer fits an int64 of the given sign, overflow is set and
// only approx, the nearest float64 to the digits, is meaningful.
func (l *Lexer) scanWhole(negative bool) (whole uint64, approx float64, overflow bool) {
	limit := uint64(math.MaxInt64)
	if negative {
		limit++
	}

	begin := l.cursor

	for l.cursor < len(l.src) && isDigit(l.src[l.cursor]) {
		d := uint64(l.src[l.cursor] - '0')

		if !overflow && whole > (limit-d)/10 {
			overflow = true
		}

		whole = whole*10 + d
		l.cursor++
	}

	if overflow {
		// a run of digits can only fail with ErrRange, yielding +Inf
		approx, _ = strconv.ParseFloat(string(l.src[begin:l.cursor]), 64)
	}

	return whole, approx, overflow
}

func (l *Lexer) hasHexPrefix() bool {
	return l.cursor+1 < len(l.src) &&
		l.src[l.cursor] == '0' &&
		(l.src[l.cursor+1] == 'x' || l.src[l.cursor+1] == 'X')
}

// scanHex accumulates up to maxHexDigits significant digits. Leading zeros
// are not significant. Further digits are consumed and flag the value
// RequiresFloat64 without changing the accumulated payload.
func (l *Lexer) scanHex(tok *token.Token, negative bool) {
	var (
		value       uint64
		digits      int
		significant int
	)

	flags := token.Hex

	for l.cursor < len(l.src) {
		d, ok := hexDigit(l.src[l.cursor])
		if !ok {
			break
		}

		digits++
		l.cursor++

		if significant == 0 && d == 0 {
			continue
		}

		significant++
		if significant > maxHexDigits {
			flags |= token.RequiresFloat64

			continue
		}

		value = value<<4 | uint64(d)
	}

	if digits == 0 {
		tok.Defect = token.DefectEmptyHex
	}

	if negative {
		value = -value
	}

	tok.Value = token.UintValue(value, flags)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentContinue(c byte) bool { return isIdentStart(c) || isDigit(c) }

func hexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true

	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true

	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true

	default:
		return 0, false
	}
}
