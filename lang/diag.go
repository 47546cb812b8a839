package lang

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/blockcfg/lang/token"
)

// contextLines is the maximum number of lines preceding the offending line
// included in a diagnostic.
const contextLines = 2

// Diagnostic messages.
const (
	msgMultipleType    = "Field can't have values of multiple type"
	msgLiteralOrBrace  = "Literal or opening brace expected"
	msgPeriodInField   = "Periods are not allowed in field names"
	msgIdentifier      = "Identifier expected"
	msgClosingBracket  = "Closing bracket expected"
	msgEmptyStruct     = "Struct must contain at least one field"
	msgClosingBrace    = "Closing brace expected"
	msgCategoryOrField = "Category or field expected"
	msgUnterminatedStr = "Unterminated string literal"
	msgEmptyHex        = "Hex literal requires at least one digit"
	msgMaxDepth        = "Maximum struct nesting depth exceeded"
)

// Diagnostic describes the first syntax error found in a document: where it
// is and the source text around it.
//
// A Diagnostic is the error value returned by a failed parse. It unwraps to
// [ErrSyntax].
type Diagnostic struct {
	Source  string   // Label of the input
	Message string   // Human-readable description
	Notes   []string // Follow-up detail lines
	Context []string // Up to two preceding lines followed by the offending line
	Offset  int      // Byte offset of the offending token
	Line    int      // 1-based line number
	Column  int      // 1-based column of the first underlined byte
	Width   int      // Number of underlined bytes (at least 1)

	cause error
}

// newDiagnostic resolves the byte range [offset, cursor) of src into a
// line, a column range, and its context lines.
func newDiagnostic(
	src []byte,
	source string,
	offset, cursor int,
	message string,
	notes ...string,
) *Diagnostic {
	offset = min(max(offset, 0), len(src))

	lineStart := bytes.LastIndexByte(src[:offset], '\n') + 1

	lineEnd := len(src)
	if i := bytes.IndexByte(src[lineStart:], '\n'); i >= 0 {
		lineEnd = lineStart + i
	}

	end := min(max(cursor, offset), lineEnd)

	d := &Diagnostic{
		Source:  source,
		Message: message,
		Notes:   notes,
		Offset:  offset,
		Line:    bytes.Count(src[:offset], []byte{'\n'}) + 1,
		Column:  offset - lineStart + 1,
		Width:   max(end-offset, 1),
	}

	d.Context = append(
		precedingLines(src, lineStart),
		trimCR(string(src[lineStart:lineEnd])),
	)

	return d
}

// precedingLines returns up to contextLines lines ending just before the
// line starting at lineStart. Collection stops at a blank line or at the
// start of the buffer.
func precedingLines(src []byte, lineStart int) []string {
	var lines []string

	end := lineStart - 1 // the '\n' terminating the previous line
	for len(lines) < contextLines && end >= 0 {
		start := bytes.LastIndexByte(src[:end], '\n') + 1

		line := trimCR(string(src[start:end]))
		if strings.TrimSpace(line) == "" {
			break
		}

		lines = append(lines, line)
		end = start - 1
	}

	// collected last-to-first
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	return lines
}

func trimCR(s string) string { return strings.TrimSuffix(s, "\r") }

// Error implements the error interface with a one-line summary.
func (d *Diagnostic) Error() string {
	return d.Position() + ": " + d.Message
}

// Unwrap returns [ErrSyntax] and, for limit violations such as excessive
// nesting, the more specific sentinel.
func (d *Diagnostic) Unwrap() []error {
	if d.cause == nil {
		return []error{ErrSyntax}
	}

	return []error{ErrSyntax, d.cause}
}

// Position returns "source:line:column".
func (d *Diagnostic) Position() string {
	return d.Source + ":" + strconv.Itoa(d.Line) + ":" + strconv.Itoa(d.Column)
}

// Caret returns the underline for the offending line: whitespace up to the
// start column followed by one '^' per underlined byte. Tabs in the
// offending line are reproduced so the carets stay aligned.
func (d *Diagnostic) Caret() string {
	var line string
	if len(d.Context) > 0 {
		line = d.Context[len(d.Context)-1]
	}

	var sb strings.Builder

	for i := 0; i < d.Column-1; i++ {
		if i < len(line) && line[i] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}

	sb.WriteString(strings.Repeat("^", d.Width))

	return sb.String()
}

// Render returns the full multi-line report: the message, a blank line, the
// context lines, the caret underline, any notes, and a trailing blank line.
func (d *Diagnostic) Render() string {
	var sb strings.Builder

	sb.WriteString(d.Error())
	sb.WriteString("\n\n")

	for _, line := range d.Context {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}

	sb.WriteString(d.Caret())
	sb.WriteByte('\n')

	for _, note := range d.Notes {
		sb.WriteString(note)
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')

	return sb.String()
}

// LogValue implements slog.LogValuer.
func (d *Diagnostic) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", d.Source),
		slog.Int("line", d.Line),
		slog.Int("column", d.Column),
		slog.String("message", d.Message),
		slog.String("report", d.Render()),
	)
}

// diagnostics latches the first error reported during one parse. Later
// reports, and any details attached to them, are discarded.
type diagnostics struct {
	src    []byte
	source string
	first  *Diagnostic
}

// report records a diagnostic for tok spanning to cursor unless one was
// already recorded, and returns the recorded diagnostic.
func (d *diagnostics) report(
	tok token.Token,
	cursor int,
	message string,
	notes ...string,
) *Diagnostic {
	if d.first == nil {
		d.first = newDiagnostic(
			d.src, d.source, tok.Offset, cursor, message, notes...,
		)
	}

	return d.first
}
