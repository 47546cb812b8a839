package lang

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/klauspost/readahead"

	"github.com/ardnew/blockcfg/lang/lexer"
	"github.com/ardnew/blockcfg/lang/token"
)

// ParseReader reads all of r and parses it.
// Input is prefetched asynchronously while earlier chunks are buffered.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Tree, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Parse(ctx, data, opts...)
}

// ParseString parses a document held in a string.
func ParseString(ctx context.Context, s string, opts ...Option) (*Tree, error) {
	return Parse(ctx, []byte(s), opts...)
}

// Parse parses src into a tree.
//
// If src contains a syntax error, Parse returns a nil tree and a
// [*Diagnostic] describing the first error. The rendered diagnostic is also
// logged once at error level through the logger given by [WithLogger];
// later errors in the same input are never reported.
func Parse(ctx context.Context, src []byte, opts ...Option) (*Tree, error) {
	o := makeOptions(opts...)

	o.logger.TraceContext(ctx, "parse start",
		slog.String("source", o.source),
		slog.Int("source_length", len(src)),
	)

	p := &parser{
		lex:  lexer.New(src),
		tree: newTree(o.source, len(src)/8),
		diag: diagnostics{src: src, source: o.source},
		opts: o,
	}

	err := p.parseDocument()
	if err != nil {
		o.logger.ErrorContext(ctx, "syntax error", slog.Any("diagnostic", err))

		return nil, err
	}

	o.logger.TraceContext(ctx, "parse complete", slog.Any("tree", p.tree))

	return p.tree, nil
}

// parser holds the parser state for one document.
type parser struct {
	lex   *lexer.Lexer
	tree  *Tree
	diag  diagnostics
	opts  options
	depth int
}

// fail reports a diagnostic for tok, underlining through the lexer cursor.
func (p *parser) fail(
	tok token.Token,
	message string,
	notes ...string,
) *Diagnostic {
	return p.diag.report(tok, p.lex.Cursor(), message, notes...)
}

// peek returns the lookahead token, skipping comments.
func (p *parser) peek() token.Token {
	for {
		tok := p.lex.Peek()
		if tok.Kind != token.Comment {
			return tok
		}

		p.lex.Consume()
	}
}

// parseDocument parses: (comment | category | field)*.
func (p *parser) parseDocument() error {
	for {
		tok := p.peek()

		switch tok.Kind {
		case token.EOF:
			return nil

		case token.CategoryOpen:
			err := p.parseCategory()
			if err != nil {
				return err
			}

		case token.Identifier:
			// Bare fields belong to the most recent category, if any.
			parent := id(0)
			if last := p.tree.nodes[0].last; last != nilID &&
				p.tree.nodes[last].kind == KindCategory {
				parent = last
			}

			err := p.parseField(parent)
			if err != nil {
				return err
			}

		default:
			return p.fail(tok, msgCategoryOrField)
		}
	}
}

// parseCategory parses: '[' identifier ']'.
func (p *parser) parseCategory() error {
	p.lex.Consume() // '['

	tok := p.peek()
	if tok.Kind != token.Identifier {
		return p.fail(tok, msgIdentifier)
	}

	p.lex.Consume()

	c := p.tree.alloc(KindCategory, tok.Value.Str(), token.Value{})
	p.tree.link(0, c)

	if end := p.peek(); end.Kind != token.CategoryClose {
		return p.fail(end, msgClosingBracket)
	}

	p.lex.Consume()

	return nil
}

// parseField parses: identifier (literal-run | struct+).
func (p *parser) parseField(parent id) error {
	name := p.lex.Next().Value.Str()
	field := p.tree.addField(parent, name)

	tok := p.peek()

	switch {
	case tok.Kind.IsLiteral():
		return p.parseLiterals(field)

	case tok.Kind == token.StructOpen:
		return p.parseStructs(field)

	case tok.Kind == token.Period:
		return p.fail(tok, msgPeriodInField)

	default:
		return p.fail(tok, msgLiteralOrBrace)
	}
}

// parseLiterals parses a run of literals sharing one kind.
func (p *parser) parseLiterals(field id) error {
	kind := literalKind(p.peek().Kind)

	for {
		tok := p.peek()
		if !tok.Kind.IsLiteral() {
			return nil
		}

		if k := literalKind(tok.Kind); k != kind {
			return p.fail(tok, msgMultipleType, fmt.Sprintf(
				"field %q holds %s values, found %s",
				p.tree.nodes[field].name, kind, k,
			))
		}

		switch tok.Defect {
		case token.DefectUnterminatedString:
			return p.fail(tok, msgUnterminatedStr)

		case token.DefectEmptyHex:
			return p.fail(tok, msgEmptyHex)
		}

		p.lex.Consume()
		p.tree.addLiteral(field, kind, tok.Value)
	}
}

// parseStructs parses one or more consecutive struct blocks of a field.
func (p *parser) parseStructs(field id) error {
	for {
		open := p.peek()
		if open.Kind != token.StructOpen {
			return nil
		}

		p.lex.Consume()

		elem := p.tree.addStruct(field)

		err := p.parseStruct(open, elem)
		if err != nil {
			return err
		}
	}
}

// parseStruct parses the remainder of: '{' field+ '}'.
func (p *parser) parseStruct(open token.Token, elem id) error {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > p.opts.maxDepth {
		d := p.fail(open, msgMaxDepth, fmt.Sprintf(
			"limit is %d nested blocks", p.opts.maxDepth,
		))
		d.cause = ErrMaxDepthExceeded

		return d
	}

	if tok := p.peek(); tok.Kind == token.StructClose {
		return p.fail(tok, msgEmptyStruct)
	}

	for {
		tok := p.peek()

		switch tok.Kind {
		case token.Identifier:
			err := p.parseField(elem)
			if err != nil {
				return err
			}

		case token.StructClose:
			p.lex.Consume()

			return nil

		default:
			return p.fail(tok, msgClosingBrace)
		}
	}
}
