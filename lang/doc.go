// Package lang parses blockcfg documents into typed trees.
//
// A document is a sequence of categories and fields. Fields hold either a
// run of literals of one kind or one or more struct blocks; two or more
// consecutive blocks under one field form an array of structs.
//
//	; comments run to the end of the line
//	version 2
//
//	[meta]
//	name "hero"
//	mask 0xFF
//	pos 10 -20 1.5
//
//	[anim]
//	walk { tex "walk0" dur 0.1 } { tex "walk1" dur 0.1 }
//	idle { tex "idle" dur 1 }
//
// # Grammar
//
//	document    → (comment | category | field)*
//	category    → '[' identifier ']'
//	field       → identifier (literal-run | struct+)
//	struct      → '{' field+ '}'
//	literal-run → literal+              ; all of one kind
//	literal     → number | string | 'true' | 'false'
//
// A field at the top level belongs to the most recent category, or to the
// root if no category precedes it. Numbers take an optional sign, an
// optional 0x prefix, and an optional fractional part. Strings are
// delimited by double quotes and have no escapes.
//
// # Trees
//
// [Parse] returns a [*Tree] whose nodes are addressed through [Node]
// handles. A field written with one block holds a single [KindStruct]
// child; a field written with several holds one [KindArrayOfStructs] child
// whose children are the blocks in source order.
//
// Values are extracted with the generic accessors [Read], [ReadSlice],
// [Scan], and [ScanSlice], located with [Tree.Lookup], converted with
// [Tree.ToNative], [Tree.FormatJSON], [Tree.FormatYAML], and
// [Tree.FormatTOML], and queried with [Tree.Eval].
//
// # Errors
//
// Parsing stops at the first syntax error. The returned error is a
// [*Diagnostic] holding the position, the offending line with up to two
// lines of context, and a caret underline. The same report is logged once
// through the logger given with [WithLogger].
package lang
