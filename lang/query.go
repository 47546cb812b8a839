package lang

import (
	"context"
	"log/slog"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"
)

// programs caches compiled queries keyed by the xxh3 hash of their source.
var programs sync.Map

type program struct {
	source string
	*vm.Program
}

// Eval evaluates an expr-lang expression against the native form of the
// tree (see [Tree.ToNative]).
//
// Top-level fields and categories are variables, so "meta.name" and
// "len(anim)" refer to document content. The function lookup(path) returns
// the native value at a path accepted by [Tree.Lookup], or nil.
func (t *Tree) Eval(ctx context.Context, query string) (any, error) {
	err := ctx.Err()
	if err != nil {
		return nil, ErrQuery.Wrap(err)
	}

	prog, err := compileQuery(query)
	if err != nil {
		return nil, err
	}

	env := t.ToNative()
	if env == nil {
		env = make(map[string]any)
	}

	if _, ok := env["lookup"]; !ok {
		env["lookup"] = func(path string) any {
			n, err := t.Lookup(path)
			if err != nil {
				return nil
			}

			return n.Native()
		}
	}

	result, err := expr.Run(prog, env)
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("query", query))
	}

	return result, nil
}

// compileQuery returns the cached program for source, compiling it on first
// use. Programs are compiled without an environment so one program serves
// every tree.
func compileQuery(source string) (*vm.Program, error) {
	key := xxh3.HashString(source)

	if v, ok := programs.Load(key); ok {
		if p, ok := v.(*program); ok && p.source == source {
			return p.Program, nil
		}
	}

	compiled, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, ErrQuery.Wrap(err).With(slog.String("query", source))
	}

	v, _ := programs.LoadOrStore(key, &program{source: source, Program: compiled})
	if p, ok := v.(*program); ok && p.source == source {
		return p.Program, nil
	}

	// hash collision; leave the cached entry alone
	return compiled, nil
}

// ClearQueryCache discards all cached compiled queries.
func ClearQueryCache() {
	programs.Clear()
}
