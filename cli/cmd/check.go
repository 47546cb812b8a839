package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/blockcfg/lang"
	"github.com/ardnew/blockcfg/log"
	"github.com/ardnew/blockcfg/pkg"
)

// Check parses each source and reports the first syntax error of each.
type Check struct {
	Quiet bool `help:"Print nothing for sources that parse" short:"q"`

	Sources []string `arg:"" help:"Source input files or '-' for stdin." name:"source" optional:""`
}

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	s := settingsFrom(ctx)
	st := newStyles(s.Stdout, s.Color)

	srcs, err := openSources(ctx, c.Sources)
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	failed := 0

	for _, src := range srcs {
		tree, err := lang.ParseReader(ctx, src, s.parseOptions(src.name)...)

		var diag *lang.Diagnostic

		switch {
		case errors.As(err, &diag):
			failed++

			fmt.Fprint(s.Stdout, st.diagnostic(diag))

		case err != nil:
			return err

		default:
			log.DebugContext(ctx, "source ok",
				slog.String("source", src.name),
				slog.Int("nodes", tree.Size()),
			)

			if !c.Quiet {
				fmt.Fprintln(s.Stdout, st.ok.Render("ok")+" "+src.name)
			}
		}
	}

	if failed > 0 {
		return pkg.ErrCheck.Wrapf("%d of %d sources have errors", failed, len(srcs))
	}

	return nil
}
