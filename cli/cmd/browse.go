package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/blockcfg/cli/cmd/browse"
	"github.com/ardnew/blockcfg/log"
)

// Browse opens an interactive browser over the paths of a source.
type Browse struct {
	Input
}

// Run executes the browse command.
func (b *Browse) Run(ctx context.Context) error {
	tree, _, err := parseSource(ctx, b.Source)
	if err != nil {
		return err
	}

	var opts []tea.ProgramOption

	// keyboard input cannot share stdin with the document
	if b.Source == stdinSource {
		opts = append(opts, tea.WithInputTTY())
	}

	return browse.Run(ctx, tree, settingsFrom(ctx).CacheDir, log.Default(), opts...)
}
