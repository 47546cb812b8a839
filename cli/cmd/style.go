package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/ardnew/blockcfg/lang"
)

// ColorMode selects when command output is styled.
type ColorMode string

// Color modes accepted by --color.
const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Enabled reports whether output written to w should be styled.
func (m ColorMode) Enabled(w io.Writer) bool {
	switch m {
	case ColorAlways:
		return true

	case ColorNever:
		return false
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}

	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// styles renders command output, in color only when enabled.
type styles struct {
	pos, msg, note, line, caret, ok, fail, add, del, hint lipgloss.Style
}

func newStyles(w io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	fg := func(c string) lipgloss.Style {
		return r.NewStyle().
			Foreground(lipgloss.Color(c)).
			TabWidth(lipgloss.NoTabConversion)
	}

	return styles{
		pos:   fg("15").Bold(true),
		msg:   fg("1").Bold(true),
		note:  fg("6"),
		line:  fg("7"),
		caret: fg("2").Bold(true),
		ok:    fg("2"),
		fail:  fg("1"),
		add:   fg("2"),
		del:   fg("1"),
		hint:  fg("8"),
	}
}

// diagnostic renders d in the layout of [lang.Diagnostic.Render].
func (s styles) diagnostic(d *lang.Diagnostic) string {
	var sb strings.Builder

	sb.WriteString(s.pos.Render(d.Position() + ":"))
	sb.WriteByte(' ')
	sb.WriteString(s.msg.Render(d.Message))
	sb.WriteString("\n\n")

	for _, line := range d.Context {
		sb.WriteString(s.line.Render(line))
		sb.WriteByte('\n')
	}

	sb.WriteString(s.caret.Render(d.Caret()))
	sb.WriteByte('\n')

	for _, note := range d.Notes {
		sb.WriteString(s.note.Render(note))
		sb.WriteByte('\n')
	}

	sb.WriteByte('\n')

	return sb.String()
}
