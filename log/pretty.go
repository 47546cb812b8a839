package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// prettyMode selects the layout of a prettyHandler.
type prettyMode uint8

const (
	prettyText prettyMode = iota // key=value pairs on one line
	prettyJSON                   // one indented key: value per line
)

// palette holds the styles used to render record fields. Styles are bound
// to a renderer for the handler's output, so colors are dropped when the
// output is not a terminal.
type palette struct {
	key, str, num, yes, no, dur, time, null lipgloss.Style
	trace, debug, info, warn, err           lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().
			Foreground(lipgloss.Color(c)).
			TabWidth(lipgloss.NoTabConversion)
	}

	return palette{
		key:   fg("8"),
		str:   fg("6"),
		num:   fg("3"),
		yes:   fg("2"),
		no:    fg("1"),
		dur:   fg("5"),
		time:  fg("4"),
		null:  fg("8"),
		trace: fg("8"),
		debug: fg("4"),
		info:  fg("2"),
		warn:  fg("3").Bold(true),
		err:   fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err

	case l >= slog.LevelWarn:
		return p.warn

	case l >= slog.LevelInfo:
		return p.info

	case l >= slog.LevelDebug:
		return p.debug

	default:
		return p.trace
	}
}

// prettyHandler is a slog.Handler producing styled output for humans.
type prettyHandler struct {
	w          io.Writer
	mu         *sync.Mutex
	formatTime FormatTime
	opts       slog.HandlerOptions
	attrs      []slog.Attr // pre-qualified by the group prefix in effect
	prefix     string      // dotted group prefix for record attributes
	style      palette
	mode       prettyMode
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	mode prettyMode,
	formatTime FormatTime,
) *prettyHandler {
	return &prettyHandler{
		w:          w,
		mu:         &sync.Mutex{},
		formatTime: formatTime,
		opts:       *opts,
		style:      newPalette(w),
		mode:       mode,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	floor := slog.LevelInfo
	if h.opts.Level != nil {
		floor = h.opts.Level.Level()
	}

	return level >= floor
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(c.attrs[:len(c.attrs):len(c.attrs)], qualify(h.prefix, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func qualify(prefix string, attrs []slog.Attr) []slog.Attr {
	if prefix == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: prefix + a.Key, Value: a.Value}
	}

	return out
}

// paint renders each line of s separately so multi-line values keep their
// layout.
func paint(style lipgloss.Style, s string) string {
	if !strings.Contains(s, "\n") {
		return style.Render(s)
	}

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}

// field is one rendered key and value.
type field struct{ key, value string }

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]field, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if s := h.formatTime(r.Time); s != "" {
			fields = append(fields, field{slog.TimeKey, paint(h.style.time, s)})
		}
	}

	fields = append(fields, field{
		slog.LevelKey,
		paint(h.style.level(r.Level), strings.ToUpper(Level(r.Level).String())),
	})

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		fields = append(fields, field{
			slog.SourceKey,
			paint(h.style.str, frame.File + ":" + strconv.Itoa(frame.Line)),
		})
	}

	fields = append(fields, field{slog.MessageKey, paint(h.style.str, r.Message)})

	for _, a := range h.attrs {
		fields = h.appendAttr(fields, "", a)
	}

	r.Attrs(func(a slog.Attr) bool {
		fields = h.appendAttr(fields, h.prefix, a)

		return true
	})

	var sb strings.Builder

	switch h.mode {
	case prettyJSON:
		sb.WriteString("{\n")

		for i, f := range fields {
			if i > 0 {
				sb.WriteString(",\n")
			}

			sb.WriteString("  ")
			sb.WriteString(paint(h.style.key, f.key))
			sb.WriteString(": ")
			sb.WriteString(f.value)
		}

		sb.WriteString("\n}\n")

	default:
		for i, f := range fields {
			if i > 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(paint(h.style.key, f.key))
			sb.WriteByte('=')
			sb.WriteString(f.value)
		}

		sb.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := io.WriteString(h.w, sb.String())

	return err
}

// appendAttr renders a, flattening groups into dotted keys.
func (h *prettyHandler) appendAttr(
	fields []field,
	prefix string,
	a slog.Attr,
) []field {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}

		for _, g := range v.Group() {
			fields = h.appendAttr(fields, sub, g)
		}

		return fields
	}

	if a.Key == "" {
		return fields
	}

	return append(fields, field{prefix + a.Key, h.value(v)})
}

func (h *prettyHandler) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return paint(h.style.str, v.String())

	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return paint(h.style.num, v.String())

	case slog.KindBool:
		if v.Bool() {
			return paint(h.style.yes, "true")
		}

		return paint(h.style.no, "false")

	case slog.KindDuration:
		return paint(h.style.dur, v.Duration().String())

	case slog.KindTime:
		return paint(h.style.time, h.formatTime(v.Time()))

	default:
		switch a := v.Any().(type) {
		case nil:
			return paint(h.style.null, "null")

		case error:
			return paint(h.style.no, a.Error())

		default:
			return paint(h.style.str, fmt.Sprint(a))
		}
	}
}
