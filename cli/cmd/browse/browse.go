package browse

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/blockcfg/lang"
	"github.com/ardnew/blockcfg/log"
)

const (
	filterPrompt = "/ "
	queryPrompt  = "= "

	// queryPrefix switches the input from path filtering to expressions.
	queryPrefix = "="

	defaultWidth  = 80
	defaultHeight = 24

	// chromeLines is the number of lines View draws besides the list and
	// the preview: input, separator, and hint.
	chromeLines = 3

	// maxPreviewLines bounds the preview of the selected path.
	maxPreviewLines = 8
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	queryPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("5")).
				Bold(true)
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	matchStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	resultStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// model is the Bubble Tea model of the browser.
type model struct {
	ctx      context.Context
	tree     *lang.Tree
	logger   log.Logger
	history  *History
	histIdx  int
	input    textinput.Model
	paths    []string
	matches  fuzzy.Matches // filtered paths, best first
	selected int           // index into matches
	offset   int           // first visible match
	width    int
	height   int
	quitting bool
}

// Run browses tree interactively until the user quits.
//
// Typing filters the document's paths by fuzzy match. Input starting with
// "=" is evaluated as an expression with [lang.Tree.Eval] instead. Entered
// lines are kept in a history file in cacheDir.
func Run(
	ctx context.Context,
	tree *lang.Tree,
	cacheDir string,
	logger log.Logger,
	opts ...tea.ProgramOption,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if tree == nil {
		return ErrNoTree
	}

	var history *History
	if cacheDir != "" {
		history = NewHistory(filepath.Join(cacheDir, baseHistory))
	} else {
		history = NewHistory("")
	}

	err = history.Load()
	if err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "browse start",
		slog.Any("tree", tree),
		slog.Int("history", history.Len()),
	)

	m := newModel(ctx, tree, history, logger)

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	_, err = p.Run()

	return err
}

func newModel(
	ctx context.Context,
	tree *lang.Tree,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(filterPrompt)
	ti.Placeholder = "path or =expression"
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth - len(filterPrompt) - 2

	m := model{
		ctx:     ctx,
		tree:    tree,
		logger:  logger,
		history: history,
		histIdx: history.Len(),
		input:   ti,
		paths:   tree.Paths(),
		width:   defaultWidth,
		height:  defaultHeight,
	}

	m.refresh()

	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - len(filterPrompt) - 2
		m.scroll()

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyUp:
		m.move(-1)

		return m, nil

	case tea.KeyDown:
		m.move(1)

		return m, nil

	case tea.KeyCtrlP:
		return m.recall(-1), nil

	case tea.KeyCtrlN:
		return m.recall(1), nil

	case tea.KeyTab:
		if path, ok := m.current(); ok {
			m.setInput(path)
		}

		return m, nil

	case tea.KeyEnter:
		return m.execute()
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// isQuery reports whether the input is an expression rather than a filter.
func (m model) isQuery() bool {
	return strings.HasPrefix(strings.TrimSpace(m.input.Value()), queryPrefix)
}

// refresh recomputes the matches for the current input and resets the
// selection to the best match.
func (m *model) refresh() {
	if m.isQuery() {
		m.input.Prompt = queryPromptStyle.Render(queryPrompt)
		m.matches = nil
	} else {
		m.input.Prompt = promptStyle.Render(filterPrompt)
		m.matches = filter(m.input.Value(), m.paths)
	}

	m.selected = 0
	m.offset = 0
}

// filter returns the paths matching pattern, best first. An empty pattern
// matches every path in document order.
func filter(pattern string, paths []string) fuzzy.Matches {
	pattern = strings.TrimSpace(pattern)
	if pattern != "" {
		return fuzzy.Find(pattern, paths)
	}

	all := make(fuzzy.Matches, len(paths))
	for i, p := range paths {
		all[i] = fuzzy.Match{Str: p, Index: i}
	}

	return all
}

func (m *model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
	m.refresh()
}

// current returns the selected path.
func (m model) current() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.matches) {
		return "", false
	}

	return m.matches[m.selected].Str, true
}

// move shifts the selection by delta, clamped to the matches.
func (m *model) move(delta int) {
	if len(m.matches) == 0 {
		return
	}

	m.selected = min(max(m.selected+delta, 0), len(m.matches)-1)
	m.scroll()
}

// scroll keeps the selection inside the visible window.
func (m *model) scroll() {
	rows := m.listRows()

	switch {
	case m.selected < m.offset:
		m.offset = m.selected

	case m.selected >= m.offset+rows:
		m.offset = m.selected - rows + 1
	}
}

// listRows returns the number of matches visible at once.
func (m model) listRows() int {
	return max(m.height-chromeLines-maxPreviewLines, 1)
}

// recall replaces the input with the history entry delta steps away.
// Moving past the newest entry clears the input.
func (m model) recall(delta int) model {
	n := m.history.Len()
	if n == 0 {
		return m
	}

	m.histIdx = min(max(m.histIdx+delta, 0), n)

	line, err := m.history.Entry(m.histIdx)
	if err != nil {
		line = ""
	}

	m.setInput(line)

	return m
}

// execute prints the value of the selected path or the result of the
// expression above the view.
func (m model) execute() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())

	var line, entry string

	if query, ok := strings.CutPrefix(input, queryPrefix); ok {
		query = strings.TrimSpace(query)
		if query == "" {
			return m, nil
		}

		entry = queryPrefix + query
		line = m.evaluate(query)
	} else {
		path, ok := m.current()
		if !ok {
			return m, nil
		}

		entry = path
		line = pathStyle.Render(path) + " " + hintStyle.Render("→") + " " +
			resultStyle.Render(inline(m.preview(path)))
	}

	err := m.history.Add(entry)
	if err != nil {
		m.logger.WarnContext(m.ctx, "could not save history", slog.Any("error", err))
	}

	m.histIdx = m.history.Len()

	return m, tea.Println(line)
}

// evaluate returns the styled result line of a query.
func (m model) evaluate(query string) string {
	result, err := m.tree.Eval(m.ctx, query)
	if err != nil {
		m.logger.DebugContext(m.ctx, "browse query failed",
			slog.String("query", query),
			slog.Any("error", err),
		)

		return errorStyle.Render("✗ " + err.Error())
	}

	return queryPromptStyle.Render(queryPrompt) + pathStyle.Render(query) + " " +
		hintStyle.Render("→") + " " + resultStyle.Render(fmt.Sprint(result))
}

// preview returns a multi-line rendering of the value at path.
func (m model) preview(path string) string {
	n, err := m.tree.Lookup(path)
	if err != nil {
		return err.Error()
	}

	if n.Kind() == lang.KindField && n.FirstChild().Kind().IsLiteral() {
		values := make([]string, 0, n.Len())
		for lit := range n.Children() {
			values = append(values, lit.Value().String())
		}

		return strings.Join(values, " ")
	}

	data, err := yaml.MarshalContext(m.ctx, n.Native())
	if err != nil {
		return err.Error()
	}

	return strings.TrimRight(string(data), "\n")
}

// inline collapses a multi-line preview onto one line.
func inline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if m.isQuery() {
		b.WriteString(hintStyle.Render("enter evaluates the expression"))
		b.WriteByte('\n')

		return b.String()
	}

	end := min(m.offset+m.listRows(), len(m.matches))
	for i := m.offset; i < end; i++ {
		row := highlight(m.matches[i])
		if i == m.selected {
			row = selectedStyle.Render(m.matches[i].Str)
		}

		b.WriteString(row)
		b.WriteByte('\n')
	}

	b.WriteString(hintStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteByte('\n')

	if path, ok := m.current(); ok {
		lines := strings.Split(m.preview(path), "\n")
		if len(lines) > maxPreviewLines {
			lines = append(lines[:maxPreviewLines-1], "…")
		}

		for _, line := range lines {
			b.WriteString(resultStyle.Render(line))
			b.WriteByte('\n')
		}
	}

	b.WriteString(hintStyle.Render(fmt.Sprintf(
		"%d/%d paths · ↑/↓ select · tab complete · ctrl+p/n history · esc quit",
		len(m.matches), len(m.paths),
	)))

	return b.String()
}

// highlight renders a match with its matched characters emphasized.
func highlight(match fuzzy.Match) string {
	if len(match.MatchedIndexes) == 0 {
		return pathStyle.Render(match.Str)
	}

	var (
		b    strings.Builder
		next int
	)

	for i, r := range match.Str {
		if next < len(match.MatchedIndexes) && match.MatchedIndexes[next] == i {
			b.WriteString(matchStyle.Render(string(r)))

			next++

			continue
		}

		b.WriteString(pathStyle.Render(string(r)))
	}

	return b.String()
}
