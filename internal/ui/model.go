package ui

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gubarz/walkmd/internal/render"
	"github.com/gubarz/walkmd/internal/steps"
)

// ============================================================================
// Step Item
// ============================================================================

// stepItem wraps a joined Step with display metadata
type stepItem struct {
	step    steps.Step
	summary string
	code    []string // stripped source lines of the step's file
}

// newStepItem creates a stepItem, resolving its source lines
func newStepItem(step steps.Step, sources map[string][]string) stepItem {
	return stepItem{
		step:    step,
		summary: render.Summary(step.Markdown),
		code:    sources[step.File],
	}
}

// location renders file:start-end
func (item stepItem) location() string {
	return fmt.Sprintf("%s:%d-%d", item.step.File, item.step.StartLineNumber, item.step.EndLineNumber)
}

// matchesQuery checks if the step matches all search words
func (item stepItem) matchesQuery(words []string) bool {
	for _, word := range words {
		if !containsIgnoreCase(item.step.Title, word) &&
			!containsIgnoreCase(item.step.ID, word) &&
			!containsIgnoreCase(item.step.File, word) &&
			!containsIgnoreCase(item.step.Markdown, word) {
			return false
		}
	}
	return true
}

// containsIgnoreCase expects substr already lowercased
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// excerpt returns the step's source lines prefixed with line numbers
func (item stepItem) excerpt() []string {
	start, end := item.step.StartLineNumber, item.step.EndLineNumber
	if start < 1 || end < start || start > len(item.code) {
		return nil
	}
	end = min(end, len(item.code))

	width := len(strconv.Itoa(end))
	out := make([]string, 0, end-start+1)
	for n := start; n <= end; n++ {
		gutter := styles.Gutter.Render(fmt.Sprintf("%*d │ ", width, n))
		out = append(out, gutter+styles.Code.Render(item.code[n-1]))
	}
	return out
}

// ============================================================================
// Debounce
// ============================================================================

// filterMsg triggers filtering after debounce
type filterMsg struct{}

// debounceFilter returns a command that triggers filtering after a delay
func debounceFilter() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg {
		return filterMsg{}
	})
}

// ============================================================================
// Model
// ============================================================================

// model is the Bubble Tea model for browsing walkthrough steps
type model struct {
	width     int
	height    int
	textInput textinput.Model
	preview   viewport.Model
	quitting  bool

	items    []stepItem
	filtered []stepItem
	cursor   int
	offset   int
}

// listHeight is the number of rows reserved for the step list
const listHeight = 8

// newModel creates a model over the given steps
func newModel(stepList []steps.Step, sources map[string][]string) model {
	ti := textinput.New()
	ti.Placeholder = "Type to filter steps..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	items := make([]stepItem, len(stepList))
	for i, s := range stepList {
		items[i] = newStepItem(s, sources)
	}

	m := model{
		textInput: ti,
		preview:   viewport.New(80, 10),
		items:     items,
		filtered:  items,
	}
	m.refreshPreview()
	return m
}

// Init implements tea.Model
func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = max(msg.Width-4, 10)
		m.preview.Width = msg.Width
		m.preview.Height = max(msg.Height-listHeight-4, 3)
		m.refreshPreview()
	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}
	case filterMsg:
		m.filterSteps()
		return m, nil
	}

	prevQuery := m.textInput.Value()
	var tiCmd tea.Cmd
	m.textInput, tiCmd = m.textInput.Update(msg)
	cmds = append(cmds, tiCmd)

	if m.textInput.Value() != prevQuery {
		cmds = append(cmds, debounceFilter())
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes navigation keys; other keys go to the filter input
func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return tea.Quit, true
	case "up", "ctrl+p":
		m.moveCursor(-1)
	case "down", "ctrl+n":
		m.moveCursor(1)
	case "home":
		m.cursor = 0
		m.followCursor()
	case "end":
		m.cursor = max(0, len(m.filtered)-1)
		m.followCursor()
	case "pgup":
		m.preview.HalfViewUp()
	case "pgdown":
		m.preview.HalfViewDown()
	default:
		return nil, false
	}
	return nil, true
}

// moveCursor moves the cursor by delta, clamping to valid range
func (m *model) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(0, len(m.filtered)-1))
	m.followCursor()
}

// followCursor scrolls the list so the cursor stays visible and reloads
// the preview
func (m *model) followCursor() {
	scrollWindow(m.cursor, len(m.filtered), listHeight, &m.offset)
	m.refreshPreview()
}

// filterSteps filters the step list based on the search query
func (m *model) filterSteps() {
	words := strings.Fields(strings.ToLower(m.textInput.Value()))
	if len(words) == 0 {
		m.filtered = m.items
	} else {
		m.filtered = make([]stepItem, 0, len(m.items))
		for _, item := range m.items {
			if item.matchesQuery(words) {
				m.filtered = append(m.filtered, item)
			}
		}
	}
	m.cursor = clamp(m.cursor, 0, max(0, len(m.filtered)-1))
	m.offset = 0
	m.followCursor()
}

// refreshPreview loads the selected step into the preview viewport
func (m *model) refreshPreview() {
	if m.cursor >= len(m.filtered) {
		m.preview.SetContent("")
		return
	}
	item := m.filtered[m.cursor]

	var b strings.Builder
	b.WriteString(styles.PreviewTitle.Render(item.step.Title))
	b.WriteString("\n")
	b.WriteString(styles.Location.Render(item.location()))
	b.WriteString("\n\n")
	if item.step.Markdown != "" {
		b.WriteString(styles.PreviewBody.Render(item.step.Markdown))
		b.WriteString("\n\n")
	}
	if code := item.excerpt(); len(code) > 0 {
		b.WriteString(strings.Join(code, "\n"))
	} else {
		b.WriteString(styles.Dim.Render("(source lines unavailable)"))
	}

	m.preview.SetContent(b.String())
	m.preview.GotoTop()
}

// View implements tea.Model
func (m model) View() string {
	if m.quitting {
		return ""
	}
	width := max(m.width, 80)

	var b strings.Builder
	b.WriteString(m.renderList(width))
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.preview.View())
	b.WriteString("\n")
	b.WriteString(styles.Divider.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render(fmt.Sprintf("  %d/%d steps • ↑/↓ select • pgup/pgdn scroll • esc quit", len(m.filtered), len(m.items))))
	b.WriteString("\n")
	b.WriteString(m.textInput.View())
	return b.String()
}

// renderList renders the scrollable list of steps
func (m model) renderList(width int) string {
	var b strings.Builder
	start := m.offset
	end := min(start+listHeight, len(m.filtered))
	rows := 0
	for i := start; i < end; i++ {
		b.WriteString(m.renderListItem(m.filtered[i], i == m.cursor, width))
		b.WriteString("\n")
		rows++
	}
	for ; rows < listHeight; rows++ {
		b.WriteString("\n")
	}
	return b.String()
}

// renderListItem renders one step row
func (m model) renderListItem(item stepItem, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = styles.Cursor.Render("▶ ")
	}

	titleStyle := styles.Title
	if item.step.Skip {
		titleStyle = styles.Skipped
	}
	locStyle, sumStyle := styles.Location, styles.Dim
	if selected {
		titleStyle = styles.WithSelection(titleStyle)
		locStyle = styles.WithSelection(locStyle)
		sumStyle = styles.WithSelection(sumStyle)
	}

	row := titleStyle.Render(truncateString(item.step.Title, 40)) + "  " +
		locStyle.Render(item.location())
	remaining := width - lipgloss.Width(cursor) - lipgloss.Width(row) - 2
	if remaining > 10 && item.summary != "" {
		row += "  " + sumStyle.Render(truncateString(item.summary, remaining))
	}
	return cursor + row
}

// ============================================================================
// Run TUI
// ============================================================================

// getTTY returns file handles for TUI input/output
// Uses /dev/tty when stdout is redirected
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) != 0 {
		return os.Stdin, os.Stdout, func() {}
	}

	var closers []func()
	out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		out = os.Stderr
	} else {
		closers = append(closers, func() { out.Close() })
	}

	in, err = os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		in = os.Stdin
	} else {
		closers = append(closers, func() { in.Close() })
	}

	// Tell lipgloss to use the TTY for color detection
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))

	return in, out, func() {
		for _, c := range closers {
			c()
		}
	}
}

// Run launches the walkthrough browser. sources maps a step's file to its
// marker-stripped lines.
func Run(stepList []steps.Step, sources map[string][]string) error {
	if len(stepList) == 0 {
		return fmt.Errorf("no steps to show")
	}

	ttyIn, ttyOut, cleanup := getTTY()
	defer cleanup()
	RefreshStyles() // after getTTY sets up the renderer

	p := tea.NewProgram(newModel(stepList, sources), tea.WithAltScreen(), tea.WithOutput(ttyOut), tea.WithInput(ttyIn))
	_, err := p.Run()
	return err
}

// ============================================================================
// Helpers
// ============================================================================

// clamp restricts v to the range [minV, maxV]
func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// scrollWindow calculates the visible range for a scrollable list
func scrollWindow(cursor, total, height int, offset *int) (start, end int) {
	if cursor < *offset {
		*offset = cursor
	}
	if cursor >= *offset+height {
		*offset = cursor - height + 1
	}
	maxOffset := max(0, total-height)
	*offset = clamp(*offset, 0, maxOffset)

	start = *offset
	end = min(start+height, total)
	return
}

// truncateString truncates a string to maxLen runes with ellipsis
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 3 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
