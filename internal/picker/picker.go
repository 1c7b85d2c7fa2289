// Package picker is a small fuzzy finder over the shortcut collection.
package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/newtab/internal/model"
	"github.com/nikbrunner/newtab/internal/search"
	"github.com/nikbrunner/newtab/internal/tui/layout"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// Params configures a Picker.
type Params struct {
	Items model.Collection
	Query string
	// Standalone makes Enter and Esc quit the program. Embedded pickers are
	// polled with Done instead.
	Standalone bool
	Layout     *layout.LayoutConfig // optional, uses default if nil
}

// Picker lets the user narrow the shortcuts by name and pick one.
type Picker struct {
	items      model.Collection
	input      textinput.Model
	results    []search.Result
	cursor     int
	selected   bool
	cancelled  bool
	standalone bool
	cfg        layout.LayoutConfig
	width      int
	height     int
}

// New creates a Picker with the query already applied.
func New(params Params) Picker {
	cfg := layout.DefaultConfig()
	if params.Layout != nil {
		cfg = *params.Layout
	}

	input := textinput.New()
	input.Placeholder = "查找快捷方式..."
	input.CharLimit = cfg.Input.SearchCharLimit
	input.Width = cfg.Input.SearchWidth
	input.SetValue(params.Query)
	input.Focus()

	p := Picker{
		items:      params.Items,
		input:      input,
		standalone: params.Standalone,
		cfg:        cfg,
		width:      80,
		height:     24,
	}
	p.refresh()
	return p
}

func (p *Picker) refresh() {
	p.results = search.Shortcuts(p.items, p.input.Value())
	if p.cursor >= len(p.results) {
		p.cursor = max(0, len(p.results)-1)
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, p.finish()

		case tea.KeyEnter:
			if len(p.results) == 0 {
				return p, nil
			}
			p.selected = true
			return p, p.finish()

		case tea.KeyDown, tea.KeyCtrlN, tea.KeyCtrlJ:
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
			return p, nil

		case tea.KeyUp, tea.KeyCtrlP, tea.KeyCtrlK:
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.refresh()
	}
	return p, cmd
}

func (p Picker) finish() tea.Cmd {
	if p.standalone {
		return tea.Quit
	}
	return nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("查找 (%d)", len(p.results))))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	rows := layout.CalculatePickerRows(p.height, p.cfg.Picker)
	start, end := layout.CalculateVisibleListItems(rows, p.cursor, len(p.results))
	nameWidth := max(10, p.width-4)

	for i := start; i < end; i++ {
		res := p.results[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		name, _ := layout.TruncateText(res.Link.Name, nameWidth, p.cfg.Text)
		title := highlight(name, res.MatchedIndexes, style)
		if res.Folder != "" {
			title += urlStyle.Render("  ▸ " + res.Folder)
		}
		url, _ := layout.TruncateText(res.Link.URL, nameWidth, p.cfg.Text)

		b.WriteString(cursor + title + "\n")
		b.WriteString("   " + urlStyle.Render(url) + "\n")
	}
	if len(p.results) == 0 && p.input.Value() != "" {
		b.WriteString(helpStyle.Render("  没有匹配的快捷方式") + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: move  Enter: open  Esc: cancel"))

	return b.String()
}

// highlight renders name with the fuzzy-matched byte offsets emphasized.
func highlight(name string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(name)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range name {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
			continue
		}
		b.WriteString(base.Render(string(r)))
	}
	return b.String()
}

// Done reports whether the user picked a result or cancelled.
func (p Picker) Done() bool {
	return p.selected || p.cancelled
}

// Selected returns the picked result, or false if cancelled.
func (p Picker) Selected() (search.Result, bool) {
	if p.cancelled || !p.selected || p.cursor >= len(p.results) {
		return search.Result{}, false
	}
	return p.results[p.cursor], true
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// Results returns the current matches, best first.
func (p Picker) Results() []search.Result {
	return p.results
}
