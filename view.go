package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/LFroesch/fcmd/internal/keymap"
	"github.com/LFroesch/fcmd/internal/ops"
	"github.com/LFroesch/fcmd/internal/panel"
	"github.com/LFroesch/fcmd/internal/preview"
	"github.com/LFroesch/fcmd/internal/theme"
	"github.com/LFroesch/fcmd/internal/utils"
)

const sizeColumn = 9

func (m *model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()

	var mainContent string
	switch m.session.Mode() {
	case keymap.ModeHelp:
		mainContent = m.renderHelpView()
	case keymap.ModePreview:
		mainContent = m.renderPreview()
	case keymap.ModeFind:
		mainContent = m.renderFind()
	default:
		width := m.getSafeWidth()
		tab := m.session.Tab()
		left := m.renderPanel(tab.Panels[0], tab.Focus == 0, width/2)
		right := m.renderPanel(tab.Panels[1], tab.Focus == 1, width-width/2)
		mainContent = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		mainContent,
		m.renderLine(),
		m.renderStatusBar(),
	)
}

func (m *model) color(role theme.Role) lipgloss.Color {
	return m.session.Themes().Color(m.session.Theme(), role)
}

func (m *model) renderHeader() string {
	width := m.getSafeWidth()
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.color(theme.Dir)).
		Background(lipgloss.Color("235"))
	tabStyle := lipgloss.NewStyle().
		Foreground(m.color(theme.Dim)).
		Background(lipgloss.Color("235")).
		Padding(0, 1)
	activeTabStyle := tabStyle.
		Bold(true).
		Foreground(m.color(theme.TabActive))

	var parts []string
	parts = append(parts, titleStyle.Render(" fcmd "))
	for i, t := range m.session.Tabs() {
		label := fmt.Sprintf("%d:%s", i+1, baseName(t.Focused().Path()))
		if i == m.session.ActiveTabIndex() {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	left := strings.Join(parts, "")

	right := m.session.Active().Path()
	if branch := m.session.Branch(); branch != "" {
		right += "  " + branch
	}
	right = utils.Truncate(right, width-lipgloss.Width(left)-2)

	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 1
	if padding < 1 {
		padding = 1
	}

	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Background(lipgloss.Color("235")).
		Width(width).
		Render(left + strings.Repeat(" ", padding) + right)
}

// renderPanel renders one directory listing with its border
func (m *model) renderPanel(p *panel.Panel, focused bool, width int) string {
	rows := m.getContentHeight()
	inner := width - 2

	borderColor := m.color(theme.Border)
	if focused {
		borderColor = m.color(theme.BorderActive)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.color(theme.Dir))
	title := baseName(p.Path())
	if p.ShowHidden() {
		title += " [H]"
	}
	sortLabel := p.SortMode().String()
	if p.Reversed() {
		sortLabel += "↓"
	}
	if n := len(p.SelectedPaths()); n > 0 {
		sortLabel = fmt.Sprintf("%d sel  %s", n, sortLabel)
	}
	title = utils.PadRight(title, inner-lipgloss.Width(sortLabel)-1) + " " + sortLabel

	lines := []string{titleStyle.Render(utils.PadRight(title, inner))}

	entries := p.Entries()
	if len(entries) == 0 {
		lines = append(lines, lipgloss.NewStyle().Foreground(m.color(theme.Dim)).Render("(empty)"))
	}
	end := p.Offset() + rows
	if end > len(entries) {
		end = len(entries)
	}
	for i := p.Offset(); i < end; i++ {
		lines = append(lines, m.renderEntry(p, entries[i], i == p.Cursor(), focused, inner))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor).
		Width(inner).
		Height(rows + 1).
		Render(strings.Join(lines, "\n"))
}

func (m *model) renderEntry(p *panel.Panel, e panel.Entry, isCursor, focused bool, width int) string {
	marker := " "
	switch e.MarkLevel {
	case 1:
		marker = lipgloss.NewStyle().Foreground(m.color(theme.Mark1)).Render("●")
	case 2:
		marker = lipgloss.NewStyle().Foreground(m.color(theme.Mark2)).Render("●")
	case 3:
		marker = lipgloss.NewStyle().Foreground(m.color(theme.Mark3)).Render("●")
	}

	selected := p.IsSelected(e.Path)
	sel := " "
	if selected {
		sel = "+"
	}

	icon := utils.EntryIcon(e.Name, e.IsDir, e.Kind == panel.KindSymlink)

	gitTag := ""
	if e.GitStatus != "" {
		gitTag = " [" + e.GitStatus + "]"
	}

	size := ""
	if !e.IsDir {
		size = utils.FormatFileSize(e.Size)
	}

	name := e.Name
	if e.IsDir {
		name += "/"
	}
	if e.Kind == panel.KindSymlink && e.LinkTarget != "" {
		name += " → " + e.LinkTarget
	}

	nameWidth := width - 2 - lipgloss.Width(icon) - 1 - lipgloss.Width(gitTag) - sizeColumn - 1
	prefix := sel + icon + " " + utils.PadRight(name, nameWidth)
	suffix := " " + fmt.Sprintf("%*s", sizeColumn, size)

	style := lipgloss.NewStyle().Foreground(m.color(theme.File))
	switch {
	case selected:
		style = style.Foreground(m.color(theme.Selected))
	case e.Kind == panel.KindSymlink:
		style = style.Foreground(m.color(theme.Symlink))
	case e.IsDir:
		style = style.Foreground(m.color(theme.Dir))
	}
	if isCursor {
		if focused {
			style = style.Background(m.color(theme.CursorBg)).Foreground(m.color(theme.CursorFg))
		} else {
			style = style.Background(m.session.Themes().Blend(m.session.Theme(), theme.CursorBg, theme.Border, 0.6))
		}
		return marker + style.Render(prefix+gitTag+suffix)
	}
	gitStyle := lipgloss.NewStyle().Foreground(m.color(theme.Git))
	if !e.IsDir {
		colored := utils.FormatFileSizeColored(e.Size)
		suffix = " " + strings.Repeat(" ", max(0, sizeColumn-lipgloss.Width(colored))) + colored
		return marker + style.Render(prefix) + gitStyle.Render(gitTag) + suffix
	}
	return marker + style.Render(prefix) + gitStyle.Render(gitTag) + style.Render(suffix)
}

func (m *model) renderFind() string {
	f := m.session.Find()
	width := m.getSafeWidth()
	rows := m.getContentHeight()

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.color(theme.TabActive))
	var lines []string
	if f == nil {
		lines = append(lines, titleStyle.Render("Find"))
	} else {
		lines = append(lines, titleStyle.Render(utils.Truncate(fmt.Sprintf("Find in %s  (%s)", f.Root, f.Summary()), width-4)))

		start := 0
		if f.Cursor >= rows {
			start = f.Cursor - rows + 1
		}
		end := start + rows
		if end > len(f.Results) {
			end = len(f.Results)
		}
		matchStyle := lipgloss.NewStyle().Foreground(m.color(theme.Mark2)).Bold(true)
		for i := start; i < end; i++ {
			r := f.Results[i]
			icon := utils.EntryIcon(r.DisplayName, r.IsDir, false)
			display := utils.Truncate(r.DisplayName, width-10)
			if r.LineNumber > 0 {
				display = utils.Truncate(fmt.Sprintf("%s:%d", r.DisplayName, r.LineNumber), width-10)
			}
			if i < len(f.Matches) && len(f.Matches[i]) > 0 && display == r.DisplayName {
				display = utils.HighlightMatches(display, f.Matches[i], matchStyle)
			}
			line := icon + " " + display
			if i == f.Cursor {
				line = lipgloss.NewStyle().
					Background(m.color(theme.CursorBg)).
					Foreground(m.color(theme.CursorFg)).
					Render("> " + line)
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.color(theme.BorderActive)).
		Width(width - 2).
		Height(rows + 1).
		Render(strings.Join(lines, "\n"))
}

func (m *model) renderPreview() string {
	pv := m.session.Preview()
	width := m.getSafeWidth()
	rows := m.getContentHeight()

	var lines []string
	if pv != nil {
		headerStyle := lipgloss.NewStyle().Foreground(m.color(theme.Dim))
		for _, h := range pv.Content.Header {
			lines = append(lines, headerStyle.Render(utils.Truncate(h, width-4)))
		}
		body := preview.Wrap(pv.Content.Lines[min(pv.Scroll, len(pv.Content.Lines)):], width-4)
		room := rows + 1 - len(lines)
		if room < 0 {
			room = 0
		}
		if len(body) > room {
			body = body[:room]
		}
		lines = append(lines, body...)
		if pv.Content.More && len(lines) < rows+1 {
			lines = append(lines, headerStyle.Render("… truncated"))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.color(theme.BorderActive)).
		Width(width - 2).
		Height(rows + 1).
		Render(strings.Join(lines, "\n"))
}

func (m *model) renderHelpView() string {
	rows := m.getContentHeight()
	bindings := m.session.Keymap().Help(keymap.ModeNormal)

	var columns [][]key.Binding
	for len(bindings) > 0 {
		n := min(rows, len(bindings))
		columns = append(columns, bindings[:n])
		bindings = bindings[n:]
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.color(theme.BorderActive)).
		Padding(0, 1).
		Width(m.getSafeWidth() - 2).
		Height(rows + 1).
		Render(m.help.FullHelpView(columns))
}

// renderLine is the bottom line: the line editor in text modes, the prompt
// while asking, the status message otherwise.
func (m *model) renderLine() string {
	s := m.session
	width := m.getSafeWidth()
	promptStyle := lipgloss.NewStyle().Bold(true).Foreground(m.color(theme.Error))

	switch s.Mode() {
	case keymap.ModeCommand, keymap.ModeSearch, keymap.ModeFind:
		prefix := ":"
		switch s.Mode() {
		case keymap.ModeSearch:
			prefix = "/"
		case keymap.ModeFind:
			prefix = "find> "
			if f := s.Find(); f != nil {
				prefix = f.Scope.String() + "> "
			}
		}
		m.lineInput.Prompt = prefix
		m.lineInput.Width = width - lipgloss.Width(prefix) - 2
		m.lineInput.SetValue(s.Line())
		m.lineInput.CursorEnd()
		return m.lineInput.View()
	case keymap.ModeConfirm, keymap.ModeConflict:
		return promptStyle.Render(utils.Truncate(s.Prompt(), width))
	}

	st := s.Status()
	if st.Text == "" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(m.color(theme.Status))
	if st.Error {
		style = style.Foreground(m.color(theme.Error))
	}
	return style.Render(utils.Truncate(st.Text, width))
}

func (m *model) renderStatusBar() string {
	s := m.session
	width := m.getSafeWidth()

	statusStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("240")).
		Padding(0, 1).
		Width(width)

	modeStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("235")).
		Background(m.color(theme.TabActive)).
		Padding(0, 1)

	parts := []string{}
	p := s.Active()
	if p.Len() > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", p.Cursor()+1, p.Len()))
	}
	if reg := s.Register(); !reg.Empty() {
		parts = append(parts, fmt.Sprintf("%d %s", len(reg.Paths), registerLabel(reg.Op)))
	}
	if prog, ok := s.Progress(); ok {
		parts = append(parts, progressLabel(prog))
	}
	statusText := strings.Join(parts, " | ")

	var pending string
	if s.Count() > 0 {
		pending = fmt.Sprint(s.Count())
	}
	pending += s.PendingKeys()
	rightSide := "? for help"
	if pending != "" {
		rightSide = pending + "  " + rightSide
	}

	mode := modeStyle.Render(s.Mode().String())
	totalWidth := width - 2 // Account for padding
	padding := totalWidth - lipgloss.Width(mode) - lipgloss.Width(statusText) - lipgloss.Width(rightSide) - 1
	if padding < 1 {
		padding = 1
	}

	return statusStyle.Render(mode + " " + statusText + strings.Repeat(" ", padding) + rightSide)
}

func registerLabel(op ops.RegisterOp) string {
	if op == ops.RegisterCut {
		return "cut"
	}
	return "yanked"
}

var progressVerbs = map[ops.OpKind]string{
	ops.OpCopy:   "Copying",
	ops.OpMove:   "Moving",
	ops.OpDelete: "Deleting",
}

func progressLabel(p ops.Progress) string {
	if p.Cancelling {
		return "Cancelling " + p.Label
	}
	label := fmt.Sprintf("%s %d/%d", progressVerbs[p.Kind], p.Completed, p.Total)
	if p.Current != "" {
		label += " " + filepath.Base(p.Current)
	}
	switch {
	case p.BytesTotal > 0:
		label += fmt.Sprintf(" %d%%", p.BytesDone*100/p.BytesTotal)
	case p.Total > 0:
		label += fmt.Sprintf(" %d%%", p.Completed*100/p.Total)
	}
	return label
}

func baseName(path string) string {
	if name := filepath.Base(path); name != string(filepath.Separator) && name != "." {
		return name
	}
	return path
}
