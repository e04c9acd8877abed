package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/mfx/internal/models"
	"github.com/marcus/mfx/internal/output"
)

// View implements tea.Model
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return "Loading..."
	}
	if m.Width < MinWidth || m.Height < MinHeight {
		return "mfx browse (resize for full view)\n\nq:quit"
	}
	if m.ShowHelp {
		return m.renderHelp()
	}

	var s strings.Builder
	s.WriteString(m.renderTabs())
	s.WriteString("\n")

	height := m.listHeight()
	end := min(m.Offset+height, len(m.Rows))
	for i := m.Offset; i < end; i++ {
		s.WriteString(m.renderRow(m.Rows[i], i == m.Cursor))
		s.WriteString("\n")
	}
	for i := end - m.Offset; i < height; i++ {
		s.WriteString("\n")
	}

	s.WriteString(m.renderFooter())
	return s.String()
}

// listHeight is the number of rows left after tabs and footer
func (m Model) listHeight() int {
	return max(m.Height-3, 0)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(m.trees))
	for i, t := range m.trees {
		name := string(t.Schema())
		if i == m.Active {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderRow(r Row, selected bool) string {
	indent := strings.Repeat("  ", r.Depth)

	label := r.Item.Label
	tag := models.ParseContextTag(r.Item.ContextValue)
	if tag.Favorite {
		label = favStyle.Render("★ ") + label
	}
	line := indent + output.IconGlyph(r.Item.Icon) + " " + label
	if tag.Status != models.StatusUnset {
		st := statusStyles[tag.Status]
		line += " " + st.Render("["+string(tag.Status)+"]")
	}
	if r.Item.Tooltip != "" && r.Item.Tooltip != r.Item.Label {
		line += " " + subtleStyle.Render(r.Item.Tooltip)
	}

	line = ansi.Truncate(line, m.Width-2, "…")
	if selected {
		return cursorStyle.Render("> ") + line
	}
	return "  " + line
}

func (m Model) renderFooter() string {
	if m.mode != modeNone {
		return m.input.View()
	}
	if m.Status != "" {
		st := levelStyles[m.Level]
		return ansi.Truncate(st.Render(m.Status), m.Width, "…")
	}
	return helpStyle.Render("enter:expand /:search f:fav u:unfav R:rename c:check tab:tree ?:help q:quit")
}

func (m Model) renderHelp() string {
	var s strings.Builder
	s.WriteString(activeTabStyle.Render("Keys"))
	s.WriteString("\n\n")
	for _, b := range m.keys.helpBindings() {
		h := b.Help()
		s.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("press ? to close"))
	return s.String()
}
