package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"pdfdesk/internal/filemanager"
)

// syncGrid re-renders the large-icons grid into the viewport and keeps the
// selected cell visible.
func (m *Model) syncGrid() {
	if m.browse.view != filemanager.ViewLargeIcons {
		return
	}
	m.viewport.SetContent(m.renderGrid())
	m.ensureCursorInViewport(m.iconRowOf(m.browse.table.Cursor()))
}

func (m Model) renderGrid() string {
	cols := m.iconColumns()
	cursor := m.browse.table.Cursor()
	var rows []string
	var cells []string
	for row, i := range m.browse.visibleIdx {
		fd := m.browse.files[i]
		label := entrySymbol(fd) + "\n" + ansi.Truncate(fd.Name, iconCellWidth-2, "…")
		style := iconCellStyle
		if row == cursor {
			style = iconSelectedStyle
		}
		cells = append(cells, style.Render(label))
		if len(cells) == cols {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			cells = nil
		}
	}
	if len(cells) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderToolbar() string {
	keys := m.browse.keys.itemKeys()
	items := m.fmConfig().Toolbar()
	parts := make([]string, 0, len(items))
	for _, it := range items {
		hint := keys[it].Help().Key
		parts = append(parts, toolbarItemStyle.Render(fmt.Sprintf("%s %s", hint, it)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderNavPane() string {
	folders := make([]string, 0, len(m.browse.visited))
	for dir := range m.browse.visited {
		folders = append(folders, dir)
	}
	lines := folderTreeLines(m.cfg.RootAlias, folders, func(dir string) string {
		name := ansi.Truncate(folderName(dir), navPaneWidth-8, "…")
		if dir == m.browse.dir {
			return focusStyle.Render(name)
		}
		return name
	})
	if m.browse.dir == "/" && len(lines) > 0 {
		lines[0] = focusStyle.Render(lines[0])
	}
	return panelStyle.Width(navPaneWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderMenu() string {
	var b strings.Builder
	for i, it := range m.browse.menu {
		if i == m.browse.menuIndex {
			b.WriteString(menuSelectedStyle.Render(string(it)) + "\n")
		} else {
			b.WriteString(menuItemStyle.Render(string(it)) + "\n")
		}
	}
	return panelStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

func (m Model) viewBrowse() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(m.dirLabel(m.browse.dir)))
	b.WriteString(subtleStyle.Render("  " + m.fmConfig().Host()))
	b.WriteString("\n")
	b.WriteString(m.renderToolbar() + "\n\n")

	if m.browse.mode == browseDetails {
		b.WriteString(panelStyle.Render(m.browse.details.View()) + "\n")
		b.WriteString(renderFooter("", "↑/↓ scroll  |  esc close"))
		return b.String()
	}

	var main string
	switch {
	case m.browse.files == nil && m.browse.loading:
		main = m.spinner.View() + " Loading…"
	case m.browse.files == nil && m.browse.err != nil:
		main = warnStyle.Render("Listing unavailable. Press r to retry.")
	case len(m.browse.visibleIdx) == 0:
		main = subtleStyle.Render("This folder is empty.")
		if m.browse.query != "" {
			main = subtleStyle.Render("No match for " + m.browse.query + ". Enter searches the service.")
		}
	case m.browse.view == filemanager.ViewLargeIcons:
		main = m.viewport.View()
	default:
		main = m.browse.table.View()
	}
	if m.browse.mode == browseMenu {
		main = lipgloss.JoinHorizontal(lipgloss.Top, main, "  ", m.renderMenu())
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderNavPane(), " ", main))
	b.WriteString("\n")

	switch m.browse.mode {
	case browseFilter:
		b.WriteString("Filter: " + m.browse.input.View() + "\n")
	case browseNewFolder:
		b.WriteString("New folder in " + m.dirLabel(m.browse.dir) + ": " + m.browse.input.View() + "\n")
	case browseUploadPath:
		b.WriteString("Upload into " + m.dirLabel(m.browse.dir) + ": " + m.browse.input.View() + "\n")
	case browseConfirmDelete:
		if fd, ok := m.selectedItem(); ok {
			b.WriteString(warnStyle.Render(fmt.Sprintf("Delete %s? (y/n)", fd.Name)) + "\n")
		}
	default:
		if m.browse.query != "" {
			b.WriteString(subtleStyle.Render("Filter: "+m.browse.query) + "\n")
		}
	}

	status := m.statusMsg
	if m.browse.loading {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(renderFooter(status))
	b.WriteString("\n")
	b.WriteString(m.browse.help.View(m.browse.keys))
	return b.String()
}
