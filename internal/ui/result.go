package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"pdfdesk/internal/api"
)

func (m Model) handleResultKey(key string) (Model, tea.Cmd) {
	switch key {
	case "q":
		return m.quit()
	case "esc", "b":
		return m.navigate(routeLanding)
	case "tab":
		return m.navigate(routeFiles)
	case "d":
		if m.result.saving {
			return m, nil
		}
		m.result.saving = true
		m.statusMsg = "Downloading " + m.result.sha + ".pdf…"
		return m, tea.Batch(m.spinner.Tick, m.savePDFCmd(m.result.sha))
	case "r":
		m.result.loading = true
		return m, tea.Batch(m.spinner.Tick, m.fetchTitleCmd(m.result.sha))
	}
	return m, nil
}

func (m Model) viewResult() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render(api.PDFRoute(m.result.sha)) + "\n\n")
	b.WriteString("Document: " + focusStyle.Render(m.result.sha) + "\n")
	switch {
	case m.result.loading:
		b.WriteString("Title:    " + m.spinner.View() + "\n")
	case m.result.err != nil:
		b.WriteString("Title:    " + warnStyle.Render("unavailable ("+m.result.err.Error()+")") + "\n")
	case m.result.titleSet:
		b.WriteString("Title:    " + m.result.title + "\n")
	default:
		b.WriteString("Title:    " + subtleStyle.Render("(not known yet)") + "\n")
	}
	if m.result.savedTo != "" {
		b.WriteString(okStyle.Render("✓ Saved to "+m.result.savedTo) + "\n")
	}
	b.WriteString("\n")
	status := m.statusMsg
	if m.result.saving {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(renderFooter(status,
		"d download PDF  |  r reload title  |  b back  |  tab file manager  |  q quit"))
	return b.String()
}
