package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.state == stateQuit {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("pdfdesk"))
	b.WriteString(subtleStyle.Render("  " + m.route))
	b.WriteString("\n")
	b.WriteString(dividerStyle.Render(strings.Repeat("─", max(10, m.width-2))))
	b.WriteString("\n\n")

	if len(m.alerts) > 0 {
		b.WriteString(m.viewAlert())
		b.WriteString("\n")
		return b.String()
	}

	switch m.state {
	case stateLanding:
		b.WriteString(m.viewLanding())
	case stateFiles:
		b.WriteString(m.viewBrowse())
	case stateResult:
		b.WriteString(m.viewResult())
	case stateNotFound:
		b.WriteString(warnStyle.Render("Page not found: "+m.route) + "\n\n")
		b.WriteString(renderFooter("", "enter back to upload  |  q quit"))
	}

	if line := m.metricsLine(); line != "" {
		b.WriteString("\n" + subtleStyle.Render(line))
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewAlert() string {
	body := m.alerts[0]
	if more := len(m.alerts) - 1; more > 0 {
		body += subtleStyle.Render(fmt.Sprintf("\n\n(%d more)", more))
	}
	box := alertBoxStyle.Render(errorStyle.Render("!") + " " + body + "\n\n" + helpStyle.Render("enter ok"))
	if m.width > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
	}
	return box
}

// metricsLine summarizes backend transport counters.
func (m Model) metricsLine() string {
	if m.api == nil {
		return ""
	}
	s := m.api.MetricsSnapshot()
	if s.TotalRequests == 0 {
		return ""
	}
	return fmt.Sprintf("requests %d  |  retries %d  |  uploads %d/%d  |  5xx %d",
		s.TotalRequests, s.TotalRetries, s.UploadsSucceeded, s.UploadsStarted, s.Status5xx)
}
