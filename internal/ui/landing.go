package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"pdfdesk/internal/core/upload"
	"pdfdesk/internal/infra/logx"
)

func (m Model) handleLandingKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m.quit()
	case "tab":
		return m.navigate(routeFiles)
	}

	var cmd tea.Cmd
	m.upload.picker, cmd = m.upload.picker.Update(msg)

	if ok, path := m.upload.picker.DidSelectFile(msg); ok {
		next, upCmd := m.startUpload(path)
		return next, tea.Batch(cmd, upCmd)
	}
	// non-PDF picks still go through the flow so validation reports them
	if ok, path := m.upload.picker.DidSelectDisabledFile(msg); ok {
		next, upCmd := m.startUpload(path)
		return next, tea.Batch(cmd, upCmd)
	}
	return m, cmd
}

// startUpload hands the picked path to the upload flow. The flow itself
// rejects non-PDFs and concurrent uploads.
func (m Model) startUpload(path string) (Model, tea.Cmd) {
	file, err := upload.FromPath(path)
	if err != nil {
		logx.Warnf("cannot use %s: %v", path, err)
		return m, m.uploadCmd(nil)
	}
	if m.upload.flow == nil || !file.IsPDF() || m.upload.uploading {
		return m, m.uploadCmd(&file)
	}
	m.upload.uploading = true
	m.upload.current = file.Name
	m.statusMsg = "Uploading " + file.Name + "…"
	return m, tea.Batch(m.spinner.Tick, m.uploadCmd(&file))
}

func (m Model) viewLanding() string {
	var b strings.Builder
	b.WriteString("Upload a PDF to the document service.\n\n")
	b.WriteString(m.healthLine() + "\n")
	if !m.hasRC && m.cfg.Path != "" {
		b.WriteString(subtleStyle.Render("No "+m.cfg.Path+" found, using defaults.") + "\n")
	}
	b.WriteString(subtleStyle.Render(m.upload.picker.CurrentDirectory) + "\n\n")
	b.WriteString(m.upload.picker.View())
	b.WriteString("\n")
	status := m.statusMsg
	if m.upload.uploading {
		status = fmt.Sprintf("%s Uploading %s…", m.spinner.View(), m.upload.current)
	}
	b.WriteString(renderFooter(status,
		"↑/↓ move  |  enter open/select  |  ← back  |  tab file manager  |  q quit"))
	return b.String()
}

func (m Model) healthLine() string {
	target := "(none)"
	if m.api != nil {
		target = m.api.BaseURL()
	}
	switch {
	case m.api == nil:
		return warnStyle.Render("! No backend configured")
	case !m.health.checked:
		return subtleStyle.Render("Backend " + target + " …")
	case m.health.err != nil:
		return warnStyle.Render("! Backend " + target + " unreachable")
	default:
		return okStyle.Render("✓ Backend " + target)
	}
}
