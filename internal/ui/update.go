package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"pdfdesk/internal/core/upload"
	"pdfdesk/internal/infra/logx"
)

// ---------- Update ----------
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case eventMsg:
		next, cmd := m.Update(msg.msg)
		nm := next.(Model)
		return nm, tea.Batch(cmd, nm.events.wait())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if len(m.alerts) > 0 {
			return m.handleAlertKey(msg.String())
		}
		switch m.state {
		case stateLanding:
			return m.handleLandingKey(msg)
		case stateFiles:
			return m.handleBrowseKey(msg)
		case stateResult:
			return m.handleResultKey(msg.String())
		case stateNotFound:
			return m.handleNotFoundKey(msg.String())
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		// reserve for header, divider, status and help lines
		const chrome = 10
		vp := m.height - chrome
		if vp < 3 {
			vp = 3
		}
		m.upload.picker.SetHeight(vp)
		m.browse.table.SetHeight(vp - 3)
		m.viewport.Width = max(20, m.width-navPaneWidth-4)
		m.viewport.Height = vp - 3
		m.browse.details.Width = max(20, m.width-4)
		m.browse.details.Height = vp - 2
		m.browse.help.Width = m.width
		m.resizeColumns()
		m.syncGrid()
		return m, nil

	case navigateMsg:
		return m.navigate(msg.path)

	case alertMsg:
		m.alerts = append(m.alerts, msg.text)
		return m, nil

	case healthMsg:
		m.health = healthState{checked: true, err: msg.err}
		if msg.err != nil {
			logx.Warnf("backend health check failed: %v", msg.err)
		}
		return m, nil

	case uploadStartedMsg:
		// a start reported after completion is stale
		if m.upload.uploading {
			m.upload.current = msg.name
			m.statusMsg = "Uploading " + msg.name + "…"
		}
		return m, nil

	case uploadDoneMsg:
		if errors.Is(msg.err, upload.ErrUploadInProgress) {
			return m, nil
		}
		m.upload.uploading = false
		m.upload.current = ""
		switch out := msg.outcome.(type) {
		case upload.UploadSuccess:
			m.statusMsg = "Uploaded, document " + out.SHA
		case upload.UploadFailure:
			m.statusMsg = out.Message
		}
		return m, nil

	case titleMsg:
		if msg.sha != m.result.sha {
			return m, nil
		}
		m.result.loading = false
		m.result.err = msg.err
		m.result.title = msg.title
		m.result.titleSet = msg.err == nil && msg.title != ""
		return m, nil

	case savedMsg:
		m.result.saving = false
		if msg.err != nil {
			m.alerts = append(m.alerts, fmt.Sprintf("Could not save %s: %v", msg.what, msg.err))
			return m, nil
		}
		if m.state == stateResult {
			m.result.savedTo = msg.path
		}
		m.statusMsg = fmt.Sprintf("Saved %s (%s)", msg.path, humanize.Bytes(uint64(msg.n)))
		return m, nil

	case listingMsg:
		return m.handleListing(msg)

	case fmOpMsg:
		return m.handleFileOp(msg)

	case detailsMsg:
		return m.handleDetails(msg)

	case spinner.TickMsg:
		if m.busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// everything else (filepicker directory reads) belongs to the picker
	if m.state == stateLanding {
		var cmd tea.Cmd
		m.upload.picker, cmd = m.upload.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) busy() bool {
	switch m.state {
	case stateLanding:
		return m.upload.uploading
	case stateResult:
		return m.result.loading || m.result.saving
	case stateFiles:
		return m.browse.loading
	}
	return false
}

func (m Model) quit() (Model, tea.Cmd) {
	m.state = stateQuit
	m.Shutdown()
	return m, tea.Quit
}

// handleAlertKey dismisses the front alert; other keys are swallowed while
// an alert is shown.
func (m Model) handleAlertKey(key string) (Model, tea.Cmd) {
	switch key {
	case "enter", "esc", " ":
		m.alerts = m.alerts[1:]
	}
	return m, nil
}

func (m Model) handleNotFoundKey(key string) (Model, tea.Cmd) {
	switch key {
	case "q":
		return m.quit()
	case "enter", "esc", "b":
		return m.navigate(routeLanding)
	}
	return m, nil
}
