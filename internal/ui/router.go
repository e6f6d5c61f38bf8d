package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	routeLanding = "/"
	routeFiles   = "/files"
	pdfPrefix    = "/pdf:"
)

// parseRoute maps a client-side path to the screen showing it. For
// /pdf:<sha> it also returns the token; an empty token is not a route.
func parseRoute(path string) (state, string) {
	switch {
	case path == routeLanding || path == "":
		return stateLanding, ""
	case path == routeFiles:
		return stateFiles, ""
	case strings.HasPrefix(path, pdfPrefix):
		sha := strings.TrimPrefix(path, pdfPrefix)
		if sha == "" || strings.ContainsAny(sha, "/ ") {
			return stateNotFound, ""
		}
		return stateResult, sha
	default:
		return stateNotFound, ""
	}
}

// navigate switches screens and starts whatever the new screen needs.
func (m Model) navigate(path string) (Model, tea.Cmd) {
	st, sha := parseRoute(path)
	m.route = path
	m.state = st
	switch st {
	case stateLanding:
		if m.upload.uploading {
			return m, m.spinner.Tick
		}
		return m, nil
	case stateFiles:
		if m.browse.files == nil && !m.browse.loading {
			m.browse.loading = true
			return m, tea.Batch(m.spinner.Tick, m.readDirCmd(m.browse.dir))
		}
		return m, nil
	case stateResult:
		m.result = ResultState{sha: sha, loading: true}
		m.statusMsg = "Document " + sha
		return m, tea.Batch(m.spinner.Tick, m.fetchTitleCmd(sha))
	default:
		m.statusMsg = "No page at " + path
		return m, nil
	}
}
