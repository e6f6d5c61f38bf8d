package ui

import (
	"context"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfdesk/internal/api"
	"pdfdesk/internal/config"
	"pdfdesk/internal/core/upload"
	"pdfdesk/internal/filemanager"
)

// Options wires the model to its backends. API and Files may be nil, in
// which case the corresponding screens report that nothing is configured.
type Options struct {
	Context     context.Context
	Config      config.Config
	ConfigFound bool
	API         *api.Client
	Files       *filemanager.Client
	// Uploader overrides API for the upload flow.
	Uploader upload.Uploader
	// OnPDFSelect replaces the default PDF selection hook of the browser.
	OnPDFSelect filemanager.SelectHook
}

func InitialModel(opts Options) Model {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	m := Model{
		state:  stateLanding,
		route:  routeLanding,
		cfg:    opts.Config,
		hasRC:  opts.ConfigFound,
		ctx:    ctx,
		cancel: cancel,
		api:    opts.API,
		fm:     opts.Files,
		events: newEventSink(ctx.Done()),
	}
	if m.cfg.RootAlias == "" {
		m.cfg.RootAlias = config.DefaultRootAlias
	}

	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = subtitleStyle
	m.spinner = sp

	// landing: picker restricted to PDFs
	fp := filepicker.New()
	fp.AllowedTypes = []string{".pdf"}
	fp.CurrentDirectory = startDir(m.cfg.StartDir)
	fp.ShowPermissions = false
	fp.AutoHeight = false
	fp.SetHeight(12)
	m.upload.picker = fp

	var up upload.Uploader
	switch {
	case opts.Uploader != nil:
		up = opts.Uploader
	case opts.API != nil:
		up = opts.API
	}
	if up != nil {
		m.upload.flow = upload.NewFlow(up, m.events, m.events,
			upload.WithTimeout(m.cfg.UploadTimeout),
			upload.WithStartHook(m.events.Started),
		)
	}

	// browser
	view := filemanager.ViewDetails
	if opts.Files != nil {
		view = opts.Files.Config().View()
	}
	m.browse = BrowseState{
		dir:     "/",
		view:    view,
		table:   newFileTable(),
		visited: map[string]bool{"/": true},
		keys:    DefaultKeyMap(),
		help:    help.New(),
		hook:    opts.OnPDFSelect,
		details: viewport.New(60, 10),
	}
	ti := textinput.New()
	ti.CharLimit = 255
	ti.Width = 50
	m.browse.input = ti

	// viewport
	m.viewport = viewport.New(80, 16)

	m.filter = listFilter{minCoverage: 0.6, maxSpread: 40, limit: 500}

	m.statusMsg = "Pick a PDF to upload."
	return m
}

func newFileTable() table.Model {
	columns := []table.Column{
		{Title: "Name", Width: 40},
		{Title: "Size", Width: 10},
		{Title: "Type", Width: 8},
		{Title: "Modified", Width: 16},
	}
	return table.New(
		table.WithColumns(columns),
		table.WithHeight(14),
		table.WithFocused(true),
		table.WithStyles(table.Styles{
			Header: lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240")).
				BorderBottom(true).
				Bold(true).
				Foreground(lipgloss.Color("#8942E1")),
			Selected: lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#2A2B3D")).
				Bold(true),
			Cell: lipgloss.NewStyle().Padding(0, 1),
		}),
	)
}

func startDir(configured string) string {
	if configured != "" {
		return configured
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.upload.picker.Init(), m.pingCmd(), m.events.wait())
}

// Shutdown cancels outstanding requests.
func (m Model) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
}
