package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"pdfdesk/internal/filemanager"
)

// fmConfig is the presentation config of the browser; without a client the
// defaults of the configured host apply.
func (m Model) fmConfig() filemanager.Config {
	if m.fm != nil {
		return m.fm.Config()
	}
	return filemanager.NewConfig(m.cfg.FileManagerURL)
}

func (m Model) handleListing(msg listingMsg) (Model, tea.Cmd) {
	m.browse.loading = false
	if msg.err != nil {
		m.browse.err = msg.err
		m.alerts = append(m.alerts, fmt.Sprintf("Could not load %s: %v", m.dirLabel(msg.dir), msg.err))
		return m, nil
	}
	dir := filemanager.NormalizeDir(msg.dir)
	m.browse.err = nil
	m.browse.dir = dir
	m.browse.cwd = msg.listing.CWD
	m.browse.files = msg.listing.Files
	sortEntries(m.browse.files)

	m.browse.visited[dir] = true
	for _, fd := range m.browse.files {
		if !fd.IsFile && msg.search == "" {
			child := filemanager.ChildDir(dir, fd.Name)
			if _, ok := m.browse.visited[child]; !ok {
				m.browse.visited[child] = false
			}
		}
	}

	m.browse.query = ""
	m.browse.table.GotoTop()
	m.applyFilter()
	m.browse.lastSelected = ""
	m.statusMsg = fmt.Sprintf("%s: %d items", m.dirLabel(dir), len(m.browse.files))
	if msg.search != "" {
		m.statusMsg = fmt.Sprintf("Search %q in %s: %d matches", msg.search, m.dirLabel(dir), len(m.browse.files))
	}
	return m.noteSelection(), nil
}

func (m Model) handleFileOp(msg fmOpMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.browse.loading = false
		m.alerts = append(m.alerts, fmt.Sprintf("%s failed: %v", msg.op, msg.err))
		return m, nil
	}
	m.statusMsg = msg.note
	m.browse.loading = true
	return m, tea.Batch(m.spinner.Tick, m.readDirCmd(m.browse.dir))
}

func (m Model) handleDetails(msg detailsMsg) (Model, tea.Cmd) {
	m.browse.loading = false
	if msg.err != nil {
		m.alerts = append(m.alerts, "Details failed: "+msg.err.Error())
		return m, nil
	}
	m.browse.details.SetContent(renderItemDetails(msg.details))
	m.browse.details.GotoTop()
	m.browse.mode = browseDetails
	return m, nil
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.browse.mode {
	case browseFilter:
		return m.handleFilterKey(msg)
	case browseNewFolder, browseUploadPath:
		return m.handleInputKey(msg)
	case browseConfirmDelete:
		return m.handleConfirmDeleteKey(msg.String())
	case browseMenu:
		return m.handleMenuKey(msg.String())
	case browseDetails:
		switch msg.String() {
		case "esc", "enter", "i", "q":
			m.browse.mode = browseList
			return m, nil
		}
		var cmd tea.Cmd
		m.browse.details, cmd = m.browse.details.Update(msg)
		return m, cmd
	}

	k := m.browse.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m.quit()
	case key.Matches(msg, k.Home):
		return m.navigate(routeLanding)
	case key.Matches(msg, k.Help):
		m.browse.help.ShowAll = !m.browse.help.ShowAll
		return m, nil
	case key.Matches(msg, k.Filter):
		m.browse.mode = browseFilter
		m.browse.input.Placeholder = "filter…"
		m.browse.input.SetValue(m.browse.query)
		m.browse.input.Focus()
		return m, nil
	case key.Matches(msg, k.Menu):
		fd, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.browse.menu = m.fmConfig().ContextMenu(fd)
		m.browse.menuIndex = 0
		m.browse.mode = browseMenu
		return m, nil
	case key.Matches(msg, k.Parent):
		if m.browse.dir == "/" || m.browse.loading {
			return m, nil
		}
		m.browse.loading = true
		return m, tea.Batch(m.spinner.Tick, m.readDirCmd(filemanager.ParentDir(m.browse.dir)))
	case key.Matches(msg, k.Open):
		return m.runItem(filemanager.ItemOpen)
	case msg.String() == "esc" && m.browse.query != "":
		m.browse.query = ""
		m.applyFilter()
		return m.noteSelection(), nil
	}

	cfg := m.fmConfig()
	for it, b := range k.itemKeys() {
		if it != filemanager.ItemOpen && cfg.Has(it) && key.Matches(msg, b) {
			return m.runItem(it)
		}
	}

	var cmd tea.Cmd
	m.browse.table, cmd = m.browse.table.Update(msg)
	m.syncGrid()
	return m.noteSelection(), cmd
}

// runItem executes a toolbar or context-menu command.
func (m Model) runItem(it filemanager.Item) (Model, tea.Cmd) {
	if m.browse.loading {
		return m, nil
	}
	fd, ok := m.selectedItem()
	switch it {
	case filemanager.ItemOpen:
		if !ok {
			return m, nil
		}
		if !fd.IsFile {
			m.browse.loading = true
			return m, tea.Batch(m.spinner.Tick, m.readDirCmd(filemanager.ChildDir(m.browse.dir, fd.Name)))
		}
		if fd.IsImage() && m.fm != nil {
			m.statusMsg = "Image: " + m.fm.ImageURL(fd)
			return m, nil
		}
		if !m.firePDFHook(fd) {
			m.statusMsg = "No preview for " + fd.Name
		}
		return m, nil
	case filemanager.ItemNewFolder:
		return m.startInput(browseNewFolder, "New folder name"), nil
	case filemanager.ItemUpload:
		return m.startInput(browseUploadPath, "Local file path"), nil
	case filemanager.ItemDelete:
		if !ok {
			return m, nil
		}
		m.browse.mode = browseConfirmDelete
		return m, nil
	case filemanager.ItemDownload:
		if !ok {
			return m, nil
		}
		m.statusMsg = "Downloading " + fd.Name + "…"
		return m, m.downloadCmd(fd)
	case filemanager.ItemRefresh:
		m.browse.loading = true
		return m, tea.Batch(m.spinner.Tick, m.readDirCmd(m.browse.dir))
	case filemanager.ItemView:
		m.browse.view = m.browse.view.Toggle()
		m.statusMsg = "View: " + string(m.browse.view)
		m.syncGrid()
		return m, nil
	case filemanager.ItemShowDetails:
		if !ok {
			fd = m.browse.cwd
		}
		m.browse.loading = true
		return m, tea.Batch(m.spinner.Tick, m.detailsCmd(fd))
	}
	return m, nil
}

func (m Model) startInput(mode browseMode, placeholder string) Model {
	m.browse.mode = mode
	m.browse.input.Reset()
	m.browse.input.Placeholder = placeholder
	m.browse.input.Focus()
	return m
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.browse.mode = browseList
		m.browse.input.Blur()
		return m, nil
	case "enter":
		val := strings.TrimSpace(m.browse.input.Value())
		mode := m.browse.mode
		m.browse.mode = browseList
		m.browse.input.Blur()
		if val == "" {
			return m, nil
		}
		m.browse.loading = true
		if mode == browseNewFolder {
			return m, tea.Batch(m.spinner.Tick, m.createFolderCmd(val))
		}
		return m, tea.Batch(m.spinner.Tick, m.uploadToFolderCmd(val))
	}
	var cmd tea.Cmd
	m.browse.input, cmd = m.browse.input.Update(msg)
	return m, cmd
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.browse.mode = browseList
		m.browse.input.Blur()
		m.browse.query = ""
		m.applyFilter()
		return m.noteSelection(), nil
	case "enter":
		m.browse.mode = browseList
		m.browse.input.Blur()
		// nothing local matched: ask the service to search below this folder
		if m.browse.query != "" && len(m.browse.visibleIdx) == 0 && m.fm != nil {
			m.browse.loading = true
			m.statusMsg = "Searching " + m.dirLabel(m.browse.dir) + " for " + m.browse.query + "…"
			return m, tea.Batch(m.spinner.Tick, m.searchCmd(m.browse.dir, m.browse.query))
		}
		return m.noteSelection(), nil
	}
	var cmd tea.Cmd
	m.browse.input, cmd = m.browse.input.Update(msg)
	m.browse.query = m.browse.input.Value()
	m.applyFilter()
	return m, cmd
}

func (m Model) handleConfirmDeleteKey(key string) (Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.browse.mode = browseList
		fd, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.browse.loading = true
		return m, tea.Batch(m.spinner.Tick, m.deleteCmd(fd))
	case "n", "N", "esc":
		m.browse.mode = browseList
	}
	return m, nil
}

func (m Model) handleMenuKey(key string) (Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.browse.menuIndex > 0 {
			m.browse.menuIndex--
		}
	case "down", "j":
		if m.browse.menuIndex < len(m.browse.menu)-1 {
			m.browse.menuIndex++
		}
	case "esc", "m":
		m.browse.mode = browseList
	case "enter":
		m.browse.mode = browseList
		if m.browse.menuIndex < len(m.browse.menu) {
			return m.runItem(m.browse.menu[m.browse.menuIndex])
		}
	}
	return m, nil
}

// applyFilter narrows the listing to the query and rebuilds the table rows.
func (m *Model) applyFilter() {
	files := m.browse.files
	idx := m.filter.entries(m.browse.query, files)
	m.browse.visibleIdx = idx

	rows := make([]table.Row, 0, len(idx))
	for _, i := range idx {
		rows = append(rows, fileRow(files[i]))
	}
	m.browse.table.SetRows(rows)
	if c := m.browse.table.Cursor(); c >= len(rows) || c < 0 {
		m.browse.table.SetCursor(0)
	}
	m.syncGrid()
}

func fileRow(fd filemanager.FileDetails) table.Row {
	size, kind, modified := "", "folder", ""
	if fd.IsFile {
		size = humanize.Bytes(uint64(max(fd.Size, 0)))
		kind = strings.TrimPrefix(fd.Type, ".")
	}
	if !fd.DateModified.IsZero() {
		modified = humanize.Time(fd.DateModified.Time)
	}
	return table.Row{entrySymbol(fd) + " " + fd.Name, size, kind, modified}
}

func entrySymbol(fd filemanager.FileDetails) string {
	switch {
	case !fd.IsFile:
		return symbolFolder
	case fd.IsPDF():
		return symbolPDF
	case fd.IsImage():
		return symbolImage
	default:
		return symbolFile
	}
}

func (m Model) selectedItem() (filemanager.FileDetails, bool) {
	row := m.browse.table.Cursor()
	if row < 0 || row >= len(m.browse.visibleIdx) {
		return filemanager.FileDetails{}, false
	}
	i := m.browse.visibleIdx[row]
	if i < 0 || i >= len(m.browse.files) {
		return filemanager.FileDetails{}, false
	}
	return m.browse.files[i], true
}

// noteSelection runs the selection hook when the selected entry changed.
func (m Model) noteSelection() Model {
	fd, ok := m.selectedItem()
	if !ok {
		m.browse.lastSelected = ""
		return m
	}
	id := m.browse.dir + fd.Name
	if id == m.browse.lastSelected {
		return m
	}
	m.browse.lastSelected = id
	m.firePDFHook(fd)
	return m
}

// firePDFHook invokes the configured hook, or the logging default that also
// writes the status line, and reports whether it fired.
func (m *Model) firePDFHook(fd filemanager.FileDetails) bool {
	hook := m.browse.hook
	if hook == nil {
		hook = filemanager.LogPDFSelection(func(s string) { m.statusMsg = s })
	}
	return filemanager.OnSelect(fd, hook)
}

func (m Model) dirLabel(dir string) string {
	dir = filemanager.NormalizeDir(dir)
	if dir == "/" {
		return m.cfg.RootAlias
	}
	return m.cfg.RootAlias + strings.TrimSuffix(dir, "/")
}

func (m *Model) resizeColumns() {
	nameW := max(20, m.width-navPaneWidth-44)
	m.browse.table.SetColumns([]table.Column{
		{Title: "Name", Width: nameW},
		{Title: "Size", Width: 10},
		{Title: "Type", Width: 8},
		{Title: "Modified", Width: 16},
	})
}

func renderItemDetails(d filemanager.ItemDetails) string {
	kind := "Folder"
	if d.IsFile {
		kind = "File"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Name:      %s\n", d.Name)
	fmt.Fprintf(&b, "Type:      %s\n", kind)
	if d.Size != "" {
		fmt.Fprintf(&b, "Size:      %s\n", d.Size)
	}
	fmt.Fprintf(&b, "Location:  %s\n", d.Location)
	if d.Created != "" {
		fmt.Fprintf(&b, "Created:   %s\n", d.Created)
	}
	if d.Modified != "" {
		fmt.Fprintf(&b, "Modified:  %s\n", d.Modified)
	}
	return b.String()
}
