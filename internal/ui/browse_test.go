package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pdfdesk/internal/filemanager"
)

func sampleListing() filemanager.Listing {
	return filemanager.Listing{
		CWD: filemanager.FileDetails{Name: "Files", FilterPath: ""},
		Files: []filemanager.FileDetails{
			{Name: "b.pdf", IsFile: true, Type: ".pdf", Size: 2048},
			{Name: "notes.txt", IsFile: true, Type: ".txt", Size: 10},
			{Name: "Docs", HasChild: true},
			{Name: "a.pdf", IsFile: true, Type: ".pdf", Size: 1024},
		},
	}
}

func browseModel(t *testing.T, opts Options) Model {
	t.Helper()
	m := InitialModel(opts)
	m, _ = update(t, m, navigateMsg{path: routeFiles})
	m, _ = update(t, m, listingMsg{dir: "/", listing: sampleListing()})
	return m
}

func selectedName(m Model) string {
	fd, ok := m.selectedItem()
	if !ok {
		return ""
	}
	return fd.Name
}

func TestListingSortsFoldersThenPDFs(t *testing.T) {
	m := browseModel(t, Options{})
	var names []string
	for _, i := range m.browse.visibleIdx {
		names = append(names, m.browse.files[i].Name)
	}
	want := []string{"Docs", "a.pdf", "b.pdf", "notes.txt"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", names, want)
	}
	if m.browse.loading {
		t.Fatalf("loading should be cleared")
	}
	if _, ok := m.browse.visited["/Docs/"]; !ok {
		t.Fatalf("child folder not registered for the navigation pane")
	}
}

func TestDefaultHookReportsPDFSelection(t *testing.T) {
	m := browseModel(t, Options{})
	// cursor starts on the folder; moving down selects a.pdf
	m, _ = update(t, m, keyType(tea.KeyDown))
	if selectedName(m) != "a.pdf" {
		t.Fatalf("selected %q", selectedName(m))
	}
	if m.statusMsg != "PDF selected: a.pdf" {
		t.Fatalf("status = %q", m.statusMsg)
	}
}

func TestCustomHookFiresOnlyForPDFs(t *testing.T) {
	var got []string
	m := browseModel(t, Options{OnPDFSelect: func(fd filemanager.FileDetails) {
		got = append(got, fd.Name)
	}})
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, keyType(tea.KeyDown))
	}
	// Docs, a.pdf, b.pdf, notes.txt
	if strings.Join(got, ",") != "a.pdf,b.pdf" {
		t.Fatalf("hook calls = %v", got)
	}
	// opening a PDF fires again
	m, _ = update(t, m, keyType(tea.KeyUp))
	m, _ = update(t, m, keyType(tea.KeyEnter))
	if got[len(got)-1] != "b.pdf" || len(got) != 4 {
		t.Fatalf("hook calls after open = %v", got)
	}
}

func TestOpenNonPDFHasNoPreview(t *testing.T) {
	m := browseModel(t, Options{OnPDFSelect: func(filemanager.FileDetails) {}})
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, keyType(tea.KeyDown))
	}
	m, _ = update(t, m, keyType(tea.KeyEnter))
	if m.statusMsg != "No preview for notes.txt" {
		t.Fatalf("status = %q", m.statusMsg)
	}
}

func TestOpenFolderLoadsIt(t *testing.T) {
	m := browseModel(t, Options{})
	m, cmd := update(t, m, keyType(tea.KeyEnter))
	if !m.browse.loading || cmd == nil {
		t.Fatalf("expected folder load")
	}
	m, _ = update(t, m, listingMsg{dir: "/Docs/", listing: filemanager.Listing{
		Files: []filemanager.FileDetails{{Name: "inner.pdf", IsFile: true, Type: ".pdf"}},
	}})
	if m.browse.dir != "/Docs/" || !m.browse.visited["/Docs/"] {
		t.Fatalf("dir = %q visited = %v", m.browse.dir, m.browse.visited)
	}
	if m.dirLabel(m.browse.dir) != "Files/Docs" {
		t.Fatalf("label = %q", m.dirLabel(m.browse.dir))
	}
}

func TestFilterNarrowsListing(t *testing.T) {
	m := browseModel(t, Options{})
	m, _ = update(t, m, keyRunes("/"))
	if m.browse.mode != browseFilter {
		t.Fatalf("expected filter mode")
	}
	// q is typed into the filter instead of quitting
	for _, r := range "pdq" {
		m, _ = update(t, m, keyRunes(string(r)))
	}
	if m.state == stateQuit {
		t.Fatalf("typing q must not quit")
	}
	if m.browse.query != "pdq" {
		t.Fatalf("query = %q", m.browse.query)
	}

	m, _ = update(t, m, keyType(tea.KeyBackspace))
	if m.browse.query != "pd" {
		t.Fatalf("query = %q", m.browse.query)
	}
	if len(m.browse.visibleIdx) != 2 {
		t.Fatalf("expected the two PDFs, got %d rows", len(m.browse.visibleIdx))
	}

	m, _ = update(t, m, keyType(tea.KeyEnter))
	if m.browse.mode != browseList || m.browse.query != "pd" {
		t.Fatalf("enter should keep the filter, mode %v query %q", m.browse.mode, m.browse.query)
	}

	m, _ = update(t, m, keyType(tea.KeyEsc))
	if m.browse.query != "" || len(m.browse.visibleIdx) != 4 {
		t.Fatalf("esc should clear the filter")
	}
}

func TestViewToggleRendersGrid(t *testing.T) {
	m := browseModel(t, Options{})
	m, _ = update(t, m, keyRunes("v"))
	if m.browse.view != filemanager.ViewLargeIcons {
		t.Fatalf("view = %v", m.browse.view)
	}
	if !strings.Contains(m.viewport.View(), "notes.txt") {
		t.Fatalf("grid does not list entries")
	}
	m, _ = update(t, m, keyRunes("v"))
	if m.browse.view != filemanager.ViewDetails {
		t.Fatalf("view = %v", m.browse.view)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m := browseModel(t, Options{})
	m, _ = update(t, m, keyRunes("x"))
	if m.browse.mode != browseConfirmDelete {
		t.Fatalf("expected confirmation")
	}
	if !strings.Contains(m.View(), "Delete Docs?") {
		t.Fatalf("confirmation prompt missing")
	}
	m, cmd := update(t, m, keyRunes("n"))
	if m.browse.mode != browseList || cmd != nil || m.browse.loading {
		t.Fatalf("n should cancel the delete")
	}

	m, _ = update(t, m, keyRunes("x"))
	m, cmd = update(t, m, keyRunes("y"))
	if cmd == nil || !m.browse.loading {
		t.Fatalf("y should start the delete")
	}
	m, _ = update(t, m, fmOpMsg{op: "delete", err: errNoFileManager})
	if len(m.alerts) != 1 || !strings.Contains(m.alerts[0], "delete failed") {
		t.Fatalf("alerts = %v", m.alerts)
	}
}

func TestContextMenuDependsOnEntry(t *testing.T) {
	m := browseModel(t, Options{})
	m, _ = update(t, m, keyRunes("m"))
	if m.browse.mode != browseMenu {
		t.Fatalf("expected menu")
	}
	if len(m.browse.menu) != 2 {
		t.Fatalf("folder menu = %v", m.browse.menu)
	}
	m, _ = update(t, m, keyType(tea.KeyEsc))

	m, _ = update(t, m, keyType(tea.KeyDown))
	m, _ = update(t, m, keyRunes("m"))
	if len(m.browse.menu) != 3 || m.browse.menu[1] != filemanager.ItemDownload {
		t.Fatalf("file menu = %v", m.browse.menu)
	}
	m, _ = update(t, m, keyType(tea.KeyDown))
	m, _ = update(t, m, keyType(tea.KeyDown))
	m, _ = update(t, m, keyType(tea.KeyEnter))
	if m.browse.mode != browseConfirmDelete {
		t.Fatalf("menu Delete should ask for confirmation, mode %v", m.browse.mode)
	}
}

func TestNewFolderInput(t *testing.T) {
	m := browseModel(t, Options{})
	m, _ = update(t, m, keyRunes("n"))
	if m.browse.mode != browseNewFolder {
		t.Fatalf("expected input mode")
	}
	m, _ = update(t, m, keyRunes("Reports"))
	m, cmd := update(t, m, keyType(tea.KeyEnter))
	if m.browse.mode != browseList || cmd == nil || !m.browse.loading {
		t.Fatalf("enter should submit the folder")
	}
}

func TestFileOpReloadsListing(t *testing.T) {
	m := browseModel(t, Options{})
	m, cmd := update(t, m, fmOpMsg{op: "create", note: "Created folder X"})
	if m.statusMsg != "Created folder X" || !m.browse.loading || cmd == nil {
		t.Fatalf("expected reload after success")
	}
}

func TestListingErrorAlerts(t *testing.T) {
	m := InitialModel(Options{})
	m, _ = update(t, m, navigateMsg{path: routeFiles})
	m, _ = update(t, m, listingMsg{dir: "/", err: errNoFileManager})
	if len(m.alerts) != 1 || !strings.Contains(m.alerts[0], "Could not load Files") {
		t.Fatalf("alerts = %v", m.alerts)
	}
	if m.browse.loading {
		t.Fatalf("loading should be cleared")
	}
}

func TestSearchResultsStatus(t *testing.T) {
	m := browseModel(t, Options{})
	m, _ = update(t, m, listingMsg{dir: "/", search: "inv", listing: filemanager.Listing{
		Files: []filemanager.FileDetails{{Name: "invoice.pdf", IsFile: true, Type: ".pdf", FilterPath: "/Docs/"}},
	}})
	// the single match is a PDF, so the selection report replaces the count
	if m.statusMsg != "PDF selected: invoice.pdf" {
		t.Fatalf("status = %q", m.statusMsg)
	}
	if len(m.browse.visibleIdx) != 1 {
		t.Fatalf("rows = %d", len(m.browse.visibleIdx))
	}
}

func TestDetailsPanel(t *testing.T) {
	m := browseModel(t, Options{})
	m, _ = update(t, m, detailsMsg{details: filemanager.ItemDetails{Name: "Docs", Location: "/Docs", Modified: "today"}})
	if m.browse.mode != browseDetails {
		t.Fatalf("expected details mode")
	}
	if !strings.Contains(m.View(), "Location:  /Docs") {
		t.Fatalf("details not rendered")
	}
	m, _ = update(t, m, keyType(tea.KeyEsc))
	if m.browse.mode != browseList {
		t.Fatalf("esc should close details")
	}
}

func TestParentAtRootIsNoop(t *testing.T) {
	m := browseModel(t, Options{})
	m, cmd := update(t, m, keyType(tea.KeyBackspace))
	if cmd != nil || m.browse.loading {
		t.Fatalf("root has no parent")
	}
}

func TestDetailsKeyRequestsSelectedItem(t *testing.T) {
	m := browseModel(t, Options{})
	m, cmd := update(t, m, keyRunes("i"))
	if !m.browse.loading || cmd == nil {
		t.Fatalf("details key should start a request")
	}
	fd, _ := m.selectedItem()
	msg := m.detailsCmd(fd)()
	if d, ok := msg.(detailsMsg); !ok || d.err == nil {
		t.Fatalf("expected missing file manager error, got %#v", msg)
	}
	m, _ = update(t, m, msg)
	if m.browse.loading || len(m.alerts) != 1 {
		t.Fatalf("failed details must alert, got %v", m.alerts)
	}
}
