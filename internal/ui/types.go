package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"pdfdesk/internal/api"
	"pdfdesk/internal/config"
	"pdfdesk/internal/core/upload"
	"pdfdesk/internal/filemanager"
)

// --- Model / State ---
type state int

const (
	stateLanding state = iota
	stateFiles
	stateResult
	stateNotFound
	stateQuit
)

// browseMode is the sub-state of the file browser screen.
type browseMode int

const (
	browseList browseMode = iota
	browseFilter
	browseNewFolder
	browseUploadPath
	browseConfirmDelete
	browseMenu
	browseDetails
)

type UploadState struct {
	picker    filepicker.Model
	flow      *upload.Flow
	uploading bool
	current   string // name of the file being uploaded
}

type ResultState struct {
	sha      string
	title    string
	loading  bool
	err      error
	saving   bool
	savedTo  string
	titleSet bool
}

type BrowseState struct {
	dir     string // service path of the listed folder, "/" rooted
	cwd     filemanager.FileDetails
	files   []filemanager.FileDetails
	loading bool
	err     error

	// visibleIdx maps table rows to indices in files
	visibleIdx []int
	table      table.Model
	view       filemanager.ViewMode

	mode      browseMode
	input     textinput.Model
	query     string
	menu      []filemanager.Item
	menuIndex int
	details   viewport.Model

	visited      map[string]bool // folders seen so far, for the navigation pane
	lastSelected string
	keys         KeyMap
	help         help.Model
	hook         filemanager.SelectHook
}

type healthState struct {
	checked bool
	err     error
}

type Model struct {
	state         state
	route         string
	cfg           config.Config
	hasRC         bool
	statusMsg     string
	width, height int

	ctx    context.Context
	cancel context.CancelFunc

	api    *api.Client
	fm     *filemanager.Client
	events *eventSink

	// alerts is a queue of modal messages; the first one is shown
	alerts []string
	health healthState

	// spinner for loading states
	spinner spinner.Model
	// viewport scrolls the large-icons grid
	viewport viewport.Model

	upload    UploadState
	result    ResultState
	browse    BrowseState
	filter    listFilter
}
