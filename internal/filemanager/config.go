package filemanager

import (
	"strings"
)

// ViewMode selects how a listing is laid out.
type ViewMode string

const (
	ViewDetails    ViewMode = "Details"
	ViewLargeIcons ViewMode = "LargeIcons"
)

// Toggle flips between the two view modes.
func (v ViewMode) Toggle() ViewMode {
	if v == ViewDetails {
		return ViewLargeIcons
	}
	return ViewDetails
}

// Item names a toolbar or context-menu command.
type Item string

const (
	ItemNewFolder   Item = "NewFolder"
	ItemUpload      Item = "Upload"
	ItemDelete      Item = "Delete"
	ItemDownload    Item = "Download"
	ItemRefresh     Item = "Refresh"
	ItemView        Item = "View"
	ItemShowDetails Item = "Details"
	ItemOpen        Item = "Open"
)

const (
	operationsPath = "api/FileManager/FileOperations"
	imagePath      = "api/FileManager/GetImage"
	uploadPath     = "api/FileManager/Upload"
	downloadPath   = "api/FileManager/Download"
)

// Config describes one file-manager service and how its view is presented.
// Use NewConfig; the accessors return copies so a built Config cannot be
// changed by callers.
type Config struct {
	host          string
	view          ViewMode
	multiSelect   bool
	toolbar       []Item
	fileMenu      []Item
	folderMenu    []Item
	operationsURL string
	imageURL      string
	uploadURL     string
	downloadURL   string
}

// NewConfig derives the four endpoint URLs from host and applies the
// default presentation: details view, single selection, the full toolbar.
func NewConfig(host string) Config {
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	return Config{
		host:          host,
		view:          ViewDetails,
		multiSelect:   false,
		toolbar:       []Item{ItemNewFolder, ItemUpload, ItemDelete, ItemDownload, ItemRefresh, ItemView, ItemShowDetails},
		fileMenu:      []Item{ItemOpen, ItemDownload, ItemDelete},
		folderMenu:    []Item{ItemOpen, ItemDelete},
		operationsURL: host + operationsPath,
		imageURL:      host + imagePath,
		uploadURL:     host + uploadPath,
		downloadURL:   host + downloadPath,
	}
}

func (c Config) Host() string { return c.host }
func (c Config) OperationsURL() string { return c.operationsURL }
func (c Config) ImageURL() string { return c.imageURL }
func (c Config) UploadURL() string { return c.uploadURL }
func (c Config) DownloadURL() string { return c.downloadURL }
func (c Config) View() ViewMode { return c.view }
func (c Config) AllowMultiSelection() bool { return c.multiSelect }
func (c Config) Toolbar() []Item { return append([]Item(nil), c.toolbar...) }
func (c Config) FileContextMenu() []Item { return append([]Item(nil), c.fileMenu...) }
func (c Config) FolderContextMenu() []Item { return append([]Item(nil), c.folderMenu...) }

// ContextMenu returns the items offered for fd.
func (c Config) ContextMenu(fd FileDetails) []Item {
	if fd.IsFile {
		return c.FileContextMenu()
	}
	return c.FolderContextMenu()
}

// Has reports whether the toolbar offers it.
func (c Config) Has(it Item) bool {
	for _, t := range c.toolbar {
		if t == it {
			return true
		}
	}
	return false
}
