package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"pdfdesk/internal/filemanager"
)

// KeyMap defines keybindings for the file browser
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	Parent    key.Binding
	NewFolder key.Binding
	Upload    key.Binding
	Delete    key.Binding
	Download  key.Binding
	Refresh   key.Binding
	View      key.Binding
	Details   key.Binding
	Menu      key.Binding
	Filter    key.Binding
	Home      key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "l", "right"),
			key.WithHelp("enter", "open"),
		),
		Parent: key.NewBinding(
			key.WithKeys("backspace", "h", "left"),
			key.WithHelp("⌫/h", "parent folder"),
		),
		NewFolder: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new folder"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Download: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "download"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/f5", "refresh"),
		),
		View: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "toggle view"),
		),
		Details: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "details"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "context menu"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/", "f"),
			key.WithHelp("/", "filter"),
		),
		Home: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "upload screen"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// itemKeys binds toolbar items to their keys.
func (k KeyMap) itemKeys() map[filemanager.Item]key.Binding {
	return map[filemanager.Item]key.Binding{
		filemanager.ItemNewFolder:   k.NewFolder,
		filemanager.ItemUpload:      k.Upload,
		filemanager.ItemDelete:      k.Delete,
		filemanager.ItemDownload:    k.Download,
		filemanager.ItemRefresh:     k.Refresh,
		filemanager.ItemView:        k.View,
		filemanager.ItemShowDetails: k.Details,
		filemanager.ItemOpen:        k.Open,
	}
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Parent, k.Menu, k.Filter, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Open, k.Parent},
		{k.NewFolder, k.Upload, k.Delete, k.Download},
		{k.Refresh, k.View, k.Details, k.Menu},
		{k.Filter, k.Home, k.Help, k.Quit},
	}
}
