package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pdfdesk/internal/api"
	"pdfdesk/internal/core/upload"
	"pdfdesk/internal/filemanager"
	"pdfdesk/internal/infra/logx"
)

// ---------- Messages / Cmds ----------
type navigateMsg struct{ path string }

type alertMsg struct{ text string }

type healthMsg struct{ err error }

type uploadStartedMsg struct{ name string }

type uploadDoneMsg struct {
	outcome upload.Outcome
	err     error
}

type titleMsg struct {
	sha   string
	title string
	err   error
}

type savedMsg struct {
	what string
	path string
	n    int64
	err  error
}

type listingMsg struct {
	dir     string
	search  string // set for search results
	listing filemanager.Listing
	err     error
}

// fmOpMsg reports a mutating file-manager operation; the listing is
// reloaded afterwards.
type fmOpMsg struct {
	op   string
	note string
	err  error
}

type detailsMsg struct {
	details filemanager.ItemDetails
	err     error
}

const requestTimeout = 30 * time.Second

var (
	errNoBackend     = errors.New("no backend configured")
	errNoFileManager = errors.New("no file manager configured")
)

func (m Model) pingCmd() tea.Cmd {
	if m.api == nil {
		return nil
	}
	c, parent := m.api, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, 5*time.Second)
		defer cancel()
		return healthMsg{err: c.Ping(ctx)}
	}
}

// uploadCmd runs one selection through the flow. The flow reports
// navigation and alerts through the event sink; this message only ends the
// spinner.
func (m Model) uploadCmd(file *upload.SelectedFile) tea.Cmd {
	flow, ctx := m.upload.flow, m.ctx
	if flow == nil {
		return func() tea.Msg { return alertMsg{text: "No backend configured."} }
	}
	return func() tea.Msg {
		out, err := flow.HandleSelection(ctx, file)
		return uploadDoneMsg{outcome: out, err: err}
	}
}

func (m Model) fetchTitleCmd(sha string) tea.Cmd {
	c, parent := m.api, m.ctx
	return func() tea.Msg {
		if c == nil {
			return titleMsg{sha: sha, err: errNoBackend}
		}
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		rc := &api.RetryCounters{}
		title, err := c.DocTitle(api.WithRetryCounters(ctx, rc), sha)
		if rc.Total > 0 {
			logx.Log(logx.LevelInfo, "title fetch retried", logx.Fields{
				"sha": sha, "retries": rc.Total, "429": rc.Status429, "5xx": rc.Status5xx, "net": rc.Net,
			})
		}
		return titleMsg{sha: sha, title: title, err: err}
	}
}

func (m Model) savePDFCmd(sha string) tea.Cmd {
	c, parent, dir := m.api, m.ctx, m.cfg.DownloadDir
	return func() tea.Msg {
		if c == nil {
			return savedMsg{what: sha, err: errNoBackend}
		}
		ctx, cancel := context.WithTimeout(parent, 5*time.Minute)
		defer cancel()
		path, n, err := saveFile(dir, sha+".pdf", func(w io.Writer) (string, int64, error) {
			n, err := c.DownloadPDF(ctx, sha, w)
			return "", n, err
		})
		return savedMsg{what: sha, path: path, n: n, err: err}
	}
}

func (m Model) readDirCmd(dir string) tea.Cmd {
	fm, parent := m.fm, m.ctx
	return func() tea.Msg {
		if fm == nil {
			return listingMsg{dir: dir, err: errNoFileManager}
		}
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		l, err := fm.Read(ctx, dir)
		return listingMsg{dir: dir, listing: l, err: err}
	}
}

func (m Model) searchCmd(dir, term string) tea.Cmd {
	fm, parent, cwd := m.fm, m.ctx, m.browse.cwd
	return func() tea.Msg {
		if fm == nil {
			return listingMsg{dir: dir, err: errNoFileManager}
		}
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		l, err := fm.Search(ctx, dir, term, cwd)
		return listingMsg{dir: dir, search: term, listing: l, err: err}
	}
}

func (m Model) createFolderCmd(name string) tea.Cmd {
	fm, parent, dir, cwd := m.fm, m.ctx, m.browse.dir, m.browse.cwd
	return func() tea.Msg {
		if fm == nil {
			return fmOpMsg{op: "create", err: errNoFileManager}
		}
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		_, err := fm.Create(ctx, dir, name, cwd)
		return fmOpMsg{op: "create", note: "Created folder " + strings.TrimSpace(name), err: err}
	}
}

func (m Model) deleteCmd(fd filemanager.FileDetails) tea.Cmd {
	fm, parent, dir := m.fm, m.ctx, m.browse.dir
	return func() tea.Msg {
		if fm == nil {
			return fmOpMsg{op: "delete", err: errNoFileManager}
		}
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		err := fm.Delete(ctx, dir, fd)
		return fmOpMsg{op: "delete", note: "Deleted " + fd.Name, err: err}
	}
}

func (m Model) uploadToFolderCmd(local string) tea.Cmd {
	fm, parent, dir, cwd := m.fm, m.ctx, m.browse.dir, m.browse.cwd
	return func() tea.Msg {
		if fm == nil {
			return fmOpMsg{op: "upload", err: errNoFileManager}
		}
		f, err := os.Open(local)
		if err != nil {
			return fmOpMsg{op: "upload", err: err}
		}
		defer f.Close()
		ctx, cancel := context.WithTimeout(parent, 5*time.Minute)
		defer cancel()
		name := filepath.Base(local)
		err = fm.Upload(ctx, dir, name, f, cwd)
		return fmOpMsg{op: "upload", note: "Uploaded " + name, err: err}
	}
}

func (m Model) downloadCmd(fd filemanager.FileDetails) tea.Cmd {
	fm, parent, dir, out := m.fm, m.ctx, m.browse.dir, m.cfg.DownloadDir
	return func() tea.Msg {
		if fm == nil {
			return savedMsg{what: fd.Name, err: errNoFileManager}
		}
		ctx, cancel := context.WithTimeout(parent, 5*time.Minute)
		defer cancel()
		path, n, err := saveFile(out, fd.Name, func(w io.Writer) (string, int64, error) {
			return fm.Download(ctx, dir, w, fd)
		})
		return savedMsg{what: fd.Name, path: path, n: n, err: err}
	}
}

func (m Model) detailsCmd(fd filemanager.FileDetails) tea.Cmd {
	fm, parent, dir := m.fm, m.ctx, m.browse.dir
	return func() tea.Msg {
		if fm == nil {
			return detailsMsg{err: errNoFileManager}
		}
		ctx, cancel := context.WithTimeout(parent, requestTimeout)
		defer cancel()
		d, err := fm.Details(ctx, dir, fd)
		return detailsMsg{details: d, err: err}
	}
}

// saveFile writes through a temp file in dir and renames it once fill
// succeeds. fill may return a better file name than fallback.
func saveFile(dir, fallback string, fill func(io.Writer) (string, int64, error)) (string, int64, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}
	tmp, err := os.CreateTemp(dir, ".pdfdesk-*")
	if err != nil {
		return "", 0, err
	}
	name, n, err := fill(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", n, err
	}
	if name == "" {
		name = fallback
	}
	dst := filepath.Join(dir, filepath.Base(name))
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", n, fmt.Errorf("save %s: %w", dst, err)
	}
	logx.Log(logx.LevelInfo, "file saved", logx.Fields{"path": dst, "bytes": n})
	return dst, n, nil
}
