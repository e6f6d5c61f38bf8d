package ui

import (
	"sort"
	"strings"

	tree "github.com/charmbracelet/lipgloss/tree"

	"pdfdesk/internal/filemanager"
)

// folderTreeLines renders the known folders below a root labelled rootLabel.
// labelFn decides how each folder (given its "/a/b/" path) is shown.
func folderTreeLines(rootLabel string, folders []string, labelFn func(dir string) string) []string {
	tr := tree.Root(rootLabel)
	sorted := append([]string(nil), folders...)
	sort.Strings(sorted)

	nodes := make(map[string]*tree.Tree, len(sorted))
	nodes["/"] = tr

	// parents sort before their children, so a single pass is enough
	for _, dir := range sorted {
		if dir == "/" {
			continue
		}
		node := tree.Root(labelFn(dir))
		nodes[dir] = node
		if parent, ok := nodes[filemanager.ParentDir(dir)]; ok {
			parent.Child(node)
			continue
		}
		tr.Child(node)
	}

	lines := strings.Split(tr.String(), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// folderName is the last element of a "/a/b/" path.
func folderName(dir string) string {
	d := strings.TrimSuffix(dir, "/")
	if i := strings.LastIndexByte(d, '/'); i >= 0 {
		return d[i+1:]
	}
	return d
}
