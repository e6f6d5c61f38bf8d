package ui

import (
	"sort"
	"strings"

	"pdfdesk/internal/filemanager"
)

// sortEntries orders the slice so that folders come first, followed by PDFs
// and finally other files. Items of the same kind are sorted by name in a
// case-insensitive manner.
func sortEntries(files []filemanager.FileDetails) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		pa, pb := sortPriority(a), sortPriority(b)
		if pa != pb {
			return pa < pb
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

func sortPriority(fd filemanager.FileDetails) int {
	switch {
	case !fd.IsFile:
		return 0
	case fd.IsPDF():
		return 1
	default:
		return 2
	}
}
