package filemanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnSelectFiresOnlyForPDFFiles(t *testing.T) {
	tests := []struct {
		name string
		fd   FileDetails
		want bool
	}{
		{"pdf file", FileDetails{Name: "a.pdf", IsFile: true, Type: ".pdf"}, true},
		{"upper-case type", FileDetails{Name: "a.PDF", IsFile: true, Type: ".PDF"}, false},
		{"folder named like pdf", FileDetails{Name: "x.pdf", IsFile: false, Type: ".pdf"}, false},
		{"text file", FileDetails{Name: "a.txt", IsFile: true, Type: ".txt"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			fired := OnSelect(tt.fd, func(fd FileDetails) { got = append(got, fd.Name) })
			assert.Equal(t, tt.want, fired)
			if tt.want {
				assert.Equal(t, []string{tt.fd.Name}, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
	assert.False(t, OnSelect(FileDetails{IsFile: true, Type: ".pdf"}, nil))
}

func TestLogPDFSelectionReportsStatus(t *testing.T) {
	var status string
	LogPDFSelection(func(s string) { status = s })(FileDetails{Name: "report.pdf"})
	assert.Equal(t, "PDF selected: report.pdf", status)

	assert.NotPanics(t, func() { LogPDFSelection(nil)(FileDetails{Name: "x.pdf"}) })
}
