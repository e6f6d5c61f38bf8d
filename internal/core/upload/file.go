package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const PDFMimeType = "application/pdf"

// SelectedFile is the user's choice from the picker. It is immutable; the
// content is re-opened for every upload attempt.
type SelectedFile struct {
	Name     string
	MIMEType string
	Size     int64

	open func() (io.ReadCloser, error)
}

// NewSelectedFile builds a SelectedFile from an arbitrary content source.
func NewSelectedFile(name, mimeType string, size int64, open func() (io.ReadCloser, error)) SelectedFile {
	return SelectedFile{Name: name, MIMEType: mimeType, Size: size, open: open}
}

// FromBytes wraps in-memory content.
func FromBytes(name, mimeType string, content []byte) SelectedFile {
	return NewSelectedFile(name, mimeType, int64(len(content)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(content)), nil
	})
}

// FromPath stats a local file and declares its MIME type from the content.
// The extension is only consulted when the content cannot be read, so a
// renamed text file is not declared a PDF.
func FromPath(path string) (SelectedFile, error) {
	st, err := os.Stat(path)
	if err != nil {
		return SelectedFile{}, err
	}
	if st.IsDir() {
		return SelectedFile{}, fmt.Errorf("%s is a directory", path)
	}
	return NewSelectedFile(filepath.Base(path), declaredType(path), st.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

func declaredType(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err == nil && mt != nil {
		return baseType(mt.String())
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return baseType(t)
	}
	return "application/octet-stream"
}

// baseType strips parameters such as "; charset=utf-8".
func baseType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.ToLower(strings.TrimSpace(t))
}

// Open returns a fresh reader over the content.
func (f SelectedFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("%s: no content", f.Name)
	}
	return f.open()
}

// IsPDF reports whether the declared MIME type is exactly application/pdf.
func (f SelectedFile) IsPDF() bool { return f.MIMEType == PDFMimeType }
