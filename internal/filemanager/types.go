package filemanager

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FileDetails is one entry as reported by the file-manager service.
type FileDetails struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	DateModified Timestamp `json:"dateModified"`
	DateCreated  Timestamp `json:"dateCreated"`
	HasChild     bool      `json:"hasChild"`
	IsFile       bool      `json:"isFile"`
	Type         string    `json:"type"`
	FilterPath   string    `json:"filterPath"`
}

// IsPDF reports whether the entry is a file with the .pdf type.
func (fd FileDetails) IsPDF() bool { return fd.IsFile && fd.Type == ".pdf" }

var imageTypes = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".svg": true, ".webp": true,
}

// IsImage reports whether the service can render a thumbnail for the entry.
func (fd FileDetails) IsImage() bool { return fd.IsFile && imageTypes[strings.ToLower(fd.Type)] }

// Timestamp accepts RFC 3339 strings, empty strings and null.
type Timestamp struct{ time.Time }

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.9999999", "2006-01-02T15:04:05"} {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("filemanager: bad timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// Listing is the result of a read or search.
type Listing struct {
	CWD   FileDetails
	Files []FileDetails
}

// ItemDetails is the summary returned by the details action.
type ItemDetails struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	IsFile        bool   `json:"isFile"`
	Size          string `json:"size"`
	Created       string `json:"created"`
	Modified      string `json:"modified"`
	MultipleFiles bool   `json:"multipleFiles"`
}

// ServiceError is an error object embedded in an otherwise successful
// file-manager response.
type ServiceError struct {
	Action  string
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("filemanager %s: %s (%s)", e.Action, e.Message, e.Code)
	}
	return fmt.Sprintf("filemanager %s: %s", e.Action, e.Message)
}

type wireError struct {
	Code    json.RawMessage `json:"code"`
	Message string          `json:"message"`
}

func (w *wireError) toError(action string) error {
	if w == nil {
		return nil
	}
	return &ServiceError{Action: action, Code: strings.Trim(string(w.Code), `"`), Message: w.Message}
}

type operation struct {
	Action          string        `json:"action"`
	Path            string        `json:"path"`
	ShowHiddenItems bool          `json:"showHiddenItems"`
	Data            []FileDetails `json:"data"`
	Names           []string      `json:"names,omitempty"`
	Name            string        `json:"name,omitempty"`
	SearchString    string        `json:"searchString,omitempty"`
	CaseSensitive   bool          `json:"caseSensitive,omitempty"`
}

type operationResponse struct {
	CWD     *FileDetails  `json:"cwd"`
	Files   []FileDetails `json:"files"`
	Details *ItemDetails  `json:"details"`
	Error   *wireError    `json:"error"`
}
