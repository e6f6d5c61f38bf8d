package upload

import (
	"errors"
	"fmt"
)

// User-facing notifications. Each failure produces exactly one of these.
const (
	MsgInvalidFile  = "Please upload a valid PDF file."
	MsgUploadFailed = "Failed to upload the file. Please try again."
	MsgMissingSHA   = "The server accepted the file but did not return a document id."
	MsgBusy         = "An upload is already in progress."
)

// ErrUploadInProgress rejects a selection made while another upload runs.
var ErrUploadInProgress = errors.New("upload already in progress")

// ValidationError means no upload was attempted because the input was not a
// PDF (or there was no input at all).
type ValidationError struct {
	Name     string
	MIMEType string
}

func (e *ValidationError) Error() string {
	if e.Name == "" && e.MIMEType == "" {
		return "no file selected"
	}
	return fmt.Sprintf("%s: unsupported type %q, want %s", e.Name, e.MIMEType, PDFMimeType)
}

// UploadError covers transport failures, timeouts and non-2xx statuses.
// StatusCode is zero when no response was received.
type UploadError struct {
	StatusCode int
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("upload failed with status %d: %v", e.StatusCode, e.Err)
	}
	return "upload failed: " + e.Err.Error()
}

func (e *UploadError) Unwrap() error { return e.Err }

// ProtocolError is a 2xx response that does not carry a usable sha.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string { return "unexpected upload response: " + e.Err.Error() }

func (e *ProtocolError) Unwrap() error { return e.Err }

// Message maps a flow error to the notification shown to the user.
func Message(err error) string {
	var ve *ValidationError
	var pe *ProtocolError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return MsgInvalidFile
	case errors.Is(err, ErrUploadInProgress):
		return MsgBusy
	case errors.As(err, &pe):
		return MsgMissingSHA
	default:
		return MsgUploadFailed
	}
}
