// Package upload implements the PDF upload-and-redirect flow independent of
// any UI toolkit. The host injects where to go on success (Navigator) and how
// to tell the user about failures (Notifier).
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"pdfdesk/internal/api"
	"pdfdesk/internal/infra/logx"
)

// Uploader sends one PDF to the backend. *api.Client implements it.
type Uploader interface {
	UploadPDF(ctx context.Context, name string, body io.Reader) (api.UploadResponse, error)
}

// Navigator changes the currently displayed view.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Notifier shows a blocking notification to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Outcome is the terminal result of one selection: UploadSuccess or UploadFailure.
type Outcome interface {
	outcome()
}

type UploadSuccess struct {
	SHA       string
	Route     string
	RequestID string
}

type UploadFailure struct {
	Err     error
	Message string
}

func (UploadSuccess) outcome() {}
func (UploadFailure) outcome() {}

// Flow validates a selection, uploads it and routes the user. At most one
// upload is in flight per Flow.
type Flow struct {
	up      Uploader
	nav     Navigator
	notify  Notifier
	timeout time.Duration
	started func(SelectedFile)

	busy atomic.Bool
}

type Option func(*Flow)

// WithTimeout bounds each upload attempt. Zero leaves only the caller's deadline.
func WithTimeout(d time.Duration) Option { return func(f *Flow) { f.timeout = d } }

// WithStartHook calls fn with the file that won the in-flight gate, before
// it is sent. Rejected selections never reach fn.
func WithStartHook(fn func(SelectedFile)) Option { return func(f *Flow) { f.started = fn } }

func NewFlow(up Uploader, nav Navigator, notify Notifier, opts ...Option) *Flow {
	f := &Flow{up: up, nav: nav, notify: notify}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Busy reports whether an upload is currently in flight.
func (f *Flow) Busy() bool { return f.busy.Load() }

// HandleSelection runs one selection to completion. Exactly one of
// Navigate or Notify is called before it returns.
func (f *Flow) HandleSelection(ctx context.Context, file *SelectedFile) (Outcome, error) {
	if file == nil {
		return f.fail(&ValidationError{})
	}
	if !file.IsPDF() {
		return f.fail(&ValidationError{Name: file.Name, MIMEType: file.MIMEType})
	}
	if !f.busy.CompareAndSwap(false, true) {
		return f.fail(ErrUploadInProgress)
	}
	defer f.busy.Store(false)
	if f.started != nil {
		f.started(*file)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	started := time.Now()
	res, err := f.send(ctx, *file)
	if err != nil {
		return f.fail(err)
	}

	route := api.PDFRoute(res.SHA)
	logx.Log(logx.LevelInfo, "pdf uploaded", logx.Fields{
		"file":       file.Name,
		"sha":        res.SHA,
		"request_id": res.RequestID,
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
	f.nav.Navigate(route)
	return UploadSuccess{SHA: res.SHA, Route: route, RequestID: res.RequestID}, nil
}

func (f *Flow) send(ctx context.Context, file SelectedFile) (api.UploadResponse, error) {
	body, err := file.Open()
	if err != nil {
		return api.UploadResponse{}, &UploadError{Err: fmt.Errorf("open %s: %w", file.Name, err)}
	}
	defer body.Close()

	res, err := f.up.UploadPDF(ctx, file.Name, body)
	if err != nil {
		if errors.Is(err, api.ErrMalformedBody) {
			return res, &ProtocolError{Err: err}
		}
		var se *api.StatusError
		if errors.As(err, &se) {
			return res, &UploadError{StatusCode: se.Code, Err: err}
		}
		return res, &UploadError{Err: err}
	}
	if res.SHA == "" {
		return res, &ProtocolError{Err: errors.New("response has no sha")}
	}
	return res, nil
}

func (f *Flow) fail(err error) (Outcome, error) {
	msg := Message(err)
	lvl := logx.LevelError
	var ve *ValidationError
	if errors.As(err, &ve) || errors.Is(err, ErrUploadInProgress) {
		lvl = logx.LevelWarn
	}
	logx.Log(lvl, "pdf upload rejected", logx.Fields{"err": err})
	f.notify.Notify(msg)
	return UploadFailure{Err: err, Message: msg}, err
}
