package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	UploadPath      = "/api/upload_pdf"
	UploadFieldName = "file"
	PDFContentType  = "application/pdf"
)

// UploadResponse is the decoded body of a successful upload. SHA is empty
// when the server did not return one; callers decide how to treat that.
type UploadResponse struct {
	SHA       string `json:"sha"`
	Filename  string `json:"filename,omitempty"`
	Status    string `json:"status,omitempty"`
	RequestID string `json:"-"`
}

// UploadPDF posts body as the single multipart field "file" and decodes the
// JSON object in the response. It is sent exactly once.
func (c *Client) UploadPDF(ctx context.Context, name string, body io.Reader) (UploadResponse, error) {
	requestID := uuid.NewString()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	counter := &countingReader{r: body}
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeFilePart(mw, name, counter))
	}()
	// Closing pr unblocks the writer if the transport stops reading early;
	// body is not touched after UploadPDF returns.
	defer func() {
		pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+UploadPath, pr)
	if err != nil {
		return UploadResponse{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	res, err := c.http.Do(req)
	if err != nil {
		c.observeUpload(counter.n.Load(), false)
		return UploadResponse{RequestID: requestID}, fmt.Errorf("upload %s: %w", name, err)
	}
	defer res.Body.Close()

	if !ok2xx(res.StatusCode) {
		c.observeUpload(counter.n.Load(), false)
		return UploadResponse{RequestID: requestID}, newStatusError("upload_pdf", res)
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		c.observeUpload(counter.n.Load(), false)
		return UploadResponse{RequestID: requestID}, fmt.Errorf("upload %s: read body: %w", name, err)
	}
	c.observeUpload(counter.n.Load(), true)

	out, err := decodeUploadResponse(raw)
	out.RequestID = requestID
	return out, err
}

func writeFilePart(mw *multipart.Writer, name string, r io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, UploadFieldName, escapeQuotes(name)))
	h.Set("Content-Type", PDFContentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }

// decodeUploadResponse accepts only a JSON object. A non-string sha is a
// malformed body, an absent one yields an empty SHA.
func decodeUploadResponse(raw []byte) (UploadResponse, error) {
	raw = bytes.TrimSpace(raw)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return UploadResponse{}, fmt.Errorf("upload_pdf: %w: expected JSON object", ErrMalformedBody)
	}
	var out UploadResponse
	if v, ok := fields["sha"]; ok && string(v) != "null" {
		if err := json.Unmarshal(v, &out.SHA); err != nil {
			return UploadResponse{}, fmt.Errorf("upload_pdf: %w: sha is not a string", ErrMalformedBody)
		}
	}
	if v, ok := fields["filename"]; ok {
		_ = json.Unmarshal(v, &out.Filename)
	}
	if v, ok := fields["status"]; ok {
		_ = json.Unmarshal(v, &out.Status)
	}
	return out, nil
}

func (c *Client) observeUpload(n int64, ok bool) {
	if c.metrics != nil {
		c.metrics.ObserveUpload(n, ok)
	}
}

type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n.Add(int64(n))
	return n, err
}
