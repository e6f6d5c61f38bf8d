package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// PDFRoute is the client-side route of an uploaded document.
func PDFRoute(sha string) string { return "/pdf:" + sha }

func (c *Client) docURL(sha, leaf string) string {
	return c.base + "/api/doc/" + url.PathEscape(sha) + "/" + leaf
}

// DocTitle fetches the document title. The backend answers JSON null when the
// title is unknown; that yields "" and no error.
func (c *Client) DocTitle(ctx context.Context, sha string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(sha, "title"), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if !ok2xx(res.StatusCode) {
		return "", newStatusError("doc.title", res)
	}
	var title *string
	if err := json.NewDecoder(res.Body).Decode(&title); err != nil {
		return "", fmt.Errorf("doc.title: %w: %v", ErrMalformedBody, err)
	}
	if title == nil {
		return "", nil
	}
	return *title, nil
}

// DownloadPDF streams the stored PDF for sha into w and returns the byte count.
func (c *Client) DownloadPDF(ctx context.Context, sha string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.docURL(sha, "pdf"), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", PDFContentType)
	res, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	if !ok2xx(res.StatusCode) {
		return 0, newStatusError("doc.pdf", res)
	}
	n, err := io.Copy(w, res.Body)
	if err != nil {
		return n, fmt.Errorf("doc.pdf: %w", err)
	}
	return n, nil
}
