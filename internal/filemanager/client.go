package filemanager

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"

	"pdfdesk/internal/infra/logx"
)

// Client performs file-manager operations against the endpoints in Config.
type Client struct {
	http *http.Client
	cfg  Config
}

func New(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{http: hc, cfg: cfg}
}

func (c *Client) Config() Config { return c.cfg }

// Read lists path. The service expects paths rooted at "/" and ending in "/".
func (c *Client) Read(ctx context.Context, dir string) (Listing, error) {
	res, err := c.do(ctx, operation{Action: "read", Path: NormalizeDir(dir), Data: []FileDetails{}})
	if err != nil {
		return Listing{}, err
	}
	return toListing(res), nil
}

// Create makes a folder called name inside dir.
func (c *Client) Create(ctx context.Context, dir, name string, cwd FileDetails) (Listing, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Listing{}, fmt.Errorf("filemanager create: invalid folder name %q", name)
	}
	res, err := c.do(ctx, operation{Action: "create", Path: NormalizeDir(dir), Name: name, Data: []FileDetails{cwd}})
	if err != nil {
		return Listing{}, err
	}
	return toListing(res), nil
}

// Delete removes the entries in dir.
func (c *Client) Delete(ctx context.Context, dir string, items ...FileDetails) error {
	if len(items) == 0 {
		return fmt.Errorf("filemanager delete: nothing selected")
	}
	_, err := c.do(ctx, operation{Action: "delete", Path: NormalizeDir(dir), Names: names(items), Data: items})
	return err
}

// Search finds entries under dir whose names match term.
func (c *Client) Search(ctx context.Context, dir, term string, cwd FileDetails) (Listing, error) {
	res, err := c.do(ctx, operation{
		Action:       "search",
		Path:         NormalizeDir(dir),
		SearchString: "*" + term + "*",
		Data:         []FileDetails{cwd},
	})
	if err != nil {
		return Listing{}, err
	}
	return toListing(res), nil
}

// Details asks the service for a summary of the selected entries.
func (c *Client) Details(ctx context.Context, dir string, items ...FileDetails) (ItemDetails, error) {
	res, err := c.do(ctx, operation{Action: "details", Path: NormalizeDir(dir), Names: names(items), Data: items})
	if err != nil {
		return ItemDetails{}, err
	}
	if res.Details == nil {
		return ItemDetails{}, fmt.Errorf("filemanager details: response has no details")
	}
	return *res.Details, nil
}

func (c *Client) do(ctx context.Context, op operation) (operationResponse, error) {
	body, err := json.Marshal(op)
	if err != nil {
		return operationResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OperationsURL(), bytes.NewReader(body))
	if err != nil {
		return operationResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logx.Debugf("filemanager %s %s", op.Action, op.Path)
	res, err := c.http.Do(req)
	if err != nil {
		return operationResponse{}, fmt.Errorf("filemanager %s: %w", op.Action, err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return operationResponse{}, statusError(op.Action, res)
	}
	var out operationResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return operationResponse{}, fmt.Errorf("filemanager %s: decode: %w", op.Action, err)
	}
	if err := out.Error.toError(op.Action); err != nil {
		return operationResponse{}, err
	}
	return out, nil
}

// Upload stores one file named name in dir.
func (c *Client) Upload(ctx context.Context, dir, name string, r io.Reader, cwd FileDetails) error {
	data, err := json.Marshal(cwd)
	if err != nil {
		return err
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := func() error {
			for _, f := range [][2]string{{"path", NormalizeDir(dir)}, {"action", "save"}, {"data", string(data)}} {
				if err := mw.WriteField(f[0], f[1]); err != nil {
					return err
				}
			}
			part, err := mw.CreateFormFile("uploadFiles", name)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, r); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()
	// r is not read after Upload returns
	defer func() {
		pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UploadURL(), pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("filemanager upload: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return statusError("upload", res)
	}
	return nil
}

// Download streams the selected entries into w and returns the file name
// suggested by the service. Folders and multiple entries arrive as a zip.
func (c *Client) Download(ctx context.Context, dir string, w io.Writer, items ...FileDetails) (string, int64, error) {
	if len(items) == 0 {
		return "", 0, fmt.Errorf("filemanager download: nothing selected")
	}
	input, err := json.Marshal(operation{Action: "download", Path: NormalizeDir(dir), Names: names(items), Data: items})
	if err != nil {
		return "", 0, err
	}
	form := url.Values{"downloadInput": {string(input)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.DownloadURL(), strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("filemanager download: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", 0, statusError("download", res)
	}
	name := suggestedName(res.Header.Get("Content-Disposition"), items)
	n, err := io.Copy(w, res.Body)
	if err != nil {
		return name, n, fmt.Errorf("filemanager download: %w", err)
	}
	return name, n, nil
}

// ImageURL is the GetImage address for an image entry.
func (c *Client) ImageURL(fd FileDetails) string {
	p := path.Join(NormalizeDir(fd.FilterPath), fd.Name)
	return c.cfg.ImageURL() + "?" + url.Values{"path": {p}}.Encode()
}

// NormalizeDir turns "", "a/b" or "/a/b" into "/", "/a/b/" and "/a/b/".
func NormalizeDir(dir string) string {
	dir = strings.ReplaceAll(strings.TrimSpace(dir), `\`, "/")
	if dir == "" || dir == "/" {
		return "/"
	}
	dir = path.Clean("/" + dir)
	return dir + "/"
}

// ChildDir returns the path of folder name inside dir.
func ChildDir(dir, name string) string {
	return NormalizeDir(NormalizeDir(dir) + name)
}

// ParentDir returns the enclosing folder of dir; the root is its own parent.
func ParentDir(dir string) string {
	d := strings.TrimSuffix(NormalizeDir(dir), "/")
	if d == "" {
		return "/"
	}
	return NormalizeDir(path.Dir(d))
}

func names(items []FileDetails) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Name)
	}
	return out
}

func toListing(res operationResponse) Listing {
	l := Listing{Files: res.Files}
	if res.CWD != nil {
		l.CWD = *res.CWD
	}
	if l.Files == nil {
		l.Files = []FileDetails{}
	}
	return l
}

func suggestedName(disposition string, items []FileDetails) string {
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if fn := params["filename"]; fn != "" {
			return path.Base(strings.ReplaceAll(fn, `\`, "/"))
		}
	}
	if len(items) == 1 && items[0].IsFile {
		return items[0].Name
	}
	return "files.zip"
}

func statusError(action string, res *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	msg := strings.TrimSpace(string(detail))
	if msg == "" {
		msg = res.Status
	}
	return &ServiceError{Action: action, Code: fmt.Sprint(res.StatusCode), Message: msg}
}
