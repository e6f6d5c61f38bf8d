package filemanager

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(NewConfig(srv.URL), srv.Client())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// slowBody is an endless body whose reads take a while. started is closed
// when the first read begins.
type slowBody struct {
	once    sync.Once
	started chan struct{}
	active  atomic.Int32
	reads   atomic.Int32
}

func newSlowBody() *slowBody { return &slowBody{started: make(chan struct{})} }

func (b *slowBody) Read(p []byte) (int, error) {
	b.active.Add(1)
	defer b.active.Add(-1)
	b.reads.Add(1)
	b.once.Do(func() { close(b.started) })
	time.Sleep(20 * time.Millisecond)
	for i := range p {
		p[i] = 'x'
	}
	return len(p), nil
}

// answerEarly drains the request body in the background and answers 500 as
// soon as the body is being read.
func answerEarly(body *slowBody) roundTripFunc {
	return func(r *http.Request) (*http.Response, error) {
		go func() { _, _ = io.Copy(io.Discard, r.Body) }()
		<-body.started
		return &http.Response{
			StatusCode: http.StatusInternalServerError,
			Status:     "500 Internal Server Error",
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
		}, nil
	}
}

func decodeOp(t *testing.T, r *http.Request) operation {
	t.Helper()
	var op operation
	require.NoError(t, json.NewDecoder(r.Body).Decode(&op))
	return op
}

func TestNewConfigDerivesEndpoints(t *testing.T) {
	cfg := NewConfig("https://fm.example.com")

	assert.Equal(t, "https://fm.example.com/", cfg.Host())
	assert.Equal(t, "https://fm.example.com/api/FileManager/FileOperations", cfg.OperationsURL())
	assert.Equal(t, "https://fm.example.com/api/FileManager/GetImage", cfg.ImageURL())
	assert.Equal(t, "https://fm.example.com/api/FileManager/Upload", cfg.UploadURL())
	assert.Equal(t, "https://fm.example.com/api/FileManager/Download", cfg.DownloadURL())
	assert.Equal(t, ViewDetails, cfg.View())
	assert.False(t, cfg.AllowMultiSelection())
	assert.Equal(t, []Item{ItemNewFolder, ItemUpload, ItemDelete, ItemDownload, ItemRefresh, ItemView, ItemShowDetails}, cfg.Toolbar())
	assert.Equal(t, []Item{ItemOpen, ItemDownload, ItemDelete}, cfg.ContextMenu(FileDetails{IsFile: true}))
	assert.Equal(t, []Item{ItemOpen, ItemDelete}, cfg.ContextMenu(FileDetails{}))
	assert.True(t, cfg.Has(ItemRefresh))
	assert.False(t, cfg.Has(ItemOpen))
}

func TestConfigAccessorsReturnCopies(t *testing.T) {
	cfg := NewConfig("http://x/")
	tb := cfg.Toolbar()
	tb[0] = ItemOpen
	assert.Equal(t, ItemNewFolder, cfg.Toolbar()[0])
	assert.Equal(t, ViewLargeIcons, cfg.View().Toggle())
	assert.Equal(t, ViewDetails, ViewLargeIcons.Toggle())
}

func TestRead(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/FileManager/FileOperations", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		op := decodeOp(t, r)
		assert.Equal(t, "read", op.Action)
		assert.Equal(t, "/Documents/", op.Path)
		_, _ = io.WriteString(w, `{
			"cwd": {"name":"Documents","isFile":false,"hasChild":true,"filterPath":"\\","type":"","size":0,"dateModified":"2019-02-26T12:48:20.4461496+00:00"},
			"files": [
				{"name":"paper.pdf","isFile":true,"type":".pdf","size":1024,"filterPath":"\\Documents\\","dateModified":"2019-02-26T12:48:20+00:00","dateCreated":""},
				{"name":"Reports","isFile":false,"hasChild":false,"type":"","filterPath":"\\Documents\\"}
			],
			"error": null
		}`)
	})

	l, err := c.Read(context.Background(), "Documents")
	require.NoError(t, err)
	assert.Equal(t, "Documents", l.CWD.Name)
	require.Len(t, l.Files, 2)
	assert.True(t, l.Files[0].IsPDF())
	assert.EqualValues(t, 1024, l.Files[0].Size)
	assert.Equal(t, 2019, l.Files[0].DateModified.Year())
	assert.True(t, l.Files[0].DateCreated.IsZero())
	assert.False(t, l.Files[1].IsPDF())
}

func TestServiceErrorInPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"cwd":null,"files":null,"error":{"code":"417","message":"Access denied"}}`)
	})

	_, err := c.Read(context.Background(), "/")
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "read", se.Action)
	assert.Equal(t, "417", se.Code)
	assert.Equal(t, "Access denied", se.Message)
}

func TestNumericErrorCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"A file or folder with the name x already exists."}}`)
	})

	_, err := c.Create(context.Background(), "/", "x", FileDetails{})
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "400", se.Code)
}

func TestHTTPStatusIsServiceError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := c.Delete(context.Background(), "/", FileDetails{Name: "a.txt", IsFile: true})
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "500", se.Code)
	assert.Equal(t, "boom", se.Message)
}

func TestCreateAndDeleteBodies(t *testing.T) {
	var ops []operation
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ops = append(ops, decodeOp(t, r))
		_, _ = io.WriteString(w, `{"files":[{"name":"New","isFile":false}]}`)
	})
	cwd := FileDetails{Name: "Files"}

	l, err := c.Create(context.Background(), "/", " New ", cwd)
	require.NoError(t, err)
	assert.Equal(t, "New", l.Files[0].Name)
	require.NoError(t, c.Delete(context.Background(), "/a", FileDetails{Name: "x.pdf", IsFile: true}))

	require.Len(t, ops, 2)
	assert.Equal(t, "create", ops[0].Action)
	assert.Equal(t, "New", ops[0].Name)
	assert.Equal(t, []FileDetails{{Name: "Files"}}, ops[0].Data)
	assert.Equal(t, "delete", ops[1].Action)
	assert.Equal(t, "/a/", ops[1].Path)
	assert.Equal(t, []string{"x.pdf"}, ops[1].Names)
}

func TestCreateRejectsBadNames(t *testing.T) {
	c := New(NewConfig("http://127.0.0.1:0"), nil)
	for _, n := range []string{"", "  ", "a/b", `a\b`} {
		_, err := c.Create(context.Background(), "/", n, FileDetails{})
		assert.Error(t, err, n)
	}
	assert.Error(t, c.Delete(context.Background(), "/"))
}

func TestSearchAndDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		op := decodeOp(t, r)
		switch op.Action {
		case "search":
			assert.Equal(t, "*rep*", op.SearchString)
			_, _ = io.WriteString(w, `{"files":[{"name":"report.pdf","isFile":true,"type":".pdf"}]}`)
		case "details":
			assert.Equal(t, []string{"report.pdf"}, op.Names)
			_, _ = io.WriteString(w, `{"details":{"name":"report.pdf","location":"Files\\report.pdf","isFile":true,"size":"1 KB","created":"1/1/2020","modified":"1/2/2020"}}`)
		default:
			t.Errorf("unexpected action %q", op.Action)
		}
	})

	l, err := c.Search(context.Background(), "/", "rep", FileDetails{})
	require.NoError(t, err)
	require.Len(t, l.Files, 1)

	d, err := c.Details(context.Background(), "/", l.Files[0])
	require.NoError(t, err)
	assert.Equal(t, "1 KB", d.Size)
	assert.True(t, d.IsFile)
}

func TestUploadMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/FileManager/Upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "/docs/", r.FormValue("path"))
		assert.Equal(t, "save", r.FormValue("action"))
		var cwd FileDetails
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("data")), &cwd))
		assert.Equal(t, "docs", cwd.Name)
		f, hdr, err := r.FormFile("uploadFiles")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "a.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.7", string(b))
	})

	err := c.Upload(context.Background(), "docs", "a.pdf", strings.NewReader("%PDF-1.7"), FileDetails{Name: "docs"})
	require.NoError(t, err)
}

func TestUploadStopsReadingBeforeReturn(t *testing.T) {
	body := newSlowBody()
	c := New(NewConfig("http://fm.test"), &http.Client{Transport: answerEarly(body)})

	err := c.Upload(context.Background(), "/", "big.pdf", body, FileDetails{Name: "Files"})

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Zero(t, body.active.Load(), "body still being read after return")
	n := body.reads.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, body.reads.Load(), "body read after return")
}

func TestDownloadForm(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/FileManager/Download", r.URL.Path)
		require.NoError(t, r.ParseForm())
		var op operation
		require.NoError(t, json.Unmarshal([]byte(r.PostForm.Get("downloadInput")), &op))
		assert.Equal(t, "download", op.Action)
		assert.Equal(t, []string{"a.pdf"}, op.Names)
		w.Header().Set("Content-Disposition", `attachment; filename="a.pdf"`)
		_, _ = io.WriteString(w, "pdf-bytes")
	})

	var sb strings.Builder
	name, n, err := c.Download(context.Background(), "/", &sb, FileDetails{Name: "a.pdf", IsFile: true})
	require.NoError(t, err)
	assert.Equal(t, "a.pdf", name)
	assert.EqualValues(t, 9, n)
	assert.Equal(t, "pdf-bytes", sb.String())
}

func TestSuggestedName(t *testing.T) {
	assert.Equal(t, "x.pdf", suggestedName(`attachment; filename="../evil/x.pdf"`, nil))
	assert.Equal(t, "one.txt", suggestedName("", []FileDetails{{Name: "one.txt", IsFile: true}}))
	assert.Equal(t, "files.zip", suggestedName("", []FileDetails{{Name: "dir"}}))
}

func TestImageURL(t *testing.T) {
	c := New(NewConfig("http://fm/"), nil)
	got := c.ImageURL(FileDetails{Name: "cat.png", FilterPath: `\Pictures\`, IsFile: true, Type: ".png"})
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/api/FileManager/GetImage", u.Path)
	assert.Equal(t, "/Pictures/cat.png", u.Query().Get("path"))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/", NormalizeDir(""))
	assert.Equal(t, "/", NormalizeDir(`\`))
	assert.Equal(t, "/a/b/", NormalizeDir("a/b"))
	assert.Equal(t, "/a/b/", NormalizeDir("/a/b/"))
	assert.Equal(t, "/a/b/", ChildDir("/a/", "b"))
	assert.Equal(t, "/a/", ParentDir("/a/b/"))
	assert.Equal(t, "/", ParentDir("/a/"))
	assert.Equal(t, "/", ParentDir("/"))
}
