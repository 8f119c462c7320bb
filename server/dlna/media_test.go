package dlna

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udlna/udlna/media"
	"github.com/udlna/udlna/media/metadata"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.mp4")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func routerWithFile(t *testing.T, content string) (*Router, media.Item) {
	t.Helper()
	path := writeTempFile(t, content)
	item := media.Item{
		ID:       metadata.ItemID(path),
		Path:     path,
		FileSize: uint64(len(content)),
		MIME:     "video/mp4",
		Kind:     media.KindVideo,
	}
	return newTestRouter(item), item
}

func requestWithID(method, id string) *http.Request {
	req := httptest.NewRequest(method, "/media/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleMediaGetUnknownIDReturns404(t *testing.T) {
	r := newTestRouter()
	req := requestWithID(http.MethodGet, "00000000-0000-0000-0000-000000000000")
	rec := httptest.NewRecorder()

	r.handleMediaGet(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleMediaGetFullStream(t *testing.T) {
	r, item := routerWithFile(t, "hello world")
	req := requestWithID(http.MethodGet, item.ID.String())
	rec := httptest.NewRecorder()

	r.handleMediaGet(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
}

func TestHandleMediaGetSatisfiableRangeReturns206(t *testing.T) {
	r, item := routerWithFile(t, "0123456789")
	req := requestWithID(http.MethodGet, item.ID.String())
	req.Header.Set("Range", "bytes=2-5")
	rec := httptest.NewRecorder()

	r.handleMediaGet(rec, req)

	assert.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "2345", rec.Body.String())
	assert.Equal(t, "bytes 2-5/10", rec.Header().Get("Content-Range"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
}

func TestHandleMediaGetUnsatisfiableRangeReturns416(t *testing.T) {
	r, item := routerWithFile(t, "0123456789")
	req := requestWithID(http.MethodGet, item.ID.String())
	req.Header.Set("Range", "bytes=100-200")
	rec := httptest.NewRecorder()

	r.handleMediaGet(rec, req)

	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */10", rec.Header().Get("Content-Range"))
}

func TestHandleMediaHeadNeverOpensFile(t *testing.T) {
	item := media.Item{
		ID:       metadata.ItemID("/does/not/exist.mp4"),
		Path:     "/does/not/exist.mp4",
		FileSize: 42,
		MIME:     "video/mp4",
		Kind:     media.KindVideo,
	}
	r := newTestRouter(item)
	req := requestWithID(http.MethodHead, item.ID.String())
	rec := httptest.NewRecorder()

	r.handleMediaHead(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Content-Length"))
}

func TestHandleMediaHeadUnknownIDReturns404(t *testing.T) {
	r := newTestRouter()
	req := requestWithID(http.MethodHead, "00000000-0000-0000-0000-000000000000")
	rec := httptest.NewRecorder()

	r.handleMediaHead(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
