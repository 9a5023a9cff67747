package videos

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/princekumarofficial/videos-service/internal/storage"
	"github.com/princekumarofficial/videos-service/internal/storage/sqlite"
	"github.com/princekumarofficial/videos-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	created []types.Video
	updated []types.Video
	deleted []int64
}

func (p *recordingPublisher) PublishVideoCreated(v types.Video) { p.created = append(p.created, v) }
func (p *recordingPublisher) PublishVideoUpdated(v types.Video) { p.updated = append(p.updated, v) }
func (p *recordingPublisher) PublishVideoDeleted(id int64)      { p.deleted = append(p.deleted, id) }

func newMux(store storage.Storage, publisher *recordingPublisher) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /video/{id}", Get(store))
	mux.HandleFunc("PUT /video/{id}", Put(store, publisher))
	mux.HandleFunc("PATCH /video/{id}", Patch(store, publisher))
	mux.HandleFunc("DELETE /video/{id}", Delete(store, publisher))
	return mux
}

func setup(t *testing.T) (*http.ServeMux, *sqlite.SQLite, *recordingPublisher) {
	t.Helper()

	db, err := sqlite.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.CreateSchema(context.Background()))
	t.Cleanup(func() { db.Close() })

	publisher := &recordingPublisher{}
	return newMux(db, publisher), db, publisher
}

func do(t *testing.T, mux http.Handler, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeVideo(t *testing.T, rec *httptest.ResponseRecorder) types.Video {
	t.Helper()

	var v types.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func videoForm(name, views, likes string) url.Values {
	return url.Values{"name": {name}, "views": {views}, "likes": {likes}}
}

func TestScenario(t *testing.T) {
	mux, _, publisher := setup(t)

	rec := do(t, mux, http.MethodPut, "/video/1", videoForm("a", "5", "1"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"a","views":5,"likes":1}`, rec.Body.String())

	rec = do(t, mux, http.MethodGet, "/video/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"a","views":5,"likes":1}`, rec.Body.String())

	rec = do(t, mux, http.MethodPatch, "/video/1", url.Values{"likes": {"10"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"a","views":5,"likes":10}`, rec.Body.String())

	rec = do(t, mux, http.MethodDelete, "/video/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"video deleted"}`, rec.Body.String())

	rec = do(t, mux, http.MethodGet, "/video/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []types.Video{{ID: 1, Name: "a", Views: 5, Likes: 1}}, publisher.created)
	assert.Equal(t, []types.Video{{ID: 1, Name: "a", Views: 5, Likes: 10}}, publisher.updated)
	assert.Equal(t, []int64{1}, publisher.deleted)
}

func TestGet_NotFound(t *testing.T) {
	mux, _, _ := setup(t)

	rec := do(t, mux, http.MethodGet, "/video/77", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"video with id 77 does not exist"}`, rec.Body.String())
}

func TestInvalidID(t *testing.T) {
	mux, _, _ := setup(t)

	for _, path := range []string{"/video/abc", "/video/-1", "/video/0", "/video/1.5", "/video/99999999999999999999"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			rec := do(t, mux, method, path, videoForm("a", "1", "1"))
			assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", method, path)
		}
	}
}

func TestPut_MissingFields(t *testing.T) {
	mux, db, _ := setup(t)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"no body", url.Values{}, "name: required; views: required; likes: required"},
		{"missing name", url.Values{"views": {"1"}, "likes": {"2"}}, "name: required"},
		{"missing views", url.Values{"name": {"a"}, "likes": {"2"}}, "views: required"},
		{"missing likes", url.Values{"name": {"a"}, "views": {"1"}}, "likes: required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, http.MethodPut, "/video/5", tt.form)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["error"])
		})
	}

	_, err := db.GetVideo(context.Background(), 5)
	assert.ErrorIs(t, err, storage.ErrVideoNotFound)
}

func TestPut_InvalidFields(t *testing.T) {
	mux, _, _ := setup(t)

	rec := do(t, mux, http.MethodPut, "/video/5", videoForm("a", "many", "1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"views: must be an integer"}`, rec.Body.String())

	rec = do(t, mux, http.MethodPut, "/video/5", videoForm(strings.Repeat("x", 101), "1", "1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"name: max=100"}`, rec.Body.String())
}

func TestPut_ZeroCounters(t *testing.T) {
	mux, _, _ := setup(t)

	rec := do(t, mux, http.MethodPut, "/video/2", videoForm("fresh", "0", "0"))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, types.Video{ID: 2, Name: "fresh"}, decodeVideo(t, rec))
}

func TestPut_Conflict(t *testing.T) {
	mux, _, publisher := setup(t)

	require.Equal(t, http.StatusCreated, do(t, mux, http.MethodPut, "/video/1", videoForm("a", "5", "1")).Code)

	rec := do(t, mux, http.MethodPut, "/video/1", videoForm("b", "9", "9"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"video with id 1 already exists"}`, rec.Body.String())

	rec = do(t, mux, http.MethodGet, "/video/1", nil)
	assert.Equal(t, types.Video{ID: 1, Name: "a", Views: 5, Likes: 1}, decodeVideo(t, rec))
	assert.Len(t, publisher.created, 1)
}

func TestPut_Multipart(t *testing.T) {
	mux, _, _ := setup(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "clip"))
	require.NoError(t, mw.WriteField("views", "3"))
	require.NoError(t, mw.WriteField("likes", "4"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/video/8", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, types.Video{ID: 8, Name: "clip", Views: 3, Likes: 4}, decodeVideo(t, rec))
}

func TestPut_IgnoresQueryString(t *testing.T) {
	mux, _, _ := setup(t)

	rec := do(t, mux, http.MethodPut, "/video/3?name=q&views=1&likes=1", url.Values{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPatch(t *testing.T) {
	mux, _, publisher := setup(t)
	require.Equal(t, http.StatusCreated, do(t, mux, http.MethodPut, "/video/1", videoForm("a", "5", "1")).Code)

	t.Run("name only keeps counters", func(t *testing.T) {
		rec := do(t, mux, http.MethodPatch, "/video/1", url.Values{"name": {"renamed"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, types.Video{ID: 1, Name: "renamed", Views: 5, Likes: 1}, decodeVideo(t, rec))
	})

	t.Run("zero views is applied", func(t *testing.T) {
		rec := do(t, mux, http.MethodPatch, "/video/1", url.Values{"views": {"0"}})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, types.Video{ID: 1, Name: "renamed", Views: 0, Likes: 1}, decodeVideo(t, rec))
	})

	t.Run("empty form changes nothing", func(t *testing.T) {
		before := len(publisher.updated)
		rec := do(t, mux, http.MethodPatch, "/video/1", url.Values{})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, types.Video{ID: 1, Name: "renamed", Views: 0, Likes: 1}, decodeVideo(t, rec))
		assert.Len(t, publisher.updated, before)
	})

	t.Run("invalid integer", func(t *testing.T) {
		rec := do(t, mux, http.MethodPatch, "/video/1", url.Values{"likes": {"lots"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"status":"error","error":"likes: must be an integer"}`, rec.Body.String())
	})

	t.Run("persisted", func(t *testing.T) {
		rec := do(t, mux, http.MethodGet, "/video/1", nil)
		assert.Equal(t, types.Video{ID: 1, Name: "renamed", Views: 0, Likes: 1}, decodeVideo(t, rec))
	})
}

func TestPatch_NotFound(t *testing.T) {
	mux, _, _ := setup(t)

	rec := do(t, mux, http.MethodPatch, "/video/4", url.Values{"likes": {"1"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"error","error":"video with id 4 does not exist, cannot update"}`, rec.Body.String())
}

func TestDelete_Twice(t *testing.T) {
	mux, _, publisher := setup(t)
	require.Equal(t, http.StatusCreated, do(t, mux, http.MethodPut, "/video/1", videoForm("a", "5", "1")).Code)

	rec := do(t, mux, http.MethodDelete, "/video/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"video deleted"}`, rec.Body.String())

	rec = do(t, mux, http.MethodDelete, "/video/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())

	assert.Equal(t, []int64{1}, publisher.deleted)
}

type failingStorage struct {
	storage.Storage
}

var errDiskFull = errors.New("disk full")

func (failingStorage) GetVideo(context.Context, int64) (types.Video, error) {
	return types.Video{}, errDiskFull
}

func (failingStorage) DeleteVideo(context.Context, int64) error {
	return errDiskFull
}

func TestStorageFailure(t *testing.T) {
	mux := newMux(failingStorage{}, &recordingPublisher{})

	rec := do(t, mux, http.MethodGet, "/video/1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk full")

	rec = do(t, mux, http.MethodDelete, "/video/1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
