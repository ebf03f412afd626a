package podbookapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podbook/internal/application/wizard"
	"podbook/internal/config"
	"podbook/internal/domain/entity"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.PodbookClientConfig{BaseURL: srv.URL + "/api/", Token: "tok"})
}

func TestSaveProjectReadsNestedID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/project/save", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, hasID := payload["id"]
		assert.False(t, hasID)
		assert.Equal(t, float64(2), payload["step"])

		_, _ = w.Write([]byte(`{"code":200,"message":"success","data":{"id":"proj-7"}}`))
	})

	id, err := client.SaveProject(context.Background(), &wizard.SavePayload{Type: entity.BookTypeBusiness, Step: 2})
	require.NoError(t, err)
	assert.Equal(t, "proj-7", id)
}

func TestProjectIDFrom(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		err  error
	}{
		{raw: `{"data":{"id":"a"}}`, want: "a"},
		{raw: `{"id":"b"}`, want: "b"},
		{raw: `{"id":42}`, want: "42"},
		{raw: `{"data":{"id":"c"},"id":"d"}`, want: "c"},
		{raw: `{"data":{}}`, err: ErrMissingProjectID},
		{raw: `{"id":null}`, err: ErrMissingProjectID},
		{raw: `{"data":"ok","id":"e"}`, want: "e"},
		{raw: `{"data":[1,2],"id":7}`, want: "7"},
		{raw: `{"data":"ok"}`, err: ErrMissingProjectID},
	}
	for _, tt := range tests {
		id, err := projectIDFrom([]byte(tt.raw))
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, id, tt.raw)
	}
}

func TestSaveProjectAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":404,"message":"project not found"}`))
	})

	_, err := client.SaveProject(context.Background(), &wizard.SavePayload{ID: "other"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "project not found", apiErr.Message)
}

func TestRegisterEpisodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/uploads/rss", r.URL.Path)
		var req registerEpisodesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "proj-1", req.ProjectID)
		require.Len(t, req.Episodes, 2)
		assert.Equal(t, "e3", req.Episodes[1].ID)
		_, _ = w.Write([]byte(`{"code":200,"message":"success"}`))
	})

	err := client.RegisterEpisodes(context.Background(), "proj-1", []entity.RSSEpisode{{ID: "e1"}, {ID: "e3"}})
	assert.NoError(t, err)
}

func TestRegisterFiles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/uploads/files", r.URL.Path)
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		files := raw["files"].([]any)
		require.Len(t, files, 1)
		f := files[0].(map[string]any)
		assert.Equal(t, "talk.mp3", f["filename"])
		assert.Equal(t, "pkg-1", f["url"])
		assert.Equal(t, 61.5, f["size"])
		assert.Equal(t, 61.5, f["duration"])
		assert.Equal(t, "audio/mpeg", f["contentType"])
		_, _ = w.Write([]byte(`{}`))
	})

	err := client.RegisterFiles(context.Background(), "proj-1", []wizard.FileRegistration{{
		Filename: "talk.mp3", URL: "pkg-1", Size: 61.5, ContentType: "audio/mpeg", Duration: 61.5,
	}})
	assert.NoError(t, err)
}

func TestFetchEpisodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/rss/episodes", r.URL.Path)
		assert.Equal(t, "https://example.com/feed?a=1", r.URL.Query().Get("url"))
		_, _ = w.Write([]byte(`{"code":200,"data":{"episodes":[{"id":"1","title":"One"},{"id":"2","title":"Two"}]}}`))
	})

	episodes, err := client.FetchEpisodes(context.Background(), "https://example.com/feed?a=1")
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "Two", episodes[1].Title)
}

func TestFetchEpisodesTopLevel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"episodes":[{"id":"1","title":"One"}]}`))
	})

	episodes, err := client.FetchEpisodes(context.Background(), "https://example.com/feed")
	require.NoError(t, err)
	assert.Len(t, episodes, 1)
}
