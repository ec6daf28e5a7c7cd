package hashtag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/picstash/service/internal/response"
)

func newTestHandler() *Handler {
	return NewHandler(NewService(&fakeRepo{}))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (response.Envelope, json.RawMessage) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return response.Envelope{Success: env.Success, Error: env.Error}, env.Data
}

func TestHandlerCreate(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/hashtags", strings.NewReader(`{"name":"sunset"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	env, data := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var tag Hashtag
	require.NoError(t, json.Unmarshal(data, &tag))
	assert.Equal(t, "sunset", tag.Name)
	assert.NotZero(t, tag.ID)
}

func TestHandlerCreate_Duplicate(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/hashtags", strings.NewReader(`{"name":"sunset"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/hashtags", strings.NewReader(`{"name":"sunset"}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	env, _ := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestHandlerCreate_Validation(t *testing.T) {
	h := newTestHandler()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"name":`},
		{"missing name", `{}`},
		{"blank name", `{"name":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/hashtags", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandlerList(t *testing.T) {
	h := newTestHandler()

	for _, name := range []string{"sunset", "beach"} {
		rec := httptest.NewRecorder()
		h.Create(rec, httptest.NewRequest(http.MethodPost, "/hashtags", strings.NewReader(`{"name":"`+name+`"}`)))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/hashtags", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	_, data := decodeEnvelope(t, rec)
	var tags []Hashtag
	require.NoError(t, json.Unmarshal(data, &tags))
	assert.Len(t, tags, 2)
}

func TestHandlerSearch(t *testing.T) {
	h := newTestHandler()

	for _, name := range []string{"Cat", "cats", "scatter", "dog"} {
		rec := httptest.NewRecorder()
		h.Create(rec, httptest.NewRequest(http.MethodPost, "/hashtags", strings.NewReader(`{"name":"`+name+`"}`)))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/hashtags/search?q=cat", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	_, data := decodeEnvelope(t, rec)
	var tags []Hashtag
	require.NoError(t, json.Unmarshal(data, &tags))

	names := make([]string, len(tags))
	for i, h := range tags {
		names[i] = h.Name
	}
	assert.ElementsMatch(t, []string{"Cat", "cats", "scatter"}, names)
}

func TestHandlerSearch_NoQuery(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/hashtags", strings.NewReader(`{"name":"sunset"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.Search(rec, httptest.NewRequest(http.MethodGet, "/hashtags/search", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	_, data := decodeEnvelope(t, rec)
	var tags []Hashtag
	require.NoError(t, json.Unmarshal(data, &tags))
	assert.Empty(t, tags)
}
