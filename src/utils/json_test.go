package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "Unauthorized", http.StatusUnauthorized)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestSendJSONWithETagAnswersNotModified(t *testing.T) {
	payload := map[string]int{"count": 3}

	rec := httptest.NewRecorder()
	SendJSONWithETag(rec, httptest.NewRequest(http.MethodGet, "/", nil), payload)
	require.Equal(t, http.StatusOK, rec.Code)
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	SendJSONWithETag(rec, req, payload)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	SendJSONWithETag(rec, httptest.NewRequest(http.MethodGet, "/", nil), map[string]int{"count": 4})
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
}
