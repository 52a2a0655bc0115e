package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPIClient(t *testing.T, handler http.HandlerFunc) (*APIClient, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := NewAPIClientWithConfig(testKey, srv.URL)
	require.NoError(t, err)
	return api, srv.URL
}

func TestAPIClient_TrimsBaseURL(t *testing.T) {
	api, err := NewAPIClientWithConfig(testKey, "http://notes.local///")
	require.NoError(t, err)

	assert.Equal(t, "http://notes.local", api.BaseURL())
	assert.True(t, api.HasCredentials())
}

func TestAPIClient_SendsJSONWithBearer(t *testing.T) {
	api, _ := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+testKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"content":"x"}`, string(body))
		_, _ = io.WriteString(w, `{"data":{"ok":true}}`)
	})

	resp, err := api.Post(context.Background(), "/notes", map[string]string{"content": "x"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Data))
}

func TestAPIClient_UnparseableSuccessBody(t *testing.T) {
	api, _ := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>")
	})

	_, err := api.Get(context.Background(), "/notes")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestAPIClient_TransportError(t *testing.T) {
	api, err := NewAPIClientWithConfig(testKey, "http://127.0.0.1:1")
	require.NoError(t, err)

	_, err = api.Get(context.Background(), "/notes")

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "request failed")
}

func TestAPIClient_UploadFile(t *testing.T) {
	var got []byte
	api, base := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"), "presigned uploads carry no API key")
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		got, _ = io.ReadAll(r.Body)
	})
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	require.NoError(t, api.UploadFile(context.Background(), base+"/bucket/key", path, "text/plain"))
	assert.Equal(t, "hello", string(got))
}

func TestAPIClient_UploadFileRejected(t *testing.T) {
	api, base := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, "SignatureDoesNotMatch")
	})
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	err := api.UploadFile(context.Background(), base+"/bucket/key", path, "text/plain")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "SignatureDoesNotMatch")
}

func TestAPIClient_DownloadFile(t *testing.T) {
	api, base := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "attachment body")
	})
	out := filepath.Join(t.TempDir(), "out.txt")

	require.NoError(t, api.DownloadFile(context.Background(), base+"/bucket/key", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "attachment body", string(data))
}

func TestAPIClient_DownloadFileFailureLeavesNoFile(t *testing.T) {
	api, base := newTestAPIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	err := api.DownloadFile(context.Background(), base+"/bucket/key", out)

	require.Error(t, err)
	assert.NoFileExists(t, out)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
