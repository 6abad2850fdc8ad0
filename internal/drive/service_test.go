package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newTestService(t *testing.T, mimeType string) *Service {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/files/abc", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("alt") == "media" {
			_, _ = w.Write([]byte("raw-bytes"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "abc", "name": "Base.xlsx", "mimeType": mimeType})
	})
	mux.HandleFunc("/files/abc/export", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, xlsxMimeType, r.URL.Query().Get("mimeType"))
		_, _ = w.Write([]byte("exported-bytes"))
	})
	mux.HandleFunc("/files/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404,"message":"File not found"}}`, http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc, err := NewServiceWithOptions(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return svc
}

func TestDownloadBinaryFile(t *testing.T) {
	svc := newTestService(t, xlsxMimeType)

	var buf bytes.Buffer
	file, err := svc.Download(context.Background(), "abc", &buf)
	require.NoError(t, err)

	assert.Equal(t, "Base.xlsx", file.Name)
	assert.Equal(t, "raw-bytes", buf.String())
}

func TestDownloadExportsNativeSheets(t *testing.T) {
	svc := newTestService(t, spreadsheetMimeType)

	var buf bytes.Buffer
	_, err := svc.Download(context.Background(), "abc", &buf)
	require.NoError(t, err)

	assert.Equal(t, "exported-bytes", buf.String())
}

func TestDownloadMissingFile(t *testing.T) {
	svc := newTestService(t, xlsxMimeType)

	_, err := svc.Download(context.Background(), "missing", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unable to get file missing")
}

func TestNewServiceFromFile(t *testing.T) {
	_, err := NewServiceFromFile(context.Background(), "")
	assert.Error(t, err)

	_, err = NewServiceFromFile(context.Background(), "/nonexistent/credentials.json")
	assert.ErrorContains(t, err, "unable to read credentials file")

	_, err = NewService(context.Background(), []byte("{}"))
	assert.ErrorContains(t, err, "unable to parse client secret file")
}
