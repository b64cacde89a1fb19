package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDownloadThumbnailWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := downloadThumbnail(dir, "abc123", srv.URL)
	require.Equal(t, filepath.Join(dir, "abc123_Thumbnail.jpg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))
}

func TestDownloadThumbnailEmptyURLReturnsEmptyPath(t *testing.T) {
	require.Equal(t, "", downloadThumbnail(t.TempDir(), "abc123", ""))
}

func TestDownloadThumbnailNon200ReturnsEmptyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	require.Equal(t, "", downloadThumbnail(t.TempDir(), "abc123", srv.URL))
}
