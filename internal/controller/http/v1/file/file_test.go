package file

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "photos"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "photos", "a.jpg"), []byte("jpeg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(dir), "secret.txt"), []byte("x"), 0o644))

	r := gin.New()
	r.GET("/media/*filepath", NewController(dir).File)

	tests := []struct {
		path   string
		status int
	}{
		{"/media/photos/a.jpg", http.StatusOK},
		{"/media/photos/missing.jpg", http.StatusNotFound},
		{"/media/photos", http.StatusNotFound},
		{"/media/../secret.txt", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/media/x", nil)
			req.URL.Path = tt.path
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "jpeg", w.Body.String())
			}
		})
	}
}
