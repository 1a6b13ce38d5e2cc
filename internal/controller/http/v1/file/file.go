package file

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Controller serves uploaded photos and logos. Directories are never listed.
type Controller struct {
	baseDir string
}

func NewController(baseDir string) *Controller {
	return &Controller{baseDir: baseDir}
}

func (cf Controller) File(c *gin.Context) {
	file := filepath.Clean("/" + strings.TrimPrefix(c.Param("filepath"), "/"))
	path := filepath.Join(cf.baseDir, file)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, map[string]any{
			"error":  "file not found",
			"status": false,
		})
		return
	}

	http.ServeFile(c.Writer, c.Request, path)
}
