package httpapi

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// frontend раздаёт файлы из staticDir, а на остальные GET-пути отдаёт SPA index,
// чтобы клиентский роутер обработал их сам. Неизвестные /api пути: 404 JSON.
func frontend(staticDir, spaIndex string) gin.HandlerFunc {
	return func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if urlPath == "/api" || strings.HasPrefix(urlPath, "/api/") {
			c.JSON(http.StatusNotFound, errorResponse{Message: msgNotFound})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, errorResponse{Message: msgNotFound})
			return
		}

		if staticDir != "" {
			// path.Clean от "/" не даёт выйти за пределы staticDir.
			name := filepath.Join(staticDir, filepath.FromSlash(path.Clean("/"+urlPath)))
			if info, err := os.Stat(name); err == nil {
				if info.IsDir() {
					name = filepath.Join(name, "index.html")
					if _, err := os.Stat(name); err != nil {
						name = ""
					}
				}
				if name != "" {
					c.File(name)
					return
				}
			}
		}

		if spaIndex != "" {
			if info, err := os.Stat(spaIndex); err == nil && !info.IsDir() {
				c.File(spaIndex)
				return
			}
		}

		c.JSON(http.StatusNotFound, errorResponse{Message: msgNotFound})
	}
}
