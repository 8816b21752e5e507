package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the compiled frontend from the configured directory and
// falls back to index.html for client-side routes.
func (s *Server) mountStatic() {
	dir := s.opts.StaticDir
	if dir == "" {
		s.logger.Warn("static directory not configured; API only mode")
		s.engine.NoRoute(apiNotFound)
		return
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.logger.Warn("static directory missing", "path", dir, "error", err)
		s.engine.NoRoute(apiNotFound)
		return
	}

	indexPath := filepath.Join(dir, "index.html")
	if _, err := os.Stat(indexPath); err != nil {
		s.logger.Warn("index.html not found", "path", indexPath, "error", err)
		s.engine.NoRoute(apiNotFound)
	} else {
		s.engine.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})
		s.engine.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				apiNotFound(c)
				return
			}
			c.File(indexPath)
		})
	}

	for _, sub := range []string{"assets", "scripts", "styles"} {
		assetsDir := filepath.Join(dir, sub)
		if _, err := os.Stat(assetsDir); err == nil {
			s.engine.StaticFS("/"+sub, gin.Dir(assetsDir, false))
		}
	}

	favicon := filepath.Join(dir, "favicon.ico")
	if _, err := os.Stat(favicon); err == nil {
		s.engine.StaticFile("/favicon.ico", favicon)
	}
}

func apiNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
}
