package handlers

import (
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const fallbackIndex = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Agent Falcon</title></head>
<body>
<h1>Agent Falcon</h1>
<p>Send <code>POST /analyze</code> with a JSON body such as <code>{"input": "Where can I cut costs?"}</code>.</p>
<p>API documentation is available at <a href="/swagger/index.html">/swagger</a>.</p>
</body>
</html>`

// IndexHandler serves the landing page from the web/static directory, or a
// built-in page when the directory is missing.
type IndexHandler struct {
	staticPath string
	logger     *zap.Logger
}

func NewIndexHandler(staticPath string, logger *zap.Logger) *IndexHandler {
	return &IndexHandler{staticPath: staticPath, logger: logger}
}

func (h *IndexHandler) Index(c *fiber.Ctx) error {
	if h.staticPath != "" {
		indexPath := filepath.Join(h.staticPath, "index.html")
		if fileExists(indexPath) {
			return c.SendFile(indexPath)
		}
	}
	c.Type("html", "utf-8")
	return c.SendString(fallbackIndex)
}

// FindWebStaticPath looks for web/static relative to the working directory.
func FindWebStaticPath(logger *zap.Logger) string {
	cwd, _ := os.Getwd()

	paths := []string{
		"./web/static",
		"../web/static",
		"../../web/static",
	}

	for _, path := range paths {
		if fileExists(filepath.Join(path, "index.html")) {
			logger.Info("Found web static path", zap.String("path", path), zap.String("cwd", cwd))
			return path
		}
		logger.Debug("Tried path", zap.String("path", path), zap.String("cwd", cwd))
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
