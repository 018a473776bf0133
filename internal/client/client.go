// Package client provides a handler for serving the landing page.
package client

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"

	"github.com/starquake/trivia/internal/config"
)

//go:embed static
var staticFS embed.FS

// Handler returns an [http.Handler] that serves the landing page and its assets.
// If cfg.ClientDir is not empty, it serves files from that directory.
// If cfg.IsProduction() is true, it minifies the files.
func Handler(cfg *config.Config) (http.Handler, error) {
	var fsys fs.FS
	if cfg.ClientDir != "" {
		fsys = os.DirFS(cfg.ClientDir)
	} else {
		var err error
		fsys, err = fs.Sub(staticFS, "static")
		if err != nil {
			return nil, fmt.Errorf("failed to open embedded client files: %w", err)
		}
	}

	fileServer := http.FileServer(http.FS(fsys))

	if cfg.IsProduction() {
		m := minify.New()
		m.AddFunc("text/html", html.Minify)
		m.AddFunc("text/css", css.Minify)

		return m.Middleware(fileServer), nil
	}

	return fileServer, nil
}
