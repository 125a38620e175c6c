package app

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/restforge/restforge/internal/app/shared"
	"github.com/restforge/restforge/internal/security"
)

// indexFiles are tried, in order, when a static directory request names a
// directory.
var indexFiles = []string{"index.html", "index.htm"}

// RegisterStatic serves filesystem content under urlPath. If fsPath is a
// directory its files are served beneath the prefix with index-file
// resolution; if it is a regular file, exactly that file is served at
// urlPath. Security requirements apply as they do for operations.
func (a *App) RegisterStatic(urlPath, fsPath string, reqs []security.Requirement) error {
	if urlPath == "" || urlPath[0] != '/' {
		return errors.New("static path must begin with /")
	}
	info, err := os.Stat(fsPath)
	if err != nil {
		return fmt.Errorf("static path %s: %w", fsPath, err)
	}

	if info.IsDir() {
		prefix := strings.TrimSuffix(urlPath, "/")
		h := a.staticDirHandler(prefix, fsPath, reqs)
		a.router.Handle(prefix+"/*", h)
		a.router.Handle(prefix, h)
	} else {
		a.router.Handle(urlPath, a.staticFileHandler(fsPath, reqs))
	}
	a.logger.Info("registered static content", "path", urlPath, "source", fsPath)
	return nil
}

func (a *App) staticDirHandler(prefix, dir string, reqs []security.Requirement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.staticPreamble(w, r, reqs) {
			return
		}
		rel := chi.URLParam(r, "*")
		// Reject any path that escapes the registered directory.
		clean := path.Clean("/" + rel)
		if strings.Contains(clean, "..") {
			shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
			return
		}
		full := filepath.Join(dir, filepath.FromSlash(clean))

		info, err := os.Stat(full)
		if err == nil && info.IsDir() {
			full, info, err = resolveIndex(full)
		}
		if err != nil {
			shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
			return
		}
		a.serveFile(w, r, full, info.Size())
	}
}

func (a *App) staticFileHandler(file string, reqs []security.Requirement) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.staticPreamble(w, r, reqs) {
			return
		}
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
			return
		}
		a.serveFile(w, r, file, info.Size())
	}
}

// staticPreamble enforces method and security checks shared by both
// static handlers.
func (a *App) staticPreamble(w http.ResponseWriter, r *http.Request, reqs []security.Requirement) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	ctx, ok := a.authenticate(w, r, reqs)
	if !ok {
		return false
	}
	return a.authorize(w, r.WithContext(ctx), reqs)
}

// resolveIndex maps a directory to its index file.
func resolveIndex(dir string) (string, os.FileInfo, error) {
	for _, name := range indexFiles {
		full := filepath.Join(dir, name)
		info, err := os.Stat(full)
		if err == nil && !info.IsDir() {
			return full, info, nil
		}
	}
	return "", nil, os.ErrNotExist
}

func (a *App) serveFile(w http.ResponseWriter, r *http.Request, file string, size int64) {
	f, err := os.Open(file)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Not found")
		return
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			a.logger.Warn("failed to close static file", "file", file, "error", cerr)
		}
	}()

	w.Header().Set("Content-Type", contentType(file))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, f); err != nil {
		a.logger.Error("failed to write static file", "file", file, "error", err)
	}
}

// contentType infers a media type from the file extension, falling back
// to application/octet-stream for unknown extensions.
func contentType(file string) string {
	if ct := mime.TypeByExtension(filepath.Ext(file)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
