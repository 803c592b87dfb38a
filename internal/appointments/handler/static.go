package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	apperrors "motoagenda/pkg/errors"
	httputil "motoagenda/pkg/http"
	"motoagenda/pkg/logger"
)

const indexFile = "index.html"

const (
	MsgRouteNotFound = "Rota não encontrada."
	MsgPageNotFound  = "Página não encontrada."
)

// StaticHandler answers every request no route matched. GET and HEAD get the
// named file from dir when it exists and the booking page otherwise, so
// client-side paths load the page. Other methods get a JSON 404.
type StaticHandler struct {
	dir string
	log *logger.Logger
}

func NewStaticHandler(dir string, log *logger.Logger) *StaticHandler {
	return &StaticHandler{
		dir: dir,
		log: log,
	}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		if err := httputil.WriteError(w, apperrors.NotFound(MsgRouteNotFound)); err != nil {
			h.log.Error("failed to write error response", "handler", "Static", "operation", "WriteError", "error", err)
		}
		return
	}

	// Clean against a rooted path so ".." can never climb out of dir.
	name := path.Clean("/" + r.URL.Path)
	if name != "/" && h.serveFile(w, r, name) {
		return
	}

	if !h.serveFile(w, r, "/"+indexFile) {
		h.log.Error("Static fallback page missing", "dir", h.dir, "path", r.URL.Path)
		if err := httputil.WriteError(w, apperrors.NotFound(MsgPageNotFound)); err != nil {
			h.log.Error("failed to write error response", "handler", "Static", "operation", "WriteError", "error", err)
		}
	}
}

func (h *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(filepath.Join(h.dir, filepath.FromSlash(name)))
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}
