// internal/handlers/pages.go
package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PageHandlers отдает статические страницы админки из каталога web/.
type PageHandlers struct {
	WebDir string
}

func NewPageHandlers(webDir string) *PageHandlers {
	return &PageHandlers{WebDir: webDir}
}

// pagePaths — дружелюбные адреса страниц. Дашборд доступен и по /, и по
// /dashboard, остальные страницы открываются с расширением и без.
var pagePaths = map[string]string{
	"/":                  "index.html",
	"/dashboard":         "index.html",
	"/index.html":        "index.html",
	"/login":             "login.html",
	"/login.html":        "login.html",
	"/patients":          "patients.html",
	"/patients.html":     "patients.html",
	"/appointments":      "appointments.html",
	"/appointments.html": "appointments.html",
	"/reports":           "reports.html",
	"/reports.html":      "reports.html",
}

// serveFile безопасно присоединяет имя к каталогу web/: path.Clean срезает
// попытки выхода через "..".
func (h *PageHandlers) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	clean := path.Clean("/" + name)
	full := filepath.Join(h.WebDir, filepath.FromSlash(clean))
	if _, err := os.Stat(full); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}

func (h *PageHandlers) PageHandler(w http.ResponseWriter, r *http.Request) {
	if page, ok := pagePaths[r.URL.Path]; ok {
		h.serveFile(w, r, page)
		return
	}
	h.CatchAllHandler(w, r)
}

// AssetsHandler отдает файлы из web/assets (стили, скрипты, иконки).
func (h *PageHandlers) AssetsHandler() http.Handler {
	fs := http.FileServer(http.Dir(filepath.Join(h.WebDir, "assets")))
	return http.StripPrefix("/assets/", fs)
}

// CatchAllHandler закрывает оставшиеся пути: неизвестные адреса API отдают
// JSON-ошибку, явные .html-файлы отдаются как есть, все прочее уходит в
// index.html, чтобы страницы работали при прямом вводе адреса.
func (h *PageHandlers) CatchAllHandler(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "API endpoint not found")
		return
	}
	if strings.HasSuffix(r.URL.Path, ".html") {
		h.serveFile(w, r, strings.TrimPrefix(r.URL.Path, "/"))
		return
	}
	h.serveFile(w, r, "index.html")
}
