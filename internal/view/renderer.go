package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"delrio-stay/internal/model"
)

//go:embed templates
var templateFS embed.FS

// Page is what every template receives. Data holds the page specific view
// model.
type Page struct {
	Title     string
	Active    string
	Session   model.Session
	Flash     *Flash
	Theme     Theme
	CSRFField template.HTML
	Data      any
}

// Renderer holds one parsed template set per page, each combined with the
// layout and the shared partials. It is immutable after NewRenderer.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	pageFiles, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("list page templates: %w", err)
	}

	renderer := &Renderer{pages: make(map[string]*template.Template, len(pageFiles))}
	for _, file := range pageFiles {
		name := strings.TrimSuffix(path.Base(file), ".html")
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials/*.html",
			file,
		)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		renderer.pages[name] = tmpl
	}

	return renderer, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render writes the page with status. It renders into a buffer first so a
// template failure still produces a clean 500, and drops the response when
// the visitor has already gone away.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, page Page) {
	if err := req.Context().Err(); err != nil {
		slog.DebugContext(req.Context(), "request gone before render", "page", name, "error", err)
		return
	}

	tmpl, ok := r.pages[name]
	if !ok {
		slog.ErrorContext(req.Context(), "unknown page template", "page", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, page); err != nil {
		slog.ErrorContext(req.Context(), "render failed", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := req.Context().Err(); err != nil {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
