package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	"delrio-stay/internal/middleware"
	"delrio-stay/internal/model"
	"delrio-stay/internal/service"
	"delrio-stay/internal/view"
	"delrio-stay/pkg/apierror"
)

// Pages is shared by every page handler: it fills the layout fields and
// turns errors into flashes.
type Pages struct {
	renderer *view.Renderer
	secure   bool
}

func NewPages(renderer *view.Renderer, secureCookies bool) *Pages {
	return &Pages{renderer: renderer, secure: secureCookies}
}

type pageMeta struct {
	name   string
	title  string
	active string
}

// render writes a full page. A nil flash shows the one left by the previous
// redirect, if any.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, meta pageMeta, data any, flash *view.Flash) {
	pending := view.TakeFlash(w, r)
	if flash == nil {
		flash = pending
	}

	p.renderer.Render(w, r, status, meta.name, view.Page{
		Title:     meta.title,
		Active:    meta.active,
		Session:   middleware.SessionFromContext(r.Context()),
		Flash:     flash,
		Theme:     view.ThemeFromRequest(r),
		CSRFField: csrf.TemplateField(r),
		Data:      data,
	})
}

// redirect sends the visitor on with 303 and a flash for the next page.
func (p *Pages) redirect(w http.ResponseWriter, r *http.Request, to string, flash *view.Flash) {
	view.SetFlash(w, flash, p.secure)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, pageMeta{name: "not_found", title: "Page not found"}, nil, nil)
}

func (p *Pages) failure(w http.ResponseWriter, r *http.Request, err error, message string) {
	slog.ErrorContext(r.Context(), "page failed", "path", r.URL.Path, "error", err)
	p.render(w, r, statusFor(err), pageMeta{name: "error", title: "Error"}, struct{ Message string }{Message: message}, view.Error(message))
}

// statusFor maps an error onto the status of the page re-rendered for it.
func statusFor(err error) int {
	var invalid *model.ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, model.ErrUnauthorized), errors.Is(err, model.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrRoomNotFound), errors.Is(err, model.ErrBookingNotFound), errors.Is(err, model.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrBookingFailed), errors.Is(err, model.ErrNoToken):
		return http.StatusBadGateway
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatus == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// messageFor is the text shown to the visitor. Validation messages are shown
// as is; anything else gets fallback.
func messageFor(err error, fallback string) string {
	var invalid *model.ValidationError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	return fallback
}

// serverMessageFor prefers the message the backend sent over fallback.
func serverMessageFor(err error, fallback string) string {
	var invalid *model.ValidationError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	if status := apierror.Status(err); status >= 400 && status < 500 {
		return apierror.Message(err, fallback)
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryID reads an optional positive id from the query string.
func queryID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get(name)), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// localPath returns the path and query of raw when it points back into this
// site (no authority, or host itself), and fallback otherwise. Paths a
// browser could read as another host ("//" or a backslash) fall back too.
func localPath(raw string, host string, fallback string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.User != nil {
		return fallback
	}
	if u.Host != "" && !strings.EqualFold(u.Host, host) {
		return fallback
	}
	if u.Scheme != "" && ((u.Scheme != "http" && u.Scheme != "https") || u.Host == "") {
		return fallback
	}

	path := u.EscapedPath()
	if !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") ||
		strings.ContainsRune(u.Path, '\\') || strings.Contains(strings.ToLower(path), "%5c") {
		return fallback
	}

	if u.RawQuery != "" {
		return path + "?" + u.RawQuery
	}
	return path
}
