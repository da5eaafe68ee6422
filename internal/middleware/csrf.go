package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
)

const CSRFFieldName = "csrf_token"

// CSRF protects every unsafe request with a token bound to a cookie. On
// plain HTTP deployments requests are marked as such so the referer check
// for TLS does not reject them.
func CSRF(key []byte, secure bool) func(http.Handler) http.Handler {
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.CookieName("delrio_csrf"),
		csrf.FieldName(CSRFFieldName),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slog.WarnContext(r.Context(), "csrf check failed", "path", r.URL.Path, "reason", csrf.FailureReason(r))
			writePage(w, http.StatusForbidden, statusPage{
				Title:   "Form expired",
				Message: "Your form expired. Go back, reload the page and try again.",
			})
		})),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}
