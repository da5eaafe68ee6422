package middleware

import (
	"context"
	"net/http"

	"delrio-stay/internal/model"
)

type sessionResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) model.Session
}

type contextKey string

const sessionContextKey contextKey = "session"

// LoadSession resolves the visitor's session once per request and makes it
// available through SessionFromContext.
func LoadSession(resolver sessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := resolver.Resolve(w, r)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

func WithSession(ctx context.Context, session model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext is the single accessor for identity and role. A context
// without a session yields the Unknown session.
func SessionFromContext(ctx context.Context) model.Session {
	session, _ := ctx.Value(sessionContextKey).(model.Session)
	return session
}

// SessionToken is the bearer token source handed to the backend client.
func SessionToken(ctx context.Context) string {
	session := SessionFromContext(ctx)
	if !session.IsAuthenticated() {
		return ""
	}
	return session.Token
}

// RequireAuth lets any signed in visitor through.
func RequireAuth(next http.Handler) http.Handler {
	return gate(next, model.Session.IsAuthenticated)
}

// RequireAdmin only lets admins through. It is a UI gate: the backend
// authorizes every admin call on its own.
func RequireAdmin(next http.Handler) http.Handler {
	return gate(next, model.Session.IsAdmin)
}

func gate(next http.Handler, allowed func(model.Session) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())

		if !session.IsResolved() {
			writePage(w, http.StatusOK, statusPage{
				Title:   "Loading",
				Message: "Checking your session...",
				Refresh: 2,
			})
			return
		}

		if !allowed(session) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}
