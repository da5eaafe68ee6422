package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				slog.ErrorContext(r.Context(), "panic recovered", "error", fmt.Sprintf("%v", recovered), "stack", string(debug.Stack()))
				writePage(w, http.StatusInternalServerError, statusPage{
					Title:   "Something went wrong",
					Message: "Unexpected server error. Please try again.",
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
