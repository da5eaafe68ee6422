package middleware

import (
	"net/http"
	"time"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := `<!doctype html><html lang="en"><head><meta charset="utf-8"><title>Request timed out</title></head>` +
		`<body><h1>Request timed out</h1><p>The booking service took too long to answer. Please try again.</p></body></html>`

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
