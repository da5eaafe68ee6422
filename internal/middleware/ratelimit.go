package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultPageRPM   = 100
	defaultSubmitRPM = 10

	visitorIdleTTL = 10 * time.Minute
	sweepInterval  = time.Minute
)

// submitPaths are the form posts that act on the visitor's behalf, besides
// booking a room.
var submitPaths = map[string]struct{}{
	"/login":    {},
	"/register": {},
	"/contact":  {},
}

type visitor struct {
	pages   *rate.Limiter
	submits *rate.Limiter
	seen    time.Time
}

// RateLimiter gives every visitor two token buckets: one for page views and
// a stricter one for submissions (sign in, registration, bookings, contact
// messages).
type RateLimiter struct {
	pageRPM   int
	submitRPM int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter builds the limiter. Zero picks the default budget; a
// negative page budget turns the page limit off.
func NewRateLimiter(pageRPM int, submitRPM int) *RateLimiter {
	if pageRPM == 0 {
		pageRPM = defaultPageRPM
	}
	if submitRPM <= 0 {
		submitRPM = defaultSubmitRPM
	}

	return &RateLimiter{
		pageRPM:   pageRPM,
		submitRPM: submitRPM,
		visitors:  make(map[string]*visitor),
		now:       time.Now,
	}
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.ToLower(r.URL.Path)
		if strings.HasPrefix(path, "/static/") || path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		v := l.visitor(ClientIP(r))
		limiter, rpm := v.pages, l.pageRPM
		if isSubmission(r.Method, path) {
			limiter, rpm = v.submits, l.submitRPM
		}

		if !limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter(rpm)))
			writePage(w, http.StatusTooManyRequests, statusPage{
				Title:   "Too many requests",
				Message: "Please wait a minute before trying again.",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isSubmission(method string, path string) bool {
	if method != http.MethodPost {
		return false
	}
	path = strings.TrimSuffix(path, "/")
	if _, ok := submitPaths[path]; ok {
		return true
	}
	return strings.HasPrefix(path, "/rooms/") && strings.HasSuffix(path, "/book")
}

func (l *RateLimiter) visitor(ip string) *visitor {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweepLocked(now)
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{pages: bucket(l.pageRPM), submits: bucket(l.submitRPM)}
		l.visitors[ip] = v
	}
	v.seen = now
	return v
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	l.lastSweep = now
	for ip, v := range l.visitors {
		if now.Sub(v.seen) > visitorIdleTTL {
			delete(l.visitors, ip)
		}
	}
}

// bucket refills rpm tokens a minute with a burst of rpm.
func bucket(rpm int) *rate.Limiter {
	if rpm < 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
}

func retryAfter(rpm int) int {
	if rpm <= 0 {
		return 60
	}
	return max(1, int(math.Ceil(60/float64(rpm))))
}

// ClientIP is the visitor's address: the first X-Forwarded-For hop, then
// X-Real-IP, then the connection's remote host.
func ClientIP(r *http.Request) string {
	if forwarded, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(forwarded) != "" {
		return strings.TrimSpace(forwarded)
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	if remote == "" {
		return "unknown"
	}
	return remote
}
