package cafe

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RouterOption tunes the middleware NewRouter installs in front of the
// resource routes.
type RouterOption func(*routerOptions)

type routerOptions struct {
	corsOrigin   string
	maxBodyBytes int64
	rateLimit    int
}

// WithCORS answers preflight requests and allows origin on every response.
// An empty origin disables CORS headers.
func WithCORS(origin string) RouterOption {
	return func(o *routerOptions) { o.corsOrigin = origin }
}

// WithBodyLimit rejects request bodies larger than n bytes with 413.
func WithBodyLimit(n int64) RouterOption {
	return func(o *routerOptions) { o.maxBodyBytes = n }
}

// WithRateLimit caps each client IP at rps requests per second. Zero
// disables the limit.
func WithRateLimit(rps int) RouterOption {
	return func(o *routerOptions) { o.rateLimit = rps }
}

func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bodyLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimiter counts requests per client IP in fixed one-second windows.
type rateLimiter struct {
	rps    int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*rateWindow
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

func newRateLimiter(rps int) *rateLimiter {
	return &rateLimiter{
		rps:     rps,
		window:  time.Second,
		now:     time.Now,
		clients: make(map[string]*rateWindow),
	}
}

// allow records one request from ip and reports whether it is within the
// limit, and if not, how long until the window resets.
func (l *rateLimiter) allow(ip string) (bool, time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	rw, ok := l.clients[ip]
	if !ok || now.After(rw.resetAt) {
		// drop expired windows so idle clients don't accumulate
		for k, v := range l.clients {
			if now.After(v.resetAt) {
				delete(l.clients, k)
			}
		}
		rw = &rateWindow{resetAt: now.Add(l.window)}
		l.clients[ip] = rw
	}
	rw.count++
	if rw.count > l.rps {
		return false, rw.resetAt.Sub(now)
	}
	return true, 0
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := l.allow(clientIP(r))
		if !ok {
			secs := int(retry.Round(time.Second) / time.Second)
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP expects middleware.RealIP to have run.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
