package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/businessinrwanda/marketplace/internal/common"
	"github.com/businessinrwanda/marketplace/internal/logging"
	"github.com/businessinrwanda/marketplace/internal/server/models"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	userKey      ctxKey = "user"
	sessionKey   ctxKey = "session_id"
)

type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, m ...Middleware) http.Handler {
	for i := len(m) - 1; i >= 0; i-- {
		h = m[i](h)
	}
	return h
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// UserFrom returns the signed-in user, or nil for anonymous requests.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey).(string)
	return id
}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(common.RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

func Recover(log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "panic",
						"request_id", RequestIDFrom(r.Context()), "method", r.Method, "path", r.URL.Path, "panic", rec)
					writeMessage(w, r, http.StatusInternalServerError, common.ErrorInternal.Error(), nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func AccessLog(log logging.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)

			log.Info(r.Context(), "http",
				"request_id", RequestIDFrom(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"dur_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// authenticate resolves the session cookie. Requests without a valid session
// continue anonymously; an expired cookie is cleared.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.config.SessionCookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.deps.Sessions.Authenticate(r.Context(), c.Value)
		switch {
		case err == nil:
			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, sessionKey, c.Value)
			r = r.WithContext(ctx)
		case errors.Is(err, common.ErrorUnauthorized):
			s.clearSessionCookie(w)
		default:
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Idle client limiters are dropped after limiterIdleTTL, checked at most once
// per limiterSweepEvery. Past maxTrackedClients the least recently seen
// client is evicted to make room.
const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = time.Minute
	maxTrackedClients = 10000
)

type clientEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// clientLimiter rate-limits per client address.
type clientLimiter struct {
	mu        sync.Mutex
	m         map[string]*clientEntry
	r         rate.Limit
	b         int
	max       int
	now       func() time.Time
	lastSweep time.Time
}

func newClientLimiter(reqPerSec float64, burst int) *clientLimiter {
	return &clientLimiter{
		m:   make(map[string]*clientEntry),
		r:   rate.Limit(reqPerSec),
		b:   burst,
		max: maxTrackedClients,
		now: time.Now,
	}
}

func (cl *clientLimiter) allow(client string) bool {
	cl.mu.Lock()
	now := cl.now()
	if now.Sub(cl.lastSweep) >= limiterSweepEvery {
		cl.sweep(now)
	}
	e, ok := cl.m[client]
	if !ok {
		if len(cl.m) >= cl.max {
			cl.evictOldest()
		}
		e = &clientEntry{lim: rate.NewLimiter(cl.r, cl.b)}
		cl.m[client] = e
	}
	e.lastSeen = now
	cl.mu.Unlock()
	return e.lim.AllowN(now, 1)
}

// sweep drops clients idle for longer than limiterIdleTTL. Caller holds mu.
func (cl *clientLimiter) sweep(now time.Time) {
	for k, e := range cl.m {
		if now.Sub(e.lastSeen) > limiterIdleTTL {
			delete(cl.m, k)
		}
	}
	cl.lastSweep = now
}

// evictOldest removes the least recently seen client. Caller holds mu.
func (cl *clientLimiter) evictOldest() {
	var oldest string
	var at time.Time
	for k, e := range cl.m {
		if oldest == "" || e.lastSeen.Before(at) {
			oldest, at = k, e.lastSeen
		}
	}
	delete(cl.m, oldest)
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limit guards credential endpoints against brute force.
func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientAddr(r)) {
			w.Header().Set("Retry-After", "1")
			writeMessage(w, r, http.StatusTooManyRequests, "too many requests", nil)
			return
		}
		next(w, r)
	}
}
