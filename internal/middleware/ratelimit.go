package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"recipe-admin/internal/model"
)

const (
	clientIdleTTL   = 10 * time.Minute
	clientSweepSize = 1000
)

type bucket int

const (
	bucketGeneral bucket = iota
	bucketAuth
	bucketNone
)

type clientLimiter struct {
	buckets  [2]*rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps one general and one sign-in bucket per client
// address. Stored image downloads are never limited.
type RateLimitMiddleware struct {
	generalRPM int
	authRPM    int

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func NewRateLimitMiddleware(generalRPM int, authRPM int) *RateLimitMiddleware {
	if generalRPM <= 0 {
		generalRPM = 100
	}
	if authRPM <= 0 {
		authRPM = 10
	}

	return &RateLimitMiddleware{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		clients:    map[string]*clientLimiter{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := classify(r.URL.Path)
		if b == bucketNone {
			next.ServeHTTP(w, r)
			return
		}

		limiter := m.limiter(clientAddress(r), b)
		if !limiter.Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(m.rpm(b))))
			writeFailure(w, http.StatusTooManyRequests, model.APIError{
				Code:    "RATE_LIMITED",
				Message: "Too many requests",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Login attempts, password resets and the login form share the tighter bucket.
func classify(rawPath string) bucket {
	path := strings.ToLower(rawPath)
	switch {
	case strings.HasPrefix(path, "/storage/o/"):
		return bucketNone
	case path == LoginPath, strings.HasPrefix(path, "/api/v1/auth"):
		return bucketAuth
	default:
		return bucketGeneral
	}
}

func (m *RateLimitMiddleware) limiter(addr string, b bucket) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	client, ok := m.clients[addr]
	if !ok {
		client = &clientLimiter{buckets: [2]*rate.Limiter{
			bucketGeneral: perMinute(m.generalRPM),
			bucketAuth:    perMinute(m.authRPM),
		}}
		m.clients[addr] = client
	}
	client.lastSeen = now

	if len(m.clients) >= clientSweepSize {
		m.sweepLocked(now)
	}

	return client.buckets[b]
}

func (m *RateLimitMiddleware) sweepLocked(now time.Time) {
	cutoff := now.Add(-clientIdleTTL)
	for addr, client := range m.clients {
		if client.lastSeen.Before(cutoff) {
			delete(m.clients, addr)
		}
	}
}

func perMinute(rpm int) *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
}

func (m *RateLimitMiddleware) rpm(b bucket) int {
	if b == bucketAuth {
		return m.authRPM
	}
	return m.generalRPM
}

// retryAfterSeconds is the refill interval of one token, rounded up.
func retryAfterSeconds(rpm int) int {
	return max(1, (60+rpm-1)/rpm)
}

func clientAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
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
