// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"golang.org/x/time/rate"
)

// Limiter keeps one token bucket per key. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    rate.Limit
	interval time.Duration
	burst    int
	idle     time.Duration
	stopOnce sync.Once
	stopCh   chan struct{}
}

type bucket struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// New creates a limiter allowing n requests per period for each key, with a
// burst of n. Buckets unused for two periods are dropped.
func New(n int, period time.Duration) *Limiter {
	if n <= 0 {
		n = 1
	}
	if period <= 0 {
		period = time.Minute
	}
	interval := period / time.Duration(n)
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		limit:    rate.Every(interval),
		interval: interval,
		burst:    n,
		idle:     period * 2,
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request for key may proceed now.
func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

// Reset forgets the bucket for key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// RetryAfter is the whole number of seconds until one token refills.
func (l *Limiter) RetryAfter() int {
	secs := int(math.Ceil(l.interval.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

// Stop ends the background cleanup.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastAccess = time.Now()
	return b.limiter
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *Limiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if now.Sub(b.lastAccess) > l.idle {
			delete(l.buckets, key)
		}
	}
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP first, then falls back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// WriteLimited sends a 429 with a Retry-After header.
func WriteLimited(w http.ResponseWriter, retryAfter int, message string) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	apierr.Write(w, apierr.CodeRateLimited, message)
}

// Middleware limits requests per client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			WriteLimited(w, l.RetryAfter(), "too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LoginLimiter throttles login attempts by client IP and by account email.
type LoginLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewLoginLimiter allows perMinute attempts per IP per minute and half as
// many (at least one) per email over five minutes.
func NewLoginLimiter(perMinute int) *LoginLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	emailLimit := perMinute / 2
	if emailLimit < 1 {
		emailLimit = 1
	}
	return &LoginLimiter{
		ipLimiter:    New(perMinute, time.Minute),
		emailLimiter: New(emailLimit, 5*time.Minute),
	}
}

// Check verifies whether a login attempt may proceed. When it may not, the
// returned message explains which limit was hit and retryAfter is in seconds.
func (ll *LoginLimiter) Check(r *http.Request, email string) (ok bool, message string, retryAfter int) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, "too many login attempts, please wait a minute", ll.ipLimiter.RetryAfter()
	}
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" {
		if !ll.emailLimiter.Allow(key) {
			return false, "too many login attempts for this account, please wait a few minutes", ll.emailLimiter.RetryAfter()
		}
	}
	return true, "", 0
}

// ResetEmail clears the per-email limit after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" {
		ll.emailLimiter.Reset(key)
	}
}

// Stop ends both background cleanups.
func (ll *LoginLimiter) Stop() {
	ll.ipLimiter.Stop()
	ll.emailLimiter.Stop()
}
