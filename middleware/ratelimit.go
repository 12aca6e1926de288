package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"lyriclocate-go/logcolors"
	"lyriclocate-go/stats"
)

// IPRateLimiter manages per-IP token buckets
type IPRateLimiter struct {
	ips   map[string]*rate.Limiter
	mu    sync.RWMutex
	rate  rate.Limit
	burst int
}

// NewIPRateLimiter creates a limiter handing out r tokens per second with
// the given burst per client IP
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:   make(map[string]*rate.Limiter),
		rate:  r,
		burst: burst,
	}
}

// Burst returns the configured burst limit
func (i *IPRateLimiter) Burst() int {
	return i.burst
}

// GetLimiter returns the limiter for an IP, creating it if needed
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.RLock()
	limiter, exists := i.ips[ip]
	i.mu.RUnlock()
	if exists {
		return limiter
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if limiter, exists = i.ips[ip]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(i.rate, i.burst)
	i.ips[ip] = limiter
	return limiter
}

// RateLimitMiddleware enforces the per-IP limit and reports the remaining
// budget in X-RateLimit headers
func RateLimitMiddleware(limiter *IPRateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		lim := limiter.GetLimiter(ip)

		if !lim.Allow() {
			stats.Get().RecordRateLimited()
			log.Warnf("%s Too many requests from %s", logcolors.LogRateLimit, ip)
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
			w.Header().Set("X-RateLimit-Remaining", "0")
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Burst()))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(math.Floor(lim.Tokens()))))
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the X-Forwarded-For chain set by a fronting proxy
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
