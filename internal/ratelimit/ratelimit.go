package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Decision is the limiter's verdict for a single request. RetryAfter is an
// optional hint; zero means no hint is available.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter decides whether a client may proceed within a named quota bucket.
type Limiter interface {
	Allow(client, bucket string) Decision
}

// TokenLimiter implements Limiter with one token bucket per client and
// quota bucket. State is per-process; replicas enforce independently.
type TokenLimiter struct {
	mu       sync.Mutex
	perMin   int
	burst    int
	limiters map[string]*rate.Limiter
}

// New creates a limiter allowing perMin requests per minute with the given
// burst capacity per client/bucket pair.
func New(perMin, burst int) *TokenLimiter {
	if perMin < 1 {
		perMin = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &TokenLimiter{
		perMin:   perMin,
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow consumes one token for the client in the named bucket. When the
// bucket is drained the decision carries the token bucket's refill delay as
// the retry hint.
func (l *TokenLimiter) Allow(client, bucket string) Decision {
	lim := l.limiterFor(bucket + "|" + client)

	reservation := lim.Reserve()
	if !reservation.OK() {
		return Decision{}
	}
	if delay := reservation.Delay(); delay > 0 {
		// Denied: hand the token back so the hint stays accurate.
		reservation.Cancel()
		return Decision{RetryAfter: delay}
	}
	return Decision{Allowed: true}
}

func (l *TokenLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(l.perMin)/60.0), l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// ClientIP extracts the caller's IP, honoring X-Forwarded-For when it holds
// a parseable address.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip != "" && net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return r.RemoteAddr
}
