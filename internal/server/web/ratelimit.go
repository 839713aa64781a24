package web

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// loginLimiterSize bounds the number of client addresses tracked at once.
// The least recently seen address loses its bucket first.
const loginLimiterSize = 4096

// loginLimiter is a token bucket per client address.
type loginLimiter struct {
	mu      sync.Mutex
	buckets *lru.Cache[string, *rate.Limiter]
	every   rate.Limit
	burst   int
}

func newLoginLimiter(perMinute, size int) (*loginLimiter, error) {
	if perMinute <= 0 {
		perMinute = 10
	}
	cache, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		return nil, err
	}
	return &loginLimiter{
		buckets: cache,
		every:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
	}, nil
}

func (l *loginLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.every, l.burst)
		l.buckets.Add(key, lim)
	}
	l.mu.Unlock()
	return lim.Allow()
}

// clientIP returns the caller address. X-Forwarded-For is honoured only
// when proxy headers are trusted.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
