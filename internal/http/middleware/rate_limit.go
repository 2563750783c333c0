package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/pkg/logger"
)

// RateLimiter is a fixed-window limiter over Redis. A nil client disables
// limiting entirely, so the server runs without Redis in development.
type RateLimiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func NewRateLimiter(client *redis.Client, requests int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, requests: requests, window: window}
}

// Limit keys the window on client IP plus a label for the endpoint group.
func (rl *RateLimiter) Limit(label string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rl == nil || rl.client == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("ratelimit:%s:%s", label, clientIP(r))
			count, err := rl.client.Incr(r.Context(), key).Result()
			if err != nil {
				// Redis being down must not take logins with it.
				logger.WarnContext(r.Context(), "rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rl.client.Expire(r.Context(), key, rl.window)
			}
			if count > int64(rl.requests) {
				response.TooManyRequests(w, strconv.Itoa(int(rl.window.Seconds())))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

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
