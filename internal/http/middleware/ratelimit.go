package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/princekumarofficial/videos-service/internal/ratelimit"
	"github.com/princekumarofficial/videos-service/internal/utils/response"
)

// ActionWrites covers PUT, PATCH and DELETE on videos
const ActionWrites = "writes"

type RateLimitConfig struct {
	limiters map[string]*ratelimit.TokenBucket
}

func NewRateLimitConfig(redisClient *redis.Client, writesPerMinute int64) *RateLimitConfig {
	config := &RateLimitConfig{
		limiters: make(map[string]*ratelimit.TokenBucket),
	}

	config.limiters[ActionWrites] = ratelimit.NewTokenBucket(redisClient, writesPerMinute, writesPerMinute)

	return config
}

func (rlc *RateLimitConfig) RateLimitMiddleware(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limiter, exists := rlc.limiters[action]
		if !exists {
			return next
		}

		limit := strconv.FormatInt(limiter.Capacity(), 10)
		reset := strconv.Itoa(int(limiter.Window().Seconds()))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r)

			allowed, err := limiter.Allow(r.Context(), client, action)
			if err != nil {
				slog.Error("Rate limit check failed", slog.String("error", err.Error()), slog.String("client", client))
				response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
					errors.New("rate limit check failed")))
				return
			}

			remaining, _ := limiter.GetRemaining(r.Context(), client, action)

			w.Header().Set("X-RateLimit-Limit", limit)
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", reset)

			if !allowed {
				response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
					errors.New("rate limit exceeded")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitedHandler wraps a handler with rate limiting for a specific action
func (rlc *RateLimitConfig) RateLimitedHandler(action string, handler http.HandlerFunc) http.Handler {
	return rlc.RateLimitMiddleware(action)(handler)
}

// clientKey identifies the caller by the host part of the remote address
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
