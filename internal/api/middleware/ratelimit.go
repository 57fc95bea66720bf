package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/bazaar/internal/metrics"
)

const rateLimitWindow = time.Minute

// RateLimiter enforces a fixed-window per-caller request limit backed by
// Redis. With no Redis client it is a pass-through, so development setups
// work unthrottled.
type RateLimiter struct {
	client    *redis.Client
	logger    zerolog.Logger
	limit     int
	whitelist []*net.IPNet
}

// NewRateLimiter creates a rate limiter. whitelist entries are IPs or CIDRs
// exempt from limiting.
func NewRateLimiter(client *redis.Client, logger zerolog.Logger, limit int, whitelist []string) *RateLimiter {
	rl := &RateLimiter{client: client, logger: logger, limit: limit}

	for _, entry := range whitelist {
		if _, ipnet, err := net.ParseCIDR(entry); err == nil {
			rl.whitelist = append(rl.whitelist, ipnet)
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			rl.whitelist = append(rl.whitelist, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}
		logger.Warn().Str("entry", entry).Msg("ignoring invalid rate limit whitelist entry")
	}

	return rl
}

// Middleware applies the rate limit keyed by remote IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl.client == nil || rl.limit <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := remoteIP(r)
		if rl.isWhitelisted(ip) {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("ratelimit:%s", ip)

		pipe := rl.client.Pipeline()
		incr := pipe.Incr(r.Context(), key)
		pipe.Expire(r.Context(), key, rateLimitWindow)
		if _, err := pipe.Exec(r.Context()); err != nil {
			// Redis trouble must not take the API down
			rl.logger.Warn().Err(err).Msg("rate limit check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		count := int(incr.Val())
		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > rl.limit {
			metrics.RateLimitHits.WithLabelValues(normalizePath(r.URL.Path)).Inc()
			w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) isWhitelisted(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, ipnet := range rl.whitelist {
		if ipnet.Contains(ip) {
			return true
		}
	}
	return false
}

func remoteIP(r *http.Request) string {
	// chi's RealIP middleware has already rewritten RemoteAddr when
	// forwarding headers are present
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
