package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/prooflens/prooflens/internal/metrics"
	"github.com/prooflens/prooflens/internal/observability"
	"github.com/prooflens/prooflens/internal/ratelimit"
)

// KeyFunc derives the rate-limit partition key for a request.
type KeyFunc func(r *http.Request) string

// ClientKey is the default KeyFunc: the first entry of the X-Forwarded-For
// chain, else the connection's host, else "unknown". Shared proxies collapse
// onto one key; acceptable for this domain.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// DenyHandler renders a rejected request. Quota headers are already set when
// it runs.
type DenyHandler func(w http.ResponseWriter, r *http.Request, d ratelimit.Decision)

// RateLimitOptions configures one route's limiter middleware.
type RateLimitOptions struct {
	Route  string
	Policy ratelimit.Policy
	KeyFn  KeyFunc
	Deny   DenyHandler
}

// RateLimit gates a route on the sliding-window limiter. Every response,
// allowed or denied, carries the X-RateLimit-* triad so clients can
// self-throttle. Store failures are logged; the limiter's fail direction
// decides the outcome.
func RateLimit(limiter *ratelimit.Limiter, opts RateLimitOptions) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = ClientKey
	}
	if opts.Deny == nil {
		opts.Deny = denyJSON
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			dec, err := limiter.Check(r.Context(), opts.Route, key, opts.Policy)
			if err != nil && observability.ServerLogger != nil {
				observability.ServerLogger.Error("rate limit store failure",
					zap.String("route", opts.Route),
					zap.String("client_key", key),
					zap.Bool("allowed", dec.Allowed),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.Error(err))
			}

			SetRateLimitHeaders(w, dec)
			metrics.RecordRateLimitDecision(opts.Route, dec.Allowed, err != nil)

			if !dec.Allowed {
				opts.Deny(w, r, dec)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SetRateLimitHeaders writes the quota triad. Reset is Unix milliseconds of
// the instant the oldest counted entry leaves the window.
func SetRateLimitHeaders(w http.ResponseWriter, d ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.UnixMilli(), 10))
}

func denyJSON(w http.ResponseWriter, r *http.Request, d ratelimit.Decision) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: "Too Many Requests"})
}
