package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prooflens/prooflens/internal/ratelimit"
	"github.com/prooflens/prooflens/internal/ratelimit/store"
)

func TestClientKeyPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", ClientKey(r))
}

func TestClientKeyFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:4321"
	require.Equal(t, "10.0.0.1", ClientKey(r))
}

func TestClientKeyHandlesPortlessRemoteAddr(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1"
	require.Equal(t, "10.0.0.1", ClientKey(r))
}

func TestClientKeyUnknownWhenNothingAvailable(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = ""
	require.Equal(t, "unknown", ClientKey(r))
}

func limitedHandler(t *testing.T, policy ratelimit.Policy, opts RateLimitOptions) http.Handler {
	t.Helper()
	limiter := ratelimit.New(store.NewMemory(context.Background(), 0))
	opts.Policy = policy
	mw := RateLimit(limiter, opts)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
}

func TestRateLimitSetsQuotaHeadersOnEveryResponse(t *testing.T) {
	h := limitedHandler(t, ratelimit.Policy{Limit: 2, Window: time.Minute}, RateLimitOptions{Route: "test"})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "1.2.3.4:1000"
		h.ServeHTTP(rec, req)

		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
		reset, err := strconv.ParseInt(rec.Header().Get("X-RateLimit-Reset"), 10, 64)
		require.NoError(t, err)
		require.Greater(t, reset, time.Now().UnixMilli())

		if i < 2 {
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, strconv.Itoa(1-i), rec.Header().Get("X-RateLimit-Remaining"))
		} else {
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
			require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
			require.JSONEq(t, `{"error": "Too Many Requests"}`, rec.Body.String())
		}
	}
}

func TestRateLimitDeniedNeverReachesHandler(t *testing.T) {
	limiter := ratelimit.New(store.NewMemory(context.Background(), 0))
	mw := RateLimit(limiter, RateLimitOptions{Route: "test", Policy: ratelimit.Policy{Limit: 1, Window: time.Minute}})

	calls := 0
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 4; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "1.2.3.4:1000"
		h.ServeHTTP(rec, req)
	}

	require.Equal(t, 1, calls, "denied requests must short-circuit before the handler")
}

func TestRateLimitUsesCustomDenyHandler(t *testing.T) {
	opts := RateLimitOptions{
		Route: "test",
		Deny: func(w http.ResponseWriter, r *http.Request, d ratelimit.Decision) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte("помедленнее"))
		},
	}
	h := limitedHandler(t, ratelimit.Policy{Limit: 1, Window: time.Minute}, opts)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "1.2.3.4:1000"
		h.ServeHTTP(rec, req)
		if i == 1 {
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
			require.Equal(t, "помедленнее", rec.Body.String())
			require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		}
	}
}

func TestRateLimitIsolatesClientKeys(t *testing.T) {
	h := limitedHandler(t, ratelimit.Policy{Limit: 1, Window: time.Minute}, RateLimitOptions{Route: "test"})

	for _, addr := range []string{"1.1.1.1:10", "2.2.2.2:10"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "fresh client %s must be allowed", addr)
	}
}

func TestAllowMethodRejectsBeforeNext(t *testing.T) {
	called := false
	h := AllowMethod(http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	require.JSONEq(t, `{"error": "Method Not Allowed"}`, rec.Body.String())
	require.False(t, called)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.True(t, called)
}
