package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prooflens/prooflens/internal/ratelimit"
)

func TestGreeting_ServesFixedBody(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api/hello", nil)
			rec := httptest.NewRecorder()

			Greeting(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
			require.Equal(t, "Кот, скушай сосисочку 🌭", rec.Body.String())
		})
	}
}

func TestGreetingDeny_ServesThrottleBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/hello", nil)
	rec := httptest.NewRecorder()

	GreetingDeny(rec, req, ratelimit.Decision{Limit: 60})

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "Слишком много запросов. Попробуй позже.", rec.Body.String())
}
