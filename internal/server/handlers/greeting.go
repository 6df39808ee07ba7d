package handlers

import (
	"io"
	"net/http"

	"github.com/prooflens/prooflens/internal/ratelimit"
)

// The greeting route returns a fixed string; it exists so clients (and
// humans) can probe the gateway and read their quota headers cheaply.
const (
	greetingBody      = "Кот, скушай сосисочку 🌭"
	greetingThrottled = "Слишком много запросов. Попробуй позже."
)

// Greeting serves the fixed greeting. Any method is accepted.
func Greeting(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, greetingBody)
}

// GreetingDeny renders the greeting route's plain-text throttle response.
// Wired as the route's rate-limit DenyHandler.
func GreetingDeny(w http.ResponseWriter, r *http.Request, d ratelimit.Decision) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = io.WriteString(w, greetingThrottled)
}
