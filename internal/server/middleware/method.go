package middleware

import (
	"encoding/json"
	"net/http"
)

// AllowMethod rejects every verb except method with 405 and an Allow hint.
// It runs before the rate limiter in the chain, so malformed calls never
// consume quota. The response is written directly rather than through the
// errors package to keep the import graph acyclic.
func AllowMethod(method string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.Header().Set("Allow", method)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusMethodNotAllowed)
				_ = json.NewEncoder(w).Encode(struct {
					Error string `json:"error"`
				}{Error: "Method Not Allowed"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
