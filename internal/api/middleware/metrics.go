package middleware

import (
	"net/http"
	"sync/atomic"
)

// Metrics returns middleware that tallies requests and error responses
// into the supplied counters. Any response with status 400 or above
// counts as an error.
func Metrics(requests, failures *atomic.Int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)

			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)

			if rw.statusCode >= 400 {
				failures.Add(1)
			}
		})
	}
}
