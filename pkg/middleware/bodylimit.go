package middleware

import "net/http"

// BodyLimit caps request body size at maxBytes using http.MaxBytesReader,
// so oversized bodies fail the first read instead of buffering. A
// non-positive limit disables the cap.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
