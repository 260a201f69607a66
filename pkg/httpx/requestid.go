package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID returns a middleware that stamps every outgoing request with an
// X-Request-ID header. An ID already set by the caller is kept, as long as it
// is at most 128 bytes of printable ASCII (0x20-0x7E); anything else is
// replaced with a fresh UUID v4.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			id := r.Header.Get("X-Request-ID")
			if !isValidRequestID(id) {
				id = uuid.New().String()
			}
			r = cloneRequest(r)
			r.Header.Set("X-Request-ID", id)
			return next.RoundTrip(r)
		})
	}
}

// isValidRequestID checks that id is non-empty, at most 128 bytes, and
// contains only printable ASCII (0x20-0x7E).
func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for i := range len(id) {
		if id[i] < 0x20 || id[i] > 0x7E {
			return false
		}
	}
	return true
}

// cloneRequest makes a shallow copy of the request with a deep copy of its
// headers. Transports must not mutate the caller's request.
func cloneRequest(r *http.Request) *http.Request {
	r2 := r.Clone(r.Context())
	return r2
}
