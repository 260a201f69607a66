package httpx

import "net/http"

// CSRF returns a middleware that copies the value of the named cookie into
// the given request header, the way a browser storefront reads its csrftoken
// cookie into X-CSRFToken. The cookie jar populates request cookies before
// the transport runs, so the value is read straight off the request. Requests
// without the cookie pass through untouched; the server rejects them if the
// endpoint requires the token.
func CSRF(cookieName, header string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			if r.Header.Get(header) != "" {
				return next.RoundTrip(r)
			}
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				return next.RoundTrip(r)
			}
			r = cloneRequest(r)
			r.Header.Set(header, c.Value)
			return next.RoundTrip(r)
		})
	}
}

// DefaultHeaders returns a middleware that sets each given header on every
// outgoing request unless the caller already set it.
func DefaultHeaders(headers map[string]string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			r = cloneRequest(r)
			for k, v := range headers {
				if r.Header.Get(k) == "" {
					r.Header.Set(k, v)
				}
			}
			return next.RoundTrip(r)
		})
	}
}
