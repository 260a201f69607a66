package httpx

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Instrument returns a middleware that wraps the transport with
// OpenTelemetry HTTP instrumentation. Spans are named after the request path
// and tagged with the peer service name.
func Instrument(service string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return otelhttp.NewTransport(next,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithSpanOptions(
				trace.WithAttributes(attribute.String("peer.service", service)),
			),
		)
	}
}
