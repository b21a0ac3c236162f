// Package interceptors carries request metadata from inbound HTTP requests
// to the outbound calls made on their behalf.
package interceptors

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/ecommerce-orders/internal/pkg/interceptors/constants"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

// RequestID returns the request id stored by WithRequestID, falling back to
// the one chi's RequestID middleware put in ctx.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(constants.ContextKeyRequestID).(string); ok && id != "" {
		return id
	}
	return middleware.GetReqID(ctx)
}

// AttachRequestID stores chi's request id under our key so it survives into
// outbound calls.
func AttachRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PropagateRequestID sets X-Request-Id on outbound requests whose context
// carries a request id.
func PropagateRequestID(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		id := RequestID(r.Context())
		if id == "" || r.Header.Get(constants.HeaderXRequestId) != "" {
			return base.RoundTrip(r)
		}
		r = r.Clone(r.Context())
		r.Header.Set(constants.HeaderXRequestId, id)
		return base.RoundTrip(r)
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
