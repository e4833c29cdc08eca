package middleware

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iota-uz/inventory/pkg/composables"
)

// WithActor binds the username forwarded by the authenticating proxy to the request context.
// Requests without the header pass through; handlers that mutate state decide how to treat them.
func WithActor(header string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := strings.TrimSpace(r.Header.Get(header))
			if username == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := composables.WithActor(r.Context(), composables.Actor{Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
