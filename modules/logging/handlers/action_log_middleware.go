package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/inventory/modules/logging/domain/entities/actionlog"
	"github.com/iota-uz/inventory/modules/logging/services"
	"github.com/iota-uz/inventory/pkg/composables"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// ActionLogMiddleware records successful mutating requests into action_logs.
// Failures to log are reported and never change the response.
func ActionLogMiddleware(logsService *services.LogsService, enabled bool) mux.MiddlewareFunc {
	if !enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isMutation(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status >= http.StatusBadRequest {
				return
			}

			ctx := r.Context()
			actor, err := composables.UseActor(ctx)
			if err != nil {
				return
			}
			entry := &actionlog.ActionLog{
				Actor:     actor.Username,
				Action:    "http.request",
				Method:    strings.ToUpper(r.Method),
				Path:      r.URL.Path,
				UserAgent: r.UserAgent(),
				IP:        r.RemoteAddr,
				CreatedAt: time.Now(),
			}
			if err := composables.InTx(ctx, func(txCtx context.Context) error {
				return logsService.CreateActionLog(txCtx, entry)
			}); err != nil {
				composables.UseLogger(ctx).WithError(err).Warn("action-log: failed to persist request")
			}
		})
	}
}
