// Package health provides health check endpoints.
package health

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starquake/trivia/internal/httputil"
	"github.com/starquake/trivia/internal/logging"
	"github.com/starquake/trivia/internal/store"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealthz returns a handler that serves health check responses.
// The database is always checked. The category cache is checked when the category store can be pinged.
func HandleHealthz(logger *slog.Logger, stores *store.Stores) http.Handler {
	type healthStatus struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		httpStatus := http.StatusOK
		health := healthStatus{
			Status: "ok",
			Checks: make(map[string]string),
		}

		checks := map[string]pinger{"database": stores.Questions}
		if p, ok := stores.Categories.(pinger); ok {
			checks["cache"] = p
		}
		for name, p := range checks {
			if err := p.Ping(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", slog.String("check", name), logging.ErrAttr(err))
				health.Status = "degraded"
				health.Checks[name] = fmt.Sprintf("unhealthy: %v", err)
				httpStatus = http.StatusServiceUnavailable

				continue
			}
			health.Checks[name] = "healthy"
		}

		logger.DebugContext(ctx, "health check performed", slog.String("status", health.Status))
		if err := httputil.EncodeJSON(w, httpStatus, health); err != nil {
			logger.ErrorContext(ctx, "error encoding health status", logging.ErrAttr(err))
		}
	})
}
