package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/rs/xid"

	"github.com/starquake/trivia/internal/httputil"
	"github.com/starquake/trivia/internal/logging"
)

const (
	requestIDHeader = "X-Request-Id"
	corsHeaders     = "Content-Type, Authorization, true"
	corsMethods     = "GET, POST, DELETE, OPTIONS"
)

// requestIDMiddleware assigns every request a fresh id, stores it in the context and echoes it in a header.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := xid.New().String()
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// loggingMiddleware logs every request once it has been served.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := httputil.NewStatusRecorder(w)

		next.ServeHTTP(rec, r)

		logger.InfoContext(r.Context(), "request served",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("pattern", r.Pattern),
			slog.Int("status", rec.Status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// recoverMiddleware turns a panicking handler into an Unprocessable response.
func recoverMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.ErrorContext(r.Context(), "handler panicked", slog.Any("panic", v))
				if err := httputil.EncodeError(w, http.StatusUnprocessableEntity); err != nil {
					logger.ErrorContext(r.Context(), "error encoding error response", logging.ErrAttr(err))
				}
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds the CORS headers and answers preflight requests with 204.
// An allowed origin of "*" allows every origin.
func corsMiddleware(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := slices.Contains(allowedOrigins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(allowedOrigins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Headers", corsHeaders)
		h.Set("Access-Control-Allow-Methods", corsMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
