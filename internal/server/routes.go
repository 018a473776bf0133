package server

import (
	"log/slog"
	"net/http"

	"github.com/starquake/trivia/internal/api"
	"github.com/starquake/trivia/internal/health"
	"github.com/starquake/trivia/internal/httputil"
	"github.com/starquake/trivia/internal/metrics"
	"github.com/starquake/trivia/internal/store"
	"github.com/starquake/trivia/internal/trivia"
)

func addRoutes(
	mux *http.ServeMux,
	logger *slog.Logger,
	service *trivia.Service,
	stores *store.Stores,
	m *metrics.Metrics,
	clientHandler http.Handler,
) {
	mux.Handle("GET /categories", api.HandleCategoryList(logger, service))
	mux.Handle("GET /categories/{id}/questions", api.HandleCategoryQuestions(logger, service))
	mux.Handle("GET /questions", api.HandleQuestionList(logger, service))
	mux.Handle("POST /questions", api.HandleQuestionCreate(logger, service))
	mux.Handle("GET /questions/{id}", api.HandleQuestionGet(logger, service))
	mux.Handle("DELETE /questions/{id}", api.HandleQuestionDelete(logger, service))
	mux.Handle("POST /questions/search", api.HandleQuestionSearch(logger, service))
	mux.Handle("POST /quizzes", api.HandleQuizNext(logger, service, m))

	mux.Handle("GET /healthz", health.HandleHealthz(logger, stores))
	mux.Handle("GET /metrics", m.Handler())

	mux.Handle("GET /{$}", clientHandler)
	mux.Handle("GET /assets/", clientHandler)

	// Any other verb on a known path.
	for _, path := range []string{
		"/categories",
		"/categories/{id}/questions",
		"/questions",
		"/questions/{id}",
		"/quizzes",
		"/healthz",
		"/metrics",
		"/{$}",
		"/assets/",
	} {
		mux.Handle(path, handleStatus(logger, http.StatusMethodNotAllowed))
	}
	// "/questions/search" cannot have a catch-all as it would overlap with "DELETE /questions/{id}".
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		mux.Handle(method+" /questions/search", handleStatus(logger, http.StatusMethodNotAllowed))
	}

	mux.Handle("/", handleStatus(logger, http.StatusNotFound))
}

func handleStatus(logger *slog.Logger, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := httputil.EncodeError(w, status); err != nil {
			logger.ErrorContext(r.Context(), "error encoding error response", slog.Any("err", err))
		}
	})
}
