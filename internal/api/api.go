// Package api provides the HTTP handlers of the trivia catalog API.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starquake/trivia/internal/httputil"
	"github.com/starquake/trivia/internal/logging"
	"github.com/starquake/trivia/internal/trivia"
)

// errBadRequest marks malformed request input.
var errBadRequest = errors.New("bad request")

// QuizCounter counts served quiz questions.
type QuizCounter interface {
	QuizServed(categoryID int64)
}

type questionResponse struct {
	ID         int64  `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty int    `json:"difficulty"`
	Category   int64  `json:"category"`
}

func formatQuestion(q *trivia.Question) questionResponse {
	return questionResponse{
		ID:         q.ID,
		Question:   q.Question,
		Answer:     q.Answer,
		Difficulty: q.Difficulty,
		Category:   q.Category,
	}
}

func formatQuestions(qs []*trivia.Question) []questionResponse {
	res := make([]questionResponse, 0, len(qs))
	for _, q := range qs {
		res = append(res, formatQuestion(q))
	}

	return res
}

// statusFor maps an error to the response status. Only an exhausted page or quiz pool is Not found; every other
// failure, including infrastructure faults, is Unprocessable.
func statusFor(err error) int {
	switch {
	case errors.Is(err, trivia.ErrPageNotFound), errors.Is(err, trivia.ErrEmptyPool):
		return http.StatusNotFound
	default:
		return http.StatusUnprocessableEntity
	}
}

// writeError logs err and writes the error payload for it.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	level := slog.LevelWarn
	if status == http.StatusUnprocessableEntity && !isClientError(err) {
		level = slog.LevelError
	}
	logger.Log(r.Context(), level, msg, logging.ErrAttr(err), slog.Int("status", status))

	writeStatus(w, r, logger, status)
}

// writeStatus writes the error payload for status.
func writeStatus(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int) {
	if err := httputil.EncodeError(w, status); err != nil {
		logger.ErrorContext(r.Context(), "error encoding error response", logging.ErrAttr(err))
	}
}

func isClientError(err error) bool {
	return errors.Is(err, trivia.ErrQuestionNotFound) ||
		errors.Is(err, trivia.ErrInvalidQuestion) ||
		errors.Is(err, trivia.ErrInvalidCategory) ||
		errors.Is(err, errBadRequest)
}

func encode[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, res T) {
	if err := httputil.EncodeJSON(w, http.StatusOK, res); err != nil {
		logger.ErrorContext(r.Context(), "error encoding response", logging.ErrAttr(err))
	}
}
