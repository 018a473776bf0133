package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starquake/trivia/internal/httputil"
	"github.com/starquake/trivia/internal/trivia"
)

// HandleCategoryList returns the category mapping.
func HandleCategoryList(logger *slog.Logger, service *trivia.Service) http.Handler {
	type categoriesResponse struct {
		Success    bool              `json:"success"`
		Categories map[string]string `json:"categories"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		categories, err := service.Categories(r.Context())
		if err != nil {
			writeError(w, r, logger, "error listing categories", err)

			return
		}

		encode(w, r, logger, categoriesResponse{Success: true, Categories: categories})
	})
}

// HandleQuestionList returns a page of all questions with the total count and the category mapping.
// Absent or non-numeric pages are page 1.
// Returns 404 if the page lies beyond the available questions.
func HandleQuestionList(logger *slog.Logger, service *trivia.Service) http.Handler {
	type questionsResponse struct {
		Success         bool               `json:"success"`
		Questions       []questionResponse `json:"questions"`
		TotalQuestions  int                `json:"total_questions"`
		Categories      map[string]string  `json:"categories"`
		CurrentCategory string             `json:"current_category"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := service.QuestionPage(r.Context(), httputil.PageFromQuery(r))
		if err != nil {
			writeError(w, r, logger, "error listing questions", err)

			return
		}

		encode(w, r, logger, questionsResponse{
			Success:         true,
			Questions:       formatQuestions(page.Questions),
			TotalQuestions:  page.Total,
			Categories:      page.Categories,
			CurrentCategory: "",
		})
	})
}

// HandleQuestionGet returns a single question.
// Returns 404 if the question does not exist.
func HandleQuestionGet(logger *slog.Logger, service *trivia.Service) http.Handler {
	type getResponse struct {
		Success  bool             `json:"success"`
		Question questionResponse `json:"question"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.IDFromString(r.PathValue("id"))
		if err != nil {
			writeError(w, r, logger, "error parsing question id", fmt.Errorf("%w: %w", errBadRequest, err))

			return
		}

		q, err := service.Question(r.Context(), id)
		if err != nil {
			if errors.Is(err, trivia.ErrQuestionNotFound) {
				logger.DebugContext(r.Context(), "question not found", slog.Int64("questionID", id))
				writeStatus(w, r, logger, http.StatusNotFound)

				return
			}
			writeError(w, r, logger, "error getting question", err)

			return
		}

		encode(w, r, logger, getResponse{Success: true, Question: formatQuestion(q)})
	})
}

// HandleQuestionCreate creates a question from its four required fields.
// Difficulty and category may be sent as numbers or numeric strings.
// Returns 422 if a field is missing or the question cannot be stored.
func HandleQuestionCreate(logger *slog.Logger, service *trivia.Service) http.Handler {
	type createRequest struct {
		Question   *string           `json:"question"`
		Answer     *string           `json:"answer"`
		Difficulty *httputil.FlexInt `json:"difficulty"`
		Category   *httputil.FlexInt `json:"category"`
	}

	type createResponse struct {
		Success bool  `json:"success"`
		Created int64 `json:"created"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := httputil.DecodeJSON[createRequest](r)
		if err != nil {
			writeError(w, r, logger, "error decoding create request", fmt.Errorf("%w: %w", errBadRequest, err))

			return
		}
		if req.Question == nil || req.Answer == nil || req.Difficulty == nil || req.Category == nil {
			writeError(w, r, logger, "incomplete create request", fmt.Errorf("%w: missing field", trivia.ErrInvalidQuestion))

			return
		}

		q := &trivia.Question{
			Question:   *req.Question,
			Answer:     *req.Answer,
			Difficulty: int(*req.Difficulty),
			Category:   int64(*req.Category),
		}
		if err = service.CreateQuestion(r.Context(), q); err != nil {
			writeError(w, r, logger, "error creating question", err)

			return
		}

		logger.InfoContext(r.Context(), "question created", slog.Int64("questionID", q.ID))
		encode(w, r, logger, createResponse{Success: true, Created: q.ID})
	})
}

// HandleQuestionDelete deletes a question.
// Returns 422 if the id is malformed or no such question exists.
func HandleQuestionDelete(logger *slog.Logger, service *trivia.Service) http.Handler {
	type deleteResponse struct {
		Success bool  `json:"success"`
		Deleted int64 `json:"deleted"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.IDFromString(r.PathValue("id"))
		if err != nil {
			writeError(w, r, logger, "error parsing question id", fmt.Errorf("%w: %w", errBadRequest, err))

			return
		}

		if err = service.DeleteQuestion(r.Context(), id); err != nil {
			writeError(w, r, logger, "error deleting question", err)

			return
		}

		logger.InfoContext(r.Context(), "question deleted", slog.Int64("questionID", id))
		encode(w, r, logger, deleteResponse{Success: true, Deleted: id})
	})
}

// HandleQuestionSearch returns the questions whose text contains searchTerm, ignoring case.
// A missing or empty searchTerm matches every question.
func HandleQuestionSearch(logger *slog.Logger, service *trivia.Service) http.Handler {
	type searchRequest struct {
		SearchTerm string `json:"searchTerm"`
	}

	type searchResponse struct {
		Success         bool               `json:"success"`
		Questions       []questionResponse `json:"questions"`
		TotalQuestions  int                `json:"total_questions"`
		CurrentCategory string             `json:"current_category"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := httputil.DecodeJSON[searchRequest](r)
		if err != nil {
			writeError(w, r, logger, "error decoding search request", fmt.Errorf("%w: %w", errBadRequest, err))

			return
		}

		questions, err := service.Search(r.Context(), req.SearchTerm)
		if err != nil {
			writeError(w, r, logger, "error searching questions", err)

			return
		}

		encode(w, r, logger, searchResponse{
			Success:         true,
			Questions:       formatQuestions(questions),
			TotalQuestions:  len(questions),
			CurrentCategory: "",
		})
	})
}

// HandleCategoryQuestions returns every question of a category. The category id is echoed back unvalidated.
func HandleCategoryQuestions(logger *slog.Logger, service *trivia.Service) http.Handler {
	type categoryQuestionsResponse struct {
		Success         bool               `json:"success"`
		Questions       []questionResponse `json:"questions"`
		TotalQuestions  int                `json:"total_questions"`
		CurrentCategory int64              `json:"current_category"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.IDFromString(r.PathValue("id"))
		if err != nil {
			writeError(w, r, logger, "error parsing category id", fmt.Errorf("%w: %w", errBadRequest, err))

			return
		}

		questions, err := service.QuestionsByCategory(r.Context(), id)
		if err != nil {
			writeError(w, r, logger, "error listing category questions", err)

			return
		}

		encode(w, r, logger, categoryQuestionsResponse{
			Success:         true,
			Questions:       formatQuestions(questions),
			TotalQuestions:  len(questions),
			CurrentCategory: id,
		})
	})
}

// HandleQuizNext serves the next quiz question. Category id 0 plays from every category.
// previous_questions is echoed back unchanged; the client appends the served id before the next call.
// Returns 404 if the category has no questions.
// Returns 422 if quiz_category or its id is missing or not numeric.
func HandleQuizNext(logger *slog.Logger, service *trivia.Service, counter QuizCounter) http.Handler {
	type quizCategory struct {
		ID *httputil.FlexInt `json:"id"`
	}

	type quizRequest struct {
		PreviousQuestions []httputil.FlexInt `json:"previous_questions"`
		QuizCategory      *quizCategory      `json:"quiz_category"`
	}

	type quizResponse struct {
		Success           bool             `json:"success"`
		PreviousQuestions []int64          `json:"previous_questions"`
		Question          questionResponse `json:"question"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := httputil.DecodeJSON[quizRequest](r)
		if err != nil {
			writeError(w, r, logger, "error decoding quiz request", fmt.Errorf("%w: %w", errBadRequest, err))

			return
		}
		if req.QuizCategory == nil || req.QuizCategory.ID == nil {
			writeError(w, r, logger, "incomplete quiz request", fmt.Errorf("%w: missing quiz category", errBadRequest))

			return
		}

		categoryID := int64(*req.QuizCategory.ID)
		previous := make([]int64, 0, len(req.PreviousQuestions))
		for _, id := range req.PreviousQuestions {
			previous = append(previous, int64(id))
		}

		q, err := service.NextQuestion(r.Context(), previous, categoryID)
		if err != nil {
			writeError(w, r, logger, "error selecting quiz question", err)

			return
		}
		counter.QuizServed(categoryID)

		encode(w, r, logger, quizResponse{
			Success:           true,
			PreviousQuestions: previous,
			Question:          formatQuestion(q),
		})
	})
}
