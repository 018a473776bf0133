// Package trivia holds the question catalog domain: questions, categories, the store contracts they are
// read from, and the selection rules for listing, searching and quiz play.
package trivia

import (
	"context"
	"errors"
)

var (
	// ErrQuestionNotFound is returned when a question is not found.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrPageNotFound is returned when a requested page lies beyond the available questions.
	ErrPageNotFound = errors.New("page not found")
	// ErrEmptyPool is returned when there is no question to serve for the requested quiz category.
	ErrEmptyPool = errors.New("no questions available")
	// ErrInvalidQuestion is returned when a question is missing required fields.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrInvalidCategory is returned when a category identifier is negative.
	ErrInvalidCategory = errors.New("invalid category")
)

// Question represents a trivia question.
type Question struct {
	ID         int64
	Question   string
	Answer     string
	Difficulty int
	// Category references a Category by ID. The reference is not enforced.
	Category int64
}

// Valid checks if the question is valid.
func (q *Question) Valid(_ context.Context) map[string]string {
	problems := make(map[string]string)
	if q.Question == "" {
		problems["question"] = "Question is required"
	}
	if q.Answer == "" {
		problems["answer"] = "Answer is required"
	}
	if q.Difficulty <= 0 {
		problems["difficulty"] = "Difficulty must be a positive number"
	}
	if q.Category <= 0 {
		problems["category"] = "Category must be a positive number"
	}

	return problems
}

// Category represents a question category.
type Category struct {
	ID   int64
	Type string
}

// QuestionStore represents a store for questions.
// Every listing is ordered by ascending ID.
type QuestionStore interface {
	// Ping returns the status of the underlying storage.
	Ping(ctx context.Context) error
	// ListQuestions returns all questions.
	ListQuestions(ctx context.Context) ([]*Question, error)
	// ListQuestionsByCategory returns the questions of one category.
	ListQuestionsByCategory(ctx context.Context, categoryID int64) ([]*Question, error)
	// SearchQuestions returns questions whose text contains term, ignoring case.
	SearchQuestions(ctx context.Context, term string) ([]*Question, error)
	// GetQuestion returns a question by ID or ErrQuestionNotFound.
	GetQuestion(ctx context.Context, id int64) (*Question, error)
	// CreateQuestion inserts a question and sets its ID.
	CreateQuestion(ctx context.Context, q *Question) error
	// DeleteQuestion removes a question by ID or returns ErrQuestionNotFound.
	DeleteQuestion(ctx context.Context, id int64) error
}

// CategoryStore represents a read-only store for categories, ordered by ascending ID.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]*Category, error)
}
