package trivia

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// Page is one page of the unfiltered question listing.
type Page struct {
	Questions []*Question
	// Total is the number of questions in the whole store.
	Total      int
	Categories map[string]string
}

// Service implements the catalog operations on top of the stores.
// It holds no state between calls; each call reads the stores fresh.
type Service struct {
	questions  QuestionStore
	categories CategoryStore
	intn       func(n int) int
}

// Option configures a Service.
type Option func(*Service)

// WithIntn replaces the random source used for quiz selection. intn must return a value in [0, n).
func WithIntn(intn func(n int) int) Option {
	return func(s *Service) {
		s.intn = intn
	}
}

// NewService initializes and returns a new instance of Service with the provided question and category stores.
func NewService(questions QuestionStore, categories CategoryStore, opts ...Option) *Service {
	s := &Service{
		questions:  questions,
		categories: categories,
		intn:       rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Categories returns the category mapping from the string form of each ID to its type label.
func (s *Service) Categories(ctx context.Context) (map[string]string, error) {
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return CategoryMap(categories), nil
}

// CategoryMap converts categories to the ID to type mapping.
func CategoryMap(categories []*Category) map[string]string {
	m := make(map[string]string, len(categories))
	for _, c := range categories {
		m[strconv.FormatInt(c.ID, 10)] = c.Type
	}

	return m
}

// QuestionPage returns a page of all questions together with the total count and the category mapping.
// Returns ErrPageNotFound if the page lies beyond the available questions. Page 1 is always served.
// Questions and categories are read concurrently; they are independent reads and may not reflect a
// single point in time.
func (s *Service) QuestionPage(ctx context.Context, page int) (*Page, error) {
	var questions []*Question
	var categories map[string]string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		questions, err = s.questions.ListQuestions(gctx)
		if err != nil {
			return fmt.Errorf("failed to list questions: %w", err)
		}

		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.Categories(gctx)

		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pageQuestions, ok := Paginate(questions, page, PageSize)
	if !ok {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageNotFound, page, PageCount(len(questions), PageSize))
	}

	return &Page{
		Questions:  pageQuestions,
		Total:      len(questions),
		Categories: categories,
	}, nil
}

// Search returns the questions whose text contains term, ignoring case. An empty term matches every question.
func (s *Service) Search(ctx context.Context, term string) ([]*Question, error) {
	questions, err := s.questions.SearchQuestions(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search questions for %q: %w", term, err)
	}

	return questions, nil
}

// QuestionsByCategory returns every question of a category. An unknown category yields no questions.
func (s *Service) QuestionsByCategory(ctx context.Context, categoryID int64) ([]*Question, error) {
	if categoryID < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, categoryID)
	}

	questions, err := s.questions.ListQuestionsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions for category %d: %w", categoryID, err)
	}

	return questions, nil
}

// NextQuestion picks the next quiz question from categoryID, or from all questions for AnyCategory,
// avoiding the most recently served question in previous. See SelectQuestion.
// Returns ErrEmptyPool if the category has no questions.
func (s *Service) NextQuestion(ctx context.Context, previous []int64, categoryID int64) (*Question, error) {
	var pool []*Question
	var err error
	switch {
	case categoryID < 0:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, categoryID)
	case categoryID == AnyCategory:
		pool, err = s.questions.ListQuestions(ctx)
	default:
		pool, err = s.questions.ListQuestionsByCategory(ctx, categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build quiz pool for category %d: %w", categoryID, err)
	}

	q, err := SelectQuestion(pool, previous, s.intn)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, err)
	}

	return q, nil
}

// Question returns a single question. Returns ErrQuestionNotFound if it does not exist.
func (s *Service) Question(ctx context.Context, id int64) (*Question, error) {
	q, err := s.questions.GetQuestion(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get question %d: %w", id, err)
	}

	return q, nil
}

// CreateQuestion validates and stores a new question, setting its ID.
func (s *Service) CreateQuestion(ctx context.Context, q *Question) error {
	if problems := q.Valid(ctx); len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidQuestion, problems)
	}

	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

// DeleteQuestion removes a question. Returns ErrQuestionNotFound if it does not exist.
func (s *Service) DeleteQuestion(ctx context.Context, id int64) error {
	if err := s.questions.DeleteQuestion(ctx, id); err != nil {
		return fmt.Errorf("failed to delete question %d: %w", id, err)
	}

	return nil
}
