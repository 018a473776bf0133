package trivia_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/starquake/trivia/internal/trivia"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory QuestionStore and CategoryStore for service tests.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	questions  []*trivia.Question
	categories []*trivia.Category
	err        error
}

func newMemStore(n int, categoryOf func(i int) int64) *memStore {
	s := &memStore{
		categories: []*trivia.Category{
			{ID: 1, Type: "Science"},
			{ID: 2, Type: "Art"},
			{ID: 3, Type: "Geography"},
		},
	}
	for i := range n {
		_ = s.CreateQuestion(context.Background(), &trivia.Question{
			Question:   "Question " + string(rune('A'+i%26)),
			Answer:     "Answer",
			Difficulty: 1,
			Category:   categoryOf(i),
		})
	}

	return s
}

func (s *memStore) Ping(context.Context) error { return s.err }

func (s *memStore) filter(keep func(*trivia.Question) bool) ([]*trivia.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	out := make([]*trivia.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if keep(q) {
			c := *q
			out = append(out, &c)
		}
	}

	return out, nil
}

func (s *memStore) ListQuestions(context.Context) ([]*trivia.Question, error) {
	return s.filter(func(*trivia.Question) bool { return true })
}

func (s *memStore) ListQuestionsByCategory(_ context.Context, categoryID int64) ([]*trivia.Question, error) {
	return s.filter(func(q *trivia.Question) bool { return q.Category == categoryID })
}

func (s *memStore) SearchQuestions(_ context.Context, term string) ([]*trivia.Question, error) {
	term = strings.ToLower(term)

	return s.filter(func(q *trivia.Question) bool { return strings.Contains(strings.ToLower(q.Question), term) })
}

func (s *memStore) GetQuestion(_ context.Context, id int64) (*trivia.Question, error) {
	qs, err := s.filter(func(q *trivia.Question) bool { return q.ID == id })
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, trivia.ErrQuestionNotFound
	}

	return qs[0], nil
}

func (s *memStore) CreateQuestion(_ context.Context, q *trivia.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	s.nextID++
	q.ID = s.nextID
	c := *q
	s.questions = append(s.questions, &c)

	return nil
}

func (s *memStore) DeleteQuestion(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}

	i := slices.IndexFunc(s.questions, func(q *trivia.Question) bool { return q.ID == id })
	if i < 0 {
		return trivia.ErrQuestionNotFound
	}
	s.questions = slices.Delete(s.questions, i, i+1)

	return nil
}

func (s *memStore) ListCategories(context.Context) ([]*trivia.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	return slices.Clone(s.categories), nil
}

func ids(qs []*trivia.Question) []int64 {
	out := make([]int64, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}

	return out
}
