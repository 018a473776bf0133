// Package seed provides the demo question set and loads it into an empty store.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/starquake/trivia/internal/trivia"
)

//go:embed questions.json
var questionsJSON []byte

// Store is the subset of a question store needed for seeding.
type Store interface {
	ListQuestions(ctx context.Context) ([]*trivia.Question, error)
	CreateQuestions(ctx context.Context, questions []*trivia.Question) error
}

type question struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty int    `json:"difficulty"`
	Category   int64  `json:"category"`
}

// Questions returns a fresh copy of the demo questions, without IDs.
func Questions() ([]*trivia.Question, error) {
	var raw []question
	if err := json.Unmarshal(questionsJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode seed questions: %w", err)
	}

	questions := make([]*trivia.Question, 0, len(raw))
	for _, r := range raw {
		questions = append(questions, &trivia.Question{
			Question:   r.Question,
			Answer:     r.Answer,
			Difficulty: r.Difficulty,
			Category:   r.Category,
		})
	}

	return questions, nil
}

// Load inserts the demo questions if the store holds no questions yet and returns how many were inserted.
func Load(ctx context.Context, store Store, logger *slog.Logger) (int, error) {
	existing, err := store.ListQuestions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to check existing questions: %w", err)
	}
	if len(existing) > 0 {
		logger.InfoContext(ctx, "store not empty, skipping seed", slog.Int("questions", len(existing)))

		return 0, nil
	}

	questions, err := Questions()
	if err != nil {
		return 0, err
	}
	if err = store.CreateQuestions(ctx, questions); err != nil {
		return 0, fmt.Errorf("failed to seed questions: %w", err)
	}

	logger.InfoContext(ctx, "seeded demo questions", slog.Int("questions", len(questions)))

	return len(questions), nil
}
