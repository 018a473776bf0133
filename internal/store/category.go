package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/starquake/trivia/internal/logging"
	"github.com/starquake/trivia/internal/trivia"
)

const queryListCategories = `SELECT id, type FROM categories ORDER BY id`

// CategoryStore is a SQL backed trivia.CategoryStore.
type CategoryStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCategoryStore initializes a new CategoryStore with the provided database connection and returns it.
func NewCategoryStore(conn *sql.DB, logger *slog.Logger) *CategoryStore {
	return &CategoryStore{db: conn, logger: logger}
}

// ListCategories returns all categories ordered by ID.
func (s *CategoryStore) ListCategories(ctx context.Context) ([]*trivia.Category, error) {
	rows, err := s.db.QueryContext(ctx, queryListCategories)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.ErrorContext(ctx, "error closing rows", logging.ErrAttr(closeErr))
		}
	}()

	categories := make([]*trivia.Category, 0)
	for rows.Next() {
		var c trivia.Category
		if err = rows.Scan(&c.ID, &c.Type); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}
