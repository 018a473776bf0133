package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starquake/trivia/internal/db"
	"github.com/starquake/trivia/internal/logging"
	"github.com/starquake/trivia/internal/trivia"
)

const questionColumns = `id, question, answer, difficulty, category`

const (
	queryListQuestions           = `SELECT ` + questionColumns + ` FROM questions ORDER BY id`
	queryListQuestionsByCategory = `SELECT ` + questionColumns + ` FROM questions WHERE category = ? ORDER BY id`
	querySearchQuestions         = `SELECT ` + questionColumns + ` FROM questions ` +
		`WHERE LOWER(question) LIKE LOWER(?) ESCAPE '\' ORDER BY id`
	queryGetQuestion    = `SELECT ` + questionColumns + ` FROM questions WHERE id = ?`
	queryCreateQuestion = `INSERT INTO questions (question, answer, difficulty, category) ` +
		`VALUES (?, ?, ?, ?) RETURNING id`
	queryDeleteQuestion = `DELETE FROM questions WHERE id = ?`
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// QuestionStore is a SQL backed trivia.QuestionStore.
type QuestionStore struct {
	db      *sql.DB
	dialect db.Dialect
	logger  *slog.Logger
}

// NewQuestionStore initializes a new QuestionStore with the provided database connection and returns it.
func NewQuestionStore(conn *sql.DB, dialect db.Dialect, logger *slog.Logger) *QuestionStore {
	return &QuestionStore{db: conn, dialect: dialect, logger: logger}
}

// Ping checks the connection to the database, ensuring it's reachable and responsive.
func (s *QuestionStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// ListQuestions returns all questions ordered by ID.
func (s *QuestionStore) ListQuestions(ctx context.Context) ([]*trivia.Question, error) {
	return s.list(ctx, queryListQuestions)
}

// ListQuestionsByCategory returns the questions of one category ordered by ID.
func (s *QuestionStore) ListQuestionsByCategory(ctx context.Context, categoryID int64) ([]*trivia.Question, error) {
	return s.list(ctx, queryListQuestionsByCategory, categoryID)
}

// SearchQuestions returns the questions whose text contains term, ignoring case.
// LIKE wildcards in term match literally.
func (s *QuestionStore) SearchQuestions(ctx context.Context, term string) ([]*trivia.Question, error) {
	return s.list(ctx, querySearchQuestions, "%"+escapeLike(term)+"%")
}

// GetQuestion returns a question by its ID.
func (s *QuestionStore) GetQuestion(ctx context.Context, id int64) (*trivia.Question, error) {
	row := s.db.QueryRowContext(ctx, db.Rebind(s.dialect, queryGetQuestion), id)

	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trivia.ErrQuestionNotFound
		}

		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return q, nil
}

// CreateQuestion inserts a question and sets its ID.
func (s *QuestionStore) CreateQuestion(ctx context.Context, q *trivia.Question) error {
	if err := s.insert(ctx, s.db, q); err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}

	return nil
}

// CreateQuestions inserts the questions in a single transaction and sets their IDs.
// Either all of them are stored or none.
func (s *QuestionStore) CreateQuestions(ctx context.Context, questions []*trivia.Question) error {
	err := db.ExecTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, q := range questions {
			if err := s.insert(ctx, tx, q); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}

	return nil
}

// DeleteQuestion removes a question by its ID.
func (s *QuestionStore) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, db.Rebind(s.dialect, queryDeleteQuestion), id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return trivia.ErrQuestionNotFound
	}

	s.logger.DebugContext(ctx, "question deleted", slog.Int64("questionID", id))

	return nil
}

func (s *QuestionStore) insert(ctx context.Context, qr queryer, q *trivia.Question) error {
	row := qr.QueryRowContext(ctx, db.Rebind(s.dialect, queryCreateQuestion),
		q.Question, q.Answer, q.Difficulty, q.Category)

	var id int64
	if err := row.Scan(&id); err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	q.ID = id

	s.logger.DebugContext(ctx, "question created", slog.Int64("questionID", id))

	return nil
}

func (s *QuestionStore) list(ctx context.Context, query string, args ...any) ([]*trivia.Question, error) {
	rows, err := s.db.QueryContext(ctx, db.Rebind(s.dialect, query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			s.logger.ErrorContext(ctx, "error closing rows", logging.ErrAttr(closeErr))
		}
	}()

	questions := make([]*trivia.Question, 0)
	for rows.Next() {
		q, scanErr := scanQuestion(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan question: %w", scanErr)
		}
		questions = append(questions, q)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return questions, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row scanner) (*trivia.Question, error) {
	var q trivia.Question
	if err := row.Scan(&q.ID, &q.Question, &q.Answer, &q.Difficulty, &q.Category); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by the callers
	}

	return &q, nil
}

// escapeLike escapes the LIKE wildcards in s using backslash as the escape character.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
