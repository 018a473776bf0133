package store_test

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"github.com/starquake/trivia/internal/db"
	"github.com/starquake/trivia/internal/dbtest"
	. "github.com/starquake/trivia/internal/store"
	"github.com/starquake/trivia/internal/trivia"
)

var errBoom = errors.New("boom")

func newTestQuestions() []*trivia.Question {
	return []*trivia.Question{
		{Question: "What is the heaviest organ in the human body?", Answer: "The Liver", Difficulty: 4, Category: 1},
		{Question: "La Giaconda is better known as what?", Answer: "Mona Lisa", Difficulty: 3, Category: 2},
		{Question: "Who discovered penicillin?", Answer: "Alexander Fleming", Difficulty: 3, Category: 1},
		{Question: "Is 100% the same as 1_0_0?", Answer: "No", Difficulty: 1, Category: 3},
	}
}

func newSeededStore(t *testing.T) *QuestionStore {
	t.Helper()

	s := NewQuestionStore(dbtest.Open(t), db.DialectSQLite, slog.New(slog.DiscardHandler))
	for _, q := range newTestQuestions() {
		if err := s.CreateQuestion(t.Context(), q); err != nil {
			t.Fatalf("failed to create question: %v", err)
		}
	}

	return s
}

func questionIDs(qs []*trivia.Question) []int64 {
	out := make([]int64, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}

	return out
}

func TestQuestionStore_Ping(t *testing.T) {
	t.Parallel()

	t.Run("ping success", func(t *testing.T) {
		t.Parallel()

		s := NewQuestionStore(dbtest.Open(t), db.DialectSQLite, slog.Default())
		if err := s.Ping(t.Context()); err != nil {
			t.Errorf("unexpected error pinging database: %v", err)
		}
	})

	t.Run("ping failure", func(t *testing.T) {
		t.Parallel()

		conn := dbtest.OpenUnmigrated(t)
		s := NewQuestionStore(conn, db.DialectSQLite, slog.Default())

		// Close the database to trigger a ping error
		if err := conn.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}

		err := s.Ping(t.Context())
		if err == nil {
			t.Fatal("expected error pinging closed database, got nil")
		}
		if got, want := err.Error(), "failed to ping database"; !strings.Contains(got, want) {
			t.Errorf("err.Error() = %q, want it to contain %q", got, want)
		}
	})
}

func TestQuestionStore_CreateAndList(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)

	got, err := s.ListQuestions(t.Context())
	if err != nil {
		t.Fatalf("failed to list questions: %v", err)
	}

	want := newTestQuestions()
	for i, q := range want {
		q.ID = int64(i + 1)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("questions diff (-want +got):\n%s", diff)
	}
}

func TestQuestionStore_ListQuestions_Empty(t *testing.T) {
	t.Parallel()

	s := NewQuestionStore(dbtest.Open(t), db.DialectSQLite, slog.Default())

	got, err := s.ListQuestions(t.Context())
	if err != nil {
		t.Fatalf("failed to list questions: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ListQuestions() = %v, want empty non-nil slice", got)
	}
}

func TestQuestionStore_ListQuestionsByCategory(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)

	tests := []struct {
		category int64
		want     []int64
	}{
		{category: 1, want: []int64{1, 3}},
		{category: 2, want: []int64{2}},
		{category: 6, want: []int64{}},
		{category: 0, want: []int64{}},
	}
	for _, tt := range tests {
		got, err := s.ListQuestionsByCategory(t.Context(), tt.category)
		if err != nil {
			t.Fatalf("ListQuestionsByCategory(%d) error = %v", tt.category, err)
		}
		if diff := cmp.Diff(tt.want, questionIDs(got)); diff != "" {
			t.Errorf("ListQuestionsByCategory(%d) ids (-want +got):\n%s", tt.category, diff)
		}
	}
}

func TestQuestionStore_SearchQuestions(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)

	tests := []struct {
		name string
		term string
		want []int64
	}{
		{name: "case insensitive", term: "WHAT", want: []int64{1, 2}},
		{name: "substring", term: "penicil", want: []int64{3}},
		{name: "empty matches all", term: "", want: []int64{1, 2, 3, 4}},
		{name: "no match", term: "zebra", want: []int64{}},
		{name: "percent is literal", term: "100%", want: []int64{4}},
		{name: "lone percent", term: "%", want: []int64{4}},
		{name: "underscore is literal", term: "1_0", want: []int64{4}},
		{name: "lone underscore", term: "_", want: []int64{4}},
		{name: "backslash", term: `\`, want: []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := s.SearchQuestions(t.Context(), tt.term)
			if err != nil {
				t.Fatalf("SearchQuestions(%q) error = %v", tt.term, err)
			}
			if diff := cmp.Diff(tt.want, questionIDs(got)); diff != "" {
				t.Errorf("SearchQuestions(%q) ids (-want +got):\n%s", tt.term, diff)
			}
		})
	}
}

func TestQuestionStore_SearchQuestions_Unicode(t *testing.T) {
	t.Parallel()

	s := NewQuestionStore(dbtest.Open(t), db.DialectSQLite, slog.New(slog.DiscardHandler))
	for _, text := range []string{"Who painted ÉTOILE and Ärger?", "Who wrote Ödipus?"} {
		if err := s.CreateQuestion(t.Context(), &trivia.Question{Question: text, Answer: "A", Difficulty: 1, Category: 2}); err != nil {
			t.Fatalf("failed to create question: %v", err)
		}
	}

	tests := []struct {
		term string
		want []int64
	}{
		{term: "ÉTOILE", want: []int64{1}},
		{term: "étoile", want: []int64{1}},
		{term: "Étoile", want: []int64{1}},
		{term: "Ärger", want: []int64{1}},
		{term: "ärger", want: []int64{1}},
		{term: "ÖDIPUS", want: []int64{2}},
		{term: "who", want: []int64{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			t.Parallel()

			got, err := s.SearchQuestions(t.Context(), tt.term)
			if err != nil {
				t.Fatalf("SearchQuestions(%q) error = %v", tt.term, err)
			}
			if diff := cmp.Diff(tt.want, questionIDs(got)); diff != "" {
				t.Errorf("SearchQuestions(%q) ids (-want +got):\n%s", tt.term, diff)
			}
		})
	}
}

func TestQuestionStore_SearchQuestions_FoldsInSQL(t *testing.T) {
	t.Parallel()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer conn.Close()

	s := NewQuestionStore(conn, db.DialectPostgres, slog.New(slog.DiscardHandler))

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE LOWER(question) LIKE LOWER($1) ESCAPE '\' ORDER BY id`)).
		WithArgs(`%ÉTOILE\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question", "answer", "difficulty", "category"}))

	if _, err = s.SearchQuestions(t.Context(), "ÉTOILE_"); err != nil {
		t.Fatalf("SearchQuestions() error = %v", err)
	}
	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestQuestionStore_GetQuestion(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)

	got, err := s.GetQuestion(t.Context(), 2)
	if err != nil {
		t.Fatalf("GetQuestion() error = %v", err)
	}
	want := newTestQuestions()[1]
	want.ID = 2
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetQuestion() diff (-want +got):\n%s", diff)
	}

	if _, err = s.GetQuestion(t.Context(), 999); !errors.Is(err, trivia.ErrQuestionNotFound) {
		t.Errorf("GetQuestion(999) error = %v, want %v", err, trivia.ErrQuestionNotFound)
	}
}

func TestQuestionStore_DeleteQuestion(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)
	ctx := t.Context()

	if err := s.DeleteQuestion(ctx, 4); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}
	if err := s.DeleteQuestion(ctx, 4); !errors.Is(err, trivia.ErrQuestionNotFound) {
		t.Errorf("second DeleteQuestion() error = %v, want %v", err, trivia.ErrQuestionNotFound)
	}

	// Deleted ids are not handed out again.
	q := &trivia.Question{Question: "New", Answer: "A", Difficulty: 1, Category: 1}
	if err := s.CreateQuestion(ctx, q); err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}
	if q.ID != 5 {
		t.Errorf("CreateQuestion() ID = %d, want 5", q.ID)
	}
}

func TestQuestionStore_CreateQuestion_ConstraintError(t *testing.T) {
	t.Parallel()

	s := NewQuestionStore(dbtest.Open(t), db.DialectSQLite, slog.Default())

	err := s.CreateQuestion(t.Context(), &trivia.Question{Question: "Q", Answer: "A", Difficulty: 0, Category: 1})
	if err == nil {
		t.Fatal("got nil, want error")
	}
	if got, want := err.Error(), "failed to create question"; !strings.Contains(got, want) {
		t.Errorf("err.Error() = %q, should contain %q", got, want)
	}
}

func TestQuestionStore_CreateQuestions(t *testing.T) {
	t.Parallel()

	t.Run("all stored", func(t *testing.T) {
		t.Parallel()

		s := NewQuestionStore(dbtest.Open(t), db.DialectSQLite, slog.Default())
		questions := newTestQuestions()
		if err := s.CreateQuestions(t.Context(), questions); err != nil {
			t.Fatalf("CreateQuestions() error = %v", err)
		}
		if diff := cmp.Diff([]int64{1, 2, 3, 4}, questionIDs(questions)); diff != "" {
			t.Errorf("assigned ids (-want +got):\n%s", diff)
		}
	})

	t.Run("rolled back on error", func(t *testing.T) {
		t.Parallel()

		s := NewQuestionStore(dbtest.Open(t), db.DialectSQLite, slog.Default())
		questions := newTestQuestions()
		questions[2].Difficulty = 0

		if err := s.CreateQuestions(t.Context(), questions); err == nil {
			t.Fatal("got nil, want error")
		}

		got, err := s.ListQuestions(t.Context())
		if err != nil {
			t.Fatalf("ListQuestions() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ListQuestions() = %d questions after rollback, want 0", len(got))
		}
	})
}

func TestQuestionStore_ContextCanceled(t *testing.T) {
	t.Parallel()

	s := newSeededStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListQuestions(ctx)
	if err == nil {
		t.Fatal("got nil, want error")
	}
	if got, want := err.Error(), "context canceled"; !strings.Contains(got, want) {
		t.Errorf("err.Error() = %q, should contain %q", got, want)
	}
}

func TestQuestionStore_Postgres_Placeholders(t *testing.T) {
	t.Parallel()

	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer conn.Close()

	s := NewQuestionStore(conn, db.DialectPostgres, slog.New(slog.DiscardHandler))

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE category = $1 ORDER BY id`)).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "question", "answer", "difficulty", "category"}).
			AddRow(int64(7), "Q", "A", 1, int64(2)))
	mock.ExpectQuery(regexp.QuoteMeta(`VALUES ($1, $2, $3, $4) RETURNING id`)).
		WithArgs("Q", "A", 1, int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM questions WHERE id = $1`)).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := s.ListQuestionsByCategory(t.Context(), 2)
	if err != nil {
		t.Fatalf("ListQuestionsByCategory() error = %v", err)
	}
	if diff := cmp.Diff([]*trivia.Question{{ID: 7, Question: "Q", Answer: "A", Difficulty: 1, Category: 2}}, got); diff != "" {
		t.Errorf("ListQuestionsByCategory() diff (-want +got):\n%s", diff)
	}

	q := &trivia.Question{Question: "Q", Answer: "A", Difficulty: 1, Category: 2}
	if err = s.CreateQuestion(t.Context(), q); err != nil {
		t.Fatalf("CreateQuestion() error = %v", err)
	}
	if q.ID != 8 {
		t.Errorf("CreateQuestion() ID = %d, want 8", q.ID)
	}

	if err = s.DeleteQuestion(t.Context(), 8); err != nil {
		t.Fatalf("DeleteQuestion() error = %v", err)
	}

	if err = mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestQuestionStore_ErrorHandling(t *testing.T) {
	t.Parallel()

	columns := []string{"id", "question", "answer", "difficulty", "category"}

	tests := []struct {
		name    string
		setup   func(mock sqlmock.Sqlmock)
		call    func(s *QuestionStore) error
		wantErr string
	}{
		{
			name: "list query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnError(errBoom)
			},
			call: func(s *QuestionStore) error {
				_, err := s.ListQuestions(context.Background())

				return err
			},
			wantErr: "failed to list questions",
		},
		{
			name: "scan error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").
					WillReturnRows(sqlmock.NewRows(columns).AddRow("not-a-number", "Q", "A", 1, 1))
			},
			call: func(s *QuestionStore) error {
				_, err := s.SearchQuestions(context.Background(), "q")

				return err
			},
			wantErr: "failed to scan question",
		},
		{
			name: "row iteration error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").
					WillReturnRows(sqlmock.NewRows(columns).AddRow(1, "Q", "A", 1, 1).RowError(0, errBoom))
			},
			call: func(s *QuestionStore) error {
				_, err := s.ListQuestionsByCategory(context.Background(), 1)

				return err
			},
			wantErr: "failed to iterate questions",
		},
		{
			name: "get error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnError(errBoom)
			},
			call: func(s *QuestionStore) error {
				_, err := s.GetQuestion(context.Background(), 1)

				return err
			},
			wantErr: "failed to get question",
		},
		{
			name: "delete exec error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE").WillReturnError(errBoom)
			},
			call: func(s *QuestionStore) error {
				return s.DeleteQuestion(context.Background(), 1)
			},
			wantErr: "failed to delete question",
		},
		{
			name: "delete rows affected error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE").WillReturnResult(sqlmock.NewErrorResult(errBoom))
			},
			call: func(s *QuestionStore) error {
				return s.DeleteQuestion(context.Background(), 1)
			},
			wantErr: "failed to read rows affected",
		},
		{
			name: "batch begin error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errBoom)
			},
			call: func(s *QuestionStore) error {
				return s.CreateQuestions(context.Background(), newTestQuestions())
			},
			wantErr: "failed to create questions",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("failed to create sqlmock: %v", err)
			}
			defer conn.Close()

			tt.setup(mock)
			s := NewQuestionStore(conn, db.DialectSQLite, slog.New(slog.DiscardHandler))

			err = tt.call(s)
			if err == nil {
				t.Fatal("got nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err.Error() = %q, should contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
