package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

var ErrTestNotFound = errors.New("test not found")

// TestSummary is the catalog row: a test without its question bodies.
type TestSummary struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	QuestionCount   int       `json:"question_count"`
	DurationMinutes int       `json:"duration_minutes"`
	OwnerID         *uuid.UUID `json:"owner_id,omitempty"`
}

// TestRepository handles test catalog data access. Questions are stored as
// a JSONB document since they are always read and written whole.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

// Create inserts a new test.
func (r *TestRepository) Create(ctx context.Context, t *model.Test) error {
	questions, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO tests (title, category, questions, positive_marks, negative_marks, duration_minutes, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		t.Title, t.Category, questions, t.PositiveMarks, t.NegativeMarks, t.DurationMinutes, t.OwnerID,
	).Scan(&t.ID, &t.CreatedAt)
}

// GetByID retrieves a full test including its questions.
func (r *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Test, error) {
	t := &model.Test{}
	var questions []byte
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, category, questions, positive_marks, negative_marks, duration_minutes, owner_id, created_at
		 FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.Title, &t.Category, &questions, &t.PositiveMarks, &t.NegativeMarks, &t.DurationMinutes, &t.OwnerID, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTestNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(questions, &t.Questions); err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves catalog summaries: stock tests plus the user's own.
func (r *TestRepository) List(ctx context.Context, userID uuid.UUID) ([]TestSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, category, jsonb_array_length(questions), duration_minutes, owner_id
		 FROM tests
		 WHERE owner_id IS NULL OR owner_id = $1
		 ORDER BY category, title`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []TestSummary
	for rows.Next() {
		var s TestSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.Category, &s.QuestionCount, &s.DurationMinutes, &s.OwnerID); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// Delete removes a user-owned test. Stock tests (owner IS NULL) cannot be
// deleted through this path.
func (r *TestRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tests WHERE id = $1 AND owner_id = $2`, id, ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTestNotFound
	}
	return nil
}
