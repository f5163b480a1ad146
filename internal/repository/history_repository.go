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

var ErrResultNotFound = errors.New("result not found")

// HistoryRepository is the durable store of completed attempt results. The
// full Result is stored as one JSONB document per row; the indexed columns
// exist only for lookup and ordering.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Save persists a result. Saving the same result twice is a no-op, so the
// retry worker can replay a write without creating duplicates.
func (r *HistoryRepository) Save(ctx context.Context, res *model.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO results (id, user_id, test_id, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		res.ID, res.UserID, res.Test.ID, payload, res.CreatedAt,
	)
	return err
}

// ListByUser retrieves a user's results newest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT payload FROM results
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Result
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var res model.Result
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetByID retrieves one result owned by the user.
func (r *HistoryRepository) GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Result, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM results WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}

	res := &model.Result{}
	if err := json.Unmarshal(payload, res); err != nil {
		return nil, err
	}
	return res, nil
}

// DeleteByUser clears a user's entire history.
func (r *HistoryRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM results WHERE user_id = $1`, userID)
	return err
}
