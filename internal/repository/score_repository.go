package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScoreRepository is the append-only global score pool backing the ranking
// service. Rows are never updated or deleted.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// AppendScore records one attempt's score for a test.
func (r *ScoreRepository) AppendScore(ctx context.Context, testID uuid.UUID, score float64) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO global_results (test_id, score) VALUES ($1, $2)`,
		testID, score,
	)
	return err
}

// ListScores returns every score ever recorded for a test.
func (r *ScoreRepository) ListScores(ctx context.Context, testID uuid.UUID) ([]float64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT score FROM global_results WHERE test_id = $1`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var s float64
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
