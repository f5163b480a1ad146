// Package ranking computes the global standing of an attempt against every
// score ever recorded for the same test.
package ranking

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrUnavailable is returned when the score store cannot serve the
// request. Callers treat it as a signal to fall back, never as fatal.
var ErrUnavailable = errors.New("ranking store unavailable")

// Store is the persistence boundary of the global score pool. Scores are
// append-only: an attempt's score never changes once recorded.
type Store interface {
	AppendScore(ctx context.Context, testID uuid.UUID, score float64) error
	ListScores(ctx context.Context, testID uuid.UUID) ([]float64, error)
}

// Stats is the computed standing of one attempt.
type Stats struct {
	Rank          int     `json:"rank"`
	Percentile    float64 `json:"percentile"`
	TotalAttempts int     `json:"total_attempts"`
}

// Service records scores and ranks attempts. It holds no state of its own;
// the full score pool lives in the Store.
type Service struct {
	store Store
	log   zerolog.Logger
}

func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "ranking_service").Logger(),
	}
}

// RecordAndRank appends the attempt's score to the test's pool and ranks
// it against the pool including itself. Rank is one plus the number of
// strictly greater scores, so ties share the best rank of their group.
func (s *Service) RecordAndRank(ctx context.Context, testID uuid.UUID, score float64) (Stats, error) {
	if err := s.store.AppendScore(ctx, testID, score); err != nil {
		s.log.Error().Err(err).
			Str("test_id", testID.String()).
			Msg("Failed to append score")
		return Stats{}, ErrUnavailable
	}

	scores, err := s.store.ListScores(ctx, testID)
	if err != nil {
		s.log.Error().Err(err).
			Str("test_id", testID.String()).
			Msg("Failed to list scores")
		return Stats{}, ErrUnavailable
	}

	return Compute(score, scores), nil
}

// Compute ranks score against pool. The pool is expected to already
// contain the score being ranked.
func Compute(score float64, pool []float64) Stats {
	rank := 1
	for _, other := range pool {
		if other > score {
			rank++
		}
	}

	total := len(pool)
	percentile := 100.0
	if total > 1 {
		percentile = roundTwo(100 * float64(total-rank) / float64(total))
	}

	return Stats{
		Rank:          rank,
		Percentile:    percentile,
		TotalAttempts: total,
	}
}

func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}
