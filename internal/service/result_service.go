package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mocktestapp/mocktest-backend/internal/config"
	"github.com/mocktestapp/mocktest-backend/internal/model"
	"github.com/mocktestapp/mocktest-backend/internal/ranking"
	"github.com/mocktestapp/mocktest-backend/internal/scoring"
	"github.com/mocktestapp/mocktest-backend/internal/session"
)

// HistoryStore is the durable side of result persistence.
type HistoryStore interface {
	Save(ctx context.Context, res *model.Result) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Result, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (*model.Result, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// HistoryBackup is the cache side of result persistence.
type HistoryBackup interface {
	Push(ctx context.Context, res *model.Result) error
	List(ctx context.Context, userID uuid.UUID) ([]model.Result, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// rankOutcome tags how the ranking leg of aggregation ended. The result is
// always produced; the outcome only decides which standing values it gets.
type rankOutcome int

const (
	rankOk rankOutcome = iota
	rankTimedOut
	rankFailed
)

// ResultService aggregates a submitted session snapshot into a final
// Result. Scoring is synchronous and local. Ranking runs against the
// shared score pool under a hard deadline; when it cannot answer in time
// the result falls back to a solo standing rather than blocking the
// student's result screen.
type ResultService struct {
	ranking *ranking.Service
	history HistoryStore
	cache   HistoryBackup
	rdb     *redis.Client

	rankDeadline time.Duration
	log          zerolog.Logger
}

// NewResultService creates a ResultService.
func NewResultService(
	cfg *config.Config,
	rankingSvc *ranking.Service,
	history HistoryStore,
	cache HistoryBackup,
	rdb *redis.Client,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		ranking:      rankingSvc,
		history:      history,
		cache:        cache,
		rdb:          rdb,
		rankDeadline: cfg.RankTimeout,
		log:          log.With().Str("component", "result_service").Logger(),
	}
}

// Finish turns a session snapshot into the final Result. It never returns
// an error for ranking or persistence trouble; the student always gets a
// result, degraded if it must be.
func (s *ResultService) Finish(ctx context.Context, snap session.Snapshot) (model.Result, error) {
	result := s.buildResult(snap)

	stats, outcome := s.rankWithDeadline(ctx, snap.Test.ID, result.Score)
	switch outcome {
	case rankOk:
		result.Rank = stats.Rank
		result.Percentile = stats.Percentile
		result.TotalAttempts = stats.TotalAttempts
	case rankTimedOut:
		s.log.Warn().
			Str("test_id", snap.Test.ID.String()).
			Dur("deadline", s.rankDeadline).
			Msg("Ranking deadline exceeded, using solo standing")
	case rankFailed:
		s.log.Warn().
			Str("test_id", snap.Test.ID.String()).
			Msg("Ranking unavailable, using solo standing")
	}

	s.persist(ctx, &result)
	return result, nil
}

// buildResult scores the snapshot and assembles the result with the solo
// standing defaults ranking may later overwrite. A panic in scoring, which
// would mean a malformed snapshot, degrades to a zeroed result instead of
// killing the submit.
func (s *ResultService) buildResult(snap session.Snapshot) (result model.Result) {
	result = model.Result{
		ID:              uuid.New(),
		UserID:          snap.UserID,
		Test:            snap.Test,
		UserAnswers:     snap.Answers,
		TimeTaken:       snap.TimeTaken,
		TimePerQuestion: snap.TimePerQuestion,
		MarkedForReview: snap.MarkedForReview,
		Rank:            1,
		Percentile:      100,
		TotalAttempts:   1,
		CreatedAt:       time.Now(),
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Interface("panic", r).
				Str("session_id", snap.SessionID.String()).
				Msg("Scoring panicked, result degraded to zero")
			result.Score = 0
			result.TotalMarks = snap.Test.TotalMarks()
			result.Percentage = 0
		}
	}()

	marks := scoring.Score(&snap.Test, snap.Answers)
	result.Score = marks.Score
	result.TotalMarks = marks.TotalMarks
	result.Percentage = marks.Percentage
	return result
}

// rankWithDeadline races RecordAndRank against the configured deadline.
// The goroutine is left to finish in the background on timeout so the
// score still lands in the pool for future attempts.
func (s *ResultService) rankWithDeadline(ctx context.Context, testID uuid.UUID, score float64) (ranking.Stats, rankOutcome) {
	type rankResult struct {
		stats ranking.Stats
		err   error
	}
	done := make(chan rankResult, 1)

	rankCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.rankDeadline+time.Second)
	go func() {
		defer cancel()
		stats, err := s.ranking.RecordAndRank(rankCtx, testID, score)
		done <- rankResult{stats: stats, err: err}
	}()

	timer := time.NewTimer(s.rankDeadline)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return ranking.Stats{}, rankFailed
		}
		return r.stats, rankOk
	case <-timer.C:
		return ranking.Stats{}, rankTimedOut
	}
}

// persist writes the result everywhere it belongs: the Redis history cache
// first so the user can always see it, then the durable store. A failed
// durable write is queued for the retry worker instead of surfacing.
func (s *ResultService) persist(ctx context.Context, result *model.Result) {
	if err := s.cache.Push(ctx, result); err != nil {
		s.log.Error().Err(err).
			Str("result_id", result.ID.String()).
			Msg("Failed to cache result")
	}

	if err := s.history.Save(ctx, result); err != nil {
		s.log.Error().Err(err).
			Str("result_id", result.ID.String()).
			Msg("Failed to persist result, queueing for retry")
		s.queueRetry(ctx, result)
	}
}

func (s *ResultService) queueRetry(ctx context.Context, result *model.Result) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to marshal result for retry queue")
		return
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.HistoryRetryQueueKey(), payload).Err(); err != nil {
		s.log.Error().Err(err).
			Str("result_id", result.ID.String()).
			Msg("Failed to queue result for retry")
	}
}
