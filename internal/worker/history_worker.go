package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mocktestapp/mocktest-backend/internal/config"
	"github.com/mocktestapp/mocktest-backend/internal/model"
	"github.com/mocktestapp/mocktest-backend/internal/service"
)

// HistoryWorker replays durable result writes that failed at submit time.
// The aggregator pushes the full result JSON onto the retry queue; the
// worker keeps retrying until the database accepts it. Saves are idempotent
// so a crash between write and ack cannot duplicate a result.
type HistoryWorker struct {
	history service.HistoryStore
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewHistoryWorker creates a new HistoryWorker.
func NewHistoryWorker(history service.HistoryStore, rdb *redis.Client, log zerolog.Logger) *HistoryWorker {
	return &HistoryWorker{
		history: history,
		rdb:     rdb,
		log:     log.With().Str("component", "history_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *HistoryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *HistoryWorker) processNext(ctx context.Context) {
	queue := config.WorkerKey.HistoryRetryQueueKey()

	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, queue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}
	if len(result) < 2 {
		return
	}

	if err := w.persistResult(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, queue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *HistoryWorker) persistResult(ctx context.Context, raw string) error {
	var res model.Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		// A payload that cannot decode will never succeed; drop it loudly.
		w.log.Error().Err(err).Msg("Dropping undecodable result payload")
		return nil
	}

	if err := w.history.Save(ctx, &res); err != nil {
		return err
	}

	w.log.Info().
		Str("result_id", res.ID.String()).
		Str("user_id", res.UserID.String()).
		Msg("Replayed result to durable store")
	return nil
}

// drain processes all remaining items in the queue before shutdown.
func (w *HistoryWorker) drain(ctx context.Context) {
	queue := config.WorkerKey.HistoryRetryQueueKey()
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, queue).Result()
		if err != nil {
			break
		}

		if err := w.persistResult(ctx, result); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, queue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
