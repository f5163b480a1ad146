package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mocktestapp/mocktest-backend/internal/config"
	"github.com/mocktestapp/mocktest-backend/internal/model"
)

type recordingStore struct {
	saved   []model.Result
	saveErr error
}

func (r *recordingStore) Save(_ context.Context, res *model.Result) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, *res)
	return nil
}

func (r *recordingStore) ListByUser(context.Context, uuid.UUID, int) ([]model.Result, error) {
	return nil, nil
}

func (r *recordingStore) GetByID(context.Context, uuid.UUID, uuid.UUID) (*model.Result, error) {
	return nil, errors.New("not found")
}

func (r *recordingStore) DeleteByUser(context.Context, uuid.UUID) error { return nil }

func makeWorker(t *testing.T) (*HistoryWorker, *recordingStore, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := &recordingStore{}
	return NewHistoryWorker(store, rdb, zerolog.Nop()), store, rdb
}

func queueResult(t *testing.T, rdb *redis.Client) model.Result {
	t.Helper()

	res := model.Result{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Test:      model.Test{ID: uuid.New(), Title: "queued"},
		Score:     3,
		CreatedAt: time.Now(),
	}
	payload, err := json.Marshal(res)
	require.NoError(t, err)
	require.NoError(t, rdb.RPush(context.Background(), config.WorkerKey.HistoryRetryQueueKey(), payload).Err())
	return res
}

func TestHistoryWorkerReplaysQueuedResult(t *testing.T) {
	w, store, rdb := makeWorker(t)
	ctx := context.Background()

	res := queueResult(t, rdb)
	w.processNext(ctx)

	require.Len(t, store.saved, 1)
	require.Equal(t, res.ID, store.saved[0].ID)

	remaining, err := rdb.LLen(ctx, config.WorkerKey.HistoryRetryQueueKey()).Result()
	require.NoError(t, err)
	require.Zero(t, remaining)
}

func TestHistoryWorkerRequeuesOnFailure(t *testing.T) {
	w, store, rdb := makeWorker(t)
	ctx := context.Background()
	store.saveErr = errors.New("database still down")

	queueResult(t, rdb)

	// processNext sleeps after a failed persist; run it off the test
	// goroutine so the assertion below is not delayed.
	go w.processNext(ctx)

	require.Eventually(t, func() bool {
		n, err := rdb.LLen(ctx, config.WorkerKey.HistoryRetryQueueKey()).Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHistoryWorkerDropsUndecodablePayload(t *testing.T) {
	w, store, rdb := makeWorker(t)
	ctx := context.Background()

	require.NoError(t, rdb.RPush(ctx, config.WorkerKey.HistoryRetryQueueKey(), "{not json").Err())
	w.processNext(ctx)

	require.Empty(t, store.saved)
	remaining, err := rdb.LLen(ctx, config.WorkerKey.HistoryRetryQueueKey()).Result()
	require.NoError(t, err)
	require.Zero(t, remaining)
}

func TestHistoryWorkerDrain(t *testing.T) {
	w, store, rdb := makeWorker(t)

	first := queueResult(t, rdb)
	second := queueResult(t, rdb)

	w.drain(context.Background())

	require.Len(t, store.saved, 2)
	require.Equal(t, first.ID, store.saved[0].ID)
	require.Equal(t, second.ID, store.saved[1].ID)
}
