package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mocktestapp/mocktest-backend/internal/model"
	"github.com/mocktestapp/mocktest-backend/internal/service"
)

func storedResult(userID uuid.UUID, score float64) model.Result {
	return model.Result{
		ID:         uuid.New(),
		UserID:     userID,
		Test:       model.Test{ID: uuid.New(), Title: "stored"},
		Score:      score,
		TotalMarks: 10,
		CreatedAt:  time.Now(),
	}
}

func TestHistoryListPrefersDurableStore(t *testing.T) {
	history := &fakeHistoryStore{}
	backup := &fakeHistoryBackup{}
	svc := service.NewHistoryService(history, backup, 50, zerolog.Nop())
	ctx := context.Background()
	userID := uuid.New()

	durable := storedResult(userID, 8)
	require.NoError(t, history.Save(ctx, &durable))
	cachedOnly := storedResult(userID, 3)
	require.NoError(t, backup.Push(ctx, &cachedOnly))

	results, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, durable.ID, results[0].ID)
}

func TestHistoryListFallsBackToCache(t *testing.T) {
	testCases := map[string]func(*fakeHistoryStore){
		"durable store down":  func(f *fakeHistoryStore) { f.listErr = errors.New("connection refused") },
		"durable store empty": func(*fakeHistoryStore) {},
	}

	for name, breakStore := range testCases {
		t.Run(name, func(t *testing.T) {
			history := &fakeHistoryStore{}
			breakStore(history)
			backup := &fakeHistoryBackup{}
			svc := service.NewHistoryService(history, backup, 50, zerolog.Nop())
			ctx := context.Background()
			userID := uuid.New()

			cached := storedResult(userID, 5)
			require.NoError(t, backup.Push(ctx, &cached))

			results, err := svc.List(ctx, userID)
			require.NoError(t, err)
			require.Len(t, results, 1)
			require.Equal(t, cached.ID, results[0].ID)
		})
	}
}

func TestHistoryListBothStoresDown(t *testing.T) {
	history := &fakeHistoryStore{listErr: errors.New("db down")}
	backup := &fakeHistoryBackup{listErr: errors.New("redis down")}
	svc := service.NewHistoryService(history, backup, 50, zerolog.Nop())

	_, err := svc.List(context.Background(), uuid.New())
	require.ErrorIs(t, err, history.listErr)
}

func TestHistoryGetFallsBackToCache(t *testing.T) {
	history := &fakeHistoryStore{}
	backup := &fakeHistoryBackup{}
	svc := service.NewHistoryService(history, backup, 50, zerolog.Nop())
	ctx := context.Background()
	userID := uuid.New()

	cached := storedResult(userID, 5)
	require.NoError(t, backup.Push(ctx, &cached))

	got, err := svc.Get(ctx, cached.ID, userID)
	require.NoError(t, err)
	require.Equal(t, cached.ID, got.ID)

	// Another user cannot read it.
	_, err = svc.Get(ctx, cached.ID, uuid.New())
	require.Error(t, err)
}

func TestHistoryClear(t *testing.T) {
	history := &fakeHistoryStore{}
	backup := &fakeHistoryBackup{}
	svc := service.NewHistoryService(history, backup, 50, zerolog.Nop())
	ctx := context.Background()
	userID := uuid.New()

	res := storedResult(userID, 5)
	require.NoError(t, history.Save(ctx, &res))
	require.NoError(t, backup.Push(ctx, &res))

	require.NoError(t, svc.Clear(ctx, userID))

	results, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, results)
}
