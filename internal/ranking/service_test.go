package ranking_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mocktestapp/mocktest-backend/internal/ranking"
)

type memoryStore struct {
	scores    map[uuid.UUID][]float64
	appendErr error
	listErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{scores: map[uuid.UUID][]float64{}}
}

func (m *memoryStore) AppendScore(_ context.Context, testID uuid.UUID, score float64) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.scores[testID] = append(m.scores[testID], score)
	return nil
}

func (m *memoryStore) ListScores(_ context.Context, testID uuid.UUID) ([]float64, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.scores[testID], nil
}

func TestRecordAndRank(t *testing.T) {
	testCases := map[string]struct {
		existing  []float64
		score     float64
		wantStats ranking.Stats
	}{
		"first attempt on a test": {
			score:     42,
			wantStats: ranking.Stats{Rank: 1, Percentile: 100, TotalAttempts: 1},
		},
		"ties share the best rank of their group": {
			existing:  []float64{10, 8, 8, 5},
			score:     8,
			wantStats: ranking.Stats{Rank: 2, Percentile: 60, TotalAttempts: 5},
		},
		"top score": {
			existing:  []float64{10, 8, 8, 5},
			score:     12,
			wantStats: ranking.Stats{Rank: 1, Percentile: 80, TotalAttempts: 5},
		},
		"bottom score": {
			existing:  []float64{10, 8, 8, 5},
			score:     1,
			wantStats: ranking.Stats{Rank: 5, Percentile: 0, TotalAttempts: 5},
		},
		"negative scores rank too": {
			existing:  []float64{0, -1.5},
			score:     -0.5,
			wantStats: ranking.Stats{Rank: 2, Percentile: 33.33, TotalAttempts: 3},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			store := newMemoryStore()
			testID := uuid.New()
			for _, s := range tc.existing {
				require.NoError(t, store.AppendScore(context.Background(), testID, s))
			}

			svc := ranking.NewService(store, zerolog.Nop())
			stats, err := svc.RecordAndRank(context.Background(), testID, tc.score)

			require.NoError(t, err)
			require.Equal(t, tc.wantStats, stats)
		})
	}
}

func TestRecordAndRankIsolatesTests(t *testing.T) {
	store := newMemoryStore()
	svc := ranking.NewService(store, zerolog.Nop())

	testA := uuid.New()
	testB := uuid.New()
	require.NoError(t, store.AppendScore(context.Background(), testA, 99))

	stats, err := svc.RecordAndRank(context.Background(), testB, 5)
	require.NoError(t, err)
	require.Equal(t, ranking.Stats{Rank: 1, Percentile: 100, TotalAttempts: 1}, stats)
}

func TestRecordAndRankUnavailableStore(t *testing.T) {
	testCases := map[string]func(*memoryStore){
		"append fails": func(m *memoryStore) { m.appendErr = errors.New("connection refused") },
		"list fails":   func(m *memoryStore) { m.listErr = errors.New("connection refused") },
	}

	for name, breakStore := range testCases {
		t.Run(name, func(t *testing.T) {
			store := newMemoryStore()
			breakStore(store)

			svc := ranking.NewService(store, zerolog.Nop())
			_, err := svc.RecordAndRank(context.Background(), uuid.New(), 10)

			require.ErrorIs(t, err, ranking.ErrUnavailable)
		})
	}
}

func TestComputePercentileMonotonicity(t *testing.T) {
	pool := []float64{50, 40, 40, 30, 20, 10, 5}

	prev := ranking.Compute(60, append(pool, 60))
	for _, score := range []float64{45, 40, 25, 1} {
		cur := ranking.Compute(score, append(pool, score))
		require.GreaterOrEqual(t, prev.Percentile, cur.Percentile)
		require.LessOrEqual(t, prev.Rank, cur.Rank)
		prev = cur
	}
}
