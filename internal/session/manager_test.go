package session

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

func managerTest() model.Test {
	return model.Test{
		ID:       uuid.New(),
		Title:    "manager test",
		Category: "General",
		Questions: []model.Question{
			{Text: "q1", Options: []string{"a", "b"}, CorrectOption: 0},
			{Text: "q2", Options: []string{"a", "b"}, CorrectOption: 1},
		},
		DurationMinutes: 1,
	}
}

func passthroughFinish(captured *Snapshot) FinishFunc {
	return func(_ context.Context, snap Snapshot) (model.Result, error) {
		if captured != nil {
			*captured = snap
		}
		return model.Result{ID: uuid.New(), UserID: snap.UserID}, nil
	}
}

func TestManagerStartIsIdempotentPerUserAndTest(t *testing.T) {
	m := NewManager(passthroughFinish(nil), zerolog.Nop())
	test := managerTest()
	userID := uuid.New()

	first, err := m.Start(userID, test)
	require.NoError(t, err)

	again, err := m.Start(userID, test)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)

	// A different user on the same test gets their own session.
	other, err := m.Start(uuid.New(), test)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, other.ID)
}

func TestManagerRejectsForeignSession(t *testing.T) {
	m := NewManager(passthroughFinish(nil), zerolog.Nop())

	v, err := m.Start(uuid.New(), managerTest())
	require.NoError(t, err)

	_, err = m.SaveAndNext(v.ID, uuid.New())
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = m.View(uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerSubmitRemovesSession(t *testing.T) {
	var snap Snapshot
	m := NewManager(passthroughFinish(&snap), zerolog.Nop())
	test := managerTest()
	userID := uuid.New()

	v, err := m.Start(userID, test)
	require.NoError(t, err)

	_, err = m.SelectOption(v.ID, userID, 1)
	require.NoError(t, err)

	result, err := m.Submit(context.Background(), v.ID, userID)
	require.NoError(t, err)
	require.Equal(t, userID, result.UserID)
	require.Equal(t, []int{1, model.Unanswered}, snap.Answers)

	_, err = m.View(v.ID, userID)
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Starting again after submit creates a fresh session.
	fresh, err := m.Start(userID, test)
	require.NoError(t, err)
	require.NotEqual(t, v.ID, fresh.ID)
}

func TestManagerTickForcesSubmitAtZero(t *testing.T) {
	var snap Snapshot
	m := NewManager(passthroughFinish(&snap), zerolog.Nop())
	userID := uuid.New()

	v, err := m.Start(userID, managerTest())
	require.NoError(t, err)
	require.Equal(t, 60, v.Remaining)

	for i := 0; i < 59; i++ {
		require.Empty(t, m.tickAll(), "tick %d", i)
	}

	expired := m.tickAll()
	require.Len(t, expired, 1)
	require.Equal(t, v.ID, expired[0].SessionID)
	require.Equal(t, 60, expired[0].TimeTaken)

	_, err = m.View(v.ID, userID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerTickSkipsPausedSessions(t *testing.T) {
	m := NewManager(passthroughFinish(nil), zerolog.Nop())
	userID := uuid.New()

	v, err := m.Start(userID, managerTest())
	require.NoError(t, err)

	_, err = m.Pause(v.ID, userID)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		require.Empty(t, m.tickAll())
	}

	resumed, err := m.Resume(v.ID, userID)
	require.NoError(t, err)
	require.Equal(t, 60, resumed.Remaining)
}

func TestManagerStartRejectsInvalidTest(t *testing.T) {
	m := NewManager(passthroughFinish(nil), zerolog.Nop())

	_, err := m.Start(uuid.New(), model.Test{ID: uuid.New(), Title: "empty"})
	require.Error(t, err)
}
