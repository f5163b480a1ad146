package session_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mocktestapp/mocktest-backend/internal/model"
	"github.com/mocktestapp/mocktest-backend/internal/session"
)

func fourQuestionTest() model.Test {
	questions := make([]model.Question, 4)
	for i := range questions {
		questions[i] = model.Question{
			Text:          "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: i % 4,
		}
	}
	return model.Test{
		ID:              uuid.New(),
		Title:           "state machine test",
		Category:        "General",
		Questions:       questions,
		DurationMinutes: 2,
	}
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New(uuid.New(), fourQuestionTest())
}

func TestNew(t *testing.T) {
	s := newSession(t)

	require.Equal(t, session.StateActive, s.State())
	require.Equal(t, 120, s.Remaining())

	want := []session.QuestionStatus{
		session.StatusNotAnswered, // first question is visited on start
		session.StatusNotVisited,
		session.StatusNotVisited,
		session.StatusNotVisited,
	}
	require.Equal(t, want, s.Statuses())
}

func TestDefaultDuration(t *testing.T) {
	test := fourQuestionTest()
	test.DurationMinutes = 0

	s := session.New(uuid.New(), test)
	require.Equal(t, 4*90, s.Remaining())
}

func TestStatusesAreExclusiveAndExhaustive(t *testing.T) {
	s := newSession(t)

	// Walk the session through every command and verify after each step
	// that each question carries exactly one known status.
	steps := []func() error{
		func() error { return s.SelectOption(0) },
		func() error { return s.SaveAndNext() },          // q0 answered
		func() error { return s.SelectOption(1) },
		func() error { return s.MarkAndNext() },          // q1 answered+marked
		func() error { return s.MarkAndNext() },          // q2 marked only (no selection)
		func() error { return s.JumpTo(3) },              // q3 visited
		func() error { return s.ClearResponse() },        // q3 stays unanswered
		func() error { return s.JumpTo(0) },
		func() error { return s.ClearResponse() },        // q0 back to not answered
	}

	known := map[session.QuestionStatus]bool{
		session.StatusNotVisited:     true,
		session.StatusNotAnswered:    true,
		session.StatusAnswered:       true,
		session.StatusMarked:         true,
		session.StatusAnsweredMarked: true,
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		statuses := s.Statuses()
		require.Len(t, statuses, 4)
		for q, st := range statuses {
			require.True(t, known[st], "step %d question %d has unknown status %q", i, q, st)
		}

		c := session.CountStatuses(statuses)
		sum := c.Answered + c.NotAnswered + c.Marked + c.AnsweredMarked + c.NotVisited
		require.Equal(t, 4, sum, "step %d counts must cover every question", i)
	}

	want := []session.QuestionStatus{
		session.StatusNotAnswered,
		session.StatusAnsweredMarked,
		session.StatusMarked,
		session.StatusNotAnswered,
	}
	require.Equal(t, want, s.Statuses())
}

func TestSelectionCommitsOnNavigation(t *testing.T) {
	s := newSession(t)

	require.NoError(t, s.SelectOption(2))
	v := s.View()
	require.Equal(t, 2, v.Selected)
	// Staged only: the palette still shows the question as unanswered.
	require.Equal(t, session.StatusNotAnswered, v.Statuses[0])

	require.NoError(t, s.SaveAndNext())
	v = s.View()
	require.Equal(t, 1, v.CurrentQuestion)
	require.Equal(t, session.StatusAnswered, v.Statuses[0])
}

func TestJumpDiscardsStagedSelection(t *testing.T) {
	s := newSession(t)

	require.NoError(t, s.SelectOption(1))
	require.NoError(t, s.JumpTo(2))
	require.NoError(t, s.JumpTo(0))

	v := s.View()
	require.Equal(t, session.StatusNotAnswered, v.Statuses[0])
	require.Equal(t, model.Unanswered, v.Selected)
}

func TestSaveAndNextStaysOnLastQuestion(t *testing.T) {
	s := newSession(t)

	require.NoError(t, s.JumpTo(3))
	require.NoError(t, s.SelectOption(0))
	require.NoError(t, s.SaveAndNext())

	require.Equal(t, 3, s.View().CurrentQuestion)
	require.Equal(t, session.StatusAnswered, s.View().Statuses[3])
}

func TestTickAdvancesOnlyCurrentQuestion(t *testing.T) {
	s := newSession(t)

	for i := 0; i < 5; i++ {
		s.Tick()
	}
	require.Equal(t, 115, s.Remaining())
	require.Equal(t, 5, s.View().CurrentElapsed)

	require.NoError(t, s.JumpTo(1))
	for i := 0; i < 3; i++ {
		s.Tick()
	}
	require.Equal(t, 3, s.View().CurrentElapsed)

	// Returning to the first question resumes its clock where it stopped.
	require.NoError(t, s.JumpTo(0))
	require.Equal(t, 5, s.View().CurrentElapsed)
	s.Tick()
	require.Equal(t, 6, s.View().CurrentElapsed)
}

func TestPauseFreezesClocks(t *testing.T) {
	s := newSession(t)

	require.NoError(t, s.JumpTo(2))
	for i := 0; i < 12; i++ {
		s.Tick()
	}
	require.Equal(t, 12, s.View().CurrentElapsed)

	require.NoError(t, s.Pause())
	remainingAtPause := s.Remaining()

	// 30 seconds of wall clock pass while paused; nothing moves.
	for i := 0; i < 30; i++ {
		require.False(t, s.Tick())
	}
	require.Equal(t, 12, s.View().CurrentElapsed)
	require.Equal(t, remainingAtPause, s.Remaining())

	require.NoError(t, s.Resume())
	require.Equal(t, 12, s.View().CurrentElapsed)
	s.Tick()
	require.Equal(t, 13, s.View().CurrentElapsed)
}

func TestPausedSessionRejectsCommands(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Pause())

	require.ErrorIs(t, s.SelectOption(0), session.ErrNotActive)
	require.ErrorIs(t, s.SaveAndNext(), session.ErrNotActive)
	require.ErrorIs(t, s.JumpTo(1), session.ErrNotActive)
	require.ErrorIs(t, s.Pause(), session.ErrNotActive)

	// Submit still works from Paused.
	_, err := s.Submit()
	require.NoError(t, err)
}

func TestCountdownExpiry(t *testing.T) {
	s := newSession(t)

	for i := 0; i < 119; i++ {
		require.False(t, s.Tick(), "tick %d", i)
	}
	require.True(t, s.Tick())
	require.Equal(t, 0, s.Remaining())

	// Further ticks on a still-active session never take remaining below 0.
	s.Tick()
	require.Equal(t, 0, s.Remaining())
}

func TestSubmitSnapshot(t *testing.T) {
	s := newSession(t)

	require.NoError(t, s.SelectOption(0))
	require.NoError(t, s.SaveAndNext())
	require.NoError(t, s.SelectOption(3))
	require.NoError(t, s.MarkAndNext())
	for i := 0; i < 7; i++ {
		s.Tick()
	}
	// Staged on q2, committed by submit.
	require.NoError(t, s.SelectOption(2))

	snap, err := s.Submit()
	require.NoError(t, err)

	require.Equal(t, []int{0, 3, 2, model.Unanswered}, snap.Answers)
	require.Equal(t, []int{0, 0, 7, 0}, snap.TimePerQuestion)
	require.Equal(t, []int{1}, snap.MarkedForReview)
	require.Equal(t, 7, snap.TimeTaken)
}

func TestTerminatedIsAbsorbing(t *testing.T) {
	s := newSession(t)

	_, err := s.Submit()
	require.NoError(t, err)
	s.Terminate()

	require.Equal(t, session.StateTerminated, s.State())
	require.ErrorIs(t, s.SelectOption(0), session.ErrTerminated)
	require.ErrorIs(t, s.Resume(), session.ErrAlreadyFinished)
	require.False(t, s.Tick())

	_, err = s.Submit()
	require.ErrorIs(t, err, session.ErrAlreadyFinished)
}
