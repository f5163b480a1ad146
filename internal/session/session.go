// Package session implements the in-memory state machine of one test
// attempt: answer slots, review flags, visit tracking, per-question timing
// and the global countdown. A Session is driven by commands from the
// attempt API and by Tick, which the Manager calls once per second from a
// single clock source; that keeps the machine free of hidden timer state
// and lets tests advance time synchronously.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

// State is the lifecycle state of a session.
type State string

const (
	StateActive     State = "ACTIVE"
	StatePaused     State = "PAUSED"
	StateSubmitting State = "SUBMITTING"
	// StateTerminated is absorbing. A terminated session is never reused;
	// reattempts create a new Session.
	StateTerminated State = "TERMINATED"
)

var (
	ErrTerminated      = errors.New("session is terminated")
	ErrNotActive       = errors.New("session is not active")
	ErrNotPaused       = errors.New("session is not paused")
	ErrOptionRange     = errors.New("option index out of range")
	ErrQuestionRange   = errors.New("question index out of range")
	ErrAlreadyFinished = errors.New("session already submitting or terminated")
)

// Session holds the mutable state of one in-progress attempt. It is owned
// exclusively by the Manager and is not safe for concurrent use on its own.
type Session struct {
	id     uuid.UUID
	userID uuid.UUID
	test   model.Test

	state   State
	current int
	// selected is the uncommitted option for the current question. It is
	// committed into answers on save-and-next, mark-and-next and submit;
	// jumping away discards it.
	selected int

	answers []int
	marked  []bool
	visited []bool
	// elapsed accumulates whole seconds per question, advanced only while
	// that question is current and the session is active.
	elapsed []int

	remaining  int
	maxSeconds int
	startedAt  time.Time
}

// New creates an active session positioned on the first question.
func New(userID uuid.UUID, test model.Test) *Session {
	n := len(test.Questions)
	s := &Session{
		id:         uuid.New(),
		userID:     userID,
		test:       test,
		state:      StateActive,
		selected:   model.Unanswered,
		answers:    make([]int, n),
		marked:     make([]bool, n),
		visited:    make([]bool, n),
		elapsed:    make([]int, n),
		maxSeconds: int(test.EffectiveDuration().Seconds()),
		startedAt:  time.Now(),
	}
	for i := range s.answers {
		s.answers[i] = model.Unanswered
	}
	s.remaining = s.maxSeconds
	if n > 0 {
		s.visited[0] = true
	}
	return s
}

func (s *Session) ID() uuid.UUID     { return s.id }
func (s *Session) UserID() uuid.UUID { return s.userID }
func (s *Session) TestID() uuid.UUID { return s.test.ID }
func (s *Session) State() State      { return s.state }
func (s *Session) Remaining() int    { return s.remaining }

// SelectOption stages an option for the current question without committing
// it to the answer slot.
func (s *Session) SelectOption(option int) error {
	if s.state != StateActive {
		return s.stateErr()
	}
	if option < 0 || option >= len(s.test.Questions[s.current].Options) {
		return ErrOptionRange
	}
	s.selected = option
	return nil
}

// SaveAndNext commits the staged selection into the current question's slot
// and advances the pointer, staying put on the last question.
func (s *Session) SaveAndNext() error {
	if s.state != StateActive {
		return s.stateErr()
	}
	s.answers[s.current] = s.selected
	s.advance()
	return nil
}

// MarkAndNext commits the staged selection, flags the current question for
// review and advances. The review flag is never auto-cleared.
func (s *Session) MarkAndNext() error {
	if s.state != StateActive {
		return s.stateErr()
	}
	s.answers[s.current] = s.selected
	s.marked[s.current] = true
	s.advance()
	return nil
}

// ClearResponse unsets both the staged selection and the committed answer
// of the current question.
func (s *Session) ClearResponse() error {
	if s.state != StateActive {
		return s.stateErr()
	}
	s.selected = model.Unanswered
	s.answers[s.current] = model.Unanswered
	return nil
}

// JumpTo moves the pointer directly to any question, marking it visited.
// The staged selection on the question being left is discarded.
func (s *Session) JumpTo(question int) error {
	if s.state != StateActive {
		return s.stateErr()
	}
	if question < 0 || question >= len(s.test.Questions) {
		return ErrQuestionRange
	}
	s.moveTo(question)
	return nil
}

// Pause freezes both the global countdown and the per-question clock.
func (s *Session) Pause() error {
	if s.state != StateActive {
		return s.stateErr()
	}
	s.state = StatePaused
	return nil
}

// Resume reactivates a paused session.
func (s *Session) Resume() error {
	if s.state != StatePaused {
		if s.state == StateTerminated || s.state == StateSubmitting {
			return ErrAlreadyFinished
		}
		return ErrNotPaused
	}
	s.state = StateActive
	return nil
}

// Tick advances the clocks by one second. It is a no-op unless the session
// is active. Returns true when the countdown has just hit zero; the caller
// must then force-submit the session.
func (s *Session) Tick() (expired bool) {
	if s.state != StateActive {
		return false
	}
	s.elapsed[s.current]++
	if s.remaining > 0 {
		s.remaining--
	}
	return s.remaining == 0
}

// Submit commits the staged selection, transitions to Submitting and
// returns the immutable snapshot handed to the result aggregator. Works
// from Active and Paused; a timeout-forced submit takes this same path.
func (s *Session) Submit() (Snapshot, error) {
	switch s.state {
	case StateSubmitting, StateTerminated:
		return Snapshot{}, ErrAlreadyFinished
	}

	if len(s.answers) > 0 {
		s.answers[s.current] = s.selected
	}
	s.state = StateSubmitting

	return s.snapshot(), nil
}

// Terminate finalizes the session. It is irreversible.
func (s *Session) Terminate() {
	s.state = StateTerminated
}

// advance moves one question forward unless already on the last one.
func (s *Session) advance() {
	if s.current < len(s.test.Questions)-1 {
		s.moveTo(s.current + 1)
	}
}

// moveTo flushes the pointer change atomically with respect to the
// per-question clock: elapsed time is only ever accumulated in the slot of
// the question that is current at tick time, so switching the pointer and
// restoring the target's committed answer is all that is needed.
func (s *Session) moveTo(to int) {
	s.current = to
	s.selected = s.answers[to]
	s.visited[to] = true
}

func (s *Session) stateErr() error {
	switch s.state {
	case StateTerminated:
		return ErrTerminated
	case StateSubmitting:
		return ErrAlreadyFinished
	default:
		return ErrNotActive
	}
}

// Snapshot is the immutable view of a submitted session consumed by the
// result aggregator.
type Snapshot struct {
	SessionID       uuid.UUID
	UserID          uuid.UUID
	Test            model.Test
	Answers         []int
	TimePerQuestion []int
	MarkedForReview []int
	TimeTaken       int
	StartedAt       time.Time
}

func (s *Session) snapshot() Snapshot {
	answers := make([]int, len(s.answers))
	copy(answers, s.answers)
	times := make([]int, len(s.elapsed))
	copy(times, s.elapsed)

	var markedIdx []int
	for i, m := range s.marked {
		if m {
			markedIdx = append(markedIdx, i)
		}
	}

	return Snapshot{
		SessionID:       s.id,
		UserID:          s.userID,
		Test:            s.test,
		Answers:         answers,
		TimePerQuestion: times,
		MarkedForReview: markedIdx,
		TimeTaken:       s.maxSeconds - s.remaining,
		StartedAt:       s.startedAt,
	}
}
