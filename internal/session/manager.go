package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNotOwner        = errors.New("session belongs to another user")
)

// FinishFunc converts a submitted session snapshot into a stored Result.
// The Manager invokes it for manual submits and for timeout-forced ones.
type FinishFunc func(ctx context.Context, snap Snapshot) (model.Result, error)

// finishTimeout bounds the whole aggregation of a forced submit, which is
// already internally bounded by the ranking deadline.
const finishTimeout = 30 * time.Second

// Manager owns every live session and is their single clock source: one
// ticker goroutine advances all sessions once per second. All access to a
// Session goes through the Manager's mutex, which gives the attempt flow
// the exclusive ownership the machine requires.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	byOwner  map[ownerKey]uuid.UUID

	finish FinishFunc
	log    zerolog.Logger
}

type ownerKey struct {
	userID uuid.UUID
	testID uuid.UUID
}

// NewManager creates a Manager. Call Run in a goroutine to start the clock.
func NewManager(finish FinishFunc, log zerolog.Logger) *Manager {
	return &Manager{
		sessions: make(map[uuid.UUID]*Session),
		byOwner:  make(map[ownerKey]uuid.UUID),
		finish:   finish,
		log:      log.With().Str("component", "session_manager").Logger(),
	}
}

// Start creates a session for the user on the given test, or returns the
// already-running one so a reloaded client resumes instead of forking a
// second attempt.
func (m *Manager) Start(userID uuid.UUID, test model.Test) (View, error) {
	if err := test.Validate(); err != nil {
		return View{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownerKey{userID: userID, testID: test.ID}
	if id, ok := m.byOwner[key]; ok {
		if existing, ok := m.sessions[id]; ok {
			return existing.View(), nil
		}
	}

	s := New(userID, test)
	m.sessions[s.ID()] = s
	m.byOwner[key] = s.ID()

	m.log.Info().
		Str("session_id", s.ID().String()).
		Str("test_id", test.ID.String()).
		Int("questions", len(test.Questions)).
		Msg("Session started")

	return s.View(), nil
}

// View returns the current projection of a session.
func (m *Manager) View(sessionID, userID uuid.UUID) (View, error) {
	return m.apply(sessionID, userID, func(*Session) error { return nil })
}

// SelectOption stages an option on the session's current question.
func (m *Manager) SelectOption(sessionID, userID uuid.UUID, option int) (View, error) {
	return m.apply(sessionID, userID, func(s *Session) error { return s.SelectOption(option) })
}

// SaveAndNext commits the staged option and advances.
func (m *Manager) SaveAndNext(sessionID, userID uuid.UUID) (View, error) {
	return m.apply(sessionID, userID, func(s *Session) error { return s.SaveAndNext() })
}

// MarkAndNext commits, flags for review and advances.
func (m *Manager) MarkAndNext(sessionID, userID uuid.UUID) (View, error) {
	return m.apply(sessionID, userID, func(s *Session) error { return s.MarkAndNext() })
}

// ClearResponse unsets the current question's answer.
func (m *Manager) ClearResponse(sessionID, userID uuid.UUID) (View, error) {
	return m.apply(sessionID, userID, func(s *Session) error { return s.ClearResponse() })
}

// JumpTo moves the pointer directly to a question.
func (m *Manager) JumpTo(sessionID, userID uuid.UUID, question int) (View, error) {
	return m.apply(sessionID, userID, func(s *Session) error { return s.JumpTo(question) })
}

// Pause freezes the session's clocks.
func (m *Manager) Pause(sessionID, userID uuid.UUID) (View, error) {
	return m.apply(sessionID, userID, func(s *Session) error { return s.Pause() })
}

// Resume reactivates a paused session.
func (m *Manager) Resume(sessionID, userID uuid.UUID) (View, error) {
	return m.apply(sessionID, userID, func(s *Session) error { return s.Resume() })
}

// Submit finishes the session and aggregates its Result. The session is
// removed from the registry before aggregation so no further command can
// reach it.
func (m *Manager) Submit(ctx context.Context, sessionID, userID uuid.UUID) (model.Result, error) {
	m.mu.Lock()
	s, err := m.get(sessionID, userID)
	if err != nil {
		m.mu.Unlock()
		return model.Result{}, err
	}

	snap, err := s.Submit()
	if err != nil {
		m.mu.Unlock()
		return model.Result{}, err
	}
	s.Terminate()
	m.remove(s)
	m.mu.Unlock()

	return m.finish(ctx, snap)
}

// Run drives the clock: every second each active session ticks once, and
// sessions whose countdown expired are force-submitted on the same path a
// manual submit takes. Blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	m.log.Info().Msg("Session clock started")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("Session clock stopped")
			return
		case <-ticker.C:
			for _, snap := range m.tickAll() {
				go m.forceFinish(snap)
			}
		}
	}
}

// tickAll advances every session by one second and collects snapshots of
// the ones that just expired.
func (m *Manager) tickAll() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []Snapshot
	for _, s := range m.sessions {
		if !s.Tick() {
			continue
		}
		snap, err := s.Submit()
		if err != nil {
			continue
		}
		s.Terminate()
		m.remove(s)
		expired = append(expired, snap)
	}
	return expired
}

func (m *Manager) forceFinish(snap Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), finishTimeout)
	defer cancel()

	m.log.Info().
		Str("session_id", snap.SessionID.String()).
		Msg("Countdown expired, forcing submit")

	if _, err := m.finish(ctx, snap); err != nil {
		m.log.Error().Err(err).
			Str("session_id", snap.SessionID.String()).
			Msg("Forced submit aggregation failed")
	}
}

func (m *Manager) apply(sessionID, userID uuid.UUID, fn func(*Session) error) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.get(sessionID, userID)
	if err != nil {
		return View{}, err
	}
	if err := fn(s); err != nil {
		return View{}, err
	}
	return s.View(), nil
}

// get must be called with the mutex held.
func (m *Manager) get(sessionID, userID uuid.UUID) (*Session, error) {
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.UserID() != userID {
		return nil, ErrNotOwner
	}
	return s, nil
}

// remove must be called with the mutex held.
func (m *Manager) remove(s *Session) {
	delete(m.sessions, s.ID())
	delete(m.byOwner, ownerKey{userID: s.UserID(), testID: s.TestID()})
}
