package session

import (
	"github.com/google/uuid"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

// QuestionStatus is the derived navigator status of one question. The five
// statuses are mutually exclusive and exhaustive: every question carries
// exactly one at all times.
type QuestionStatus string

const (
	StatusNotVisited     QuestionStatus = "not_visited"
	StatusNotAnswered    QuestionStatus = "not_answered"
	StatusAnswered       QuestionStatus = "answered"
	StatusMarked         QuestionStatus = "marked"
	StatusAnsweredMarked QuestionStatus = "answered_marked"
)

// StatusCounts aggregates the navigator legend.
type StatusCounts struct {
	Answered       int `json:"answered"`
	NotAnswered    int `json:"not_answered"`
	Marked         int `json:"marked"`
	AnsweredMarked int `json:"answered_marked"`
	NotVisited     int `json:"not_visited"`
}

// Statuses derives the navigator status of every question from the
// committed answers, review flags and visit flags.
func (s *Session) Statuses() []QuestionStatus {
	statuses := make([]QuestionStatus, len(s.answers))
	for i := range s.answers {
		statuses[i] = s.statusOf(i)
	}
	return statuses
}

func (s *Session) statusOf(i int) QuestionStatus {
	answered := s.answers[i] != model.Unanswered
	switch {
	case answered && s.marked[i]:
		return StatusAnsweredMarked
	case answered:
		return StatusAnswered
	case s.marked[i]:
		return StatusMarked
	case s.visited[i]:
		return StatusNotAnswered
	default:
		return StatusNotVisited
	}
}

// CountStatuses tallies a status list into legend counts.
func CountStatuses(statuses []QuestionStatus) StatusCounts {
	var c StatusCounts
	for _, st := range statuses {
		switch st {
		case StatusAnswered:
			c.Answered++
		case StatusNotAnswered:
			c.NotAnswered++
		case StatusMarked:
			c.Marked++
		case StatusAnsweredMarked:
			c.AnsweredMarked++
		case StatusNotVisited:
			c.NotVisited++
		}
	}
	return c
}

// View is the read-only projection of a live session served to clients.
type View struct {
	ID              uuid.UUID        `json:"id"`
	TestID          uuid.UUID        `json:"test_id"`
	TestTitle       string           `json:"test_title"`
	State           State            `json:"state"`
	CurrentQuestion int              `json:"current_question"`
	Selected        int              `json:"selected_option"`
	Remaining       int              `json:"remaining_seconds"`
	CurrentElapsed  int              `json:"current_question_seconds"`
	Statuses        []QuestionStatus `json:"statuses"`
	Counts          StatusCounts     `json:"counts"`
}

// View builds the client projection of the session's current state.
func (s *Session) View() View {
	statuses := s.Statuses()
	elapsed := 0
	if s.current < len(s.elapsed) {
		elapsed = s.elapsed[s.current]
	}
	return View{
		ID:              s.id,
		TestID:          s.test.ID,
		TestTitle:       s.test.Title,
		State:           s.state,
		CurrentQuestion: s.current,
		Selected:        s.selected,
		Remaining:       s.remaining,
		CurrentElapsed:  elapsed,
		Statuses:        statuses,
		Counts:          CountStatuses(statuses),
	}
}
