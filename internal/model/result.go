package model

import (
	"time"

	"github.com/google/uuid"
)

// Unanswered marks an answer slot whose question was never committed.
const Unanswered = -1

// Result is the immutable record of one completed attempt. It is never
// mutated after the aggregator builds it; the display layer and the history
// store share it freely.
type Result struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	// Test is a full snapshot so history survives later edits or deletion
	// of the source test.
	Test            Test      `json:"test"`
	UserAnswers     []int     `json:"user_answers"`
	Score           float64   `json:"score"`
	TotalMarks      float64   `json:"total_marks"`
	Percentage      int       `json:"percentage"`
	TimeTaken       int       `json:"time_taken"`
	TimePerQuestion []int     `json:"time_per_question,omitempty"`
	MarkedForReview []int     `json:"marked_for_review,omitempty"`
	Rank            int       `json:"rank"`
	Percentile      float64   `json:"percentile"`
	TotalAttempts   int       `json:"total_attempts"`
	CreatedAt       time.Time `json:"created_at"`
}
