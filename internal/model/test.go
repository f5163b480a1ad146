package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultPositiveMarks is awarded per correct answer when the test does
	// not specify its own marking scheme.
	DefaultPositiveMarks = 1.0
	// DefaultSecondsPerQuestion derives a test's duration when none is set.
	DefaultSecondsPerQuestion = 90
)

// Test is an ordered set of questions with an optional marking scheme and
// duration. A test is immutable once an attempt has started against it.
type Test struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Category      string     `json:"category"`
	Questions     []Question `json:"questions"`
	PositiveMarks float64    `json:"positive_marks,omitempty"`
	NegativeMarks float64    `json:"negative_marks,omitempty"`
	// DurationMinutes of 0 means "derive from question count".
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	OwnerID         *uuid.UUID `json:"owner_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// EffectivePositiveMarks returns the marks awarded per correct answer.
func (t *Test) EffectivePositiveMarks() float64 {
	if t.PositiveMarks > 0 {
		return t.PositiveMarks
	}
	return DefaultPositiveMarks
}

// EffectiveNegativeMarks returns the marks deducted per attempted-and-wrong
// answer. Zero means no negative marking.
func (t *Test) EffectiveNegativeMarks() float64 {
	if t.NegativeMarks > 0 {
		return t.NegativeMarks
	}
	return 0
}

// EffectiveDuration returns the test duration. Falls back to 90 seconds per
// question when no explicit duration is configured.
func (t *Test) EffectiveDuration() time.Duration {
	if t.DurationMinutes > 0 {
		return time.Duration(t.DurationMinutes) * time.Minute
	}
	return time.Duration(len(t.Questions)*DefaultSecondsPerQuestion) * time.Second
}

// TotalMarks is the maximum achievable score.
func (t *Test) TotalMarks() float64 {
	return float64(len(t.Questions)) * t.EffectivePositiveMarks()
}

// Validate checks the test and every question in it.
func (t *Test) Validate() error {
	if t.Title == "" {
		return fmt.Errorf("test title is empty")
	}
	if len(t.Questions) == 0 {
		return fmt.Errorf("test has no questions")
	}
	for i := range t.Questions {
		if err := t.Questions[i].Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// CreateTestRequest is the payload for creating a user-generated test.
type CreateTestRequest struct {
	Title           string     `json:"title" binding:"required,min=3,max=255"`
	Category        string     `json:"category" binding:"omitempty,max=100"`
	Questions       []Question `json:"questions" binding:"required,min=1"`
	PositiveMarks   float64    `json:"positive_marks" binding:"omitempty,gt=0"`
	NegativeMarks   float64    `json:"negative_marks" binding:"omitempty,gte=0"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
}
