package model

import (
	"errors"
	"fmt"
)

// Question represents a single multiple-choice question. TextHindi and
// OptionsHindi carry the optional second-language mirror of the prompt
// and options.
type Question struct {
	Text          string   `json:"question"`
	TextHindi     string   `json:"question_hindi,omitempty"`
	Options       []string `json:"options"`
	OptionsHindi  []string `json:"options_hindi,omitempty"`
	CorrectOption int      `json:"correct_option"`
}

// Validate checks the structural invariants of a question: at least two
// options, the correct option index in range, and the second-language
// options (when present) mirroring the primary options one-to-one.
func (q *Question) Validate() error {
	if q.Text == "" {
		return errors.New("question text is empty")
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("question needs at least 2 options, got %d", len(q.Options))
	}
	if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
		return fmt.Errorf("correct option %d out of range [0, %d)", q.CorrectOption, len(q.Options))
	}
	if len(q.OptionsHindi) > 0 && len(q.OptionsHindi) != len(q.Options) {
		return fmt.Errorf("hindi options length %d does not match options length %d", len(q.OptionsHindi), len(q.Options))
	}
	return nil
}
