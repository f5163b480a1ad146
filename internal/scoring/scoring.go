// Package scoring computes the marks of a completed attempt. It is pure:
// no I/O, no side effects, deterministic for a given test and answer set.
package scoring

import (
	"math"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

// Marks is the outcome of scoring one attempt.
type Marks struct {
	// Score is the raw score and may be negative under negative marking.
	Score      float64 `json:"score"`
	TotalMarks float64 `json:"total_marks"`
	// Percentage is floored at 0 so the UI never shows a negative progress
	// indicator. The raw Score stays available for display.
	Percentage int `json:"percentage"`
}

// Score grades answers against the test's marking scheme. Each correct
// answer earns the positive mark, each attempted-and-wrong answer loses the
// negative mark, and unanswered questions contribute nothing. A test with
// zero questions yields zero marks and 0%, never a division fault.
func Score(t *model.Test, answers []int) Marks {
	pos := t.EffectivePositiveMarks()
	neg := t.EffectiveNegativeMarks()

	var score float64
	for i := range t.Questions {
		if i >= len(answers) {
			break
		}
		switch {
		case answers[i] == t.Questions[i].CorrectOption:
			score += pos
		case answers[i] != model.Unanswered:
			score -= neg
		}
	}

	total := t.TotalMarks()
	return Marks{
		Score:      score,
		TotalMarks: total,
		Percentage: percentage(score, total),
	}
}

func percentage(score, total float64) int {
	if total <= 0 || score <= 0 {
		return 0
	}
	return int(math.Round(100 * score / total))
}
