package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mocktestapp/mocktest-backend/internal/model"
)

func validQuestion() model.Question {
	return model.Question{
		Text:          "What is the capital of France?",
		Options:       []string{"Berlin", "Paris", "Madrid", "Rome"},
		CorrectOption: 1,
	}
}

func TestQuestionValidate(t *testing.T) {
	tests := map[string]struct {
		mutate  func(q *model.Question)
		wantErr bool
	}{
		"valid": {
			mutate: func(q *model.Question) {},
		},
		"valid with hindi mirror": {
			mutate: func(q *model.Question) {
				q.TextHindi = "फ्रांस की राजधानी क्या है?"
				q.OptionsHindi = []string{"बर्लिन", "पेरिस", "मैड्रिड", "रोम"}
			},
		},
		"empty text": {
			mutate:  func(q *model.Question) { q.Text = "" },
			wantErr: true,
		},
		"single option": {
			mutate:  func(q *model.Question) { q.Options = []string{"Paris"}; q.CorrectOption = 0 },
			wantErr: true,
		},
		"no options": {
			mutate:  func(q *model.Question) { q.Options = nil; q.CorrectOption = 0 },
			wantErr: true,
		},
		"negative correct option": {
			mutate:  func(q *model.Question) { q.CorrectOption = -1 },
			wantErr: true,
		},
		"correct option past the end": {
			mutate:  func(q *model.Question) { q.CorrectOption = 4 },
			wantErr: true,
		},
		"hindi mirror length mismatch": {
			mutate: func(q *model.Question) {
				q.OptionsHindi = []string{"बर्लिन", "पेरिस"}
			},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			q := validQuestion()
			tc.mutate(&q)

			err := q.Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestTestValidate(t *testing.T) {
	valid := model.Test{
		Title:     "Geography Basics",
		Questions: []model.Question{validQuestion()},
	}
	require.NoError(t, valid.Validate())

	noTitle := valid
	noTitle.Title = ""
	require.Error(t, noTitle.Validate())

	noQuestions := valid
	noQuestions.Questions = nil
	require.Error(t, noQuestions.Validate())

	badQuestion := valid
	badQuestion.Questions = []model.Question{validQuestion(), {Text: "broken"}}
	err := badQuestion.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "question 1")
}

func TestEffectiveMarkingScheme(t *testing.T) {
	explicit := model.Test{PositiveMarks: 2, NegativeMarks: 0.5}
	require.Equal(t, 2.0, explicit.EffectivePositiveMarks())
	require.Equal(t, 0.5, explicit.EffectiveNegativeMarks())

	defaults := model.Test{}
	require.Equal(t, model.DefaultPositiveMarks, defaults.EffectivePositiveMarks())
	require.Equal(t, 0.0, defaults.EffectiveNegativeMarks())
}

func TestEffectiveDuration(t *testing.T) {
	explicit := model.Test{DurationMinutes: 30}
	require.Equal(t, 30*60.0, explicit.EffectiveDuration().Seconds())

	derived := model.Test{
		Questions: []model.Question{validQuestion(), validQuestion(), validQuestion()},
	}
	require.Equal(t, 3*90.0, derived.EffectiveDuration().Seconds())
}

func TestTotalMarks(t *testing.T) {
	test := model.Test{
		Questions:     []model.Question{validQuestion(), validQuestion()},
		PositiveMarks: 2,
	}
	require.Equal(t, 4.0, test.TotalMarks())
}
