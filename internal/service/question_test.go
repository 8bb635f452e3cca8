package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeQuestions(t *testing.T) {
	qs := []model.Question{
		mcQuestion(0, 2),
		{Text: "The sky is blue on a clear day", QuestionType: model.TrueFalse, Options: []string{"yes"}, CorrectAnswer: intPtr(0), Marks: 1},
		{Text: "Name the largest planet", QuestionType: model.ShortAnswer, AnswerText: "  Jupiter ", CorrectAnswer: intPtr(3), Marks: 3},
	}

	total, err := normalizeQuestions(qs)
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Equal(t, []string{"True", "False"}, qs[1].Options)
	assert.Equal(t, "Jupiter", qs[2].AnswerText)
	assert.Nil(t, qs[2].CorrectAnswer)
}

func TestNormalizeQuestionsRejects(t *testing.T) {
	tests := []struct {
		name string
		q    model.Question
	}{
		{"short text", model.Question{Text: "short", QuestionType: model.ShortAnswer, AnswerText: "x", Marks: 1}},
		{"zero marks", func() model.Question { q := mcQuestion(0, 1); q.Marks = 0; return q }()},
		{"three options", func() model.Question { q := mcQuestion(0, 1); q.Options = q.Options[:3]; return q }()},
		{"blank option", func() model.Question { q := mcQuestion(0, 1); q.Options[2] = " "; return q }()},
		{"answer out of range", mcQuestion(4, 1)},
		{"true false index 2", model.Question{Text: "Water boils at 100C", QuestionType: model.TrueFalse, CorrectAnswer: intPtr(2), Marks: 1}},
		{"short answer without text", model.Question{Text: "Name the largest planet", QuestionType: model.ShortAnswer, Marks: 1}},
		{"unknown type", model.Question{Text: "Describe the water cycle", QuestionType: "essay", Marks: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeQuestions([]model.Question{tt.q})
			assert.ErrorIs(t, err, util.ErrValidation)
		})
	}

	_, err := normalizeQuestions(nil)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestGradeAnswers(t *testing.T) {
	qs := []model.Question{
		mcQuestion(1, 2),
		{Text: "The sky is blue on a clear day", QuestionType: model.TrueFalse, CorrectAnswer: intPtr(0), Marks: 1},
		{Text: "Name the largest planet", QuestionType: model.ShortAnswer, AnswerText: "Jupiter", Marks: 3},
	}

	earned, feedback, err := gradeAnswers(qs, []Answer{
		{Choice: intPtr(1)},
		{Choice: intPtr(1)},
		{Text: " jupiter "},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, earned)
	require.Len(t, feedback, 3)
	assert.True(t, feedback[0].Correct)
	assert.False(t, feedback[1].Correct)
	assert.Equal(t, 0, feedback[1].Marks)
	assert.True(t, feedback[2].Correct)

	earned, _, err = gradeAnswers(qs, []Answer{{Choice: intPtr(1)}})
	require.NoError(t, err)
	assert.Equal(t, 2, earned, "missing answers score zero")

	_, _, err = gradeAnswers(qs[:1], []Answer{{}, {}})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestScaleScore(t *testing.T) {
	assert.Equal(t, 7, scaleScore(7, 10, 10))
	assert.Equal(t, 21, scaleScore(7, 10, 30))
	assert.Equal(t, 3, scaleScore(5, 10, 5), "half marks round up")
	assert.Equal(t, 0, scaleScore(0, 0, 30))
	assert.InDelta(t, 70.0, percentOf(21, 30), 0.001)
	assert.Zero(t, percentOf(1, 0))
}

func TestCheckTrigger(t *testing.T) {
	po, err := checkTrigger(model.TriggerUnit, "u1", intPtr(3))
	require.NoError(t, err)
	assert.Nil(t, po, "unit triggers drop the page order")

	po, err = checkTrigger(model.TriggerPage, "u1", intPtr(2))
	require.NoError(t, err)
	assert.Equal(t, 2, *po)

	_, err = checkTrigger(model.TriggerPage, "u1", nil)
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = checkTrigger(model.TriggerPage, "u1", intPtr(0))
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = checkTrigger(model.TriggerUnit, " ", nil)
	assert.ErrorIs(t, err, util.ErrValidation)
	_, err = checkTrigger("lesson", "u1", nil)
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestTriggerKey(t *testing.T) {
	assert.Equal(t, "u1", model.TriggerKey(model.TriggerUnit, "u1", nil))
	assert.Equal(t, "u1-3", model.TriggerKey(model.TriggerPage, "u1", intPtr(3)))
}
