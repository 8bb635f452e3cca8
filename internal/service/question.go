package service

import (
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"strings"
)

var trueFalseOptions = []string{"True", "False"}

// normalizeQuestions 校验每道题并补全派生字段（如判断题的固定选项），
// 返回总分
func normalizeQuestions(qs []model.Question) (int, error) {
	if len(qs) == 0 {
		return 0, util.NewValidationError("at least one question is required")
	}
	total := 0
	for i := range qs {
		q := &qs[i]
		n := i + 1
		q.Text = strings.TrimSpace(q.Text)
		if len([]rune(q.Text)) < model.MinQuestionTextLength {
			return 0, util.NewValidationError("question %d: text must be at least %d characters", n, model.MinQuestionTextLength)
		}
		if q.Marks < 1 {
			return 0, util.NewValidationError("question %d: marks must be at least 1", n)
		}

		switch q.QuestionType {
		case model.MultipleChoice:
			if len(q.Options) != model.MultipleChoiceOptions {
				return 0, util.NewValidationError("question %d: multiple choice questions need exactly %d options", n, model.MultipleChoiceOptions)
			}
			for j, opt := range q.Options {
				q.Options[j] = strings.TrimSpace(opt)
				if q.Options[j] == "" {
					return 0, util.NewValidationError("question %d: option %d is empty", n, j+1)
				}
			}
			if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer >= len(q.Options) {
				return 0, util.NewValidationError("question %d: correctAnswer must be an option index", n)
			}
			q.AnswerText = ""
		case model.TrueFalse:
			q.Options = append([]string(nil), trueFalseOptions...)
			if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer > 1 {
				return 0, util.NewValidationError("question %d: correctAnswer must be 0 (true) or 1 (false)", n)
			}
			q.AnswerText = ""
		case model.ShortAnswer:
			q.Options = nil
			q.CorrectAnswer = nil
			q.AnswerText = strings.TrimSpace(q.AnswerText)
			if q.AnswerText == "" {
				return 0, util.NewValidationError("question %d: answerText is required for short answer questions", n)
			}
		default:
			return 0, util.NewValidationError("question %d: questionType must be one of: multiple_choice true_false short_answer", n)
		}
		total += q.Marks
	}
	return total, nil
}

// Answer 学生对同一下标题目的作答
type Answer struct {
	Choice *int   `json:"choice,omitempty"`
	Text   string `json:"text,omitempty"`
}

type QuestionFeedback struct {
	Index         int    `json:"index"`
	Correct       bool   `json:"correct"`
	Marks         int    `json:"marks"`
	CorrectAnswer *int   `json:"correctAnswer,omitempty"`
	AnswerText    string `json:"answerText,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

func isCorrect(q model.Question, a Answer) bool {
	switch q.QuestionType {
	case model.MultipleChoice, model.TrueFalse:
		return a.Choice != nil && q.CorrectAnswer != nil && *a.Choice == *q.CorrectAnswer
	case model.ShortAnswer:
		given := strings.TrimSpace(a.Text)
		return given != "" && strings.EqualFold(given, strings.TrimSpace(q.AnswerText))
	}
	return false
}

// gradeAnswers 按题目评分，未作答得 0 分
func gradeAnswers(qs []model.Question, answers []Answer) (int, []QuestionFeedback, error) {
	if len(answers) > len(qs) {
		return 0, nil, util.NewValidationError("got %d answers for %d questions", len(answers), len(qs))
	}
	earned := 0
	feedback := make([]QuestionFeedback, len(qs))
	for i, q := range qs {
		var a Answer
		if i < len(answers) {
			a = answers[i]
		}
		fb := QuestionFeedback{
			Index:         i,
			CorrectAnswer: q.CorrectAnswer,
			AnswerText:    q.AnswerText,
			Explanation:   q.Explanation,
		}
		if isCorrect(q, a) {
			fb.Correct = true
			fb.Marks = q.Marks
			earned += q.Marks
		}
		feedback[i] = fb
	}
	return earned, feedback, nil
}

// scaleScore 原始分与设定总分不一致时按比例换算
func scaleScore(earned, questionMarks, totalMarks int) int {
	if questionMarks <= 0 || questionMarks == totalMarks {
		return earned
	}
	return (earned*totalMarks + questionMarks/2) / questionMarks
}

func percentOf(earned, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(earned) * 100 / float64(total)
}

// checkTrigger 校验触发字段并返回规范化后的页面序号
func checkTrigger(trigger model.TriggerType, moduleID string, pageOrder *int) (*int, error) {
	if strings.TrimSpace(moduleID) == "" {
		return nil, util.NewValidationError("moduleId is required")
	}
	switch trigger {
	case model.TriggerUnit:
		return nil, nil
	case model.TriggerPage:
		if pageOrder == nil {
			return nil, util.NewValidationError("pageOrder is required when trigger is page")
		}
		if *pageOrder < 1 {
			return nil, util.NewValidationError("pageOrder must be at least 1")
		}
		po := *pageOrder
		return &po, nil
	}
	return nil, util.NewValidationError("trigger must be one of: unit page")
}
