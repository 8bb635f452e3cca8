package model

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type AssessmentType string

const (
	AssessmentCA   AssessmentType = "ca"
	AssessmentExam AssessmentType = "exam"
)

type TriggerType string

const (
	TriggerUnit TriggerType = "unit"
	TriggerPage TriggerType = "page"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
)

const (
	MinQuestionTextLength = 10
	MultipleChoiceOptions = 4
)

// Question 以内联方式存储在测评或测验中。
// 选择题的 CorrectAnswer 为选项下标（true_false 中 0 = 正确，1 = 错误），简答题比较 AnswerText
type Question struct {
	Text          string       `json:"text"`
	QuestionType  QuestionType `json:"questionType"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer *int         `json:"correctAnswer,omitempty"`
	AnswerText    string       `json:"answerText,omitempty"`
	Marks         int          `json:"marks"`
	Explanation   string       `json:"explanation,omitempty"`
}

// Redacted 返回去掉答案的副本，供学生查看
func (q Question) Redacted() Question {
	q.CorrectAnswer = nil
	q.AnswerText = ""
	q.Explanation = ""
	return q
}

func RedactQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Redacted()
	}
	return out
}

// TriggerKey 标识测评或测验的挂载点：单元触发为单元ID，页面触发为 "unitId-pageOrder"
func TriggerKey(trigger TriggerType, moduleID string, pageOrder *int) string {
	if trigger == TriggerPage && pageOrder != nil {
		return fmt.Sprintf("%s-%d", moduleID, *pageOrder)
	}
	return moduleID
}

// swagger:model Assessment
type Assessment struct {
	RecordBase
	CourseID     string                        `gorm:"type:varchar(36);not null;uniqueIndex:idx_assessment_trigger,priority:1" json:"courseId"`
	Type         AssessmentType                `gorm:"size:10;not null;uniqueIndex:idx_assessment_trigger,priority:3" json:"type"`
	Trigger      TriggerType                   `gorm:"column:trigger_type;size:10;not null" json:"trigger"`
	ModuleID     string                        `gorm:"type:varchar(36);index" json:"moduleId"`
	PageOrder    *int                          `json:"pageOrder,omitempty"`
	TriggerKey   string                        `gorm:"size:80;not null;uniqueIndex:idx_assessment_trigger,priority:2" json:"triggerKey"`
	Title        string                        `gorm:"size:255;not null" json:"title"`
	Description  string                        `gorm:"type:text" json:"description"`
	Instructions string                        `gorm:"type:text" json:"instructions,omitempty"`
	TimeLimit    int                           `gorm:"default:0" json:"timeLimit"` // 分钟
	PassingScore int                           `json:"passingScore"`
	TotalMarks   int                           `gorm:"default:1" json:"totalMarks"`
	Questions    datatypes.JSONSlice[Question] `json:"questions"`
	IsActive     bool                          `gorm:"default:false" json:"isActive"`
	PublishedAt  *time.Time                    `json:"publishedAt,omitempty"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// Result 一次测评作答的成绩
// swagger:model Result
type Result struct {
	RecordBase
	UserID       uint           `gorm:"index:idx_result_user_course,priority:1;not null" json:"userId"`
	CourseID     string         `gorm:"index:idx_result_user_course,priority:2;type:varchar(36);not null" json:"courseId"`
	AssessmentID string         `gorm:"index;type:varchar(36)" json:"assessmentId"`
	Type         AssessmentType `gorm:"size:10;not null" json:"type"`
	EarnedMarks  int            `json:"earnedMarks"`
	TotalMarks   int            `json:"totalMarks"`
	AttemptedAt  time.Time      `gorm:"index" json:"attemptedAt"`
}

func (Result) TableName() string {
	return "results"
}
