package model

import (
	"time"

	"gorm.io/datatypes"
)

type QuizDifficulty string

const (
	DifficultyEasy   QuizDifficulty = "easy"
	DifficultyMedium QuizDifficulty = "medium"
	DifficultyHard   QuizDifficulty = "hard"
)

// Quiz 与测评共用触发模型，仅作练习评分
// swagger:model Quiz
type Quiz struct {
	RecordBase
	CourseID     string                        `gorm:"type:varchar(36);not null;uniqueIndex:idx_quiz_trigger,priority:1" json:"courseId"`
	Trigger      TriggerType                   `gorm:"column:trigger_type;size:10;not null" json:"trigger"`
	ModuleID     string                        `gorm:"type:varchar(36);index" json:"moduleId"`
	PageOrder    *int                          `json:"pageOrder,omitempty"`
	TriggerKey   string                        `gorm:"size:80;not null;uniqueIndex:idx_quiz_trigger,priority:2" json:"triggerKey"`
	Title        string                        `gorm:"size:255;not null" json:"title"`
	Description  string                        `gorm:"type:text" json:"description"`
	Difficulty   QuizDifficulty                `gorm:"size:10;default:'easy'" json:"difficulty"`
	Category     string                        `gorm:"size:100" json:"category"`
	TimeLimit    int                           `gorm:"default:0" json:"timeLimit"`
	PassingScore int                           `json:"passingScore"`
	TotalMarks   int                           `gorm:"default:1" json:"totalMarks"`
	Questions    datatypes.JSONSlice[Question] `json:"questions"`
	IsActive     bool                          `gorm:"default:false" json:"isActive"`
	PublishedAt  *time.Time                    `json:"publishedAt,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

type QuizAttempt struct {
	RecordBase
	UserID      uint      `gorm:"index;not null" json:"userId"`
	QuizID      string    `gorm:"index;type:varchar(36);not null" json:"quizId"`
	CourseID    string    `gorm:"index;type:varchar(36)" json:"courseId"`
	Score       int       `json:"score"`
	TotalMarks  int       `json:"totalMarks"`
	Passed      bool      `json:"passed"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
