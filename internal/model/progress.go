package model

import "time"

// UnitCompletion 单元完成记录，每个（用户, 单元）至多一条。记录不会被删除，
// 唯一索引保证宝石奖励只发放一次
type UnitCompletion struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"uniqueIndex:idx_completion_user_unit,priority:1;not null" json:"userId"`
	UnitID      string    `gorm:"uniqueIndex:idx_completion_user_unit,priority:2;type:varchar(36);not null" json:"unitId"`
	CourseID    string    `gorm:"index;type:varchar(36);not null" json:"courseId"`
	GemsAwarded int       `json:"gemsAwarded"`
	CompletedAt time.Time `json:"completedAt"`
}

func (UnitCompletion) TableName() string {
	return "unit_completions"
}

type UnitCompletionResult struct {
	AlreadyCompleted bool `json:"alreadyCompleted"`
	GemsAwarded      int  `json:"gemsAwarded"`
	TotalGems        int  `json:"totalGems"`
}

type UnitProgress struct {
	UnitID    string `json:"unitId"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Completed bool   `json:"completed"`
}

type CourseProgress struct {
	CourseID       string         `json:"courseId"`
	UnitDetails    []UnitProgress `json:"unitDetails"`
	CompletedUnits int            `json:"completedUnits"`
	TotalUnits     int            `json:"totalUnits"`
	Percentage     float64        `json:"percentage"`
}
