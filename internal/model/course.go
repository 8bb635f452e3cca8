package model

import (
	"gorm.io/datatypes"
)

type UnitType string

const (
	UnitChapter UnitType = "chapter"
	UnitModule  UnitType = "module"
	UnitSection UnitType = "section"
	UnitTopic   UnitType = "topic"
)

const (
	MinUnitCount = 1
	MaxUnitCount = 100
)

// Audience 课程面向的受众，某一维度为空表示不限制
type Audience struct {
	Universities datatypes.JSONSlice[string] `json:"universities"`
	Faculties    datatypes.JSONSlice[string] `json:"faculties"`
	Levels       datatypes.JSONSlice[string] `json:"levels"`
	Departments  datatypes.JSONSlice[string] `json:"departments"`
}

func (a Audience) IsUnrestricted() bool {
	return len(a.Universities) == 0 && len(a.Faculties) == 0 &&
		len(a.Levels) == 0 && len(a.Departments) == 0
}

// Structure 课程的划分方式，UnitCount 为单元数量上限
type Structure struct {
	UnitType  UnitType `gorm:"size:20" json:"unitType"`
	UnitLabel string   `gorm:"size:50" json:"unitLabel"`
	UnitCount int      `json:"unitCount"`
}

// swagger:model Course
type Course struct {
	UUIDBase
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Slug        string                      `gorm:"size:300;uniqueIndex" json:"slug"`
	Description string                      `gorm:"type:text" json:"description"`
	CourseCode  string                      `gorm:"size:50;index" json:"courseCode"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Category    string                      `gorm:"size:100" json:"category"`
	Audience    Audience                    `gorm:"embedded;embeddedPrefix:audience_" json:"audience"`
	Structure   Structure                   `gorm:"embedded;embeddedPrefix:structure_" json:"structure"`
	CreatedBy   uint                        `gorm:"index" json:"createdBy"`
	Units       []Unit                      `gorm:"foreignKey:CourseID" json:"units"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Unit
type Unit struct {
	UUIDBase
	CourseID      string `gorm:"index;type:varchar(36);not null" json:"courseId"`
	Title         string `gorm:"size:255;not null" json:"title"`
	Description   string `gorm:"type:text" json:"description"`
	Order         int    `gorm:"column:order;default:1" json:"order"`
	EstimatedTime int    `gorm:"default:0" json:"estimatedTime"` // 分钟
	Pages         []Page `gorm:"foreignKey:UnitID" json:"pages"`
}

func (Unit) TableName() string {
	return "units"
}

type AttachmentType string

const (
	AttachmentDocument AttachmentType = "document"
	AttachmentImage    AttachmentType = "image"
	AttachmentLink     AttachmentType = "link"
)

type Attachment struct {
	Title string         `json:"title" validate:"required"`
	URL   string         `json:"url" validate:"required"`
	Type  AttachmentType `json:"type" validate:"oneof=document image link"`
}

// swagger:model Page
type Page struct {
	UUIDBase
	UnitID      string                          `gorm:"index;type:varchar(36);not null" json:"unitId"`
	Title       string                          `gorm:"size:255" json:"title"`
	Order       int                             `gorm:"column:order;default:1" json:"order"`
	HTML        string                          `gorm:"column:html;type:longtext" json:"html"`
	AudioURL    string                          `gorm:"size:500" json:"audioUrl,omitempty"`
	VideoURL    string                          `gorm:"size:500" json:"videoUrl,omitempty"`
	Attachments datatypes.JSONSlice[Attachment] `json:"attachments"`
}

func (Page) TableName() string {
	return "pages"
}

// Enrollment 用户选课记录
type Enrollment struct {
	BaseModel
	UserID   uint   `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	CourseID string `gorm:"uniqueIndex:idx_enrollment_user_course;type:varchar(36);not null" json:"courseId"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
