package model

import (
	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleSubadmin  UserRole = "subadmin"
	RoleWAECAdmin UserRole = "waec_admin"
	RoleJAMBAdmin UserRole = "jamb_admin"
	RoleUser      UserRole = "user"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSubadmin, RoleWAECAdmin, RoleJAMBAdmin, RoleUser:
		return true
	}
	return false
}

// IsStaff 判断该角色是否可以使用内容管理接口
func (r UserRole) IsStaff() bool {
	return r.Valid() && r != RoleUser
}

// swagger:model User
type User struct {
	BaseModel
	Name                 string                      `gorm:"size:100;not null" json:"name"`
	Email                string                      `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password             string                      `gorm:"size:100;not null" json:"-"`
	Role                 UserRole                    `gorm:"size:20;default:'user'" json:"role"`
	Gems                 int                         `gorm:"not null;default:0" json:"gems"`
	AssignedUniversities datatypes.JSONSlice[string] `json:"assignedUniversities"`
	AssignedFaculties    datatypes.JSONSlice[string] `json:"assignedFaculties"`
	AssignedDepartments  datatypes.JSONSlice[string] `json:"assignedDepartments"`
	AssignedLevels       datatypes.JSONSlice[string] `json:"assignedLevels"`
	Disabled             bool                        `gorm:"default:false" json:"disabled"`
}

func (User) TableName() string {
	return "users"
}
