// Package testutil 为测试构建临时数据库和数据
package testutil

import (
	"elearn_backend/internal/model"
	"elearn_backend/pkg/database"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 打开独立的内存 sqlite 数据库并迁移所有表。
// 只用一个连接，保持内存数据库存活，事务串行执行
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser 按给定角色和分配范围创建用户
func CreateUser(t *testing.T, db *gorm.DB, role model.UserRole, mutate ...func(*model.User)) *model.User {
	t.Helper()

	u := &model.User{
		Name:                 "User " + uuid.NewString()[:6],
		Email:                uuid.NewString()[:12] + "@example.com",
		Password:             "x",
		Role:                 role,
		AssignedUniversities: []string{},
		AssignedFaculties:    []string{},
		AssignedDepartments:  []string{},
		AssignedLevels:       []string{},
	}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
