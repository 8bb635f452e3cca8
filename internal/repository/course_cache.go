package repository

import (
	"context"
	"elearn_backend/internal/model"
	"elearn_backend/pkg/logger"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const courseTreeKeyPrefix = "course_tree:"

// CourseCache 在 redis 中缓存序列化后的课程树。client 为 nil 时所有方法都不做任何操作，
// 服务可以在没有 redis 的情况下运行
type CourseCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewCourseCache(rdb *redis.Client, ttl time.Duration) *CourseCache {
	return &CourseCache{Redis: rdb, TTL: ttl}
}

func (c *CourseCache) enabled() bool {
	return c != nil && c.Redis != nil
}

func (c *CourseCache) Get(ctx context.Context, courseID string) (*model.Course, bool) {
	if !c.enabled() {
		return nil, false
	}
	val, err := c.Redis.Get(ctx, courseTreeKeyPrefix+courseID).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("course cache read failed", zap.String("courseId", courseID), zap.Error(err))
		return nil, false
	}
	var course model.Course
	if err := json.Unmarshal([]byte(val), &course); err != nil {
		return nil, false
	}
	return &course, true
}

func (c *CourseCache) Set(ctx context.Context, course *model.Course) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(course)
	if err != nil {
		return
	}
	if err := c.Redis.Set(ctx, courseTreeKeyPrefix+course.ID, data, c.TTL).Err(); err != nil {
		logger.Log.Warn("course cache write failed", zap.String("courseId", course.ID), zap.Error(err))
	}
}

func (c *CourseCache) Invalidate(ctx context.Context, courseID string) {
	if !c.enabled() {
		return
	}
	if err := c.Redis.Del(ctx, courseTreeKeyPrefix+courseID).Err(); err != nil {
		logger.Log.Warn("course cache invalidate failed", zap.String("courseId", courseID), zap.Error(err))
	}
}
