package repository

import (
	"context"
	"database/sql"
	"elearn_backend/internal/model"
	"elearn_backend/internal/util"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func byOrder(db *gorm.DB) *gorm.DB {
	return db.Order("`order` asc, created_at asc")
}

func translate(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, translate(err, util.ErrCourseNotFound)
	}
	return &course, nil
}

// FindTree 加载课程及其单元和页面，每一层按 order 排序
func (r *CourseRepository) FindTree(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.WithContext(ctx).
		Preload("Units", byOrder).
		Preload("Units.Pages", byOrder).
		Where("id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, translate(err, util.ErrCourseNotFound)
	}
	return &course, nil
}

type CourseFilter struct {
	Search   string
	Category string
	Tag      string
}

func (r *CourseRepository) List(ctx context.Context, f CourseFilter) ([]model.Course, error) {
	var courses []model.Course
	query := r.DB.WithContext(ctx).Model(&model.Course{})
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("title LIKE ? OR course_code LIKE ?", like, like)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	err := query.Order("created_at desc").Find(&courses).Error
	if err != nil {
		return nil, err
	}
	if f.Tag == "" {
		return courses, nil
	}
	// tags 存在 JSON 列中，在这里过滤以兼容不同数据库驱动
	filtered := courses[:0]
	for _, c := range courses {
		for _, t := range c.Tags {
			if t == f.Tag {
				filtered = append(filtered, c)
				break
			}
		}
	}
	return filtered, nil
}

func (r *CourseRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("title asc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(course).Error
}

// Delete 在一个事务中删除课程及其单元、页面、测评和测验
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Course{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrCourseNotFound
		}

		unitIDs := tx.Model(&model.Unit{}).Select("id").Where("course_id = ?", id)
		if err := tx.Where("unit_id IN (?)", unitIDs).Delete(&model.Page{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Unit{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Assessment{}).Error; err != nil {
			return err
		}
		return tx.Where("course_id = ?", id).Delete(&model.Quiz{}).Error
	})
}

func (r *CourseRepository) CountUnits(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Unit{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func nextOrder(db *gorm.DB, m interface{}, column, parentID string) (int, error) {
	var max sql.NullInt64
	err := db.Model(m).
		Select("MAX(`order`)").
		Where(column+" = ?", parentID).
		Row().Scan(&max)
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 1, nil
	}
	return int(max.Int64) + 1, nil
}

// CreateUnit 课程单元数未达到 limit 时插入单元。统计前锁定课程行，
// 并发插入不会超出上限。unit.Order 为 0 时使用下一个可用序号
func (r *CourseRepository) CreateUnit(ctx context.Context, unit *model.Unit, limit int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course model.Course
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", unit.CourseID).
			First(&course).Error
		if err != nil {
			return translate(err, util.ErrCourseNotFound)
		}

		var count int64
		if err := tx.Model(&model.Unit{}).Where("course_id = ?", unit.CourseID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(limit) {
			return util.ErrUnitLimitReached
		}

		if unit.Order == 0 {
			order, err := nextOrder(tx, &model.Unit{}, "course_id", unit.CourseID)
			if err != nil {
				return err
			}
			unit.Order = order
		}
		return tx.Omit(clause.Associations).Create(unit).Error
	})
}

func (r *CourseRepository) FindUnit(ctx context.Context, courseID, unitID string) (*model.Unit, error) {
	var unit model.Unit
	err := r.DB.WithContext(ctx).
		Where("id = ? AND course_id = ?", unitID, courseID).
		First(&unit).Error
	if err != nil {
		return nil, translate(err, util.ErrUnitNotFound)
	}
	return &unit, nil
}

// FindUnitByID 不指定课程按ID查找单元
func (r *CourseRepository) FindUnitByID(ctx context.Context, unitID string) (*model.Unit, error) {
	var unit model.Unit
	err := r.DB.WithContext(ctx).Where("id = ?", unitID).First(&unit).Error
	if err != nil {
		return nil, translate(err, util.ErrUnitNotFound)
	}
	return &unit, nil
}

func (r *CourseRepository) ListUnits(ctx context.Context, courseID string) ([]model.Unit, error) {
	var units []model.Unit
	err := byOrder(r.DB.WithContext(ctx).Where("course_id = ?", courseID)).Find(&units).Error
	return units, err
}

func (r *CourseRepository) UpdateUnit(ctx context.Context, unit *model.Unit) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(unit).Error
}

// DeleteUnit 删除单元及其页面和挂载的测评、测验
func (r *CourseRepository) DeleteUnit(ctx context.Context, courseID, unitID string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND course_id = ?", unitID, courseID).Delete(&model.Unit{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrUnitNotFound
		}
		if err := tx.Where("unit_id = ?", unitID).Delete(&model.Page{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ? AND module_id = ?", courseID, unitID).Delete(&model.Assessment{}).Error; err != nil {
			return err
		}
		return tx.Where("course_id = ? AND module_id = ?", courseID, unitID).Delete(&model.Quiz{}).Error
	})
}

func (r *CourseRepository) NextPageOrder(ctx context.Context, unitID string) (int, error) {
	return nextOrder(r.DB.WithContext(ctx), &model.Page{}, "unit_id", unitID)
}

func (r *CourseRepository) CreatePage(ctx context.Context, page *model.Page) error {
	return r.DB.WithContext(ctx).Create(page).Error
}

func (r *CourseRepository) FindPage(ctx context.Context, unitID, pageID string) (*model.Page, error) {
	var page model.Page
	err := r.DB.WithContext(ctx).
		Where("id = ? AND unit_id = ?", pageID, unitID).
		First(&page).Error
	if err != nil {
		return nil, translate(err, util.ErrPageNotFound)
	}
	return &page, nil
}

func (r *CourseRepository) ListPages(ctx context.Context, unitID string) ([]model.Page, error) {
	var pages []model.Page
	err := byOrder(r.DB.WithContext(ctx).Where("unit_id = ?", unitID)).Find(&pages).Error
	return pages, err
}

func (r *CourseRepository) UpdatePage(ctx context.Context, page *model.Page) error {
	return r.DB.WithContext(ctx).Save(page).Error
}

func (r *CourseRepository) DeletePage(ctx context.Context, unitID, pageID string) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND unit_id = ?", pageID, unitID).Delete(&model.Page{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrPageNotFound
	}
	return nil
}

func (r *CourseRepository) Enroll(ctx context.Context, userID uint, courseID string) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Enrollment{UserID: userID, CourseID: courseID})
	return res.RowsAffected > 0, res.Error
}

func (r *CourseRepository) EnrolledCourseIDs(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	err := r.DB.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &ids).Error
	return ids, err
}
