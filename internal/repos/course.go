package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/types"
)

type CourseRepo interface {
	ListByGraph(ctx context.Context, tx *gorm.DB, graphID string) ([]*types.Course, error)
	GetByCourseID(ctx context.Context, tx *gorm.DB, graphID string, courseID int) (*types.Course, error)
	NextCourseID(ctx context.Context, tx *gorm.DB, graphID string) (int, error)
	Create(ctx context.Context, tx *gorm.DB, course *types.Course) error
	Update(ctx context.Context, tx *gorm.DB, course *types.Course) error
	Delete(ctx context.Context, tx *gorm.DB, graphID string, courseID int) error
	CopyToGraph(ctx context.Context, tx *gorm.DB, sourceGraphID, targetGraphID string, now time.Time) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseRepo) ListByGraph(ctx context.Context, tx *gorm.DB, graphID string) ([]*types.Course, error) {
	var courses []*types.Course
	if err := r.conn(tx).WithContext(ctx).
		Where("graph_id = ?", graphID).
		Order("course_id").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByCourseID(ctx context.Context, tx *gorm.DB, graphID string, courseID int) (*types.Course, error) {
	var course types.Course
	err := r.conn(tx).WithContext(ctx).
		Where("graph_id = ? AND course_id = ?", graphID, courseID).
		First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// NextCourseID returns max(course_id)+1 within the graph; ids are per-graph.
func (r *courseRepo) NextCourseID(ctx context.Context, tx *gorm.DB, graphID string) (int, error) {
	var next int
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Course{}).
		Where("graph_id = ?", graphID).
		Select("COALESCE(MAX(course_id), 0) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	return r.conn(tx).WithContext(ctx).Create(course).Error
}

func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	return r.conn(tx).WithContext(ctx).Save(course).Error
}

func (r *courseRepo) Delete(ctx context.Context, tx *gorm.DB, graphID string, courseID int) error {
	return r.conn(tx).WithContext(ctx).
		Where("graph_id = ? AND course_id = ?", graphID, courseID).
		Delete(&types.Course{}).Error
}

func (r *courseRepo) CopyToGraph(ctx context.Context, tx *gorm.DB, sourceGraphID, targetGraphID string, now time.Time) error {
	return r.conn(tx).WithContext(ctx).Exec(`
		INSERT INTO kg_courses (graph_id, course_id, name, color, created_at, updated_at)
		SELECT ?, course_id, name, color, ?, ?
		FROM kg_courses WHERE graph_id = ?`,
		targetGraphID, now, now, sourceGraphID,
	).Error
}
