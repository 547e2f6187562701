package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/repos"
	"github.com/topicflow/topicflow-backend/internal/types"
	"github.com/topicflow/topicflow-backend/kg"
)

type CourseService interface {
	List(ctx context.Context, graphID string) ([]kg.Course, error)
	Get(ctx context.Context, graphID string, courseID int) (*kg.Course, error)
	Create(ctx context.Context, graphID string, data kg.CourseCreate) (*kg.Course, error)
	Update(ctx context.Context, graphID string, courseID int, data kg.CourseUpdate) (*kg.Course, error)
	Delete(ctx context.Context, graphID string, courseID int) error
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	graphRepo  repos.GraphRepo
	courseRepo repos.CourseRepo
}

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, graphRepo repos.GraphRepo, courseRepo repos.CourseRepo) CourseService {
	return &courseService{
		db:         db,
		log:        baseLog.With("service", "CourseService"),
		graphRepo:  graphRepo,
		courseRepo: courseRepo,
	}
}

func (s *courseService) List(ctx context.Context, graphID string) ([]kg.Course, error) {
	if _, err := requireGraph(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	courses, err := s.courseRepo.ListByGraph(ctx, nil, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	out := make([]kg.Course, 0, len(courses))
	for _, c := range courses {
		out = append(out, c.DTO())
	}
	return out, nil
}

func (s *courseService) Get(ctx context.Context, graphID string, courseID int) (*kg.Course, error) {
	if _, err := requireGraph(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	course, err := requireCourse(ctx, nil, s.courseRepo, graphID, courseID)
	if err != nil {
		return nil, err
	}
	dto := course.DTO()
	return &dto, nil
}

func (s *courseService) Create(ctx context.Context, graphID string, data kg.CourseCreate) (*kg.Course, error) {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.Name) == "" {
		return nil, apierr.Validation("Name is required")
	}
	if data.Color == "" {
		return nil, apierr.Validation("Color is required")
	}

	var course types.Course
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		nextID, err := s.courseRepo.NextCourseID(ctx, tx, graphID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		course = types.Course{
			GraphID:   graphID,
			CourseID:  nextID,
			Name:      strings.TrimSpace(data.Name),
			Color:     data.Color,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.courseRepo.Create(ctx, tx, &course)
	})
	if err != nil {
		return nil, apierr.Database(err)
	}
	dto := course.DTO()
	return &dto, nil
}

func (s *courseService) Update(ctx context.Context, graphID string, courseID int, data kg.CourseUpdate) (*kg.Course, error) {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	course, err := requireCourse(ctx, nil, s.courseRepo, graphID, courseID)
	if err != nil {
		return nil, err
	}
	if data.Name != nil {
		course.Name = strings.TrimSpace(*data.Name)
	}
	if data.Color != nil {
		course.Color = *data.Color
	}
	course.UpdatedAt = time.Now().UTC()
	if err := s.courseRepo.Update(ctx, nil, course); err != nil {
		return nil, apierr.Database(err)
	}
	dto := course.DTO()
	return &dto, nil
}

func (s *courseService) Delete(ctx context.Context, graphID string, courseID int) error {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return err
	}
	if _, err := requireCourse(ctx, nil, s.courseRepo, graphID, courseID); err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, nil, graphID, courseID); err != nil {
		return apierr.Database(err)
	}
	return nil
}

func requireCourse(ctx context.Context, tx *gorm.DB, courseRepo repos.CourseRepo, graphID string, courseID int) (*types.Course, error) {
	course, err := courseRepo.GetByCourseID(ctx, tx, graphID, courseID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if course == nil {
		return nil, apierr.NotFound(apierr.CodeCourseNotFound, "Course %d not found", courseID)
	}
	return course, nil
}
