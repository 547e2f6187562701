package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/repos"
	"github.com/topicflow/topicflow-backend/internal/types"
	"github.com/topicflow/topicflow-backend/kg"
)

type BatchService interface {
	Apply(ctx context.Context, graphID string, ops kg.BatchOperations) (*kg.BatchResult, error)
}

// batchService applies a whole BatchOperations document in one transaction.
// Any failing operation rolls back everything already applied.
type batchService struct {
	db         *gorm.DB
	log        *logger.Logger
	graphRepo  repos.GraphRepo
	courseRepo repos.CourseRepo
	topicRepo  repos.TopicRepo
	edgeRepo   repos.EdgeRepo
}

func NewBatchService(
	db *gorm.DB,
	baseLog *logger.Logger,
	graphRepo repos.GraphRepo,
	courseRepo repos.CourseRepo,
	topicRepo repos.TopicRepo,
	edgeRepo repos.EdgeRepo,
) BatchService {
	return &batchService{
		db:         db,
		log:        baseLog.With("service", "BatchService"),
		graphRepo:  graphRepo,
		courseRepo: courseRepo,
		topicRepo:  topicRepo,
		edgeRepo:   edgeRepo,
	}
}

// Apply runs deletes first (edges, topics, courses), then creates (courses,
// topics, edges), then updates (courses, topics). Deleting children before
// parents and creating parents before children keeps every intermediate state
// consistent.
func (s *batchService) Apply(ctx context.Context, graphID string, ops kg.BatchOperations) (*kg.BatchResult, error) {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}

	var result kg.BatchResult
	if ops.IsEmpty() {
		return &result, nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.applyDeletes(ctx, tx, graphID, ops, &result); err != nil {
			return err
		}
		if err := s.applyCreates(ctx, tx, graphID, ops, &result); err != nil {
			return err
		}
		return s.applyUpdates(ctx, tx, graphID, ops, &result)
	})
	if err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, apierr.Database(err)
	}

	s.log.Info("Batch applied", "graph_id", graphID,
		"courses_created", result.CoursesCreated, "courses_updated", result.CoursesUpdated, "courses_deleted", result.CoursesDeleted,
		"topics_created", result.TopicsCreated, "topics_updated", result.TopicsUpdated, "topics_deleted", result.TopicsDeleted,
		"edges_created", result.EdgesCreated, "edges_deleted", result.EdgesDeleted)
	return &result, nil
}

func (s *batchService) applyDeletes(ctx context.Context, tx *gorm.DB, graphID string, ops kg.BatchOperations, result *kg.BatchResult) error {
	if ops.Edges != nil {
		for _, key := range ops.Edges.Delete {
			edge, err := s.edgeRepo.Get(ctx, tx, graphID, key.ParentSlug, key.ChildSlug)
			if err != nil {
				return err
			}
			if edge == nil {
				return apierr.NotFound(apierr.CodeEdgeNotFound, "Edge %s -> %s not found", key.ParentSlug, key.ChildSlug)
			}
			if err := s.edgeRepo.Delete(ctx, tx, graphID, key.ParentSlug, key.ChildSlug); err != nil {
				return err
			}
			result.EdgesDeleted++
		}
	}
	if ops.Topics != nil {
		for _, slug := range ops.Topics.Delete {
			if _, err := requireTopic(ctx, tx, s.topicRepo, graphID, slug); err != nil {
				return err
			}
			if err := s.edgeRepo.DeleteTouching(ctx, tx, graphID, slug); err != nil {
				return err
			}
			if err := s.topicRepo.Delete(ctx, tx, graphID, slug); err != nil {
				return err
			}
			result.TopicsDeleted++
		}
	}
	if ops.Courses != nil {
		for _, courseID := range ops.Courses.Delete {
			if _, err := requireCourse(ctx, tx, s.courseRepo, graphID, courseID); err != nil {
				return err
			}
			if err := s.courseRepo.Delete(ctx, tx, graphID, courseID); err != nil {
				return err
			}
			result.CoursesDeleted++
		}
	}
	return nil
}

func (s *batchService) applyCreates(ctx context.Context, tx *gorm.DB, graphID string, ops kg.BatchOperations, result *kg.BatchResult) error {
	now := time.Now().UTC()

	if ops.Courses != nil {
		for _, data := range ops.Courses.Create {
			if strings.TrimSpace(data.Name) == "" {
				return apierr.Validation("Name is required")
			}
			if data.Color == "" {
				return apierr.Validation("Color is required")
			}
			nextID, err := s.courseRepo.NextCourseID(ctx, tx, graphID)
			if err != nil {
				return err
			}
			course := types.Course{
				GraphID:   graphID,
				CourseID:  nextID,
				Name:      strings.TrimSpace(data.Name),
				Color:     data.Color,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.courseRepo.Create(ctx, tx, &course); err != nil {
				return err
			}
			result.CoursesCreated++
		}
	}
	if ops.Topics != nil {
		for _, data := range ops.Topics.Create {
			if strings.TrimSpace(data.URLSlug) == "" {
				return apierr.Validation("URL slug is required")
			}
			if strings.TrimSpace(data.DisplayName) == "" {
				return apierr.Validation("Display name is required")
			}
			if _, err := requireCourse(ctx, tx, s.courseRepo, graphID, data.CourseID); err != nil {
				return err
			}
			existing, err := s.topicRepo.GetBySlug(ctx, tx, graphID, data.URLSlug)
			if err != nil {
				return err
			}
			if existing != nil {
				return apierr.Duplicate("Topic with slug %s already exists", data.URLSlug)
			}
			topic := types.Topic{
				GraphID:     graphID,
				URLSlug:     data.URLSlug,
				DisplayName: data.DisplayName,
				CourseID:    data.CourseID,
				ContentHTML: data.ContentHTML,
				ContentText: data.ContentText,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			topic.ComputeHasContent()
			if err := s.topicRepo.Create(ctx, tx, &topic); err != nil {
				return err
			}
			result.TopicsCreated++
		}
	}
	if ops.Edges != nil {
		for _, data := range ops.Edges.Create {
			if data.ParentSlug == "" || data.ChildSlug == "" {
				return apierr.Validation("Both parent and child slugs are required")
			}
			if data.ParentSlug == data.ChildSlug {
				return apierr.Validation("Edge cannot connect a topic to itself")
			}
			if _, err := requireTopic(ctx, tx, s.topicRepo, graphID, data.ParentSlug); err != nil {
				return err
			}
			if _, err := requireTopic(ctx, tx, s.topicRepo, graphID, data.ChildSlug); err != nil {
				return err
			}
			existing, err := s.edgeRepo.Get(ctx, tx, graphID, data.ParentSlug, data.ChildSlug)
			if err != nil {
				return err
			}
			if existing != nil {
				return apierr.Duplicate("Edge %s -> %s already exists", data.ParentSlug, data.ChildSlug)
			}
			edge := types.Edge{
				GraphID:    graphID,
				ParentSlug: data.ParentSlug,
				ChildSlug:  data.ChildSlug,
				CreatedAt:  now,
			}
			if err := s.edgeRepo.Create(ctx, tx, &edge); err != nil {
				return err
			}
			result.EdgesCreated++
		}
	}
	return nil
}

func (s *batchService) applyUpdates(ctx context.Context, tx *gorm.DB, graphID string, ops kg.BatchOperations, result *kg.BatchResult) error {
	now := time.Now().UTC()

	if ops.Courses != nil {
		for _, op := range ops.Courses.Update {
			course, err := requireCourse(ctx, tx, s.courseRepo, graphID, op.CourseID)
			if err != nil {
				return err
			}
			if op.Data.Name != nil {
				course.Name = strings.TrimSpace(*op.Data.Name)
			}
			if op.Data.Color != nil {
				course.Color = *op.Data.Color
			}
			course.UpdatedAt = now
			if err := s.courseRepo.Update(ctx, tx, course); err != nil {
				return err
			}
			result.CoursesUpdated++
		}
	}
	if ops.Topics != nil {
		for _, op := range ops.Topics.Update {
			topic, err := requireTopic(ctx, tx, s.topicRepo, graphID, op.URLSlug)
			if err != nil {
				return err
			}
			if op.Data.CourseID != nil {
				if _, err := requireCourse(ctx, tx, s.courseRepo, graphID, *op.Data.CourseID); err != nil {
					return err
				}
				topic.CourseID = *op.Data.CourseID
			}
			if op.Data.DisplayName != nil {
				topic.DisplayName = *op.Data.DisplayName
			}
			if op.Data.ContentHTML != nil {
				topic.ContentHTML = op.Data.ContentHTML
			}
			if op.Data.ContentText != nil {
				topic.ContentText = op.Data.ContentText
			}
			topic.ComputeHasContent()
			topic.UpdatedAt = now
			if err := s.topicRepo.Update(ctx, tx, topic); err != nil {
				return err
			}
			result.TopicsUpdated++
		}
	}
	return nil
}
