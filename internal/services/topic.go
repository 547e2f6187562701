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

type TopicService interface {
	List(ctx context.Context, graphID string) ([]kg.Topic, error)
	Get(ctx context.Context, graphID, urlSlug string) (*kg.Topic, error)
	Create(ctx context.Context, graphID string, data kg.TopicCreate) (*kg.Topic, error)
	Update(ctx context.Context, graphID, urlSlug string, data kg.TopicUpdate) (*kg.Topic, error)
	Delete(ctx context.Context, graphID, urlSlug string) error
	Prerequisites(ctx context.Context, graphID, urlSlug string) ([]kg.Topic, error)
	Dependents(ctx context.Context, graphID, urlSlug string) ([]kg.Topic, error)
}

type topicService struct {
	db         *gorm.DB
	log        *logger.Logger
	graphRepo  repos.GraphRepo
	courseRepo repos.CourseRepo
	topicRepo  repos.TopicRepo
	edgeRepo   repos.EdgeRepo
}

func NewTopicService(
	db *gorm.DB,
	baseLog *logger.Logger,
	graphRepo repos.GraphRepo,
	courseRepo repos.CourseRepo,
	topicRepo repos.TopicRepo,
	edgeRepo repos.EdgeRepo,
) TopicService {
	return &topicService{
		db:         db,
		log:        baseLog.With("service", "TopicService"),
		graphRepo:  graphRepo,
		courseRepo: courseRepo,
		topicRepo:  topicRepo,
		edgeRepo:   edgeRepo,
	}
}

func (s *topicService) List(ctx context.Context, graphID string) ([]kg.Topic, error) {
	if _, err := requireGraph(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	topics, err := s.topicRepo.ListByGraph(ctx, nil, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	parents, err := s.edgeRepo.ParentMap(ctx, nil, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	out := make([]kg.Topic, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.DTO(parents[t.URLSlug]))
	}
	return out, nil
}

func (s *topicService) Get(ctx context.Context, graphID, urlSlug string) (*kg.Topic, error) {
	if _, err := requireGraph(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	topic, err := requireTopic(ctx, nil, s.topicRepo, graphID, urlSlug)
	if err != nil {
		return nil, err
	}
	parents, err := s.edgeRepo.ListParents(ctx, nil, graphID, urlSlug)
	if err != nil {
		return nil, apierr.Database(err)
	}
	dto := topic.DTO(parents)
	return &dto, nil
}

func (s *topicService) Create(ctx context.Context, graphID string, data kg.TopicCreate) (*kg.Topic, error) {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(data.URLSlug) == "" {
		return nil, apierr.Validation("URL slug is required")
	}
	if strings.TrimSpace(data.DisplayName) == "" {
		return nil, apierr.Validation("Display name is required")
	}
	if _, err := requireCourse(ctx, nil, s.courseRepo, graphID, data.CourseID); err != nil {
		return nil, err
	}
	existing, err := s.topicRepo.GetBySlug(ctx, nil, graphID, data.URLSlug)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if existing != nil {
		return nil, apierr.Duplicate("Topic with slug %s already exists", data.URLSlug)
	}

	now := time.Now().UTC()
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
	if err := s.topicRepo.Create(ctx, nil, &topic); err != nil {
		return nil, apierr.Database(err)
	}
	dto := topic.DTO(nil)
	return &dto, nil
}

func (s *topicService) Update(ctx context.Context, graphID, urlSlug string, data kg.TopicUpdate) (*kg.Topic, error) {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	topic, err := requireTopic(ctx, nil, s.topicRepo, graphID, urlSlug)
	if err != nil {
		return nil, err
	}
	if data.CourseID != nil {
		if _, err := requireCourse(ctx, nil, s.courseRepo, graphID, *data.CourseID); err != nil {
			return nil, err
		}
		topic.CourseID = *data.CourseID
	}
	if data.DisplayName != nil {
		topic.DisplayName = *data.DisplayName
	}
	if data.ContentHTML != nil {
		topic.ContentHTML = data.ContentHTML
	}
	if data.ContentText != nil {
		topic.ContentText = data.ContentText
	}
	topic.ComputeHasContent()
	topic.UpdatedAt = time.Now().UTC()
	if err := s.topicRepo.Update(ctx, nil, topic); err != nil {
		return nil, apierr.Database(err)
	}
	parents, err := s.edgeRepo.ListParents(ctx, nil, graphID, urlSlug)
	if err != nil {
		return nil, apierr.Database(err)
	}
	dto := topic.DTO(parents)
	return &dto, nil
}

// Delete removes the topic and every edge touching it in one transaction. The
// cascade is part of the delete, never deferred.
func (s *topicService) Delete(ctx context.Context, graphID, urlSlug string) error {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return err
	}
	if _, err := requireTopic(ctx, nil, s.topicRepo, graphID, urlSlug); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.edgeRepo.DeleteTouching(ctx, tx, graphID, urlSlug); err != nil {
			return err
		}
		return s.topicRepo.Delete(ctx, tx, graphID, urlSlug)
	})
	if err != nil {
		return apierr.Database(err)
	}
	return nil
}

func (s *topicService) Prerequisites(ctx context.Context, graphID, urlSlug string) ([]kg.Topic, error) {
	return s.related(ctx, graphID, urlSlug, s.edgeRepo.ListParents)
}

func (s *topicService) Dependents(ctx context.Context, graphID, urlSlug string) ([]kg.Topic, error) {
	return s.related(ctx, graphID, urlSlug, s.edgeRepo.ListChildren)
}

func (s *topicService) related(
	ctx context.Context,
	graphID, urlSlug string,
	neighbors func(context.Context, *gorm.DB, string, string) ([]string, error),
) ([]kg.Topic, error) {
	if _, err := requireGraph(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	if _, err := requireTopic(ctx, nil, s.topicRepo, graphID, urlSlug); err != nil {
		return nil, err
	}
	slugs, err := neighbors(ctx, nil, graphID, urlSlug)
	if err != nil {
		return nil, apierr.Database(err)
	}
	topics, err := s.topicRepo.ListBySlugs(ctx, nil, graphID, slugs)
	if err != nil {
		return nil, apierr.Database(err)
	}
	parents, err := s.edgeRepo.ParentMap(ctx, nil, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	out := make([]kg.Topic, 0, len(topics))
	for _, t := range topics {
		out = append(out, t.DTO(parents[t.URLSlug]))
	}
	return out, nil
}

func requireTopic(ctx context.Context, tx *gorm.DB, topicRepo repos.TopicRepo, graphID, urlSlug string) (*types.Topic, error) {
	topic, err := topicRepo.GetBySlug(ctx, tx, graphID, urlSlug)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if topic == nil {
		return nil, apierr.NotFound(apierr.CodeTopicNotFound, "Topic %s not found", urlSlug)
	}
	return topic, nil
}
