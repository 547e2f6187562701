package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/repos"
	"github.com/topicflow/topicflow-backend/internal/types"
	"github.com/topicflow/topicflow-backend/kg"
)

type EdgeService interface {
	List(ctx context.Context, graphID string) ([]kg.Edge, error)
	Create(ctx context.Context, graphID string, data kg.EdgeCreate) (*kg.Edge, error)
	Delete(ctx context.Context, graphID, parentSlug, childSlug string) error
}

type edgeService struct {
	db        *gorm.DB
	log       *logger.Logger
	graphRepo repos.GraphRepo
	topicRepo repos.TopicRepo
	edgeRepo  repos.EdgeRepo
}

func NewEdgeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	graphRepo repos.GraphRepo,
	topicRepo repos.TopicRepo,
	edgeRepo repos.EdgeRepo,
) EdgeService {
	return &edgeService{
		db:        db,
		log:       baseLog.With("service", "EdgeService"),
		graphRepo: graphRepo,
		topicRepo: topicRepo,
		edgeRepo:  edgeRepo,
	}
}

func (s *edgeService) List(ctx context.Context, graphID string) ([]kg.Edge, error) {
	if _, err := requireGraph(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	edges, err := s.edgeRepo.ListByGraph(ctx, nil, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	out := make([]kg.Edge, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.DTO())
	}
	return out, nil
}

func (s *edgeService) Create(ctx context.Context, graphID string, data kg.EdgeCreate) (*kg.Edge, error) {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return nil, err
	}
	if data.ParentSlug == "" || data.ChildSlug == "" {
		return nil, apierr.Validation("Both parent and child slugs are required")
	}
	if data.ParentSlug == data.ChildSlug {
		return nil, apierr.Validation("Edge cannot connect a topic to itself")
	}
	if _, err := requireTopic(ctx, nil, s.topicRepo, graphID, data.ParentSlug); err != nil {
		return nil, err
	}
	if _, err := requireTopic(ctx, nil, s.topicRepo, graphID, data.ChildSlug); err != nil {
		return nil, err
	}
	existing, err := s.edgeRepo.Get(ctx, nil, graphID, data.ParentSlug, data.ChildSlug)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if existing != nil {
		return nil, apierr.Duplicate("Edge %s -> %s already exists", data.ParentSlug, data.ChildSlug)
	}

	edge := types.Edge{
		GraphID:    graphID,
		ParentSlug: data.ParentSlug,
		ChildSlug:  data.ChildSlug,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.edgeRepo.Create(ctx, nil, &edge); err != nil {
		return nil, apierr.Database(err)
	}
	dto := edge.DTO()
	return &dto, nil
}

func (s *edgeService) Delete(ctx context.Context, graphID, parentSlug, childSlug string) error {
	if _, err := requireWritable(ctx, nil, s.graphRepo, graphID); err != nil {
		return err
	}
	edge, err := s.edgeRepo.Get(ctx, nil, graphID, parentSlug, childSlug)
	if err != nil {
		return apierr.Database(err)
	}
	if edge == nil {
		return apierr.NotFound(apierr.CodeEdgeNotFound, "Edge %s -> %s not found", parentSlug, childSlug)
	}
	if err := s.edgeRepo.Delete(ctx, nil, graphID, parentSlug, childSlug); err != nil {
		return apierr.Database(err)
	}
	return nil
}
