package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/repos"
	"github.com/topicflow/topicflow-backend/internal/types"
	"github.com/topicflow/topicflow-backend/kg"
)

type GraphService interface {
	List(ctx context.Context) ([]kg.KnowledgeGraph, error)
	Create(ctx context.Context, data kg.GraphCreate) (*kg.KnowledgeGraph, error)
	Get(ctx context.Context, graphID string) (*kg.KnowledgeGraph, error)
	Update(ctx context.Context, graphID string, data kg.GraphUpdate) (*kg.KnowledgeGraph, error)
	Delete(ctx context.Context, graphID string) error
	FullData(ctx context.Context, graphID string) (*kg.GraphData, error)
}

type graphService struct {
	db         *gorm.DB
	log        *logger.Logger
	graphRepo  repos.GraphRepo
	courseRepo repos.CourseRepo
	topicRepo  repos.TopicRepo
	edgeRepo   repos.EdgeRepo
}

func NewGraphService(
	db *gorm.DB,
	baseLog *logger.Logger,
	graphRepo repos.GraphRepo,
	courseRepo repos.CourseRepo,
	topicRepo repos.TopicRepo,
	edgeRepo repos.EdgeRepo,
) GraphService {
	return &graphService{
		db:         db,
		log:        baseLog.With("service", "GraphService"),
		graphRepo:  graphRepo,
		courseRepo: courseRepo,
		topicRepo:  topicRepo,
		edgeRepo:   edgeRepo,
	}
}

// requireGraph loads a graph or fails with GRAPH_NOT_FOUND.
func requireGraph(ctx context.Context, tx *gorm.DB, graphRepo repos.GraphRepo, graphID string) (*types.KnowledgeGraph, error) {
	graph, err := graphRepo.GetByID(ctx, tx, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if graph == nil {
		return nil, apierr.NotFound(apierr.CodeGraphNotFound, "Graph %s not found", graphID)
	}
	return graph, nil
}

// requireWritable loads a graph and rejects mutations on readonly graphs.
func requireWritable(ctx context.Context, tx *gorm.DB, graphRepo repos.GraphRepo, graphID string) (*types.KnowledgeGraph, error) {
	graph, err := requireGraph(ctx, tx, graphRepo, graphID)
	if err != nil {
		return nil, err
	}
	if graph.IsReadonly {
		return nil, apierr.Readonly()
	}
	return graph, nil
}

func (s *graphService) List(ctx context.Context) ([]kg.KnowledgeGraph, error) {
	graphs, err := s.graphRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Database(err)
	}
	out := make([]kg.KnowledgeGraph, 0, len(graphs))
	for _, g := range graphs {
		out = append(out, g.DTO())
	}
	return out, nil
}

func (s *graphService) Create(ctx context.Context, data kg.GraphCreate) (*kg.KnowledgeGraph, error) {
	if strings.TrimSpace(data.Name) == "" {
		return nil, apierr.Validation("Name is required")
	}

	var sourceID *string
	if data.CopyFromGraphID != nil && *data.CopyFromGraphID != "" {
		source, err := s.graphRepo.GetByID(ctx, nil, *data.CopyFromGraphID)
		if err != nil {
			return nil, apierr.Database(err)
		}
		if source == nil {
			return nil, apierr.NotFound(apierr.CodeGraphNotFound, "Source graph %s not found", *data.CopyFromGraphID)
		}
		sourceID = &source.ID
	}

	now := time.Now().UTC()
	graph := types.KnowledgeGraph{
		ID:            uuid.NewString(),
		Name:          data.Name,
		Description:   data.Description,
		SourceGraphID: sourceID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.graphRepo.Create(ctx, tx, &graph); err != nil {
			return err
		}
		if sourceID == nil {
			return nil
		}
		if err := s.courseRepo.CopyToGraph(ctx, tx, *sourceID, graph.ID, now); err != nil {
			return err
		}
		if err := s.topicRepo.CopyToGraph(ctx, tx, *sourceID, graph.ID, now); err != nil {
			return err
		}
		return s.edgeRepo.CopyToGraph(ctx, tx, *sourceID, graph.ID, now)
	})
	if err != nil {
		s.log.Error("Create graph failed", "error", err, "name", data.Name)
		return nil, apierr.Database(err)
	}

	s.log.Info("Graph created", "graph_id", graph.ID, "copied_from", sourceID)
	dto := graph.DTO()
	return &dto, nil
}

func (s *graphService) Get(ctx context.Context, graphID string) (*kg.KnowledgeGraph, error) {
	graph, err := requireGraph(ctx, nil, s.graphRepo, graphID)
	if err != nil {
		return nil, err
	}
	dto := graph.DTO()
	return &dto, nil
}

func (s *graphService) Update(ctx context.Context, graphID string, data kg.GraphUpdate) (*kg.KnowledgeGraph, error) {
	graph, err := requireWritable(ctx, nil, s.graphRepo, graphID)
	if err != nil {
		return nil, err
	}
	if data.Name != nil {
		graph.Name = *data.Name
	}
	if data.Description != nil {
		graph.Description = data.Description
	}
	graph.UpdatedAt = time.Now().UTC()
	if err := s.graphRepo.Update(ctx, nil, graph); err != nil {
		return nil, apierr.Database(err)
	}
	dto := graph.DTO()
	return &dto, nil
}

func (s *graphService) Delete(ctx context.Context, graphID string) error {
	graph, err := requireWritable(ctx, nil, s.graphRepo, graphID)
	if err != nil {
		return err
	}
	if graph.IsDefault {
		return apierr.CannotDeleteDefault()
	}
	if err := s.graphRepo.Delete(ctx, nil, graphID); err != nil {
		return apierr.Database(err)
	}
	s.log.Info("Graph deleted", "graph_id", graphID)
	return nil
}

// FullData returns the whole graph in one payload. Per-entity graphId is
// omitted and topic contentHtml is stripped to keep the payload small.
func (s *graphService) FullData(ctx context.Context, graphID string) (*kg.GraphData, error) {
	graph, err := requireGraph(ctx, nil, s.graphRepo, graphID)
	if err != nil {
		return nil, err
	}

	courses, err := s.courseRepo.ListByGraph(ctx, nil, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	topics, err := s.topicRepo.ListByGraph(ctx, nil, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	edges, err := s.edgeRepo.ListByGraph(ctx, nil, graphID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	parents := make(map[string][]string)
	for _, e := range edges {
		parents[e.ChildSlug] = append(parents[e.ChildSlug], e.ParentSlug)
	}

	data := kg.GraphData{
		Graph:   graph.DTO(),
		Courses: make([]kg.Course, 0, len(courses)),
		Topics:  make([]kg.Topic, 0, len(topics)),
		Edges:   make([]kg.Edge, 0, len(edges)),
	}
	for _, c := range courses {
		dto := c.DTO()
		dto.GraphID = ""
		data.Courses = append(data.Courses, dto)
	}
	for _, t := range topics {
		dto := t.DTO(parents[t.URLSlug])
		dto.GraphID = ""
		dto.ContentHTML = nil
		data.Topics = append(data.Topics, dto)
	}
	for _, e := range edges {
		dto := e.DTO()
		dto.GraphID = ""
		data.Edges = append(data.Edges, dto)
	}
	return &data, nil
}
