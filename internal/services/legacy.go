package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/repos"
	"github.com/topicflow/topicflow-backend/kg"
)

// contentTextPreview caps content_text in the legacy payload. The old frontend
// only shows a preview, so the full text stays server-side.
const contentTextPreview = 500

type LegacyService interface {
	Graph(ctx context.Context) (*kg.LegacyGraph, error)
}

// legacyService serves the pre-API read path: the whole default graph in
// snake_case, with content stripped down to previews. A JSON snapshot file, when
// present, short-circuits the database entirely.
type legacyService struct {
	db           *gorm.DB
	log          *logger.Logger
	snapshotPath string
	graphRepo    repos.GraphRepo
	courseRepo   repos.CourseRepo
	topicRepo    repos.TopicRepo
	edgeRepo     repos.EdgeRepo
}

func NewLegacyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	snapshotPath string,
	graphRepo repos.GraphRepo,
	courseRepo repos.CourseRepo,
	topicRepo repos.TopicRepo,
	edgeRepo repos.EdgeRepo,
) LegacyService {
	return &legacyService{
		db:           db,
		log:          baseLog.With("service", "LegacyService"),
		snapshotPath: snapshotPath,
		graphRepo:    graphRepo,
		courseRepo:   courseRepo,
		topicRepo:    topicRepo,
		edgeRepo:     edgeRepo,
	}
}

func (s *legacyService) Graph(ctx context.Context) (*kg.LegacyGraph, error) {
	if snapshot, ok := s.fromSnapshot(); ok {
		return snapshot, nil
	}
	return s.fromDatabase(ctx)
}

func (s *legacyService) fromSnapshot() (*kg.LegacyGraph, bool) {
	if s.snapshotPath == "" {
		return nil, false
	}
	raw, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("Snapshot read failed, falling back to database", "path", s.snapshotPath, "error", err)
		}
		return nil, false
	}
	var snapshot kg.LegacyGraph
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.log.Warn("Snapshot parse failed, falling back to database", "path", s.snapshotPath, "error", err)
		return nil, false
	}
	for i := range snapshot.Topics {
		sanitizeLegacyTopic(&snapshot.Topics[i])
	}
	return &snapshot, true
}

func (s *legacyService) fromDatabase(ctx context.Context) (*kg.LegacyGraph, error) {
	graph, err := s.graphRepo.GetDefault(ctx, nil)
	if err != nil {
		return nil, apierr.Database(err)
	}
	if graph == nil {
		return nil, apierr.NotFound(apierr.CodeGraphNotFound, "Default graph not found")
	}

	courses, err := s.courseRepo.ListByGraph(ctx, nil, graph.ID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	topics, err := s.topicRepo.ListByGraph(ctx, nil, graph.ID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	edges, err := s.edgeRepo.ListByGraph(ctx, nil, graph.ID)
	if err != nil {
		return nil, apierr.Database(err)
	}
	parents, err := s.edgeRepo.ParentMap(ctx, nil, graph.ID)
	if err != nil {
		return nil, apierr.Database(err)
	}

	out := kg.LegacyGraph{
		Courses: make([]kg.LegacyCourse, 0, len(courses)),
		Topics:  make([]kg.LegacyTopic, 0, len(topics)),
		Edges:   make([]kg.LegacyEdge, 0, len(edges)),
	}
	for _, c := range courses {
		out.Courses = append(out.Courses, c.LegacyDTO())
	}
	for _, t := range topics {
		dto := t.LegacyDTO(parents[t.URLSlug])
		sanitizeLegacyTopic(&dto)
		out.Topics = append(out.Topics, dto)
	}
	for _, e := range edges {
		out.Edges = append(out.Edges, e.LegacyDTO())
	}
	return &out, nil
}

// sanitizeLegacyTopic drops content_html and truncates content_text to a
// preview, on rune boundaries.
func sanitizeLegacyTopic(t *kg.LegacyTopic) {
	t.ContentHTML = nil
	if t.ContentText != nil {
		runes := []rune(*t.ContentText)
		if len(runes) > contentTextPreview {
			preview := string(runes[:contentTextPreview])
			t.ContentText = &preview
		}
	}
}
