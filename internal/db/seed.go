package db

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/types"
)

// EnsureDefaultGraph guarantees exactly one default (readonly) graph exists.
// When scraperDBPath points at an existing legacy scraper database, its
// courses/topics/edges are imported into the default graph; otherwise an empty
// default graph is created.
func (s *SQLiteService) EnsureDefaultGraph(scraperDBPath string) error {
	var count int64
	if err := s.db.Model(&types.KnowledgeGraph{}).Where("is_default = ?", true).Count(&count).Error; err != nil {
		return fmt.Errorf("check default graph: %w", err)
	}
	if count > 0 {
		return nil
	}

	if scraperDBPath != "" {
		if _, err := os.Stat(scraperDBPath); err == nil {
			s.log.Info("Seeding default graph from scraper database", "path", scraperDBPath)
			return s.importScraperDB(scraperDBPath)
		}
		s.log.Warn("Scraper database not found, creating empty default graph", "path", scraperDBPath)
	}

	now := time.Now().UTC()
	graph := types.KnowledgeGraph{
		ID:          uuid.NewString(),
		Name:        "Default Graph",
		Description: strPtr("Default knowledge graph"),
		IsDefault:   true,
		IsReadonly:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.Create(&graph).Error; err != nil {
		return fmt.Errorf("create default graph: %w", err)
	}
	s.log.Info("Created empty default graph", "graph_id", graph.ID)
	return nil
}

type scraperCourse struct {
	ID    int
	Name  string
	Color string
}

type scraperTopic struct {
	URLSlug     string `gorm:"column:url_slug"`
	DisplayName string `gorm:"column:display_name"`
	CourseID    int    `gorm:"column:course_id"`
	ContentHTML *string `gorm:"column:content_html"`
	ContentText *string `gorm:"column:content_text"`
}

type scraperEdge struct {
	ParentSlug string `gorm:"column:parent_slug"`
	ChildSlug  string `gorm:"column:child_slug"`
}

func (s *SQLiteService) importScraperDB(path string) error {
	src, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("open scraper database: %w", err)
	}
	defer func() {
		if sqlDB, dbErr := src.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()

	var courses []scraperCourse
	if err := src.Raw("SELECT id, name, color FROM courses ORDER BY id").Scan(&courses).Error; err != nil {
		return fmt.Errorf("read scraper courses: %w", err)
	}
	var topics []scraperTopic
	if err := src.Raw("SELECT url_slug, display_name, course_id, content_html, content_text FROM topics").Scan(&topics).Error; err != nil {
		return fmt.Errorf("read scraper topics: %w", err)
	}
	var edges []scraperEdge
	if err := src.Raw("SELECT parent_slug, child_slug FROM edges").Scan(&edges).Error; err != nil {
		return fmt.Errorf("read scraper edges: %w", err)
	}

	now := time.Now().UTC()
	graphID := uuid.NewString()

	return s.db.Transaction(func(tx *gorm.DB) error {
		graph := types.KnowledgeGraph{
			ID:          graphID,
			Name:        "Default Graph",
			Description: strPtr("Imported from scraper database"),
			IsDefault:   true,
			IsReadonly:  true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&graph).Error; err != nil {
			return err
		}
		for _, c := range courses {
			row := types.Course{
				GraphID:   graphID,
				CourseID:  c.ID,
				Name:      c.Name,
				Color:     c.Color,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, t := range topics {
			row := types.Topic{
				GraphID:     graphID,
				URLSlug:     t.URLSlug,
				DisplayName: t.DisplayName,
				CourseID:    t.CourseID,
				ContentHTML: t.ContentHTML,
				ContentText: t.ContentText,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			row.ComputeHasContent()
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, e := range edges {
			row := types.Edge{
				GraphID:    graphID,
				ParentSlug: e.ParentSlug,
				ChildSlug:  e.ChildSlug,
				CreatedAt:  now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		s.log.Info("Imported default graph",
			"graph_id", graphID,
			"courses", len(courses),
			"topics", len(topics),
			"edges", len(edges),
		)
		return nil
	})
}

func strPtr(v string) *string { return &v }
