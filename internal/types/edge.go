package types

import (
	"time"

	"github.com/topicflow/topicflow-backend/kg"
)

// Edge is a prerequisite relationship. The (graph, parent, child) triple is the
// uniqueness key; ID exists for compatibility with older clients.
type Edge struct {
	ID         int    `gorm:"primaryKey;autoIncrement" json:"id"`
	GraphID    string `gorm:"not null;index;uniqueIndex:idx_edges_graph_pair" json:"graph_id"`
	ParentSlug string `gorm:"not null;index;uniqueIndex:idx_edges_graph_pair" json:"parent_slug"`
	ChildSlug  string `gorm:"not null;index;uniqueIndex:idx_edges_graph_pair" json:"child_slug"`
	CreatedAt  time.Time
}

func (Edge) TableName() string { return "kg_edges" }

func (e *Edge) DTO() kg.Edge {
	return kg.Edge{
		ID:         e.ID,
		GraphID:    e.GraphID,
		ParentSlug: e.ParentSlug,
		ChildSlug:  e.ChildSlug,
		CreatedAt:  formatTime(e.CreatedAt),
	}
}

func (e *Edge) LegacyDTO() kg.LegacyEdge {
	return kg.LegacyEdge{ID: e.ID, ParentSlug: e.ParentSlug, ChildSlug: e.ChildSlug}
}
