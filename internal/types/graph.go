package types

import (
	"time"

	"github.com/topicflow/topicflow-backend/kg"
)

// KnowledgeGraph is the storage model for a graph container. Exactly one row
// has IsDefault set; that row is also readonly and cannot be deleted.
type KnowledgeGraph struct {
	ID            string  `gorm:"type:text;primaryKey" json:"id"`
	Name          string  `gorm:"not null" json:"name"`
	Description   *string `gorm:"column:description" json:"description"`
	IsDefault     bool    `gorm:"not null;default:false;index" json:"is_default"`
	IsReadonly    bool    `gorm:"not null;default:false" json:"is_readonly"`
	SourceGraphID *string `gorm:"column:source_graph_id" json:"source_graph_id"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (KnowledgeGraph) TableName() string { return "knowledge_graphs" }

func (g *KnowledgeGraph) DTO() kg.KnowledgeGraph {
	return kg.KnowledgeGraph{
		ID:            g.ID,
		Name:          g.Name,
		Description:   g.Description,
		IsDefault:     g.IsDefault,
		IsReadonly:    g.IsReadonly,
		SourceGraphID: g.SourceGraphID,
		CreatedAt:     formatTime(g.CreatedAt),
		UpdatedAt:     formatTime(g.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
