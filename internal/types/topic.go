package types

import (
	"time"

	"github.com/topicflow/topicflow-backend/kg"
)

// Topic is one node in a graph. ParentSlugs is intentionally absent from the
// model: it is derived from the edge table at read time, never stored.
type Topic struct {
	ID          int     `gorm:"primaryKey;autoIncrement" json:"id"`
	GraphID     string  `gorm:"not null;index;uniqueIndex:idx_topics_graph_slug" json:"graph_id"`
	URLSlug     string  `gorm:"column:url_slug;not null;uniqueIndex:idx_topics_graph_slug" json:"url_slug"`
	DisplayName string  `gorm:"not null;index" json:"display_name"`
	CourseID    int     `gorm:"not null;index" json:"course_id"`
	ContentHTML *string `gorm:"column:content_html" json:"content_html"`
	ContentText *string `gorm:"column:content_text" json:"content_text"`
	HasContent  bool    `gorm:"not null;default:false" json:"has_content"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Topic) TableName() string { return "kg_topics" }

// ComputeHasContent keeps the derived flag in sync with the content columns.
func (t *Topic) ComputeHasContent() {
	t.HasContent = (t.ContentHTML != nil && *t.ContentHTML != "") ||
		(t.ContentText != nil && *t.ContentText != "")
}

func (t *Topic) DTO(parentSlugs []string) kg.Topic {
	if parentSlugs == nil {
		parentSlugs = []string{}
	}
	return kg.Topic{
		ID:          t.ID,
		GraphID:     t.GraphID,
		URLSlug:     t.URLSlug,
		DisplayName: t.DisplayName,
		CourseID:    t.CourseID,
		ParentSlugs: parentSlugs,
		ContentHTML: t.ContentHTML,
		ContentText: t.ContentText,
		HasContent:  t.HasContent,
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
}

func (t *Topic) LegacyDTO(parentSlugs []string) kg.LegacyTopic {
	if parentSlugs == nil {
		parentSlugs = []string{}
	}
	return kg.LegacyTopic{
		ID:          t.ID,
		URLSlug:     t.URLSlug,
		DisplayName: t.DisplayName,
		CourseID:    t.CourseID,
		ParentSlugs: parentSlugs,
		ContentHTML: t.ContentHTML,
		ContentText: t.ContentText,
		HasContent:  t.HasContent,
	}
}
