package types

import (
	"time"

	"github.com/topicflow/topicflow-backend/kg"
)

// Course groups topics inside one graph. CourseID is the per-graph identifier
// the API keys on; ID is the surrogate row key.
type Course struct {
	ID        int    `gorm:"primaryKey;autoIncrement" json:"id"`
	GraphID   string `gorm:"not null;index;uniqueIndex:idx_courses_graph_course" json:"graph_id"`
	CourseID  int    `gorm:"not null;uniqueIndex:idx_courses_graph_course" json:"course_id"`
	Name      string `gorm:"not null" json:"name"`
	Color     string `gorm:"not null" json:"color"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Course) TableName() string { return "kg_courses" }

func (c *Course) DTO() kg.Course {
	return kg.Course{
		ID:        c.ID,
		GraphID:   c.GraphID,
		CourseID:  c.CourseID,
		Name:      c.Name,
		Color:     c.Color,
		CreatedAt: formatTime(c.CreatedAt),
		UpdatedAt: formatTime(c.UpdatedAt),
	}
}

func (c *Course) LegacyDTO() kg.LegacyCourse {
	return kg.LegacyCourse{ID: c.CourseID, Name: c.Name, Color: c.Color}
}
