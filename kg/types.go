// Package kg holds the wire types for the knowledge graph API, shared by the
// server handlers and the client SDK.
package kg

// KnowledgeGraph is a named container of courses, topics and edges. Exactly one
// graph is the default; the default graph is read-only through the edit API.
type KnowledgeGraph struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	IsDefault     bool    `json:"isDefault"`
	IsReadonly    bool    `json:"isReadonly"`
	SourceGraphID *string `json:"sourceGraphId"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// Course groups topics for coloring and filtering. CourseID is the per-graph
// identifier used by the API; ID is the storage surrogate key.
type Course struct {
	ID        int    `json:"id"`
	GraphID   string `json:"graphId,omitempty"`
	CourseID  int    `json:"courseId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Topic is one node in the knowledge graph. ParentSlugs is derived from the
// edge list whose child is this topic; it is never stored.
type Topic struct {
	ID          int      `json:"id"`
	GraphID     string   `json:"graphId,omitempty"`
	URLSlug     string   `json:"urlSlug"`
	DisplayName string   `json:"displayName"`
	CourseID    int      `json:"courseId"`
	ParentSlugs []string `json:"parentSlugs"`
	ContentHTML *string  `json:"contentHtml"`
	ContentText *string  `json:"contentText"`
	HasContent  bool     `json:"hasContent"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// Edge is a directed prerequisite relationship: parent must be learned before
// child. The ordered slug pair is the uniqueness key; ID exists for
// compatibility only.
type Edge struct {
	ID         int    `json:"id"`
	GraphID    string `json:"graphId,omitempty"`
	ParentSlug string `json:"parentSlug"`
	ChildSlug  string `json:"childSlug"`
	CreatedAt  string `json:"createdAt"`
}

// GraphData is the full payload of one graph.
type GraphData struct {
	Graph   KnowledgeGraph `json:"graph"`
	Courses []Course       `json:"courses"`
	Topics  []Topic        `json:"topics"`
	Edges   []Edge         `json:"edges"`
}

type GraphCreate struct {
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	CopyFromGraphID *string `json:"copyFromGraphId,omitempty"`
}

type GraphUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CourseCreate struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CourseUpdate struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

type TopicCreate struct {
	URLSlug     string  `json:"urlSlug"`
	DisplayName string  `json:"displayName"`
	CourseID    int     `json:"courseId"`
	ContentHTML *string `json:"contentHtml,omitempty"`
	ContentText *string `json:"contentText,omitempty"`
}

type TopicUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	CourseID    *int    `json:"courseId,omitempty"`
	ContentHTML *string `json:"contentHtml,omitempty"`
	ContentText *string `json:"contentText,omitempty"`
}

type EdgeCreate struct {
	ParentSlug string `json:"parentSlug"`
	ChildSlug  string `json:"childSlug"`
}

// EdgeKey identifies an edge by its ordered slug pair.
type EdgeKey struct {
	ParentSlug string `json:"parentSlug"`
	ChildSlug  string `json:"childSlug"`
}

type BatchCourseUpdate struct {
	CourseID int          `json:"courseId"`
	Data     CourseUpdate `json:"data"`
}

type BatchTopicUpdate struct {
	URLSlug string      `json:"urlSlug"`
	Data    TopicUpdate `json:"data"`
}

type BatchCourseOps struct {
	Create []CourseCreate      `json:"create,omitempty"`
	Update []BatchCourseUpdate `json:"update,omitempty"`
	Delete []int               `json:"delete,omitempty"`
}

type BatchTopicOps struct {
	Create []TopicCreate      `json:"create,omitempty"`
	Update []BatchTopicUpdate `json:"update,omitempty"`
	Delete []string           `json:"delete,omitempty"`
}

type BatchEdgeOps struct {
	Create []EdgeCreate `json:"create,omitempty"`
	Delete []EdgeKey    `json:"delete,omitempty"`
}

// BatchOperations bundles create/update/delete intents across entity types into
// one atomic request. Absent sections mean "no operations".
type BatchOperations struct {
	Courses *BatchCourseOps `json:"courses,omitempty"`
	Topics  *BatchTopicOps  `json:"topics,omitempty"`
	Edges   *BatchEdgeOps   `json:"edges,omitempty"`
}

// IsEmpty reports whether the document carries no operations at all.
func (b BatchOperations) IsEmpty() bool {
	return b.Courses == nil && b.Topics == nil && b.Edges == nil
}

type BatchResult struct {
	CoursesCreated int `json:"coursesCreated"`
	CoursesUpdated int `json:"coursesUpdated"`
	CoursesDeleted int `json:"coursesDeleted"`
	TopicsCreated  int `json:"topicsCreated"`
	TopicsUpdated  int `json:"topicsUpdated"`
	TopicsDeleted  int `json:"topicsDeleted"`
	EdgesCreated   int `json:"edgesCreated"`
	EdgesDeleted   int `json:"edgesDeleted"`
}

// Legacy read-path types for GET /api/graph. The pre-API frontend consumed
// snake_case keys, so these keep that shape.

type LegacyCourse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type LegacyTopic struct {
	ID          int      `json:"id"`
	URLSlug     string   `json:"url_slug"`
	DisplayName string   `json:"display_name"`
	CourseID    int      `json:"course_id"`
	ParentSlugs []string `json:"parent_slugs"`
	ContentHTML *string  `json:"content_html"`
	ContentText *string  `json:"content_text"`
	HasContent  bool     `json:"has_content"`
}

type LegacyEdge struct {
	ID         int    `json:"id"`
	ParentSlug string `json:"parent_slug"`
	ChildSlug  string `json:"child_slug"`
}

type LegacyGraph struct {
	Courses []LegacyCourse `json:"courses"`
	Topics  []LegacyTopic  `json:"topics"`
	Edges   []LegacyEdge   `json:"edges"`
}
