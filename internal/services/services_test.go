package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/apierr"
	"github.com/topicflow/topicflow-backend/internal/db"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/pkg/pointers"
	"github.com/topicflow/topicflow-backend/internal/repos"
	"github.com/topicflow/topicflow-backend/kg"
)

type testEnv struct {
	db      *gorm.DB
	sqlite  *db.SQLiteService
	graphs  GraphService
	courses CourseService
	topics  TopicService
	edges   EdgeService
	batch   BatchService
	legacy  LegacyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()

	sqliteService, err := db.NewSQLiteService(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	require.NoError(t, sqliteService.AutoMigrateAll())
	t.Cleanup(func() { _ = sqliteService.Close() })

	gdb := sqliteService.DB()
	graphRepo := repos.NewGraphRepo(gdb, log)
	courseRepo := repos.NewCourseRepo(gdb, log)
	topicRepo := repos.NewTopicRepo(gdb, log)
	edgeRepo := repos.NewEdgeRepo(gdb, log)

	return &testEnv{
		db:      gdb,
		sqlite:  sqliteService,
		graphs:  NewGraphService(gdb, log, graphRepo, courseRepo, topicRepo, edgeRepo),
		courses: NewCourseService(gdb, log, graphRepo, courseRepo),
		topics:  NewTopicService(gdb, log, graphRepo, courseRepo, topicRepo, edgeRepo),
		edges:   NewEdgeService(gdb, log, graphRepo, topicRepo, edgeRepo),
		batch:   NewBatchService(gdb, log, graphRepo, courseRepo, topicRepo, edgeRepo),
		legacy:  NewLegacyService(gdb, log, "", graphRepo, courseRepo, topicRepo, edgeRepo),
	}
}

// seedGraph creates a writable graph with one course and two connected topics.
func seedGraph(t *testing.T, env *testEnv) (graphID string, courseID int) {
	t.Helper()
	ctx := context.Background()

	graph, err := env.graphs.Create(ctx, kg.GraphCreate{Name: "Working Copy"})
	require.NoError(t, err)

	course, err := env.courses.Create(ctx, graph.ID, kg.CourseCreate{Name: "Math", Color: "#ff0000"})
	require.NoError(t, err)

	_, err = env.topics.Create(ctx, graph.ID, kg.TopicCreate{URLSlug: "algebra", DisplayName: "Algebra", CourseID: course.CourseID})
	require.NoError(t, err)
	_, err = env.topics.Create(ctx, graph.ID, kg.TopicCreate{URLSlug: "calculus", DisplayName: "Calculus", CourseID: course.CourseID})
	require.NoError(t, err)
	_, err = env.edges.Create(ctx, graph.ID, kg.EdgeCreate{ParentSlug: "algebra", ChildSlug: "calculus"})
	require.NoError(t, err)

	return graph.ID, course.CourseID
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apierr.From(err).Code
}

func TestGraphCRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	graph, err := env.graphs.Create(ctx, kg.GraphCreate{Name: "My Graph", Description: pointers.Ptr("notes")})
	require.NoError(t, err)
	assert.NotEmpty(t, graph.ID)
	assert.False(t, graph.IsDefault)
	assert.False(t, graph.IsReadonly)

	got, err := env.graphs.Get(ctx, graph.ID)
	require.NoError(t, err)
	assert.Equal(t, "My Graph", got.Name)

	updated, err := env.graphs.Update(ctx, graph.ID, kg.GraphUpdate{Name: pointers.Ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	list, err := env.graphs.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.graphs.Delete(ctx, graph.ID))
	_, err = env.graphs.Get(ctx, graph.ID)
	assert.Equal(t, apierr.CodeGraphNotFound, errCode(t, err))
}

func TestGraphCreateRequiresName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.graphs.Create(context.Background(), kg.GraphCreate{Name: "   "})
	assert.Equal(t, apierr.CodeValidation, errCode(t, err))
}

func TestDefaultGraphCannotBeDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.sqlite.EnsureDefaultGraph(""))
	graphs, err := env.graphs.List(ctx)
	require.NoError(t, err)
	require.Len(t, graphs, 1)
	require.True(t, graphs[0].IsDefault)

	// The default graph is also readonly, which wins on delete.
	err = env.graphs.Delete(ctx, graphs[0].ID)
	assert.Equal(t, apierr.CodeReadonlyGraph, errCode(t, err))
}

func TestReadonlyGraphRejectsMutations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.sqlite.EnsureDefaultGraph(""))
	graphs, err := env.graphs.List(ctx)
	require.NoError(t, err)
	graphID := graphs[0].ID

	_, err = env.courses.Create(ctx, graphID, kg.CourseCreate{Name: "X", Color: "#fff"})
	assert.Equal(t, apierr.CodeReadonlyGraph, errCode(t, err))

	_, err = env.topics.Create(ctx, graphID, kg.TopicCreate{URLSlug: "x", DisplayName: "X", CourseID: 1})
	assert.Equal(t, apierr.CodeReadonlyGraph, errCode(t, err))

	_, err = env.batch.Apply(ctx, graphID, kg.BatchOperations{})
	assert.Equal(t, apierr.CodeReadonlyGraph, errCode(t, err))
}

func TestCourseIDsAreSequentialPerGraph(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	graph, err := env.graphs.Create(ctx, kg.GraphCreate{Name: "G"})
	require.NoError(t, err)

	first, err := env.courses.Create(ctx, graph.ID, kg.CourseCreate{Name: "A", Color: "#111"})
	require.NoError(t, err)
	second, err := env.courses.Create(ctx, graph.ID, kg.CourseCreate{Name: "B", Color: "#222"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.CourseID)
	assert.Equal(t, 2, second.CourseID)

	other, err := env.graphs.Create(ctx, kg.GraphCreate{Name: "H"})
	require.NoError(t, err)
	third, err := env.courses.Create(ctx, other.ID, kg.CourseCreate{Name: "C", Color: "#333"})
	require.NoError(t, err)
	assert.Equal(t, 1, third.CourseID, "courseId counts per graph")
}

func TestTopicCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, courseID := seedGraph(t, env)

	_, err := env.topics.Create(ctx, graphID, kg.TopicCreate{URLSlug: "", DisplayName: "X", CourseID: courseID})
	assert.Equal(t, apierr.CodeValidation, errCode(t, err))

	_, err = env.topics.Create(ctx, graphID, kg.TopicCreate{URLSlug: "x", DisplayName: "X", CourseID: 999})
	assert.Equal(t, apierr.CodeCourseNotFound, errCode(t, err))

	_, err = env.topics.Create(ctx, graphID, kg.TopicCreate{URLSlug: "algebra", DisplayName: "Dup", CourseID: courseID})
	assert.Equal(t, apierr.CodeDuplicateEntry, errCode(t, err))
}

func TestTopicParentSlugsDerivedFromEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, _ := seedGraph(t, env)

	topic, err := env.topics.Get(ctx, graphID, "calculus")
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra"}, topic.ParentSlugs)

	require.NoError(t, env.edges.Delete(ctx, graphID, "algebra", "calculus"))
	topic, err = env.topics.Get(ctx, graphID, "calculus")
	require.NoError(t, err)
	assert.Empty(t, topic.ParentSlugs)
}

func TestTopicHasContentDerived(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, courseID := seedGraph(t, env)

	topic, err := env.topics.Create(ctx, graphID, kg.TopicCreate{
		URLSlug: "sets", DisplayName: "Sets", CourseID: courseID,
		ContentText: pointers.Ptr("some text"),
	})
	require.NoError(t, err)
	assert.True(t, topic.HasContent)

	topic, err = env.topics.Update(ctx, graphID, "sets", kg.TopicUpdate{ContentText: pointers.Ptr("")})
	require.NoError(t, err)
	assert.False(t, topic.HasContent)
}

func TestTopicDeleteCascadesEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, _ := seedGraph(t, env)

	require.NoError(t, env.topics.Delete(ctx, graphID, "algebra"))

	edges, err := env.edges.List(ctx, graphID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestEdgeValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, _ := seedGraph(t, env)

	_, err := env.edges.Create(ctx, graphID, kg.EdgeCreate{ParentSlug: "algebra", ChildSlug: "algebra"})
	assert.Equal(t, apierr.CodeValidation, errCode(t, err))

	_, err = env.edges.Create(ctx, graphID, kg.EdgeCreate{ParentSlug: "algebra", ChildSlug: "missing"})
	assert.Equal(t, apierr.CodeTopicNotFound, errCode(t, err))

	_, err = env.edges.Create(ctx, graphID, kg.EdgeCreate{ParentSlug: "algebra", ChildSlug: "calculus"})
	assert.Equal(t, apierr.CodeDuplicateEntry, errCode(t, err))

	err = env.edges.Delete(ctx, graphID, "calculus", "algebra")
	assert.Equal(t, apierr.CodeEdgeNotFound, errCode(t, err))
}

func TestPrerequisitesAndDependents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, _ := seedGraph(t, env)

	prereqs, err := env.topics.Prerequisites(ctx, graphID, "calculus")
	require.NoError(t, err)
	require.Len(t, prereqs, 1)
	assert.Equal(t, "algebra", prereqs[0].URLSlug)

	deps, err := env.topics.Dependents(ctx, graphID, "algebra")
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "calculus", deps[0].URLSlug)
}

func TestGraphCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, _ := seedGraph(t, env)

	copied, err := env.graphs.Create(ctx, kg.GraphCreate{Name: "Copy", CopyFromGraphID: &graphID})
	require.NoError(t, err)
	require.NotNil(t, copied.SourceGraphID)
	assert.Equal(t, graphID, *copied.SourceGraphID)

	data, err := env.graphs.FullData(ctx, copied.ID)
	require.NoError(t, err)
	assert.Len(t, data.Courses, 1)
	assert.Len(t, data.Topics, 2)
	assert.Len(t, data.Edges, 1)

	// The copy is independent of the source.
	require.NoError(t, env.topics.Delete(ctx, copied.ID, "algebra"))
	source, err := env.graphs.FullData(ctx, graphID)
	require.NoError(t, err)
	assert.Len(t, source.Topics, 2)
}

func TestGraphCopySourceMustExist(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.graphs.Create(context.Background(), kg.GraphCreate{
		Name:            "Copy",
		CopyFromGraphID: pointers.Ptr("no-such-graph"),
	})
	assert.Equal(t, apierr.CodeGraphNotFound, errCode(t, err))
}

func TestFullDataStripsContentHTML(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, courseID := seedGraph(t, env)

	_, err := env.topics.Create(ctx, graphID, kg.TopicCreate{
		URLSlug: "sets", DisplayName: "Sets", CourseID: courseID,
		ContentHTML: pointers.Ptr("<p>hi</p>"),
	})
	require.NoError(t, err)

	data, err := env.graphs.FullData(ctx, graphID)
	require.NoError(t, err)
	for _, topic := range data.Topics {
		assert.Nil(t, topic.ContentHTML)
		assert.Empty(t, topic.GraphID)
	}
}

func TestBatchApplyAllOperations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, courseID := seedGraph(t, env)

	result, err := env.batch.Apply(ctx, graphID, kg.BatchOperations{
		Courses: &kg.BatchCourseOps{
			Create: []kg.CourseCreate{{Name: "Physics", Color: "#00ff00"}},
			Update: []kg.BatchCourseUpdate{{CourseID: courseID, Data: kg.CourseUpdate{Name: pointers.Ptr("Mathematics")}}},
		},
		Topics: &kg.BatchTopicOps{
			Create: []kg.TopicCreate{{URLSlug: "sets", DisplayName: "Sets", CourseID: courseID}},
			Update: []kg.BatchTopicUpdate{{URLSlug: "algebra", Data: kg.TopicUpdate{DisplayName: pointers.Ptr("Algebra I")}}},
		},
		Edges: &kg.BatchEdgeOps{
			Create: []kg.EdgeCreate{{ParentSlug: "sets", ChildSlug: "algebra"}},
			Delete: []kg.EdgeKey{{ParentSlug: "algebra", ChildSlug: "calculus"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, &kg.BatchResult{
		CoursesCreated: 1, CoursesUpdated: 1,
		TopicsCreated: 1, TopicsUpdated: 1,
		EdgesCreated: 1, EdgesDeleted: 1,
	}, result)

	course, err := env.courses.Get(ctx, graphID, courseID)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", course.Name)

	topic, err := env.topics.Get(ctx, graphID, "algebra")
	require.NoError(t, err)
	assert.Equal(t, "Algebra I", topic.DisplayName)
	assert.Equal(t, []string{"sets"}, topic.ParentSlugs)
}

func TestBatchIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, courseID := seedGraph(t, env)

	// The topic create is valid, the edge create references a missing topic.
	_, err := env.batch.Apply(ctx, graphID, kg.BatchOperations{
		Topics: &kg.BatchTopicOps{
			Create: []kg.TopicCreate{{URLSlug: "sets", DisplayName: "Sets", CourseID: courseID}},
		},
		Edges: &kg.BatchEdgeOps{
			Create: []kg.EdgeCreate{{ParentSlug: "sets", ChildSlug: "missing"}},
		},
	})
	assert.Equal(t, apierr.CodeTopicNotFound, errCode(t, err))

	// Nothing from the document may have landed.
	_, err = env.topics.Get(ctx, graphID, "sets")
	assert.Equal(t, apierr.CodeTopicNotFound, errCode(t, err))
}

func TestBatchDeleteOrderAllowsTopicWithEdges(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, _ := seedGraph(t, env)

	result, err := env.batch.Apply(ctx, graphID, kg.BatchOperations{
		Topics: &kg.BatchTopicOps{Delete: []string{"algebra", "calculus"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TopicsDeleted)

	edges, err := env.edges.List(ctx, graphID)
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestBatchEmptyDocument(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	graphID, _ := seedGraph(t, env)

	result, err := env.batch.Apply(ctx, graphID, kg.BatchOperations{})
	require.NoError(t, err)
	assert.Equal(t, &kg.BatchResult{}, result)
}

func TestLegacyGraphShape(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.sqlite.EnsureDefaultGraph(""))

	graph, err := env.legacy.Graph(ctx)
	require.NoError(t, err)
	assert.NotNil(t, graph.Courses)
	assert.NotNil(t, graph.Topics)
	assert.NotNil(t, graph.Edges)
}

func TestLegacyGraphTruncatesContentText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.sqlite.EnsureDefaultGraph(""))

	// Write directly; the default graph is readonly through the service layer.
	long := make([]rune, 0, 800)
	for i := 0; i < 800; i++ {
		long = append(long, 'é')
	}
	longText := string(long)
	graphs, err := env.graphs.List(ctx)
	require.NoError(t, err)
	require.NoError(t, env.db.Exec(
		`INSERT INTO kg_courses (graph_id, course_id, name, color, created_at, updated_at)
		 VALUES (?, 1, 'Math', '#f00', datetime('now'), datetime('now'))`, graphs[0].ID).Error)
	require.NoError(t, env.db.Exec(
		`INSERT INTO kg_topics (graph_id, url_slug, display_name, course_id, content_html, content_text, has_content, created_at, updated_at)
		 VALUES (?, 'algebra', 'Algebra', 1, '<p>x</p>', ?, 1, datetime('now'), datetime('now'))`,
		graphs[0].ID, longText).Error)

	graph, err := env.legacy.Graph(ctx)
	require.NoError(t, err)
	require.Len(t, graph.Topics, 1)
	topic := graph.Topics[0]
	assert.Nil(t, topic.ContentHTML)
	require.NotNil(t, topic.ContentText)
	assert.Equal(t, 500, len([]rune(*topic.ContentText)))
	assert.True(t, topic.HasContent)
}
