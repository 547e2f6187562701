package changeset

import (
	"reflect"
	"testing"

	"github.com/topicflow/topicflow-backend/kg"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func baseline() kg.GraphData {
	return kg.GraphData{
		Graph: kg.KnowledgeGraph{ID: "g1", Name: "Test"},
		Courses: []kg.Course{
			{ID: 1, CourseID: 1, Name: "Math", Color: "#ff0000"},
			{ID: 2, CourseID: 2, Name: "Physics", Color: "#00ff00"},
		},
		Topics: []kg.Topic{
			{ID: 10, URLSlug: "algebra", DisplayName: "Algebra", CourseID: 1},
			{ID: 11, URLSlug: "calculus", DisplayName: "Calculus", CourseID: 1},
			{ID: 12, URLSlug: "mechanics", DisplayName: "Mechanics", CourseID: 2},
		},
		Edges: []kg.Edge{
			{ID: 100, ParentSlug: "algebra", ChildSlug: "calculus"},
			{ID: 101, ParentSlug: "calculus", ChildSlug: "mechanics"},
		},
	}
}

func findTopic(t *testing.T, data kg.GraphData, slug string) kg.Topic {
	t.Helper()
	for _, topic := range data.Topics {
		if topic.URLSlug == slug {
			return topic
		}
	}
	t.Fatalf("topic %s not in merged data", slug)
	return kg.Topic{}
}

func TestEmptyStore(t *testing.T) {
	s := New(baseline())

	if s.HasUnsavedChanges() {
		t.Fatal("fresh store reports unsaved changes")
	}
	ops := s.ToBatchOperations()
	if !ops.IsEmpty() {
		t.Fatalf("fresh store serialized to %+v", ops)
	}
	merged := s.MergedData()
	if len(merged.Courses) != 2 || len(merged.Topics) != 3 || len(merged.Edges) != 2 {
		t.Fatalf("merged view of empty store differs from baseline: %+v", merged)
	}
}

func TestMergedDataIsPure(t *testing.T) {
	s := New(baseline())
	s.CreateCourse(kg.CourseCreate{Name: "Chem", Color: "#0000ff"})
	s.UpdateTopic("algebra", kg.TopicUpdate{DisplayName: strPtr("Algebra I")})
	s.DeleteEdge("calculus", "mechanics")

	first := s.MergedData()
	second := s.MergedData()
	if !reflect.DeepEqual(first, second) {
		t.Fatal("repeated MergedData calls differ")
	}
}

func TestCreateReturnsTempIDAndNegativePlaceholder(t *testing.T) {
	s := New(baseline())

	tempID := s.CreateCourse(kg.CourseCreate{Name: "Chem", Color: "#0000ff"})
	if tempID != "temp-1" {
		t.Fatalf("temp id = %s", tempID)
	}
	tempID2 := s.CreateTopic(kg.TopicCreate{URLSlug: "atoms", DisplayName: "Atoms", CourseID: 1})
	if tempID2 != "temp-2" {
		t.Fatalf("second temp id = %s", tempID2)
	}

	merged := s.MergedData()
	var created *kg.Course
	for i := range merged.Courses {
		if merged.Courses[i].Name == "Chem" {
			created = &merged.Courses[i]
		}
	}
	if created == nil || created.ID != -1 {
		t.Fatalf("created course placeholder = %+v", created)
	}
	topic := findTopic(t, merged, "atoms")
	if topic.ID != -2 {
		t.Fatalf("created topic id = %d, want -2", topic.ID)
	}
}

func TestUpdateCoalescing(t *testing.T) {
	s := New(baseline())
	s.UpdateCourse(1, kg.CourseUpdate{Name: strPtr("Mathematics")})
	s.UpdateCourse(1, kg.CourseUpdate{Color: strPtr("#123456")})
	s.UpdateCourse(1, kg.CourseUpdate{Name: strPtr("Pure Math")})

	ops := s.ToBatchOperations()
	if ops.Courses == nil || len(ops.Courses.Update) != 1 {
		t.Fatalf("updates not coalesced: %+v", ops.Courses)
	}
	u := ops.Courses.Update[0]
	if u.CourseID != 1 || *u.Data.Name != "Pure Math" || *u.Data.Color != "#123456" {
		t.Fatalf("coalesced update = %+v", u)
	}
}

func TestUpdateFoldsIntoPendingCreate(t *testing.T) {
	s := New(baseline())
	s.CreateTopic(kg.TopicCreate{URLSlug: "atoms", DisplayName: "Atoms", CourseID: 1})
	s.UpdateTopic("atoms", kg.TopicUpdate{DisplayName: strPtr("Atomic Theory"), CourseID: intPtr(2)})

	ops := s.ToBatchOperations()
	if ops.Topics == nil || len(ops.Topics.Create) != 1 || len(ops.Topics.Update) != 0 {
		t.Fatalf("update leaked out of create payload: %+v", ops.Topics)
	}
	c := ops.Topics.Create[0]
	if c.DisplayName != "Atomic Theory" || c.CourseID != 2 {
		t.Fatalf("create payload = %+v", c)
	}
}

func TestDeleteCreatedEntityCancelsCreate(t *testing.T) {
	s := New(baseline())
	s.CreateCourse(kg.CourseCreate{Name: "Chem", Color: "#0000ff"})
	s.DeleteCourse(-1)
	s.CreateTopic(kg.TopicCreate{URLSlug: "atoms", DisplayName: "Atoms", CourseID: 1})
	s.DeleteTopic("atoms")

	if s.HasUnsavedChanges() {
		t.Fatalf("cancelled creates left state: %+v", s.ToBatchOperations())
	}
}

func TestUpdateAfterDeleteDropped(t *testing.T) {
	s := New(baseline())
	s.DeleteTopic("algebra")
	s.UpdateTopic("algebra", kg.TopicUpdate{DisplayName: strPtr("Gone")})

	ops := s.ToBatchOperations()
	if ops.Topics == nil || len(ops.Topics.Update) != 0 {
		t.Fatalf("update after delete survived: %+v", ops.Topics)
	}
	if !reflect.DeepEqual(ops.Topics.Delete, []string{"algebra"}) {
		t.Fatalf("delete list = %v", ops.Topics.Delete)
	}
}

func TestEdgeCreateDeleteCancellation(t *testing.T) {
	s := New(baseline())

	// Pending create then delete: both vanish.
	s.CreateEdge("algebra", "mechanics")
	s.DeleteEdge("algebra", "mechanics")
	if s.HasUnsavedChanges() {
		t.Fatal("create+delete of same edge left state")
	}

	// Pending delete then re-create: both vanish.
	s.DeleteEdge("algebra", "calculus")
	s.CreateEdge("algebra", "calculus")
	if s.HasUnsavedChanges() {
		t.Fatal("delete+create of same edge left state")
	}
}

func TestDeleteTopicCascades(t *testing.T) {
	s := New(baseline())
	s.CreateEdge("mechanics", "calculus")
	s.DeleteTopic("calculus")

	merged := s.MergedData()
	for _, e := range merged.Edges {
		if e.ParentSlug == "calculus" || e.ChildSlug == "calculus" {
			t.Fatalf("edge touching deleted topic survived: %+v", e)
		}
	}
	ops := s.ToBatchOperations()
	if ops.Edges != nil && len(ops.Edges.Create) != 0 {
		t.Fatalf("pending edge create touching deleted topic survived: %+v", ops.Edges)
	}
}

func TestUndoDelete(t *testing.T) {
	s := New(baseline())
	s.DeleteCourse(1)
	s.UndoDeleteCourse(1)
	s.DeleteTopic("algebra")
	s.UndoDeleteTopic("algebra")

	if s.HasUnsavedChanges() {
		t.Fatalf("undo left state: %+v", s.ToBatchOperations())
	}
	merged := s.MergedData()
	if len(merged.Courses) != 2 || len(merged.Topics) != 3 {
		t.Fatalf("undo did not restore merged view: %+v", merged)
	}
}

func TestMergedDataRecomputesParentSlugs(t *testing.T) {
	s := New(baseline())
	s.CreateTopic(kg.TopicCreate{URLSlug: "atoms", DisplayName: "Atoms", CourseID: 2})
	s.CreateEdge("mechanics", "atoms")
	s.DeleteEdge("algebra", "calculus")

	merged := s.MergedData()
	atoms := findTopic(t, merged, "atoms")
	if !reflect.DeepEqual(atoms.ParentSlugs, []string{"mechanics"}) {
		t.Fatalf("atoms.ParentSlugs = %v", atoms.ParentSlugs)
	}
	calculus := findTopic(t, merged, "calculus")
	if len(calculus.ParentSlugs) != 0 {
		t.Fatalf("calculus.ParentSlugs = %v after edge delete", calculus.ParentSlugs)
	}
}

func TestMergedDataRecomputesHasContent(t *testing.T) {
	s := New(baseline())
	s.UpdateTopic("algebra", kg.TopicUpdate{ContentText: strPtr("some notes")})

	merged := s.MergedData()
	if !findTopic(t, merged, "algebra").HasContent {
		t.Fatal("hasContent not recomputed after content update")
	}

	s.UpdateTopic("algebra", kg.TopicUpdate{ContentText: strPtr("")})
	merged = s.MergedData()
	if findTopic(t, merged, "algebra").HasContent {
		t.Fatal("hasContent should drop when content cleared")
	}
}

func TestClearChangesKeepsSequence(t *testing.T) {
	s := New(baseline())
	first := s.CreateCourse(kg.CourseCreate{Name: "Chem", Color: "#0000ff"})
	s.ClearChanges()

	if s.HasUnsavedChanges() {
		t.Fatal("ClearChanges left state")
	}
	second := s.CreateCourse(kg.CourseCreate{Name: "Bio", Color: "#ffffff"})
	if first == second {
		t.Fatalf("temp id %s reused across save cycles", second)
	}
}

func TestToBatchOperationsDeterministicOrder(t *testing.T) {
	s := New(baseline())
	s.UpdateCourse(2, kg.CourseUpdate{Name: strPtr("P")})
	s.UpdateCourse(1, kg.CourseUpdate{Name: strPtr("M")})
	s.DeleteTopic("mechanics")
	s.DeleteTopic("calculus")

	ops := s.ToBatchOperations()
	if ops.Courses.Update[0].CourseID != 1 || ops.Courses.Update[1].CourseID != 2 {
		t.Fatalf("course updates unsorted: %+v", ops.Courses.Update)
	}
	if !reflect.DeepEqual(ops.Topics.Delete, []string{"calculus", "mechanics"}) {
		t.Fatalf("topic deletes unsorted: %v", ops.Topics.Delete)
	}
}
