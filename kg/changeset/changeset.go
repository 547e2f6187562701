// Package changeset implements the local pending-edit ledger for graph edit
// mode. A Store accumulates entity-level CRUD intents against a fetched
// baseline without touching it, projects a merged view for rendering, and
// serializes the pending operations into one batch request for saving.
package changeset

import (
	"fmt"
	"sort"

	"github.com/topicflow/topicflow-backend/kg"
)

const tempIDPrefix = "temp-"

type createdCourse struct {
	seq  int
	data kg.CourseCreate
}

type createdTopic struct {
	seq  int
	data kg.TopicCreate
}

type createdEdge struct {
	seq int
	key kg.EdgeKey
}

// Store tracks pending local edits for a single graph. It is not safe for
// concurrent use; the editing session is single-threaded.
type Store struct {
	baseline kg.GraphData
	nextSeq  int

	createdCourses []createdCourse
	updatedCourses map[int]kg.CourseUpdate
	deletedCourses map[int]struct{}

	createdTopics []createdTopic
	updatedTopics map[string]kg.TopicUpdate
	deletedTopics map[string]struct{}

	createdEdges []createdEdge
	deletedEdges map[kg.EdgeKey]struct{}
}

// New returns an empty store over the given baseline.
func New(baseline kg.GraphData) *Store {
	s := &Store{baseline: baseline, nextSeq: 1}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.createdCourses = nil
	s.updatedCourses = make(map[int]kg.CourseUpdate)
	s.deletedCourses = make(map[int]struct{})
	s.createdTopics = nil
	s.updatedTopics = make(map[string]kg.TopicUpdate)
	s.deletedTopics = make(map[string]struct{})
	s.createdEdges = nil
	s.deletedEdges = make(map[kg.EdgeKey]struct{})
}

// SetBaseline replaces the baseline after a refetch. Pending edits are kept;
// call ClearChanges first after a successful save.
func (s *Store) SetBaseline(baseline kg.GraphData) {
	s.baseline = baseline
}

// ClearChanges drops every pending edit. The temp-id sequence keeps counting so
// ids stay unique across save cycles.
func (s *Store) ClearChanges() {
	s.reset()
}

// HasUnsavedChanges reports whether any ledger holds a pending operation.
func (s *Store) HasUnsavedChanges() bool {
	return len(s.createdCourses) > 0 || len(s.updatedCourses) > 0 || len(s.deletedCourses) > 0 ||
		len(s.createdTopics) > 0 || len(s.updatedTopics) > 0 || len(s.deletedTopics) > 0 ||
		len(s.createdEdges) > 0 || len(s.deletedEdges) > 0
}

func (s *Store) nextTempID() (string, int) {
	seq := s.nextSeq
	s.nextSeq++
	return fmt.Sprintf("%s%d", tempIDPrefix, seq), seq
}

// CreateCourse records a pending course creation and returns its temp id. The
// merged view materializes the course with id -N for temp id "temp-N".
func (s *Store) CreateCourse(data kg.CourseCreate) string {
	tempID, seq := s.nextTempID()
	s.createdCourses = append(s.createdCourses, createdCourse{seq: seq, data: data})
	return tempID
}

// UpdateCourse coalesces a partial update for the course. Updates to a locally
// created course (negative id) fold into its creation payload; updates to a
// deleted course are dropped.
func (s *Store) UpdateCourse(id int, partial kg.CourseUpdate) {
	if id < 0 {
		for i := range s.createdCourses {
			if s.createdCourses[i].seq == -id {
				if partial.Name != nil {
					s.createdCourses[i].data.Name = *partial.Name
				}
				if partial.Color != nil {
					s.createdCourses[i].data.Color = *partial.Color
				}
				return
			}
		}
		return
	}
	if _, deleted := s.deletedCourses[id]; deleted {
		return
	}
	pending := s.updatedCourses[id]
	if partial.Name != nil {
		pending.Name = partial.Name
	}
	if partial.Color != nil {
		pending.Color = partial.Color
	}
	s.updatedCourses[id] = pending
}

// DeleteCourse marks the course deleted and discards any pending update for
// it. Deleting a locally created course cancels the creation instead.
func (s *Store) DeleteCourse(id int) {
	if id < 0 {
		s.createdCourses = removeCreatedCourse(s.createdCourses, -id)
		return
	}
	delete(s.updatedCourses, id)
	s.deletedCourses[id] = struct{}{}
}

// UndoDeleteCourse removes the deletion mark. An update discarded when the
// course was deleted is not restored.
func (s *Store) UndoDeleteCourse(id int) {
	delete(s.deletedCourses, id)
}

// CreateTopic records a pending topic creation and returns its temp id. The
// topic is addressable by its slug immediately, so edges can reference it
// before saving.
func (s *Store) CreateTopic(data kg.TopicCreate) string {
	tempID, seq := s.nextTempID()
	s.createdTopics = append(s.createdTopics, createdTopic{seq: seq, data: data})
	return tempID
}

// UpdateTopic coalesces a partial update for the topic, last write wins per
// field. Updates to a pending created topic fold into its creation payload;
// updates to a deleted topic are dropped.
func (s *Store) UpdateTopic(slug string, partial kg.TopicUpdate) {
	for i := range s.createdTopics {
		if s.createdTopics[i].data.URLSlug == slug {
			d := &s.createdTopics[i].data
			if partial.DisplayName != nil {
				d.DisplayName = *partial.DisplayName
			}
			if partial.CourseID != nil {
				d.CourseID = *partial.CourseID
			}
			if partial.ContentHTML != nil {
				d.ContentHTML = partial.ContentHTML
			}
			if partial.ContentText != nil {
				d.ContentText = partial.ContentText
			}
			return
		}
	}
	if _, deleted := s.deletedTopics[slug]; deleted {
		return
	}
	pending := s.updatedTopics[slug]
	if partial.DisplayName != nil {
		pending.DisplayName = partial.DisplayName
	}
	if partial.CourseID != nil {
		pending.CourseID = partial.CourseID
	}
	if partial.ContentHTML != nil {
		pending.ContentHTML = partial.ContentHTML
	}
	if partial.ContentText != nil {
		pending.ContentText = partial.ContentText
	}
	s.updatedTopics[slug] = pending
}

// DeleteTopic marks the topic deleted, discards its pending update, and purges
// pending created edges touching the slug (they reference a row that will never
// exist). Baseline edges incident to the topic are filtered out by the merged
// view, not recorded as explicit edge deletions. Deleting a pending created
// topic cancels the creation instead.
func (s *Store) DeleteTopic(slug string) {
	s.createdEdges = removeEdgesTouching(s.createdEdges, slug)
	for i := range s.createdTopics {
		if s.createdTopics[i].data.URLSlug == slug {
			s.createdTopics = append(s.createdTopics[:i], s.createdTopics[i+1:]...)
			return
		}
	}
	delete(s.updatedTopics, slug)
	s.deletedTopics[slug] = struct{}{}
}

// UndoDeleteTopic removes the deletion mark. Edits and pending edges discarded
// at delete time stay discarded.
func (s *Store) UndoDeleteTopic(slug string) {
	delete(s.deletedTopics, slug)
}

// CreateEdge records a pending edge creation keyed by the ordered slug pair.
// Re-adding an edge that is pending deletion cancels the deletion instead.
func (s *Store) CreateEdge(parentSlug, childSlug string) {
	key := kg.EdgeKey{ParentSlug: parentSlug, ChildSlug: childSlug}
	if _, deleted := s.deletedEdges[key]; deleted {
		delete(s.deletedEdges, key)
		return
	}
	for _, ce := range s.createdEdges {
		if ce.key == key {
			return
		}
	}
	_, seq := s.nextTempID()
	s.createdEdges = append(s.createdEdges, createdEdge{seq: seq, key: key})
}

// DeleteEdge marks the edge deleted. Deleting an edge that is pending creation
// just drops the creation; it never existed server-side.
func (s *Store) DeleteEdge(parentSlug, childSlug string) {
	key := kg.EdgeKey{ParentSlug: parentSlug, ChildSlug: childSlug}
	for i, ce := range s.createdEdges {
		if ce.key == key {
			s.createdEdges = append(s.createdEdges[:i], s.createdEdges[i+1:]...)
			return
		}
	}
	s.deletedEdges[key] = struct{}{}
}

// MergedData projects the baseline with all pending edits applied: deletions
// dropped, updates applied, creations appended with negative placeholder ids,
// and every topic's ParentSlugs recomputed from the resulting edge list. The
// projection is pure; calling it twice with an unchanged ledger yields equal
// output.
func (s *Store) MergedData() kg.GraphData {
	merged := kg.GraphData{Graph: s.baseline.Graph}

	for _, c := range s.baseline.Courses {
		if _, deleted := s.deletedCourses[c.CourseID]; deleted {
			continue
		}
		if u, ok := s.updatedCourses[c.CourseID]; ok {
			if u.Name != nil {
				c.Name = *u.Name
			}
			if u.Color != nil {
				c.Color = *u.Color
			}
		}
		merged.Courses = append(merged.Courses, c)
	}
	for _, cc := range s.createdCourses {
		merged.Courses = append(merged.Courses, kg.Course{
			ID:       -cc.seq,
			CourseID: -cc.seq,
			Name:     cc.data.Name,
			Color:    cc.data.Color,
		})
	}

	for _, t := range s.baseline.Topics {
		if _, deleted := s.deletedTopics[t.URLSlug]; deleted {
			continue
		}
		if u, ok := s.updatedTopics[t.URLSlug]; ok {
			if u.DisplayName != nil {
				t.DisplayName = *u.DisplayName
			}
			if u.CourseID != nil {
				t.CourseID = *u.CourseID
			}
			if u.ContentHTML != nil || u.ContentText != nil {
				if u.ContentHTML != nil {
					t.ContentHTML = u.ContentHTML
				}
				if u.ContentText != nil {
					t.ContentText = u.ContentText
				}
				t.HasContent = hasContent(t.ContentHTML, t.ContentText)
			}
		}
		merged.Topics = append(merged.Topics, t)
	}
	for _, ct := range s.createdTopics {
		merged.Topics = append(merged.Topics, kg.Topic{
			ID:          -ct.seq,
			URLSlug:     ct.data.URLSlug,
			DisplayName: ct.data.DisplayName,
			CourseID:    ct.data.CourseID,
			ContentHTML: ct.data.ContentHTML,
			ContentText: ct.data.ContentText,
			HasContent:  hasContent(ct.data.ContentHTML, ct.data.ContentText),
		})
	}

	for _, e := range s.baseline.Edges {
		key := kg.EdgeKey{ParentSlug: e.ParentSlug, ChildSlug: e.ChildSlug}
		if _, deleted := s.deletedEdges[key]; deleted {
			continue
		}
		if s.topicGone(e.ParentSlug) || s.topicGone(e.ChildSlug) {
			continue
		}
		merged.Edges = append(merged.Edges, e)
	}
	for _, ce := range s.createdEdges {
		merged.Edges = append(merged.Edges, kg.Edge{
			ID:         -ce.seq,
			ParentSlug: ce.key.ParentSlug,
			ChildSlug:  ce.key.ChildSlug,
		})
	}

	// Derived field: never trust a stored value.
	parents := make(map[string][]string)
	for _, e := range merged.Edges {
		parents[e.ChildSlug] = append(parents[e.ChildSlug], e.ParentSlug)
	}
	for i := range merged.Topics {
		merged.Topics[i].ParentSlugs = parents[merged.Topics[i].URLSlug]
	}

	return merged
}

func (s *Store) topicGone(slug string) bool {
	_, deleted := s.deletedTopics[slug]
	return deleted
}

// ToBatchOperations serializes the ledgers into the wire document. Sections
// and sub-lists with no operations are omitted entirely, so a store with no
// pending edits serializes to {}.
func (s *Store) ToBatchOperations() kg.BatchOperations {
	var ops kg.BatchOperations

	if len(s.createdCourses) > 0 || len(s.updatedCourses) > 0 || len(s.deletedCourses) > 0 {
		section := &kg.BatchCourseOps{}
		for _, cc := range s.createdCourses {
			section.Create = append(section.Create, cc.data)
		}
		for _, id := range sortedInts(s.updatedCourses) {
			section.Update = append(section.Update, kg.BatchCourseUpdate{CourseID: id, Data: s.updatedCourses[id]})
		}
		for id := range s.deletedCourses {
			section.Delete = append(section.Delete, id)
		}
		sort.Ints(section.Delete)
		ops.Courses = section
	}

	if len(s.createdTopics) > 0 || len(s.updatedTopics) > 0 || len(s.deletedTopics) > 0 {
		section := &kg.BatchTopicOps{}
		for _, ct := range s.createdTopics {
			section.Create = append(section.Create, ct.data)
		}
		for _, slug := range sortedStrings(s.updatedTopics) {
			section.Update = append(section.Update, kg.BatchTopicUpdate{URLSlug: slug, Data: s.updatedTopics[slug]})
		}
		for slug := range s.deletedTopics {
			section.Delete = append(section.Delete, slug)
		}
		sort.Strings(section.Delete)
		ops.Topics = section
	}

	if len(s.createdEdges) > 0 || len(s.deletedEdges) > 0 {
		section := &kg.BatchEdgeOps{}
		for _, ce := range s.createdEdges {
			section.Create = append(section.Create, kg.EdgeCreate{ParentSlug: ce.key.ParentSlug, ChildSlug: ce.key.ChildSlug})
		}
		for key := range s.deletedEdges {
			section.Delete = append(section.Delete, key)
		}
		sort.Slice(section.Delete, func(i, j int) bool {
			if section.Delete[i].ParentSlug != section.Delete[j].ParentSlug {
				return section.Delete[i].ParentSlug < section.Delete[j].ParentSlug
			}
			return section.Delete[i].ChildSlug < section.Delete[j].ChildSlug
		})
		ops.Edges = section
	}

	return ops
}

func hasContent(html, text *string) bool {
	return (html != nil && *html != "") || (text != nil && *text != "")
}

func removeCreatedCourse(list []createdCourse, seq int) []createdCourse {
	for i := range list {
		if list[i].seq == seq {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func removeEdgesTouching(list []createdEdge, slug string) []createdEdge {
	kept := list[:0]
	for _, ce := range list {
		if ce.key.ParentSlug == slug || ce.key.ChildSlug == slug {
			continue
		}
		kept = append(kept, ce)
	}
	return kept
}

func sortedInts[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func sortedStrings[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
