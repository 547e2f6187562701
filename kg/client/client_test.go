package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topicflow/topicflow-backend/kg"
)

func respond(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestGetGraphUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/graphs/g1", r.URL.Path)
		respond(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    kg.KnowledgeGraph{ID: "g1", Name: "Test", IsDefault: true},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	graph, err := c.GetGraph(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", graph.ID)
	assert.Equal(t, "Test", graph.Name)
	assert.True(t, graph.IsDefault)
}

func TestErrorEnvelopeDecodedAsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, http.StatusNotFound, map[string]any{
			"success": false,
			"error": map[string]any{
				"code":    "GRAPH_NOT_FOUND",
				"message": "Graph nope not found",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetGraph(context.Background(), "nope")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "want *APIError, got %T", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "GRAPH_NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Graph nope not found", apiErr.Message)
}

func TestErrorWithoutEnvelopeKeepsStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ListGraphs(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Code)
}

func TestBatchUpdateSendsDocument(t *testing.T) {
	var received kg.BatchOperations
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/graphs/g1/batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		respond(t, w, http.StatusOK, map[string]any{
			"success": true,
			"data":    kg.BatchResult{CoursesCreated: 1, EdgesDeleted: 1},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	result, err := c.BatchUpdate(context.Background(), "g1", kg.BatchOperations{
		Courses: &kg.BatchCourseOps{Create: []kg.CourseCreate{{Name: "Chem", Color: "#00f"}}},
		Edges:   &kg.BatchEdgeOps{Delete: []kg.EdgeKey{{ParentSlug: "a", ChildSlug: "b"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.CoursesCreated)
	assert.Equal(t, 1, result.EdgesDeleted)

	require.NotNil(t, received.Courses)
	assert.Equal(t, "Chem", received.Courses.Create[0].Name)
	require.NotNil(t, received.Edges)
	assert.Equal(t, "a", received.Edges.Delete[0].ParentSlug)
	assert.Nil(t, received.Topics)
}

func TestGetLegacyGraphDecodesBareBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/graph", r.URL.Path)
		respond(t, w, http.StatusOK, map[string]any{
			"courses": []map[string]any{{"id": 1, "name": "Math", "color": "#f00"}},
			"topics": []map[string]any{{
				"id": 10, "url_slug": "algebra", "display_name": "Algebra",
				"course_id": 1, "parent_slugs": []string{}, "has_content": false,
			}},
			"edges": []map[string]any{},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	graph, err := c.GetLegacyGraph(context.Background())
	require.NoError(t, err)
	require.Len(t, graph.Courses, 1)
	assert.Equal(t, "Math", graph.Courses[0].Name)
	require.Len(t, graph.Topics, 1)
	assert.Equal(t, "algebra", graph.Topics[0].URLSlug)
	assert.Nil(t, graph.Topics[0].ContentHTML)
}

func TestDeleteEdgeEscapesPath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		respond(t, w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"deleted": true}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.DeleteEdge(context.Background(), "g1", "parent", "child"))
	assert.Equal(t, "/api/v1/graphs/g1/edges/parent/child", path)
}
