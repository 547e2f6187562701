package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/topicflow/topicflow-backend/internal/db"
	"github.com/topicflow/topicflow-backend/internal/handlers"
	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/repos"
	"github.com/topicflow/topicflow-backend/internal/services"
	"github.com/topicflow/topicflow-backend/kg"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
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

	graphService := services.NewGraphService(gdb, log, graphRepo, courseRepo, topicRepo, edgeRepo)
	courseService := services.NewCourseService(gdb, log, graphRepo, courseRepo)
	topicService := services.NewTopicService(gdb, log, graphRepo, courseRepo, topicRepo, edgeRepo)
	edgeService := services.NewEdgeService(gdb, log, graphRepo, topicRepo, edgeRepo)
	batchService := services.NewBatchService(gdb, log, graphRepo, courseRepo, topicRepo, edgeRepo)
	legacyService := services.NewLegacyService(gdb, log, "", graphRepo, courseRepo, topicRepo, edgeRepo)

	return NewRouter(RouterConfig{
		CORSOrigins:   []string{"http://localhost:3000"},
		GraphHandler:  handlers.NewGraphHandler(log, graphService, batchService),
		CourseHandler: handlers.NewCourseHandler(log, courseService),
		TopicHandler:  handlers.NewTopicHandler(log, topicService),
		EdgeHandler:   handlers.NewEdgeHandler(log, edgeService),
		LegacyHandler: handlers.NewLegacyHandler(log, legacyService),
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	var out T
	require.NoError(t, json.Unmarshal(envelope.Data, &out))
	return out
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	return envelope.Error.Code, envelope.Error.Message
}

func TestCreateGraphReturns201Envelope(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/graphs", kg.GraphCreate{Name: "Test"})
	require.Equal(t, http.StatusCreated, w.Code)

	graph := decodeData[kg.KnowledgeGraph](t, w)
	assert.NotEmpty(t, graph.ID)
	assert.Equal(t, "Test", graph.Name)
}

func TestGetMissingGraphReturns404Envelope(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/graphs/no-such-id", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	code, message := decodeError(t, w)
	assert.Equal(t, "GRAPH_NOT_FOUND", code)
	assert.Contains(t, message, "no-such-id")
}

func TestCourseRoutesRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/graphs", kg.GraphCreate{Name: "G"})
	require.Equal(t, http.StatusCreated, w.Code)
	graph := decodeData[kg.KnowledgeGraph](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/v1/graphs/"+graph.ID+"/courses", kg.CourseCreate{Name: "Math", Color: "#f00"})
	require.Equal(t, http.StatusCreated, w.Code)
	course := decodeData[kg.Course](t, w)
	assert.Equal(t, 1, course.CourseID)

	w = doJSON(t, router, http.MethodGet, "/api/v1/graphs/"+graph.ID+"/courses/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/graphs/"+graph.ID+"/courses/notanumber", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", code)
}

func TestBatchRouteValidationFailure(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/graphs", kg.GraphCreate{Name: "G"})
	require.Equal(t, http.StatusCreated, w.Code)
	graph := decodeData[kg.KnowledgeGraph](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/v1/graphs/"+graph.ID+"/batch", kg.BatchOperations{
		Edges: &kg.BatchEdgeOps{Create: []kg.EdgeCreate{{ParentSlug: "a", ChildSlug: "a"}}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", code)
}
