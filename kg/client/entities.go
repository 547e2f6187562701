package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/topicflow/topicflow-backend/kg"
)

// ListCourses returns every course in the graph, ordered by courseId.
func (c *Client) ListCourses(ctx context.Context, graphID string) ([]kg.Course, error) {
	var courses []kg.Course
	if err := c.do(ctx, http.MethodGet, graphPath(graphID, "courses"), nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (c *Client) CreateCourse(ctx context.Context, graphID string, data kg.CourseCreate) (*kg.Course, error) {
	var course kg.Course
	if err := c.do(ctx, http.MethodPost, graphPath(graphID, "courses"), data, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) GetCourse(ctx context.Context, graphID string, courseID int) (*kg.Course, error) {
	var course kg.Course
	if err := c.do(ctx, http.MethodGet, graphPath(graphID, "courses", strconv.Itoa(courseID)), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) UpdateCourse(ctx context.Context, graphID string, courseID int, data kg.CourseUpdate) (*kg.Course, error) {
	var course kg.Course
	if err := c.do(ctx, http.MethodPatch, graphPath(graphID, "courses", strconv.Itoa(courseID)), data, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) DeleteCourse(ctx context.Context, graphID string, courseID int) error {
	return c.do(ctx, http.MethodDelete, graphPath(graphID, "courses", strconv.Itoa(courseID)), nil, nil)
}

// ListTopics returns every topic in the graph, ordered by display name.
func (c *Client) ListTopics(ctx context.Context, graphID string) ([]kg.Topic, error) {
	var topics []kg.Topic
	if err := c.do(ctx, http.MethodGet, graphPath(graphID, "topics"), nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

func (c *Client) CreateTopic(ctx context.Context, graphID string, data kg.TopicCreate) (*kg.Topic, error) {
	var topic kg.Topic
	if err := c.do(ctx, http.MethodPost, graphPath(graphID, "topics"), data, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (c *Client) GetTopic(ctx context.Context, graphID, urlSlug string) (*kg.Topic, error) {
	var topic kg.Topic
	if err := c.do(ctx, http.MethodGet, graphPath(graphID, "topics", urlSlug), nil, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (c *Client) UpdateTopic(ctx context.Context, graphID, urlSlug string, data kg.TopicUpdate) (*kg.Topic, error) {
	var topic kg.Topic
	if err := c.do(ctx, http.MethodPatch, graphPath(graphID, "topics", urlSlug), data, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

func (c *Client) DeleteTopic(ctx context.Context, graphID, urlSlug string) error {
	return c.do(ctx, http.MethodDelete, graphPath(graphID, "topics", urlSlug), nil, nil)
}

// GetTopicPrerequisites returns the direct parent topics of a topic.
func (c *Client) GetTopicPrerequisites(ctx context.Context, graphID, urlSlug string) ([]kg.Topic, error) {
	var topics []kg.Topic
	if err := c.do(ctx, http.MethodGet, graphPath(graphID, "topics", urlSlug, "prerequisites"), nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// GetTopicDependents returns the direct child topics of a topic.
func (c *Client) GetTopicDependents(ctx context.Context, graphID, urlSlug string) ([]kg.Topic, error) {
	var topics []kg.Topic
	if err := c.do(ctx, http.MethodGet, graphPath(graphID, "topics", urlSlug, "dependents"), nil, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// ListEdges returns every edge in the graph.
func (c *Client) ListEdges(ctx context.Context, graphID string) ([]kg.Edge, error) {
	var edges []kg.Edge
	if err := c.do(ctx, http.MethodGet, graphPath(graphID, "edges"), nil, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

func (c *Client) CreateEdge(ctx context.Context, graphID string, data kg.EdgeCreate) (*kg.Edge, error) {
	var edge kg.Edge
	if err := c.do(ctx, http.MethodPost, graphPath(graphID, "edges"), data, &edge); err != nil {
		return nil, err
	}
	return &edge, nil
}

func (c *Client) DeleteEdge(ctx context.Context, graphID, parentSlug, childSlug string) error {
	return c.do(ctx, http.MethodDelete, graphPath(graphID, "edges", parentSlug, childSlug), nil, nil)
}
