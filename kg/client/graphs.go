package client

import (
	"context"
	"net/http"

	"github.com/topicflow/topicflow-backend/kg"
)

// ListGraphs returns every knowledge graph.
func (c *Client) ListGraphs(ctx context.Context) ([]kg.KnowledgeGraph, error) {
	var graphs []kg.KnowledgeGraph
	if err := c.do(ctx, http.MethodGet, "/api/v1/graphs", nil, &graphs); err != nil {
		return nil, err
	}
	return graphs, nil
}

// CreateGraph creates a graph, optionally copying data from an existing one.
func (c *Client) CreateGraph(ctx context.Context, data kg.GraphCreate) (*kg.KnowledgeGraph, error) {
	var graph kg.KnowledgeGraph
	if err := c.do(ctx, http.MethodPost, "/api/v1/graphs", data, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// GetGraph returns graph metadata.
func (c *Client) GetGraph(ctx context.Context, graphID string) (*kg.KnowledgeGraph, error) {
	var graph kg.KnowledgeGraph
	if err := c.do(ctx, http.MethodGet, graphPath(graphID), nil, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// UpdateGraph updates graph name/description.
func (c *Client) UpdateGraph(ctx context.Context, graphID string, data kg.GraphUpdate) (*kg.KnowledgeGraph, error) {
	var graph kg.KnowledgeGraph
	if err := c.do(ctx, http.MethodPatch, graphPath(graphID), data, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// DeleteGraph deletes a graph. The default graph cannot be deleted.
func (c *Client) DeleteGraph(ctx context.Context, graphID string) error {
	return c.do(ctx, http.MethodDelete, graphPath(graphID), nil, nil)
}

// GetGraphData returns the full graph payload: metadata plus every course,
// topic and edge. Topic contentHtml is stripped by the server.
func (c *Client) GetGraphData(ctx context.Context, graphID string) (*kg.GraphData, error) {
	var data kg.GraphData
	if err := c.do(ctx, http.MethodGet, graphPath(graphID, "data"), nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// BatchUpdate applies a batch document atomically: either every operation is
// applied or none are.
func (c *Client) BatchUpdate(ctx context.Context, graphID string, ops kg.BatchOperations) (*kg.BatchResult, error) {
	var result kg.BatchResult
	if err := c.do(ctx, http.MethodPost, graphPath(graphID, "batch"), ops, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLegacyGraph returns the default graph through the legacy snake_case read
// path, with contentHtml stripped and contentText truncated.
func (c *Client) GetLegacyGraph(ctx context.Context) (*kg.LegacyGraph, error) {
	var graph kg.LegacyGraph
	if err := c.do(ctx, http.MethodGet, "/api/graph", nil, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}
