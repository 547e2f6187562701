package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/types"
)

type EdgeRepo interface {
	ListByGraph(ctx context.Context, tx *gorm.DB, graphID string) ([]*types.Edge, error)
	Get(ctx context.Context, tx *gorm.DB, graphID, parentSlug, childSlug string) (*types.Edge, error)
	Create(ctx context.Context, tx *gorm.DB, edge *types.Edge) error
	Delete(ctx context.Context, tx *gorm.DB, graphID, parentSlug, childSlug string) error
	DeleteTouching(ctx context.Context, tx *gorm.DB, graphID, urlSlug string) error
	ParentMap(ctx context.Context, tx *gorm.DB, graphID string) (map[string][]string, error)
	ListParents(ctx context.Context, tx *gorm.DB, graphID, childSlug string) ([]string, error)
	ListChildren(ctx context.Context, tx *gorm.DB, graphID, parentSlug string) ([]string, error)
	CopyToGraph(ctx context.Context, tx *gorm.DB, sourceGraphID, targetGraphID string, now time.Time) error
}

type edgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEdgeRepo(db *gorm.DB, baseLog *logger.Logger) EdgeRepo {
	return &edgeRepo{db: db, log: baseLog.With("repo", "EdgeRepo")}
}

func (r *edgeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *edgeRepo) ListByGraph(ctx context.Context, tx *gorm.DB, graphID string) ([]*types.Edge, error) {
	var edges []*types.Edge
	if err := r.conn(tx).WithContext(ctx).
		Where("graph_id = ?", graphID).
		Order("id").
		Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

func (r *edgeRepo) Get(ctx context.Context, tx *gorm.DB, graphID, parentSlug, childSlug string) (*types.Edge, error) {
	var edge types.Edge
	err := r.conn(tx).WithContext(ctx).
		Where("graph_id = ? AND parent_slug = ? AND child_slug = ?", graphID, parentSlug, childSlug).
		First(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

func (r *edgeRepo) Create(ctx context.Context, tx *gorm.DB, edge *types.Edge) error {
	return r.conn(tx).WithContext(ctx).Create(edge).Error
}

func (r *edgeRepo) Delete(ctx context.Context, tx *gorm.DB, graphID, parentSlug, childSlug string) error {
	return r.conn(tx).WithContext(ctx).
		Where("graph_id = ? AND parent_slug = ? AND child_slug = ?", graphID, parentSlug, childSlug).
		Delete(&types.Edge{}).Error
}

// DeleteTouching removes every edge with urlSlug on either end. Used by the
// topic-delete cascade.
func (r *edgeRepo) DeleteTouching(ctx context.Context, tx *gorm.DB, graphID, urlSlug string) error {
	return r.conn(tx).WithContext(ctx).
		Where("graph_id = ? AND (parent_slug = ? OR child_slug = ?)", graphID, urlSlug, urlSlug).
		Delete(&types.Edge{}).Error
}

// ParentMap returns child slug -> parent slugs for the whole graph, in edge
// insertion order. Feeds the derived parentSlugs field on topic reads.
func (r *edgeRepo) ParentMap(ctx context.Context, tx *gorm.DB, graphID string) (map[string][]string, error) {
	edges, err := r.ListByGraph(ctx, tx, graphID)
	if err != nil {
		return nil, err
	}
	parents := make(map[string][]string)
	for _, e := range edges {
		parents[e.ChildSlug] = append(parents[e.ChildSlug], e.ParentSlug)
	}
	return parents, nil
}

func (r *edgeRepo) ListParents(ctx context.Context, tx *gorm.DB, graphID, childSlug string) ([]string, error) {
	var parents []string
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Edge{}).
		Where("graph_id = ? AND child_slug = ?", graphID, childSlug).
		Order("id").
		Pluck("parent_slug", &parents).Error; err != nil {
		return nil, err
	}
	return parents, nil
}

func (r *edgeRepo) ListChildren(ctx context.Context, tx *gorm.DB, graphID, parentSlug string) ([]string, error) {
	var children []string
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Edge{}).
		Where("graph_id = ? AND parent_slug = ?", graphID, parentSlug).
		Order("id").
		Pluck("child_slug", &children).Error; err != nil {
		return nil, err
	}
	return children, nil
}

func (r *edgeRepo) CopyToGraph(ctx context.Context, tx *gorm.DB, sourceGraphID, targetGraphID string, now time.Time) error {
	return r.conn(tx).WithContext(ctx).Exec(`
		INSERT INTO kg_edges (graph_id, parent_slug, child_slug, created_at)
		SELECT ?, parent_slug, child_slug, ?
		FROM kg_edges WHERE graph_id = ?`,
		targetGraphID, now, sourceGraphID,
	).Error
}
