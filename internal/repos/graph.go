package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/types"
)

type GraphRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.KnowledgeGraph, error)
	GetByID(ctx context.Context, tx *gorm.DB, graphID string) (*types.KnowledgeGraph, error)
	GetDefault(ctx context.Context, tx *gorm.DB) (*types.KnowledgeGraph, error)
	Create(ctx context.Context, tx *gorm.DB, graph *types.KnowledgeGraph) error
	Update(ctx context.Context, tx *gorm.DB, graph *types.KnowledgeGraph) error
	Delete(ctx context.Context, tx *gorm.DB, graphID string) error
}

type graphRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGraphRepo(db *gorm.DB, baseLog *logger.Logger) GraphRepo {
	return &graphRepo{db: db, log: baseLog.With("repo", "GraphRepo")}
}

func (r *graphRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *graphRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.KnowledgeGraph, error) {
	var graphs []*types.KnowledgeGraph
	if err := r.conn(tx).WithContext(ctx).
		Order("created_at DESC").
		Find(&graphs).Error; err != nil {
		return nil, err
	}
	return graphs, nil
}

func (r *graphRepo) GetByID(ctx context.Context, tx *gorm.DB, graphID string) (*types.KnowledgeGraph, error) {
	var graph types.KnowledgeGraph
	err := r.conn(tx).WithContext(ctx).
		Where("id = ?", graphID).
		First(&graph).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &graph, nil
}

func (r *graphRepo) GetDefault(ctx context.Context, tx *gorm.DB) (*types.KnowledgeGraph, error) {
	var graph types.KnowledgeGraph
	err := r.conn(tx).WithContext(ctx).
		Where("is_default = ?", true).
		First(&graph).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &graph, nil
}

func (r *graphRepo) Create(ctx context.Context, tx *gorm.DB, graph *types.KnowledgeGraph) error {
	return r.conn(tx).WithContext(ctx).Create(graph).Error
}

func (r *graphRepo) Update(ctx context.Context, tx *gorm.DB, graph *types.KnowledgeGraph) error {
	return r.conn(tx).WithContext(ctx).Save(graph).Error
}

// Delete removes the graph row and everything under it. The child tables carry
// no database-level cascade, so the rows go explicitly, children first.
func (r *graphRepo) Delete(ctx context.Context, tx *gorm.DB, graphID string) error {
	run := func(conn *gorm.DB) error {
		if err := conn.Where("graph_id = ?", graphID).Delete(&types.Edge{}).Error; err != nil {
			return err
		}
		if err := conn.Where("graph_id = ?", graphID).Delete(&types.Topic{}).Error; err != nil {
			return err
		}
		if err := conn.Where("graph_id = ?", graphID).Delete(&types.Course{}).Error; err != nil {
			return err
		}
		return conn.Where("id = ?", graphID).Delete(&types.KnowledgeGraph{}).Error
	}
	if tx != nil {
		return run(tx.WithContext(ctx))
	}
	return r.db.WithContext(ctx).Transaction(run)
}
