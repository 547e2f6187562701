package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/topicflow/topicflow-backend/internal/pkg/logger"
	"github.com/topicflow/topicflow-backend/internal/types"
)

type TopicRepo interface {
	ListByGraph(ctx context.Context, tx *gorm.DB, graphID string) ([]*types.Topic, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, graphID, urlSlug string) (*types.Topic, error)
	ListBySlugs(ctx context.Context, tx *gorm.DB, graphID string, slugs []string) ([]*types.Topic, error)
	Create(ctx context.Context, tx *gorm.DB, topic *types.Topic) error
	Update(ctx context.Context, tx *gorm.DB, topic *types.Topic) error
	Delete(ctx context.Context, tx *gorm.DB, graphID, urlSlug string) error
	CopyToGraph(ctx context.Context, tx *gorm.DB, sourceGraphID, targetGraphID string, now time.Time) error
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *topicRepo) ListByGraph(ctx context.Context, tx *gorm.DB, graphID string) ([]*types.Topic, error) {
	var topics []*types.Topic
	if err := r.conn(tx).WithContext(ctx).
		Where("graph_id = ?", graphID).
		Order("display_name").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) GetBySlug(ctx context.Context, tx *gorm.DB, graphID, urlSlug string) (*types.Topic, error) {
	var topic types.Topic
	err := r.conn(tx).WithContext(ctx).
		Where("graph_id = ? AND url_slug = ?", graphID, urlSlug).
		First(&topic).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) ListBySlugs(ctx context.Context, tx *gorm.DB, graphID string, slugs []string) ([]*types.Topic, error) {
	var topics []*types.Topic
	if len(slugs) == 0 {
		return topics, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("graph_id = ? AND url_slug IN ?", graphID, slugs).
		Order("display_name").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepo) Create(ctx context.Context, tx *gorm.DB, topic *types.Topic) error {
	return r.conn(tx).WithContext(ctx).Create(topic).Error
}

func (r *topicRepo) Update(ctx context.Context, tx *gorm.DB, topic *types.Topic) error {
	return r.conn(tx).WithContext(ctx).Save(topic).Error
}

func (r *topicRepo) Delete(ctx context.Context, tx *gorm.DB, graphID, urlSlug string) error {
	return r.conn(tx).WithContext(ctx).
		Where("graph_id = ? AND url_slug = ?", graphID, urlSlug).
		Delete(&types.Topic{}).Error
}

func (r *topicRepo) CopyToGraph(ctx context.Context, tx *gorm.DB, sourceGraphID, targetGraphID string, now time.Time) error {
	return r.conn(tx).WithContext(ctx).Exec(`
		INSERT INTO kg_topics (graph_id, url_slug, display_name, course_id, content_html, content_text, has_content, created_at, updated_at)
		SELECT ?, url_slug, display_name, course_id, content_html, content_text, has_content, ?, ?
		FROM kg_topics WHERE graph_id = ?`,
		targetGraphID, now, now, sourceGraphID,
	).Error
}
