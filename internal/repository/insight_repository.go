package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"research-rag/internal/model"
)

type InsightRepository struct {
	db *gorm.DB
}

func NewInsightRepository(db *gorm.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

func (r *InsightRepository) Create(ctx context.Context, record *model.InsightRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create insight record failed: %w", err)
	}
	return nil
}

// ListRecentByUserID returns up to limit records, newest first.
func (r *InsightRepository) ListRecentByUserID(ctx context.Context, userID uint, limit int) ([]model.InsightRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var records []model.InsightRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list insight records failed: %w", err)
	}
	return records, nil
}
