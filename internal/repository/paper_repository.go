package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"research-rag/internal/model"
)

// ErrPaperExists is returned when (id, user_id) is already taken.
var ErrPaperExists = errors.New("paper id already exists")

// paperListColumns leaves out the embedding, which list views never need.
var paperListColumns = []string{"id", "user_id", "name", "size_bytes", "dimension", "chunk_count", "created_at"}

type PaperRepository struct {
	db *gorm.DB
}

func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{db: db}
}

// Create inserts the paper in a single statement.
func (r *PaperRepository) Create(ctx context.Context, paper *model.Paper) error {
	if err := r.db.WithContext(ctx).Create(paper).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create paper %q: %w", paper.ID, ErrPaperExists)
		}
		return fmt.Errorf("create paper %q failed: %w", paper.ID, err)
	}
	return nil
}

func (r *PaperRepository) Exists(ctx context.Context, id string, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Paper{}).
		Where("id = ? AND user_id = ?", id, userID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check paper %q failed: %w", id, err)
	}
	return count > 0, nil
}

func (r *PaperRepository) GetByIDAndUserID(ctx context.Context, id string, userID uint) (*model.Paper, error) {
	var paper model.Paper
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&paper).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get paper %q failed: %w", id, err)
	}
	return &paper, nil
}

func (r *PaperRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Paper, error) {
	var list []model.Paper
	if err := r.db.WithContext(ctx).Select(paperListColumns).
		Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list papers failed: %w", err)
	}
	return list, nil
}

// DeleteByIDAndUserID reports whether a row was removed.
func (r *PaperRepository) DeleteByIDAndUserID(ctx context.Context, id string, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Paper{})
	if res.Error != nil {
		return false, fmt.Errorf("delete paper %q failed: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}
