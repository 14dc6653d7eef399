package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"research-rag/internal/model"
)

// NoteRepository and WhiteboardRepository keep one row per user.
type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) GetByUserID(ctx context.Context, userID uint) (*model.Note, error) {
	var note model.Note
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get note for user %d failed: %w", userID, err)
	}
	return &note, nil
}

func (r *NoteRepository) Upsert(ctx context.Context, note *model.Note) error {
	note.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(note).Error; err != nil {
		return fmt.Errorf("save note for user %d failed: %w", note.UserID, err)
	}
	return nil
}

type WhiteboardRepository struct {
	db *gorm.DB
}

func NewWhiteboardRepository(db *gorm.DB) *WhiteboardRepository {
	return &WhiteboardRepository{db: db}
}

func (r *WhiteboardRepository) GetByUserID(ctx context.Context, userID uint) (*model.Whiteboard, error) {
	var board model.Whiteboard
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get whiteboard for user %d failed: %w", userID, err)
	}
	return &board, nil
}

func (r *WhiteboardRepository) Upsert(ctx context.Context, board *model.Whiteboard) error {
	board.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
	}).Create(board).Error; err != nil {
		return fmt.Errorf("save whiteboard for user %d failed: %w", board.UserID, err)
	}
	return nil
}
