package app

import (
	"context"
	"errors"

	"research-rag/internal/model"
	"research-rag/internal/repository"
)

// maxWorkspaceBytes bounds a single notes or whiteboard document.
const maxWorkspaceBytes = 1 << 20

var ErrContentTooLarge = errors.New("content too large")

// WorkspaceService manages the per-user notepad and whiteboard.
type WorkspaceService struct {
	notes       *repository.NoteRepository
	whiteboards *repository.WhiteboardRepository
}

func NewWorkspaceService(notes *repository.NoteRepository, whiteboards *repository.WhiteboardRepository) *WorkspaceService {
	return &WorkspaceService{notes: notes, whiteboards: whiteboards}
}

// GetNote returns an empty note when the user has not saved one yet.
func (s *WorkspaceService) GetNote(ctx context.Context, userID uint) (*model.Note, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	note, err := s.notes.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return &model.Note{UserID: userID}, nil
	}
	return note, nil
}

func (s *WorkspaceService) SaveNote(ctx context.Context, userID uint, content string) (*model.Note, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if len(content) > maxWorkspaceBytes {
		return nil, ErrContentTooLarge
	}
	note := &model.Note{UserID: userID, Content: content}
	if err := s.notes.Upsert(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *WorkspaceService) GetWhiteboard(ctx context.Context, userID uint) (*model.Whiteboard, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	board, err := s.whiteboards.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if board == nil {
		return &model.Whiteboard{UserID: userID}, nil
	}
	return board, nil
}

func (s *WorkspaceService) SaveWhiteboard(ctx context.Context, userID uint, content string) (*model.Whiteboard, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	if len(content) > maxWorkspaceBytes {
		return nil, ErrContentTooLarge
	}
	board := &model.Whiteboard{UserID: userID, Content: content}
	if err := s.whiteboards.Upsert(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}
