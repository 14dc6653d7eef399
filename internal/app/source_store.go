package app

import (
	"context"

	"research-rag/internal/rag"
	"research-rag/internal/repository"
)

// sourceStore exposes the owner-scoped repositories as rag sources. A paper
// contributes its stored preview, not the full upload.
type sourceStore struct {
	papers      *repository.PaperRepository
	notes       *repository.NoteRepository
	whiteboards *repository.WhiteboardRepository
}

func newSourceStore(papers *repository.PaperRepository, notes *repository.NoteRepository, whiteboards *repository.WhiteboardRepository) *sourceStore {
	return &sourceStore{papers: papers, notes: notes, whiteboards: whiteboards}
}

func (s *sourceStore) PaperSource(ctx context.Context, ownerID uint, paperID string) (*rag.StoredSource, error) {
	paper, err := s.papers.GetByIDAndUserID(ctx, paperID, ownerID)
	if err != nil || paper == nil {
		return nil, err
	}
	return &rag.StoredSource{ID: paper.ID, Name: paper.Name, Content: paper.ContentPreview}, nil
}

func (s *sourceStore) NoteSource(ctx context.Context, ownerID uint) (*rag.StoredSource, error) {
	note, err := s.notes.GetByUserID(ctx, ownerID)
	if err != nil || note == nil {
		return nil, err
	}
	return &rag.StoredSource{Name: "notes", Content: note.Content}, nil
}

func (s *sourceStore) WhiteboardSource(ctx context.Context, ownerID uint) (*rag.StoredSource, error) {
	board, err := s.whiteboards.GetByUserID(ctx, ownerID)
	if err != nil || board == nil {
		return nil, err
	}
	return &rag.StoredSource{Name: "whiteboard", Content: board.Content}, nil
}
